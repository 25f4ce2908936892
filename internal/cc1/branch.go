package cc1

import (
	"log/slog"

	"github.com/sirkon/cadlint/internal/syntax"
)

// Branch is a path of a branch group.
type Branch struct {
	group    *BranchGroup
	options  Options
	ctrlexpr *ControllingExpression
	event    Result
	feasible bool
}

// Group returns the group of the branch.
func (b *Branch) Group() *BranchGroup { return b.group }

// Options returns the branch options.
func (b *Branch) Options() Options { return b.options }

// ControllingExpression returns the controlling expression of the latest execution.
func (b *Branch) ControllingExpression() *ControllingExpression { return b.ctrlexpr }

// Event returns how the body of the branch finished. An infeasible branch that is not
// the lone branch of its group reports an implicit return.
func (b *Branch) Event() Result { return b.event }

// Feasible tells whether the body was executed.
func (b *Branch) Feasible() bool { return b.feasible }

// AddOptions adds options to the branch and its group.
func (b *Branch) AddOptions(opts Options) {
	if opts.Has(OptionFirst) && !b.options.Has(OptionFirst) {
		panic(&OptionsError{Options: opts, Reason: "first option added to a trailing branch"})
	}
	validateOptions(b.options | opts)
	b.options |= opts & branchOptions
	b.group.AddOptions(opts & groupOptions)
}

// Execute runs body along the branch. The controlling expression expr, nil for implicit
// branches, narrows or widens controlling variables according to options, the body runs
// when the branch is feasible. Leaving the final branch of a group merges the versions of
// all its branches and returns the break the whole construct breaks with, if any.
func (b *Branch) Execute(expr syntax.Expr, body func(*Branch) Result) (res Result) {
	env := b.group.env
	if b.options.Has(OptionFirst) {
		env.EnterVersioningGroup()
	}
	env.BeginVersioning()
	defer func() {
		res = b.finish()
	}()

	b.ctrlexpr = newControllingExpression(b, expr)
	env.notifyControllingExpression(b, b.ctrlexpr)

	switch {
	case b.options.Has(OptionNarrowing):
		b.ctrlexpr.EnsureTrueByNarrowing().Commit()
	case b.options.Has(OptionWidening):
		b.ctrlexpr.EnsureTrueByWidening(nil).Commit()
	}

	if b.group.AllControllingVariablesValueExist() && !b.ctrlexpr.MustBeFalse() {
		b.feasible = true
		b.event = body(b)
		return Completed()
	}

	if !(b.options.Has(OptionFinal) && len(b.group.branches) == 1) {
		b.event = BrokeWith(BreakKindReturn)
	}
	return Completed()
}

func (b *Branch) finish() Result {
	env := b.group.env

	thin := b.event.IsReturn() || b.event.IsBreak() && b.group.InIteration() && !b.options.Has(OptionSmotherBreak)
	rollback := b.ctrlexpr != nil && b.ctrlexpr.ComplexlyCompounded() && !b.options.Has(OptionComplemental)
	env.EndVersioning(thin, rollback)

	env.log.Debug(
		"branch executed",
		slog.String("options", b.options.String()),
		slog.Bool("feasible", b.feasible),
		slog.String("event", b.event.String()),
		slog.Bool("thinned", thin),
	)

	if !b.options.Has(OptionFinal) {
		return Completed()
	}

	env.LeaveVersioningGroup(!b.group.Complete())
	if !b.group.Complete() {
		return Completed()
	}

	switch {
	case b.group.AllBranchesBreakWithBreak():
		if b.options.Has(OptionSmotherBreak) {
			return Completed()
		}
		return BrokeWith(BreakKindBreak)
	case b.group.AllBranchesBreakWithReturn():
		return BrokeWith(BreakKindReturn)
	default:
		return Completed()
	}
}

// RestartVersioning merges what the group has seen so far and runs body in a fresh group
// continuing from the merged values. Values of the controlling variables are restored
// afterwards. Switch labels reached by falling through use it.
func (b *Branch) RestartVersioning(body func()) {
	env := b.group.env

	b.ctrlexpr.SaveAffectedVariables()
	env.EndVersioning(false, false)
	env.LeaveVersioningGroup(true)
	env.EnterVersioningGroup()
	env.BeginVersioning()

	body()
	b.ctrlexpr.RestoreAffectedVariables()
}
