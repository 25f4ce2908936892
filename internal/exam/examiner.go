package exam

import (
	"fmt"
	"go/token"

	"github.com/sirkon/cadlint/internal/cc1"
	"github.com/sirkon/cadlint/internal/conv"
	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/interp"
	"github.com/sirkon/cadlint/internal/rules"
	"github.com/sirkon/cadlint/internal/spans"
	"github.com/sirkon/cadlint/internal/symtab"
	"github.com/sirkon/cadlint/internal/syntax"
)

// Examiner turns interpretation events of a single translation unit into reports.
type Examiner struct {
	interp.NopListener

	file    string
	index   *spans.Index
	flow    *ReporterPhase
	metrics *ReporterPhase

	fn *function
}

// function is the state of the function being interpreted.
type function struct {
	def      *syntax.FuncDef
	executed map[syntax.Stmt]bool
	switches map[*syntax.Switch]bool
	groups   map[*cc1.BranchGroup]bool
	feasible int
	jumps    bool
}

// NewExaminer creates an examiner of the given file. The index names the constructs
// findings are located in, it may be nil.
func NewExaminer(file string, index *spans.Index, engine *ReportEngine) *Examiner {
	return &Examiner{
		file:    file,
		index:   index,
		flow:    engine.Phase(ReportInterp),
		metrics: engine.Phase(ReportMetric),
	}
}

var _ interp.Listener = (*Examiner)(nil)

func (e *Examiner) FunctionStarted(fn *syntax.FuncDef) {
	e.fn = &function{
		def:      fn,
		executed: map[syntax.Stmt]bool{},
		switches: map[*syntax.Switch]bool{},
		groups:   map[*cc1.BranchGroup]bool{},
	}
	syntax.Inspect(fn.Body, func(n syntax.Node) bool {
		if _, ok := n.(*syntax.Goto); ok {
			e.fn.jumps = true
		}
		return !e.fn.jumps
	})
}

func (e *Examiner) FunctionEnded(fn *syntax.FuncDef) {
	if e.fn == nil || e.fn.def != fn {
		return
	}

	unreached := e.unreached(fn.Body, false)

	paths := 1 + e.fn.feasible
	for g, feasible := range e.fn.groups {
		if feasible && g.Complete() {
			paths--
		}
	}

	e.metrics.Report(rules.Paths(), fmt.Sprintf("%s has %d paths", fn.Name, paths), e.position(fn), nil, paths)
	e.metrics.Report(
		rules.UnreachedStatements(),
		fmt.Sprintf("%s has %d statements never executed", fn.Name, unreached),
		e.position(fn),
		nil,
		unreached,
	)
	e.fn = nil
}

func (e *Examiner) StatementExecuted(s syntax.Stmt) {
	if e.fn == nil {
		return
	}
	e.fn.executed[s] = true

	sw, ok := s.(*syntax.Switch)
	if !ok || e.fn.switches[sw] {
		return
	}
	e.fn.switches[sw] = true

	if sw.Body != nil {
		for _, item := range sw.Body.Items {
			if c, ok := item.(*syntax.Case); ok && c.IsDefault() {
				return
			}
		}
	}
	e.report(rules.SwitchWithoutDefault(), "", sw, nil)
}

func (e *Examiner) ControllingExpressionValue(site syntax.Stmt, expr syntax.Expr, truth domain.Truth) {
	switch {
	case truth.MustBeTrue():
		switch site.(type) {
		case *syntax.While, *syntax.DoWhile, *syntax.For:
			// while (1) and alike.
			return
		}
		e.report(rules.AlwaysTrue(), "", expr, nil)
	case truth.MustBeFalse():
		e.report(rules.AlwaysFalse(), "", expr, nil)
	}
}

func (e *Examiner) BranchUnreachable(site syntax.Node) {
	e.report(rules.UnreachableBranch(), "", site, nil)
}

func (e *Examiner) BranchEnded(b *cc1.Branch) {
	if e.fn == nil {
		return
	}

	g := b.Group()
	if b.Feasible() {
		e.fn.feasible++
		e.fn.groups[g] = true
		return
	}
	if _, ok := e.fn.groups[g]; !ok {
		e.fn.groups[g] = false
	}
}

func (e *Examiner) ImplicitConversion(expr syntax.Expr, from symtab.Object, to *ctype.Type) {
	if from.Type == nil || to == nil {
		return
	}

	switch conv.WrapKindOf(from, to) {
	case conv.WrapSignedToUnsigned:
		e.report(rules.NegativeToUnsigned(), fmt.Sprintf("%s value %s converted to %s", from.Type, from.Value, to), expr, from.Value.String())
	case conv.WrapUnsignedToSigned:
		e.report(rules.OverflowToSigned(), fmt.Sprintf("%s value %s converted to %s", from.Type, from.Value, to), expr, from.Value.String())
	}

	if to.IsPointer() && from.Type.IsInteger() && !from.Type.IsEnum() && !conv.UntypedPointerConvertible(from, to) {
		e.report(rules.IntegerToPointer(), fmt.Sprintf("%s value %s converted to %s", from.Type, from.Value, to), expr, nil)
	}
}

// unreached reports the outermost statements never executed and returns the number of
// all of them. Functions with goto are not reported since jumps are not followed.
func (e *Examiner) unreached(n syntax.Node, inside bool) int {
	var count int
	if s, ok := n.(syntax.Stmt); ok && !e.fn.executed[s] && !structural(s) {
		count++
		if !inside && !e.fn.jumps {
			e.report(rules.UnreachableStatement(), "", s, nil)
		}
		inside = true
	}

	for _, c := range syntax.Children(n) {
		count += e.unreached(c, inside)
	}
	return count
}

// structural tells whether the statement only groups or labels other statements.
func structural(s syntax.Stmt) bool {
	switch s.(type) {
	case *syntax.Block, *syntax.Case, *syntax.Labeled:
		return true
	default:
		return false
	}
}

func (e *Examiner) report(rule rules.Rule, message string, n syntax.Node, details any) {
	var context []string
	if e.index != nil {
		context = e.index.Path(n.Pos().Offset)
	}
	e.flow.Report(rule, message, e.position(n), context, details)
}

func (e *Examiner) position(n syntax.Node) token.Position {
	p := n.Pos()
	return token.Position{
		Filename: e.file,
		Offset:   p.Offset,
		Line:     p.Line,
		Column:   p.Column,
	}
}
