package cc1

import (
	"github.com/sirkon/cadlint/internal/symtab"
)

// BranchGroup is the set of mutually exclusive branches of one construct.
type BranchGroup struct {
	env      *Environment
	trunk    *Branch
	options  Options
	branches []*Branch
}

func newBranchGroup(env *Environment, trunk *Branch, opts Options) *BranchGroup {
	validateOptions(opts)
	return &BranchGroup{
		env:     env,
		trunk:   trunk,
		options: opts & groupOptions,
	}
}

// Trunk returns the branch the group is nested in, nil for a top-level group.
func (g *BranchGroup) Trunk() *Branch { return g.trunk }

// Options returns the group options.
func (g *BranchGroup) Options() Options { return g.options }

// Branches returns branches created so far.
func (g *BranchGroup) Branches() []*Branch { return g.branches }

// Complete tells whether some branch of the group is always entered.
func (g *BranchGroup) Complete() bool {
	return g.options.Has(OptionComplete)
}

// AddOptions adds group options. Branch options in opts are ignored.
func (g *BranchGroup) AddOptions(opts Options) {
	validateOptions(opts)
	g.options |= opts & groupOptions
}

// CreateFirstBranch creates the branch opening the group.
func (g *BranchGroup) CreateFirstBranch(opts Options) *Branch {
	if len(g.branches) != 0 {
		panic(&OptionsError{Options: opts | OptionFirst, Reason: "group already has a first branch"})
	}
	return g.addBranch(opts | OptionFirst)
}

// CreateTrailingBranch appends a branch to the group.
func (g *BranchGroup) CreateTrailingBranch(opts Options) *Branch {
	if opts.Has(OptionFirst) {
		panic(&OptionsError{Options: opts, Reason: "first option on a trailing branch"})
	}
	if len(g.branches) == 0 {
		panic(&OptionsError{Options: opts, Reason: "trailing branch of an empty group"})
	}
	return g.addBranch(opts)
}

func (g *BranchGroup) addBranch(opts Options) *Branch {
	validateOptions(opts)
	if opts.Has(OptionFinal) {
		for _, b := range g.branches {
			if b.options.Has(OptionFinal) {
				panic(&OptionsError{Options: opts, Reason: "group already has a final branch"})
			}
		}
	}

	b := &Branch{
		group:   g,
		options: opts & branchOptions,
	}
	g.branches = append(g.branches, b)
	return b
}

// CurrentBranch returns the latest branch of the group.
func (g *BranchGroup) CurrentBranch() *Branch {
	if len(g.branches) == 0 {
		return nil
	}
	return g.branches[len(g.branches)-1]
}

// AllControllingVariables returns variables affected by the controlling expressions of
// the branches executed so far, in order of appearance.
func (g *BranchGroup) AllControllingVariables() []*symtab.Variable {
	var res []*symtab.Variable
	seen := map[*symtab.Variable]struct{}{}
	for _, b := range g.branches {
		if b.ctrlexpr == nil {
			continue
		}
		for _, v := range b.ctrlexpr.AffectedVariables() {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			res = append(res, v)
		}
	}
	return res
}

// AllControllingVariablesValueExist tells whether every controlling variable has a
// value left.
func (g *BranchGroup) AllControllingVariablesValueExist() bool {
	for _, v := range g.AllControllingVariables() {
		if !v.Value().Exist() {
			return false
		}
	}
	return true
}

// AllBranchesBreakWithBreak tells whether every branch broke out with break.
func (g *BranchGroup) AllBranchesBreakWithBreak() bool {
	return g.allBranchesBreakWith(BreakKindBreak)
}

// AllBranchesBreakWithContinue tells whether every branch broke out with continue.
func (g *BranchGroup) AllBranchesBreakWithContinue() bool {
	return g.allBranchesBreakWith(BreakKindContinue)
}

// AllBranchesBreakWithReturn tells whether every branch broke out with return.
func (g *BranchGroup) AllBranchesBreakWithReturn() bool {
	return g.allBranchesBreakWith(BreakKindReturn)
}

func (g *BranchGroup) allBranchesBreakWith(kind BreakKind) bool {
	if len(g.branches) == 0 {
		return false
	}
	for _, b := range g.branches {
		if b.event.IsCompleted() || b.event.Kind() != kind {
			return false
		}
	}
	return true
}

// InIteration tells whether the group is nested in the body of a loop. The group's own
// options are not inspected.
func (g *BranchGroup) InIteration() bool {
	for t := g.trunk; t != nil; t = t.group.trunk {
		if t.group.options.Has(OptionIteration) {
			return true
		}
	}
	return false
}
