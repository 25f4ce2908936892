// Package cc1 implements path-sensitive control flow of the interpreter: branches of
// conditional and iterative constructs, the groups they form and the environment
// sequencing them over the versioned variable table.
//
// Every construct with alternative paths is a branch group. Each path is a branch
// executed with Branch.Execute, which opens and closes a version of the variable table
// around the body and merges the versions once the final branch of the group is done.
package cc1

import (
	"fmt"
	"log/slog"

	"github.com/sirkon/cadlint/internal/conv"
	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/symtab"
	"github.com/sirkon/cadlint/internal/syntax"
)

// TypeCatalog is the type catalog the environment works with.
type TypeCatalog interface {
	conv.Catalog
	Int() *ctype.Type
	PointerTo(elem *ctype.Type) *ctype.Type
	Lookup(spec string) (*ctype.Type, bool)
}

// VariableTable is the variable table with its versioning protocol.
type VariableTable interface {
	EnterScope()
	LeaveScope()
	Lookup(name string) *symtab.Variable
	Reset()

	Assign(v *symtab.Variable, value domain.Domain)
	Narrow(v *symtab.Variable, value domain.Domain, exact bool)
	Complement(v *symtab.Variable) domain.Domain

	EnterVersioningGroup()
	LeaveVersioningGroup(raiseComplement bool)
	BeginVersioning()
	EndVersioning()
	ThinLatestVersion(withRollback bool)
}

// FunctionTable is the function table.
type FunctionTable interface {
	EnterScope()
	LeaveScope()
	Lookup(name string) *symtab.Function
	Reset()
}

// Evaluator computes the value of an expression without side effects. Variables found
// in view take the values of the view instead of their current ones.
type Evaluator interface {
	ValueOf(expr syntax.Expr, view map[*symtab.Variable]domain.Domain) symtab.Object
}

// Observer receives branch lifecycle notifications.
type Observer interface {
	BranchStarted(b *Branch)
	BranchEnded(b *Branch)
	ControllingExpressionEvaluated(b *Branch, ce *ControllingExpression)
}

// Scope is a lexical scope.
type Scope struct {
	Depth  int
	parent *Scope
}

// Environment sequences scopes, branch groups and versions of a translation unit.
type Environment struct {
	types TypeCatalog
	vars  VariableTable
	funcs FunctionTable
	eval  Evaluator

	scope     *Scope
	groups    []*BranchGroup
	depth     int
	observers []Observer

	log *slog.Logger
}

// NewEnvironment creates an environment at the global scope.
func NewEnvironment(types TypeCatalog, vars VariableTable, funcs FunctionTable, eval Evaluator) *Environment {
	return &Environment{
		types: types,
		vars:  vars,
		funcs: funcs,
		eval:  eval,
		scope: &Scope{},
		log:   slog.Default().With(slog.String("component", "cc1")),
	}
}

// Subscribe adds an observer of branch lifecycle.
func (e *Environment) Subscribe(o Observer) {
	e.observers = append(e.observers, o)
}

func (e *Environment) Types() TypeCatalog       { return e.types }
func (e *Environment) Variables() VariableTable { return e.vars }
func (e *Environment) Functions() FunctionTable { return e.funcs }

// Reset returns the environment to the global scope with no branches.
func (e *Environment) Reset() {
	e.scope = &Scope{}
	e.groups = nil
	e.depth = 0
	e.vars.Reset()
	e.funcs.Reset()
}

// --- Scopes ---------------------------------------------------------------------------------------------------------

// Scope returns the current lexical scope.
func (e *Environment) Scope() *Scope {
	return e.scope
}

// EnterScope opens a nested scope in both tables.
func (e *Environment) EnterScope() {
	e.scope = &Scope{Depth: e.scope.Depth + 1, parent: e.scope}
	e.vars.EnterScope()
	e.funcs.EnterScope()
}

// LeaveScope closes the current scope.
func (e *Environment) LeaveScope() {
	if e.scope.parent == nil {
		panic(fmt.Errorf("leave global scope"))
	}
	e.scope = e.scope.parent
	e.vars.LeaveScope()
	e.funcs.LeaveScope()
}

// --- Branches -------------------------------------------------------------------------------------------------------

// Depth returns the branch depth.
func (e *Environment) Depth() int {
	return e.depth
}

// CurrentBranch returns the latest branch at the current depth, nil outside branches.
func (e *Environment) CurrentBranch() *Branch {
	if e.depth == 0 {
		return nil
	}
	return e.groups[e.depth-1].CurrentBranch()
}

// EnterBranch goes a level deeper. When a group is already open at that level, the
// options are added to it and a trailing branch is appended. Otherwise a group is
// opened with a first branch.
func (e *Environment) EnterBranch(opts Options) *Branch {
	e.depth++
	if e.depth <= len(e.groups) {
		g := e.groups[e.depth-1]
		g.AddOptions(opts)
		return g.CreateTrailingBranch(opts)
	}

	return e.EnterBranchGroup(opts).CreateFirstBranch(opts)
}

// LeaveBranch goes a level up. The group at the left level stays open until its final
// branch is done.
func (e *Environment) LeaveBranch() {
	if e.depth == 0 {
		panic(fmt.Errorf("leave branch at depth 0"))
	}
	e.depth--
}

// EnterBranchGroup opens a group at the current depth. Its trunk is the current branch
// one level up.
func (e *Environment) EnterBranchGroup(opts Options) *BranchGroup {
	if len(e.groups) != e.depth-1 {
		panic(fmt.Errorf("enter branch group at depth %d with %d groups open", e.depth, len(e.groups)))
	}

	var trunk *Branch
	if e.depth > 1 {
		trunk = e.groups[e.depth-2].CurrentBranch()
	}

	g := newBranchGroup(e, trunk, opts)
	e.groups = append(e.groups, g)
	return g
}

// LeaveBranchGroup closes the group at the current depth.
func (e *Environment) LeaveBranchGroup() {
	if e.depth == 0 || len(e.groups) != e.depth {
		panic(fmt.Errorf("leave branch group at depth %d with %d groups open", e.depth, len(e.groups)))
	}
	e.groups = e.groups[:e.depth-1]
}

// BranchedEval runs body in a branch with the given controlling expression and
// options, notifying observers. The group is closed after its final branch. When body
// panics the group is closed by the panicking branch whatever it is, and the panic goes
// on with its original value.
func (e *Environment) BranchedEval(expr syntax.Expr, opts Options, body func(*Branch) Result) Result {
	b := e.EnterBranch(opts)
	for _, o := range e.observers {
		o.BranchStarted(b)
	}
	defer func() {
		r := recover()
		for _, o := range e.observers {
			o.BranchEnded(b)
		}
		switch {
		case b.Options().Has(OptionFinal):
			e.LeaveBranchGroup()
		case r != nil:
			// Siblings following the branch are never run.
			e.LeaveVersioningGroup(true)
			e.LeaveBranchGroup()
		}
		e.LeaveBranch()
		if r != nil {
			panic(r)
		}
	}()

	return b.Execute(expr, body)
}

// --- Versioning -----------------------------------------------------------------------------------------------------

func (e *Environment) EnterVersioningGroup() {
	e.vars.EnterVersioningGroup()
}

func (e *Environment) LeaveVersioningGroup(raiseComplement bool) {
	e.vars.LeaveVersioningGroup(raiseComplement)
}

func (e *Environment) BeginVersioning() {
	e.vars.BeginVersioning()
}

// EndVersioning closes the current version, thinning it first when the branch does
// not rejoin the control flow.
func (e *Environment) EndVersioning(thin, rollback bool) {
	if thin {
		e.vars.ThinLatestVersion(rollback)
	}
	e.vars.EndVersioning()
}

func (e *Environment) notifyControllingExpression(b *Branch, ce *ControllingExpression) {
	for _, o := range e.observers {
		o.ControllingExpressionEvaluated(b, ce)
	}
}
