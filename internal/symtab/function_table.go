package symtab

import (
	"github.com/sirkon/cadlint/internal/ctype"
)

// Function is a declared or defined function.
type Function struct {
	Name   string
	Result *ctype.Type
	Params []*ctype.Type

	// Prototyped is false for old-style declarations like "int f();": arguments of
	// calls to such functions undergo default argument promotion.
	Prototyped bool
	Variadic   bool
	Defined    bool
}

// FunctionTable owns functions visible in a translation unit.
type FunctionTable struct {
	scopes []map[string]*Function
}

// NewFunctionTable creates a table with the global scope open.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{scopes: []map[string]*Function{{}}}
}

// EnterScope opens a nested scope for block-scope declarations.
func (t *FunctionTable) EnterScope() {
	t.scopes = append(t.scopes, map[string]*Function{})
}

// LeaveScope closes the innermost scope. The global scope cannot be closed.
func (t *FunctionTable) LeaveScope() {
	if len(t.scopes) == 1 {
		panic("leave global function scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Declare registers a function in the innermost scope. A definition or a prototype
// takes precedence over an earlier declaration that lacks them.
func (t *FunctionTable) Declare(fn *Function) *Function {
	scope := t.scopes[len(t.scopes)-1]
	prev, ok := scope[fn.Name]
	if !ok {
		scope[fn.Name] = fn
		return fn
	}

	if fn.Defined {
		prev.Defined = true
	}
	if fn.Prototyped && !prev.Prototyped {
		prev.Params = fn.Params
		prev.Variadic = fn.Variadic
		prev.Prototyped = true
	}
	return prev
}

// Lookup finds the innermost visible function of the given name.
func (t *FunctionTable) Lookup(name string) *Function {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if fn, ok := t.scopes[i][name]; ok {
			return fn
		}
	}

	return nil
}

// Reset drops every scope except the global one.
func (t *FunctionTable) Reset() {
	t.scopes = t.scopes[:1]
}
