// Package symtab holds the symbol tables of a translation unit: variables with
// versioned value domains and functions.
package symtab

import (
	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
)

// Object is a typed value domain: the value of a variable or a temporary produced by
// evaluation.
type Object struct {
	Type  *ctype.Type
	Value domain.Domain
}

// Variable is a named object living in a scope.
type Variable struct {
	name     string
	typ      *ctype.Type
	depth    int
	readonly bool
	value    domain.Domain
}

func (v *Variable) Name() string        { return v.name }
func (v *Variable) Type() *ctype.Type   { return v.typ }
func (v *Variable) Value() domain.Domain { return v.value }

// Depth returns the depth of the scope the variable was declared in. Zero is the
// global scope.
func (v *Variable) Depth() int { return v.depth }

// Readonly tells whether the variable was declared const.
func (v *Variable) Readonly() bool { return v.readonly }

// Object returns the current value of the variable as an object.
func (v *Variable) Object() Object {
	return Object{Type: v.typ, Value: v.value}
}

func (v *Variable) String() string {
	return v.name
}
