// Package ctype describes C types of a translation target: builtin arithmetic types
// sized by traits, void, pointers and enumerations.
package ctype

import (
	"fmt"

	"github.com/sirkon/cadlint/internal/domain"
)

// Kind classifies types.
type Kind int

const (
	_ Kind = iota
	KindVoid
	KindBool
	KindChar
	KindSignedChar
	KindUnsignedChar
	KindShort
	KindUnsignedShort
	KindInt
	KindUnsignedInt
	KindLong
	KindUnsignedLong
	KindLongLong
	KindUnsignedLongLong
	KindFloat
	KindDouble
	KindLongDouble
	KindEnum
	KindPointer
)

var kindValueMap = map[Kind]string{
	KindVoid:             "void",
	KindBool:             "_Bool",
	KindChar:             "char",
	KindSignedChar:       "signed char",
	KindUnsignedChar:     "unsigned char",
	KindShort:            "short",
	KindUnsignedShort:    "unsigned short",
	KindInt:              "int",
	KindUnsignedInt:      "unsigned int",
	KindLong:             "long",
	KindUnsignedLong:     "unsigned long",
	KindLongLong:         "long long",
	KindUnsignedLongLong: "unsigned long long",
	KindFloat:            "float",
	KindDouble:           "double",
	KindLongDouble:       "long double",
	KindEnum:             "enum",
	KindPointer:          "pointer",
}

func (k Kind) String() string {
	v, ok := kindValueMap[k]
	if !ok {
		return fmt.Sprintf("invalid(%d)", k)
	}

	return v
}

// Integer conversion ranks. _Bool ranks below every other integer type.
const (
	rankBool = iota
	rankChar
	rankShort
	rankInt
	rankLong
	rankLongLong
)

// Type is a C type. Types are owned by a Catalog and compared by identity.
type Type struct {
	kind   Kind
	name   string
	bits   int
	signed bool
	rank   int
	min    domain.Scalar
	max    domain.Scalar

	// elem is the referenced type of a pointer.
	elem *Type

	// base is the compatible integer type of an enumeration.
	base *Type
}

func (t *Type) Kind() Kind { return t.kind }
func (t *Type) Bits() int  { return t.bits }
func (t *Type) Elem() *Type {
	return t.elem
}

// Underlying returns the compatible integer type of an enumeration and the type
// itself otherwise.
func (t *Type) Underlying() *Type {
	if t.base != nil {
		return t.base
	}
	return t
}

func (t *Type) String() string {
	switch t.kind {
	case KindPointer:
		return t.elem.String() + " *"
	case KindEnum:
		return "enum " + t.name
	default:
		return t.name
	}
}

func (t *Type) IsVoid() bool    { return t.kind == KindVoid }
func (t *Type) IsPointer() bool { return t.kind == KindPointer }
func (t *Type) IsEnum() bool    { return t.kind == KindEnum }

// IsVoidPointer tells whether the type is void *.
func (t *Type) IsVoidPointer() bool {
	return t.kind == KindPointer && t.elem.IsVoid()
}

// IsInteger tells whether the type belongs to the integer family: _Bool, character
// types, standard integer types and enumerations.
func (t *Type) IsInteger() bool {
	return t.kind >= KindBool && t.kind <= KindUnsignedLongLong || t.kind == KindEnum
}

func (t *Type) IsFloating() bool {
	return t.kind >= KindFloat && t.kind <= KindLongDouble
}

func (t *Type) IsArithmetic() bool {
	return t.IsInteger() || t.IsFloating()
}

// IsScalar tells whether the type is arithmetic or a pointer.
func (t *Type) IsScalar() bool {
	return t.IsArithmetic() || t.IsPointer()
}

func (t *Type) IsSigned() bool {
	return t.signed
}

// IsUnsigned tells whether the type is an unsigned integer or a pointer.
func (t *Type) IsUnsigned() bool {
	return !t.signed && (t.IsInteger() || t.IsPointer())
}

// Rank is the integer conversion rank.
func (t *Type) Rank() int {
	return t.rank
}

func (t *Type) Min() domain.Scalar { return t.min }
func (t *Type) Max() domain.Scalar { return t.max }

// Range returns the domain of every value the type can hold.
func (t *Type) Range() domain.Domain {
	if t.IsVoid() {
		return domain.Empty()
	}
	return domain.Range(t.min, t.max)
}

// CanRepresent tells whether every value of o is a value of t.
func (t *Type) CanRepresent(o *Type) bool {
	return !o.min.Less(t.min) && !t.max.Less(o.max)
}

// Coercible tells whether a value of t can be converted to o.
func (t *Type) Coercible(o *Type) bool {
	return t.IsScalar() && o.IsScalar()
}
