// Package conv implements conversion semantics of C: integer promotion, usual
// arithmetic conversion, default argument promotion, conversions with value
// wrap-around and convertibility to untyped pointers.
//
// Functions of this package are pure: they never change the objects they are given.
package conv

import (
	"fmt"

	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/symtab"
)

// Catalog is the part of a type catalog conversions depend on.
type Catalog interface {
	PromotedType(t *ctype.Type) *ctype.Type
	CorrespondingUnsigned(t *ctype.Type) *ctype.Type
	Float() *ctype.Type
	Double() *ctype.Type
	LongDouble() *ctype.Type
}

// ClassificationError is raised with panic when the operands of usual arithmetic
// conversion are not arithmetic. Well-typed input never leads to it.
type ClassificationError struct {
	Lhs *ctype.Type
	Rhs *ctype.Type
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify arithmetic operands %s and %s", e.Lhs, e.Rhs)
}

// WrapKind tells how a conversion wraps values around.
type WrapKind int

const (
	WrapNone WrapKind = iota
	WrapSignedToUnsigned
	WrapUnsignedToSigned
)

var wrapKindValueMap = map[WrapKind]string{
	WrapNone:             "none",
	WrapSignedToUnsigned: "signed-to-unsigned",
	WrapUnsignedToSigned: "unsigned-to-signed",
}

func (k WrapKind) String() string {
	v, ok := wrapKindValueMap[k]
	if !ok {
		return fmt.Sprintf("invalid(%d)", k)
	}

	return v
}

// ArithmeticType returns the common type of usual arithmetic conversion. It is
// symmetric in its operands.
func ArithmeticType(cat Catalog, lhs, rhs *ctype.Type) *ctype.Type {
	if !lhs.IsArithmetic() || !rhs.IsArithmetic() {
		panic(&ClassificationError{Lhs: lhs, Rhs: rhs})
	}

	for _, ft := range []*ctype.Type{cat.LongDouble(), cat.Double(), cat.Float()} {
		if lhs == ft || rhs == ft {
			return ft
		}
	}

	l := cat.PromotedType(lhs).Underlying()
	r := cat.PromotedType(rhs).Underlying()
	switch {
	case l == r:
		return l
	case l.IsSigned() == r.IsSigned():
		if l.Rank() < r.Rank() {
			return r
		}
		return l
	}

	u, s := l, r
	if u.IsSigned() {
		u, s = s, u
	}
	switch {
	case u.Rank() >= s.Rank():
		return u
	case s.CanRepresent(u):
		return s
	default:
		return cat.CorrespondingUnsigned(s)
	}
}

// IntegerPromotion converts an integer operand to its promoted type when it differs.
// Other operands are returned as is.
func IntegerPromotion(cat Catalog, obj symtab.Object) symtab.Object {
	if !obj.Type.IsInteger() {
		return obj
	}

	promoted := cat.PromotedType(obj.Type)
	if promoted == obj.Type {
		return obj
	}
	if res, ok := Convert(obj, promoted); ok {
		return res
	}
	return obj
}

// DefaultArgumentPromotion applies integer promotion and converts float to double.
func DefaultArgumentPromotion(cat Catalog, obj symtab.Object) symtab.Object {
	if obj.Type == cat.Float() {
		if res, ok := Convert(obj, cat.Double()); ok {
			return res
		}
		return obj
	}

	return IntegerPromotion(cat, obj)
}

// UsualArithmeticConversion converts both operands of a binary arithmetic operator to
// their common type. Two pointers are returned unconverted.
func UsualArithmeticConversion(cat Catalog, lhs, rhs symtab.Object) (symtab.Object, symtab.Object) {
	if lhs.Type.IsPointer() && rhs.Type.IsPointer() {
		return lhs, rhs
	}

	common := ArithmeticType(cat, lhs.Type, rhs.Type)
	return convertOrKeep(lhs, common), convertOrKeep(rhs, common)
}

func convertOrKeep(obj symtab.Object, to *ctype.Type) symtab.Object {
	if obj.Type == to {
		return obj
	}
	if res, ok := Convert(obj, to); ok {
		return res
	}
	return obj
}

// Convert converts the object to the given type and reports false when the type is
// not coercible from the object's one.
//
// A signed value that may be below the minimum of an unsigned destination is wrapped
// as a whole as min - v + 1. An unsigned value that may exceed the maximum of a signed
// destination is wrapped as a whole as max - (v - max) - 1. Values the destination
// cannot hold after that are dropped; when none remain, the result takes every value of
// the destination.
func Convert(obj symtab.Object, to *ctype.Type) (symtab.Object, bool) {
	if !obj.Type.Coercible(to) {
		return symtab.Object{}, false
	}

	value, _ := wrapAround(obj, to)
	return symtab.Object{Type: to, Value: value}, true
}

// WrapKindOf tells whether converting the object to the given type wraps any of its
// values around.
func WrapKindOf(obj symtab.Object, to *ctype.Type) WrapKind {
	if !obj.Type.Coercible(to) {
		return WrapNone
	}

	_, kind := wrapAround(obj, to)
	return kind
}

func wrapAround(obj symtab.Object, to *ctype.Type) (domain.Domain, WrapKind) {
	from := obj.Type
	value := obj.Value
	kind := WrapNone

	switch {
	case to.Kind() == ctype.KindBool:
		return domain.TruthOfValue(value).Domain(), WrapNone
	case from.IsFloating() && to.IsFloating():
		return value, WrapNone
	case from.IsFloating() || to.IsFloating():
	case from.IsSigned() && to.IsUnsigned():
		pivot := to.Min()
		if value.Exist() && value.Min().Cmp(pivot) < 0 {
			kind = WrapSignedToUnsigned
			value = value.Neg().Add(domain.Of(pivot.Add(domain.One)))
		}
	case from.IsUnsigned() && to.IsSigned():
		pivot := to.Max()
		if value.Exist() && value.Max().Cmp(pivot) > 0 {
			kind = WrapUnsignedToSigned
			value = value.Neg().Add(domain.Of(pivot.Add(pivot).Sub(domain.One)))
		}
	}

	fit := value.Intersect(to.Range())
	if !fit.Exist() && value.Exist() {
		fit = to.Range()
	}
	return fit, kind
}

// UntypedPointerConvertible tells whether the object may be converted to the pointer
// type without an explicit cast: pointers convert when either side is void *, non-enum
// integers convert to any pointer only when they are definitely null, enumerations never
// convert, anything else converts only to void *.
func UntypedPointerConvertible(obj symtab.Object, to *ctype.Type) bool {
	if !to.IsPointer() {
		return false
	}

	from := obj.Type
	switch {
	case from.IsPointer():
		return from.IsVoidPointer() || to.IsVoidPointer()
	case from.IsEnum():
		return false
	case from.IsInteger():
		return obj.Value.IsSingleton() && obj.Value.Min().IsZero()
	default:
		return to.IsVoidPointer()
	}
}
