package interp

import (
	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/syntax"
)

// resolve returns the type spelled by tn, nil when the interpreter does not model it.
// Pointers to such types are pointers to void.
func (in *Interpreter) resolve(tn syntax.TypeName) *ctype.Type {
	var t *ctype.Type
	switch {
	case tn.Enum != "":
		t = in.types.Enum(tn.Enum, nil)
	default:
		if lt, ok := in.types.Lookup(tn.Spec); ok {
			t = lt
		}
	}

	if tn.Pointers == 0 {
		return t
	}
	if t == nil {
		t = in.types.Void()
	}
	for range tn.Pointers {
		t = in.types.PointerTo(t)
	}
	return t
}

// intLitType returns the first type of the list the constant fits into: signed types
// for unsuffixed decimals, unsigned ones with the u suffix, both otherwise.
func (in *Interpreter) intLitType(l *syntax.IntLit) *ctype.Type {
	longs := min(l.Longs, 2)
	signed := []ctype.Kind{ctype.KindInt, ctype.KindLong, ctype.KindLongLong}[longs:]
	unsigned := []ctype.Kind{ctype.KindUnsignedInt, ctype.KindUnsignedLong, ctype.KindUnsignedLongLong}[longs:]

	var kinds []ctype.Kind
	switch {
	case l.Unsigned:
		kinds = unsigned
	case l.Decimal:
		kinds = signed
	default:
		for i := range signed {
			kinds = append(kinds, signed[i], unsigned[i])
		}
	}

	v := domain.Uint64(l.Value)
	for _, k := range kinds {
		if t := in.types.Builtin(k); t.Range().Contains(v) {
			return t
		}
	}
	return in.types.Builtin(ctype.KindUnsignedLongLong)
}
