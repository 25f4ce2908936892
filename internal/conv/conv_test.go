package conv

import (
	"errors"
	"testing"

	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/symtab"
)

func newTestCatalog(t *testing.T) *ctype.Catalog {
	t.Helper()

	cat, err := ctype.NewCatalog(ctype.DefaultTraits())
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func obj(typ *ctype.Type, lo, hi int64) symtab.Object {
	return symtab.Object{Type: typ, Value: domain.Range(domain.Int64(lo), domain.Int64(hi))}
}

func TestArithmeticType(t *testing.T) {
	cat := newTestCatalog(t)
	k := cat.Builtin

	tests := []struct {
		name string
		lhs  ctype.Kind
		rhs  ctype.Kind
		want ctype.Kind
	}{
		{name: "long double wins", lhs: ctype.KindLongDouble, rhs: ctype.KindInt, want: ctype.KindLongDouble},
		{name: "double over float", lhs: ctype.KindFloat, rhs: ctype.KindDouble, want: ctype.KindDouble},
		{name: "float over integers", lhs: ctype.KindUnsignedLongLong, rhs: ctype.KindFloat, want: ctype.KindFloat},
		{name: "promoted chars", lhs: ctype.KindChar, rhs: ctype.KindShort, want: ctype.KindInt},
		{name: "same sign higher rank", lhs: ctype.KindInt, rhs: ctype.KindLong, want: ctype.KindLong},
		{name: "unsigned of higher rank", lhs: ctype.KindInt, rhs: ctype.KindUnsignedLong, want: ctype.KindUnsignedLong},
		{name: "unsigned of equal rank", lhs: ctype.KindInt, rhs: ctype.KindUnsignedInt, want: ctype.KindUnsignedInt},
		{name: "signed represents unsigned", lhs: ctype.KindLong, rhs: ctype.KindUnsignedInt, want: ctype.KindLong},
		{name: "corresponding unsigned", lhs: ctype.KindLongLong, rhs: ctype.KindUnsignedLong, want: ctype.KindUnsignedLongLong},
		{name: "bool and char", lhs: ctype.KindBool, rhs: ctype.KindUnsignedChar, want: ctype.KindInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ArithmeticType(cat, k(tt.lhs), k(tt.rhs))
			if got.Kind() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Kind())
			}

			mirrored := ArithmeticType(cat, k(tt.rhs), k(tt.lhs))
			if mirrored != got {
				t.Errorf("conversion must be symmetric: %s vs %s", got, mirrored)
			}
		})
	}
}

func TestArithmeticTypeClassificationFailure(t *testing.T) {
	cat := newTestCatalog(t)

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("error panic expected, got %v", r)
		}

		var ce *ClassificationError
		if !errors.As(err, &ce) {
			t.Fatalf("classification error expected, got %v", err)
		}
	}()

	ArithmeticType(cat, cat.PointerTo(cat.Int()), cat.Int())
}

func TestUsualArithmeticConversion(t *testing.T) {
	cat := newTestCatalog(t)

	l, r := UsualArithmeticConversion(cat, obj(cat.Int(), -1, -1), obj(cat.UnsignedInt(), 1, 1))
	if l.Type != cat.UnsignedInt() || r.Type != cat.UnsignedInt() {
		t.Fatalf("unexpected types %s and %s", l.Type, r.Type)
	}
	if got := l.Value.String(); got != "{[2,2]}" {
		t.Errorf("unexpected converted value %s", got)
	}

	p := symtab.Object{Type: cat.PointerTo(cat.Int()), Value: domain.Of(domain.Zero)}
	pl, pr := UsualArithmeticConversion(cat, p, p)
	if pl.Type != p.Type || pr.Type != p.Type {
		t.Error("pointers must not be converted")
	}
}

func TestIntegerPromotion(t *testing.T) {
	cat := newTestCatalog(t)

	c := obj(cat.Builtin(ctype.KindChar), -3, 3)
	got := IntegerPromotion(cat, c)
	if got.Type != cat.Int() || got.Value.String() != "{[-3,3]}" {
		t.Errorf("unexpected promotion %s %s", got.Type, got.Value)
	}

	l := obj(cat.Builtin(ctype.KindLong), 1, 2)
	if IntegerPromotion(cat, l).Type != l.Type {
		t.Error("long must not be promoted")
	}

	f := obj(cat.Float(), 1, 2)
	if IntegerPromotion(cat, f).Type != cat.Float() {
		t.Error("float must not be integer-promoted")
	}
	if DefaultArgumentPromotion(cat, f).Type != cat.Double() {
		t.Error("float argument must be promoted to double")
	}
	if DefaultArgumentPromotion(cat, c).Type != cat.Int() {
		t.Error("char argument must be promoted to int")
	}
}

func TestConvertWrapAround(t *testing.T) {
	cat := newTestCatalog(t)
	sc := cat.Builtin(ctype.KindSignedChar)
	uc := cat.Builtin(ctype.KindUnsignedChar)

	tests := []struct {
		name string
		from symtab.Object
		to   *ctype.Type
		want string
		wrap WrapKind
	}{
		{
			name: "signed to unsigned below minimum",
			from: obj(sc, -1, -1),
			to:   uc,
			want: "{[2,2]}",
			wrap: WrapSignedToUnsigned,
		},
		{
			name: "signed to unsigned wraps the whole domain",
			from: obj(sc, -2, 5),
			to:   uc,
			want: "{[0,3]}",
			wrap: WrapSignedToUnsigned,
		},
		{
			name: "unsigned to signed wraps the whole domain",
			from: obj(uc, 100, 200),
			to:   sc,
			want: "{[53,127]}",
			wrap: WrapUnsignedToSigned,
		},
		{
			name: "unsigned to signed above maximum",
			from: obj(uc, 200, 200),
			to:   sc,
			want: "{[53,53]}",
			wrap: WrapUnsignedToSigned,
		},
		{
			name: "unsigned to signed just above maximum",
			from: obj(uc, 128, 128),
			to:   sc,
			want: "{[125,125]}",
			wrap: WrapUnsignedToSigned,
		},
		{
			name: "in range",
			from: obj(uc, 0, 100),
			to:   sc,
			want: "{[0,100]}",
			wrap: WrapNone,
		},
		{
			name: "truncation falls back to the destination range",
			from: obj(cat.Int(), 1000, 1000),
			to:   sc,
			want: "{[-128,127]}",
			wrap: WrapNone,
		},
		{
			name: "to bool",
			from: obj(cat.Int(), 5, 7),
			to:   cat.Builtin(ctype.KindBool),
			want: "{[1,1]}",
			wrap: WrapNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Convert(tt.from, tt.to)
			if !ok {
				t.Fatal("conversion expected")
			}
			if got.Type != tt.to {
				t.Errorf("expected type %s, got %s", tt.to, got.Type)
			}
			if got.Value.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Value)
			}
			if kind := WrapKindOf(tt.from, tt.to); kind != tt.wrap {
				t.Errorf("expected wrap %s, got %s", tt.wrap, kind)
			}
		})
	}
}

func TestConvertNotCoercible(t *testing.T) {
	cat := newTestCatalog(t)

	if _, ok := Convert(obj(cat.Int(), 0, 0), cat.Void()); ok {
		t.Error("int must not convert to void")
	}
}

func TestUntypedPointerConvertible(t *testing.T) {
	cat := newTestCatalog(t)
	ip := cat.PointerTo(cat.Int())
	cp := cat.PointerTo(cat.Builtin(ctype.KindChar))
	vp := cat.VoidPointer()
	e := cat.Enum("e", []domain.Scalar{domain.Zero})

	tests := []struct {
		name string
		from symtab.Object
		to   *ctype.Type
		want bool
	}{
		{name: "void pointer to int pointer", from: symtab.Object{Type: vp}, to: ip, want: true},
		{name: "int pointer to void pointer", from: symtab.Object{Type: ip}, to: vp, want: true},
		{name: "char pointer to int pointer", from: symtab.Object{Type: cp}, to: ip, want: false},
		{name: "null constant", from: obj(cat.Int(), 0, 0), to: ip, want: true},
		{name: "maybe null", from: obj(cat.Int(), 0, 1), to: ip, want: false},
		{name: "enumeration", from: obj(e, 0, 0), to: ip, want: false},
		{name: "double to void pointer", from: obj(cat.Double(), 0, 0), to: vp, want: true},
		{name: "double to int pointer", from: obj(cat.Double(), 0, 0), to: ip, want: false},
		{name: "not a pointer destination", from: obj(cat.Int(), 0, 0), to: cat.Int(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UntypedPointerConvertible(tt.from, tt.to); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
