package ctype

import (
	"testing"

	"github.com/sirkon/cadlint/internal/domain"
)

func newTestCatalog(t *testing.T, tr Traits) *Catalog {
	t.Helper()

	c, err := NewCatalog(tr)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCatalogLookup(t *testing.T) {
	c := newTestCatalog(t, DefaultTraits())

	tests := []struct {
		spec string
		want Kind
	}{
		{spec: "int", want: KindInt},
		{spec: "signed", want: KindInt},
		{spec: "unsigned", want: KindUnsignedInt},
		{spec: "const unsigned long int", want: KindUnsignedLong},
		{spec: "long long", want: KindLongLong},
		{spec: "unsigned long long int", want: KindUnsignedLongLong},
		{spec: "short int", want: KindShort},
		{spec: "unsigned short", want: KindUnsignedShort},
		{spec: "char", want: KindChar},
		{spec: "signed char", want: KindSignedChar},
		{spec: "unsigned char", want: KindUnsignedChar},
		{spec: "_Bool", want: KindBool},
		{spec: "long double", want: KindLongDouble},
		{spec: "static double", want: KindDouble},
		{spec: "void", want: KindVoid},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			typ, ok := c.Lookup(tt.spec)
			if !ok {
				t.Fatalf("type %q must be known", tt.spec)
			}
			if typ.Kind() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, typ.Kind())
			}
		})
	}

	for _, spec := range []string{"signed unsigned", "short long", "struct foo", "long long long"} {
		if _, ok := c.Lookup(spec); ok {
			t.Errorf("type %q must not be known", spec)
		}
	}
}

func TestCatalogRanges(t *testing.T) {
	c := newTestCatalog(t, DefaultTraits())

	tests := []struct {
		kind Kind
		want string
	}{
		{kind: KindBool, want: "{[0,1]}"},
		{kind: KindChar, want: "{[-128,127]}"},
		{kind: KindUnsignedChar, want: "{[0,255]}"},
		{kind: KindInt, want: "{[-2147483648,2147483647]}"},
		{kind: KindUnsignedLong, want: "{[0,18446744073709551615]}"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := c.Builtin(tt.kind).Range().String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	tr := DefaultTraits()
	tr.CharAsUnsignedChar = true
	uc := newTestCatalog(t, tr)
	if uc.Builtin(KindChar).IsSigned() {
		t.Error("plain char must be unsigned")
	}
}

func TestCatalogPromotedType(t *testing.T) {
	c := newTestCatalog(t, DefaultTraits())

	tests := []struct {
		name string
		from Kind
		want Kind
	}{
		{name: "bool", from: KindBool, want: KindInt},
		{name: "char", from: KindChar, want: KindInt},
		{name: "unsigned short", from: KindUnsignedShort, want: KindInt},
		{name: "unsigned int", from: KindUnsignedInt, want: KindUnsignedInt},
		{name: "long", from: KindLong, want: KindLong},
		{name: "double", from: KindDouble, want: KindDouble},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.PromotedType(c.Builtin(tt.from)); got.Kind() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Kind())
			}
		})
	}

	// unsigned short does not fit into int of the same width.
	tr := DefaultTraits()
	tr.ShortSize = 32
	wide := newTestCatalog(t, tr)
	if got := wide.PromotedType(wide.Builtin(KindUnsignedShort)); got != wide.UnsignedInt() {
		t.Errorf("expected unsigned int, got %s", got)
	}
}

func TestCatalogEnum(t *testing.T) {
	c := newTestCatalog(t, DefaultTraits())

	small := c.Enum("color", []domain.Scalar{domain.Int64(0), domain.Int64(2)})
	if small.Underlying() != c.Int() {
		t.Errorf("expected int, got %s", small.Underlying())
	}
	if !small.IsInteger() || !small.IsEnum() {
		t.Error("enumeration must be an integer type")
	}
	if c.Enum("color", nil) != small {
		t.Error("enumeration must be declared once")
	}

	big := c.Enum("mask", []domain.Scalar{domain.Uint64(1 << 40)})
	if big.Underlying().Kind() != KindUnsignedLong {
		t.Errorf("expected unsigned long, got %s", big.Underlying())
	}

	neg := c.Enum("offset", []domain.Scalar{domain.Int64(-1 << 40)})
	if neg.Underlying().Kind() != KindLong {
		t.Errorf("expected long, got %s", neg.Underlying())
	}

	lo := domain.Int64(-1<<31 - 1)
	below := c.Enum("below", []domain.Scalar{lo, domain.Int64(0)})
	if below.Underlying().Kind() != KindLong {
		t.Errorf("expected long, got %s", below.Underlying())
	}
	if !below.Range().Contains(lo) {
		t.Errorf("%s must hold %s", below.Range(), lo)
	}
}

func TestTraitsValidate(t *testing.T) {
	tr := DefaultTraits()
	tr.IntSize = 8
	tr.DataPtrSize = 0

	if err := tr.Validate(); err == nil {
		t.Fatal("validation error expected")
	}

	if _, err := NewCatalog(tr); err == nil {
		t.Fatal("catalog must not be built from invalid traits")
	}
}

func TestCatalogPointers(t *testing.T) {
	c := newTestCatalog(t, DefaultTraits())

	p := c.PointerTo(c.Int())
	if p != c.PointerTo(c.Int()) {
		t.Error("pointer types must be interned")
	}
	if !c.VoidPointer().IsVoidPointer() || p.IsVoidPointer() {
		t.Error("void pointer misclassified")
	}
	if !p.IsScalar() || p.IsArithmetic() || !p.IsUnsigned() {
		t.Error("pointer must be an unsigned non-arithmetic scalar")
	}
	if got := p.String(); got != "int *" {
		t.Errorf("unexpected pointer name %q", got)
	}
}
