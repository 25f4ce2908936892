package ctype

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"modernc.org/mathutil"

	"github.com/sirkon/cadlint/internal/domain"
)

// Traits are the target properties types are sized by. Sizes are in bits.
type Traits struct {
	CharSize           int  `yaml:"char_size"`
	ShortSize          int  `yaml:"short_size"`
	IntSize            int  `yaml:"int_size"`
	LongSize           int  `yaml:"long_size"`
	LongLongSize       int  `yaml:"long_long_size"`
	FloatSize          int  `yaml:"float_size"`
	DoubleSize         int  `yaml:"double_size"`
	LongDoubleSize     int  `yaml:"long_double_size"`
	CodePtrSize        int  `yaml:"code_ptr_size"`
	DataPtrSize        int  `yaml:"data_ptr_size"`
	CharAsUnsignedChar bool `yaml:"char_as_unsigned_char"`
}

// DefaultTraits describe an LP64 target with signed plain char.
func DefaultTraits() Traits {
	return Traits{
		CharSize:       8,
		ShortSize:      16,
		IntSize:        32,
		LongSize:       64,
		LongLongSize:   64,
		FloatSize:      32,
		DoubleSize:     64,
		LongDoubleSize: 128,
		CodePtrSize:    64,
		DataPtrSize:    64,
	}
}

// Validate checks sizes are positive, fit into machine integers and keep the
// standard integer types ordered.
func (tr Traits) Validate() error {
	sizes := []struct {
		name string
		bits int
	}{
		{"char_size", tr.CharSize},
		{"short_size", tr.ShortSize},
		{"int_size", tr.IntSize},
		{"long_size", tr.LongSize},
		{"long_long_size", tr.LongLongSize},
		{"float_size", tr.FloatSize},
		{"double_size", tr.DoubleSize},
		{"long_double_size", tr.LongDoubleSize},
		{"code_ptr_size", tr.CodePtrSize},
		{"data_ptr_size", tr.DataPtrSize},
	}

	var errs []error
	for _, s := range sizes {
		if s.bits <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", s.name, s.bits))
		}
	}
	for _, s := range sizes[:5] {
		if s.bits > 64 {
			errs = append(errs, fmt.Errorf("%s must not exceed 64 bits, got %d", s.name, s.bits))
		}
	}
	for i := 1; i < 5; i++ {
		if sizes[i].bits < sizes[i-1].bits {
			errs = append(errs, fmt.Errorf("%s must not be less than %s", sizes[i].name, sizes[i-1].name))
		}
	}

	return errors.Join(errs...)
}

// Catalog owns every type of a translation unit.
type Catalog struct {
	traits   Traits
	builtins map[Kind]*Type
	pointers map[*Type]*Type
	enums    map[string]*Type
}

// NewCatalog creates builtin types sized by the given traits.
func NewCatalog(tr Traits) (*Catalog, error) {
	if err := tr.Validate(); err != nil {
		return nil, fmt.Errorf("validate traits: %w", err)
	}

	c := &Catalog{
		traits:   tr,
		builtins: map[Kind]*Type{},
		pointers: map[*Type]*Type{},
		enums:    map[string]*Type{},
	}

	c.builtins[KindVoid] = &Type{kind: KindVoid, name: "void"}
	c.builtins[KindBool] = unsignedType(KindBool, 1, rankBool)
	c.builtins[KindChar] = signedType(KindChar, tr.CharSize, rankChar)
	if tr.CharAsUnsignedChar {
		c.builtins[KindChar] = unsignedType(KindChar, tr.CharSize, rankChar)
	}
	c.builtins[KindSignedChar] = signedType(KindSignedChar, tr.CharSize, rankChar)
	c.builtins[KindUnsignedChar] = unsignedType(KindUnsignedChar, tr.CharSize, rankChar)
	c.builtins[KindShort] = signedType(KindShort, tr.ShortSize, rankShort)
	c.builtins[KindUnsignedShort] = unsignedType(KindUnsignedShort, tr.ShortSize, rankShort)
	c.builtins[KindInt] = signedType(KindInt, tr.IntSize, rankInt)
	c.builtins[KindUnsignedInt] = unsignedType(KindUnsignedInt, tr.IntSize, rankInt)
	c.builtins[KindLong] = signedType(KindLong, tr.LongSize, rankLong)
	c.builtins[KindUnsignedLong] = unsignedType(KindUnsignedLong, tr.LongSize, rankLong)
	c.builtins[KindLongLong] = signedType(KindLongLong, tr.LongLongSize, rankLongLong)
	c.builtins[KindUnsignedLongLong] = unsignedType(KindUnsignedLongLong, tr.LongLongSize, rankLongLong)
	c.builtins[KindFloat] = floatingType(KindFloat, tr.FloatSize)
	c.builtins[KindDouble] = floatingType(KindDouble, tr.DoubleSize)
	c.builtins[KindLongDouble] = floatingType(KindLongDouble, tr.LongDoubleSize)

	return c, nil
}

func signedType(kind Kind, bits, rank int) *Type {
	half := domain.Pow2(uint(bits - 1))
	return &Type{
		kind:   kind,
		name:   kind.String(),
		bits:   bits,
		signed: true,
		rank:   rank,
		min:    half.Neg(),
		max:    half.Sub(domain.One),
	}
}

func unsignedType(kind Kind, bits, rank int) *Type {
	return &Type{
		kind: kind,
		name: kind.String(),
		bits: bits,
		rank: rank,
		min:  domain.Zero,
		max:  domain.Pow2(uint(bits)).Sub(domain.One),
	}
}

func floatingType(kind Kind, bits int) *Type {
	return &Type{
		kind:   kind,
		name:   kind.String(),
		bits:   bits,
		signed: true,
		min:    domain.Infimum,
		max:    domain.Supremum,
	}
}

// Traits returns the traits the catalog was built with.
func (c *Catalog) Traits() Traits {
	return c.traits
}

// Builtin returns the builtin type of the given kind.
func (c *Catalog) Builtin(kind Kind) *Type {
	t, ok := c.builtins[kind]
	if !ok {
		panic(fmt.Errorf("missing builtin type for kind %s", kind))
	}
	return t
}

func (c *Catalog) Void() *Type        { return c.builtins[KindVoid] }
func (c *Catalog) Int() *Type         { return c.builtins[KindInt] }
func (c *Catalog) UnsignedInt() *Type { return c.builtins[KindUnsignedInt] }
func (c *Catalog) Float() *Type       { return c.builtins[KindFloat] }
func (c *Catalog) Double() *Type      { return c.builtins[KindDouble] }
func (c *Catalog) LongDouble() *Type  { return c.builtins[KindLongDouble] }

// PointerTo returns the pointer type to elem.
func (c *Catalog) PointerTo(elem *Type) *Type {
	if p, ok := c.pointers[elem]; ok {
		return p
	}

	p := unsignedType(KindPointer, c.traits.DataPtrSize, 0)
	p.elem = elem
	c.pointers[elem] = p
	return p
}

// VoidPointer returns void *.
func (c *Catalog) VoidPointer() *Type {
	return c.PointerTo(c.Void())
}

// Lookup resolves a list of type specifiers like "unsigned long int" or "char".
// Qualifiers and storage classes are ignored.
func (c *Catalog) Lookup(spec string) (*Type, bool) {
	words := strings.Fields(spec)
	words = slices.DeleteFunc(words, func(w string) bool {
		switch w {
		case "const", "volatile", "restrict", "static", "extern", "auto", "register", "inline":
			return true
		default:
			return false
		}
	})

	var signed, unsigned, short bool
	var longs, chars, ints int
	var base string
	for _, w := range words {
		switch w {
		case "signed":
			signed = true
		case "unsigned":
			unsigned = true
		case "short":
			short = true
		case "long":
			longs++
		case "char":
			chars++
		case "int":
			ints++
		case "void", "_Bool", "bool", "float", "double":
			base = w
		default:
			return nil, false
		}
	}

	if signed && unsigned || chars > 1 || ints > 1 || longs > 2 {
		return nil, false
	}

	switch base {
	case "void":
		return c.Void(), len(words) == 1
	case "_Bool", "bool":
		return c.builtins[KindBool], len(words) == 1
	case "float":
		return c.Float(), len(words) == 1
	case "double":
		switch {
		case len(words) == 1:
			return c.Double(), true
		case len(words) == 2 && longs == 1:
			return c.LongDouble(), true
		default:
			return nil, false
		}
	}

	var kind Kind
	switch {
	case chars == 1:
		if short || longs > 0 || ints > 0 {
			return nil, false
		}
		kind = KindChar
		if signed {
			kind = KindSignedChar
		}
		if unsigned {
			kind = KindUnsignedChar
		}
		return c.builtins[kind], true
	case short:
		if longs > 0 {
			return nil, false
		}
		kind = KindShort
	case longs == 1:
		kind = KindLong
	case longs == 2:
		kind = KindLongLong
	case ints == 1 || signed || unsigned:
		kind = KindInt
	default:
		return nil, false
	}

	if unsigned {
		kind++
	}
	return c.builtins[kind], true
}

// Enum returns the enumeration of the given tag, declaring it with the given
// enumerator values when it does not exist yet. The compatible integer type is int when
// every value fits into it and the smallest standard integer type holding them
// otherwise.
func (c *Catalog) Enum(tag string, values []domain.Scalar) *Type {
	if t, ok := c.enums[tag]; ok {
		return t
	}

	base := c.enumBase(values)
	t := &Type{
		kind:   KindEnum,
		name:   tag,
		bits:   base.bits,
		signed: base.signed,
		rank:   base.rank,
		min:    base.min,
		max:    base.max,
		base:   base,
	}
	c.enums[tag] = t
	return t
}

func (c *Catalog) enumBase(values []domain.Scalar) *Type {
	if len(values) == 0 {
		return c.Int()
	}

	lo := slices.MinFunc(values, domain.Scalar.Cmp)
	hi := slices.MaxFunc(values, domain.Scalar.Cmp)
	if c.Int().Range().Contains(lo) && c.Int().Range().Contains(hi) {
		return c.Int()
	}

	w := c.traits.IntSize
	if lo.Sign() < 0 {
		m, _ := lo.Int64()
		w = mathutil.Max(w, mathutil.BitLenUint64(uint64(-(m+1)))+1)
		if x, ok := hi.Int64(); ok && x > 0 {
			w = mathutil.Max(w, mathutil.BitLenUint64(uint64(x))+1)
		}
		for _, kind := range []Kind{KindInt, KindLong, KindLongLong} {
			if t := c.builtins[kind]; t.bits >= w {
				return t
			}
		}
		return c.builtins[KindLongLong]
	}

	m, _ := hi.Int64()
	w = mathutil.Max(w, mathutil.BitLenUint64(uint64(m)))
	for _, kind := range []Kind{KindUnsignedInt, KindUnsignedLong, KindUnsignedLongLong} {
		if t := c.builtins[kind]; t.bits >= w {
			return t
		}
	}
	return c.builtins[KindUnsignedLongLong]
}

// PromotedType returns the integer-promoted type of t: types ranking no higher than
// int are promoted to int when int represents all of their values and to unsigned int
// otherwise. Other types are promoted to themselves.
func (c *Catalog) PromotedType(t *Type) *Type {
	if !t.IsInteger() || t.rank > rankInt {
		return t
	}
	if t.kind == KindInt || t.kind == KindUnsignedInt {
		return t
	}
	if c.Int().CanRepresent(t) {
		return c.Int()
	}
	return c.UnsignedInt()
}

// CorrespondingUnsigned returns the unsigned type of the same rank as t.
func (c *Catalog) CorrespondingUnsigned(t *Type) *Type {
	switch t.Underlying().kind {
	case KindChar, KindSignedChar, KindUnsignedChar:
		return c.builtins[KindUnsignedChar]
	case KindShort, KindUnsignedShort:
		return c.builtins[KindUnsignedShort]
	case KindInt, KindUnsignedInt:
		return c.builtins[KindUnsignedInt]
	case KindLong, KindUnsignedLong:
		return c.builtins[KindUnsignedLong]
	case KindLongLong, KindUnsignedLongLong:
		return c.builtins[KindUnsignedLongLong]
	default:
		return t
	}
}

// SizeOf returns the size of t in bytes of char size.
func (c *Catalog) SizeOf(t *Type) int {
	if t.IsVoid() {
		return 1
	}
	return (t.bits + c.traits.CharSize - 1) / c.traits.CharSize
}
