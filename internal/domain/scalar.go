package domain

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Scalar is a signed integer value held in 256-bit two's complement. It is wide enough
// for every C integer type and for the intermediate results of arithmetic over them.
type Scalar struct {
	v uint256.Int
}

var (
	// Infimum and Supremum bound every domain. Values of floating types are
	// approximated with them.
	Infimum  = Pow2(200).Neg()
	Supremum = Pow2(200).Sub(One)

	Zero = Scalar{}
	One  = Int64(1)
)

// Int64 creates a scalar from a signed machine integer.
func Int64(n int64) Scalar {
	var s Scalar
	if n >= 0 {
		s.v.SetUint64(uint64(n))
		return s
	}

	s.v.SetUint64(uint64(-n))
	s.v.Neg(&s.v)
	return s
}

// Uint64 creates a scalar from an unsigned machine integer.
func Uint64(n uint64) Scalar {
	var s Scalar
	s.v.SetUint64(n)
	return s
}

// Pow2 returns 2 raised to the given power.
func Pow2(bits uint) Scalar {
	var s Scalar
	s.v.Lsh(uint256.NewInt(1), bits)
	return s
}

// ParseScalar parses an optionally negative decimal number.
func ParseScalar(text string) (Scalar, error) {
	var s Scalar
	neg := strings.HasPrefix(text, "-")
	if err := s.v.SetFromDecimal(strings.TrimPrefix(text, "-")); err != nil {
		return Scalar{}, fmt.Errorf("parse scalar %q: %w", text, err)
	}
	if neg {
		s.v.Neg(&s.v)
	}

	return s, nil
}

// Add returns s + o.
func (s Scalar) Add(o Scalar) Scalar {
	var r Scalar
	r.v.Add(&s.v, &o.v)
	return r
}

// Sub returns s - o.
func (s Scalar) Sub(o Scalar) Scalar {
	var r Scalar
	r.v.Sub(&s.v, &o.v)
	return r
}

// Mul returns s * o.
func (s Scalar) Mul(o Scalar) Scalar {
	var r Scalar
	r.v.Mul(&s.v, &o.v)
	return r
}

// Quo returns s / o truncated toward zero. It reports false for a zero divisor.
func (s Scalar) Quo(o Scalar) (Scalar, bool) {
	if o.IsZero() {
		return Scalar{}, false
	}

	var r Scalar
	r.v.SDiv(&s.v, &o.v)
	return r, true
}

// Rem returns the remainder of s / o which takes the sign of s. It reports false
// for a zero divisor.
func (s Scalar) Rem(o Scalar) (Scalar, bool) {
	if o.IsZero() {
		return Scalar{}, false
	}

	var r Scalar
	r.v.SMod(&s.v, &o.v)
	return r, true
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	var r Scalar
	r.v.Neg(&s.v)
	return r
}

func (s Scalar) And(o Scalar) Scalar {
	var r Scalar
	r.v.And(&s.v, &o.v)
	return r
}

func (s Scalar) Or(o Scalar) Scalar {
	var r Scalar
	r.v.Or(&s.v, &o.v)
	return r
}

func (s Scalar) Xor(o Scalar) Scalar {
	var r Scalar
	r.v.Xor(&s.v, &o.v)
	return r
}

// Not returns the bitwise complement of s.
func (s Scalar) Not() Scalar {
	var r Scalar
	r.v.Not(&s.v)
	return r
}

// Shl returns s shifted left by n bits.
func (s Scalar) Shl(n uint) Scalar {
	var r Scalar
	r.v.Lsh(&s.v, n)
	return r
}

// Shr returns s arithmetically shifted right by n bits.
func (s Scalar) Shr(n uint) Scalar {
	var r Scalar
	r.v.SRsh(&s.v, n)
	return r
}

// Cmp compares scalars as signed numbers.
func (s Scalar) Cmp(o Scalar) int {
	switch {
	case s.v.Slt(&o.v):
		return -1
	case s.v.Sgt(&o.v):
		return 1
	default:
		return 0
	}
}

// Less is a shortcut for s.Cmp(o) < 0.
func (s Scalar) Less(o Scalar) bool {
	return s.v.Slt(&o.v)
}

// Sign returns -1, 0 or 1.
func (s Scalar) Sign() int {
	return s.v.Sign()
}

func (s Scalar) IsZero() bool {
	return s.v.IsZero()
}

// Int64 returns the machine value of s if it fits.
func (s Scalar) Int64() (int64, bool) {
	if s.Sign() >= 0 {
		if !s.v.IsUint64() || s.v.Uint64() > 1<<63-1 {
			return 0, false
		}
		return int64(s.v.Uint64()), true
	}

	m := s.Neg()
	if !m.v.IsUint64() || m.v.Uint64() > 1<<63 {
		return 0, false
	}
	return int64(-m.v.Uint64()), true
}

// String renders s in signed decimal.
func (s Scalar) String() string {
	if s.Sign() < 0 {
		m := s.Neg()
		return "-" + m.v.Dec()
	}

	return s.v.Dec()
}

// MinScalar returns the lesser of a and b.
func MinScalar(a, b Scalar) Scalar {
	if b.Less(a) {
		return b
	}
	return a
}

// MaxScalar returns the greater of a and b.
func MaxScalar(a, b Scalar) Scalar {
	if a.Less(b) {
		return b
	}
	return a
}
