// Package domain implements value domains: symbolic abstractions of the values a C
// variable may hold, kept as sorted disjoint closed intervals of scalars.
package domain

import (
	"slices"
	"strings"
)

// Interval is a closed range of scalars.
type Interval struct {
	Lo Scalar
	Hi Scalar
}

// Domain is a set of scalars kept as sorted, disjoint and non-adjacent intervals.
// The zero value is the empty domain.
type Domain struct {
	ivs []Interval
}

// maxPairwise limits the number of interval pairs arithmetic combines before it falls
// back to hulls.
const maxPairwise = 16

// Empty returns a domain without values.
func Empty() Domain {
	return Domain{}
}

// Of returns a single-valued domain.
func Of(v Scalar) Domain {
	return Domain{ivs: []Interval{{Lo: v, Hi: v}}}
}

// Range returns [lo, hi]. It is empty when hi < lo.
func Range(lo, hi Scalar) Domain {
	if hi.Less(lo) {
		return Domain{}
	}
	return Domain{ivs: []Interval{{Lo: lo, Hi: hi}}}
}

// Unbounded returns the widest domain there is.
func Unbounded() Domain {
	return Range(Infimum, Supremum)
}

func normalize(ivs []Interval) Domain {
	ivs = slices.DeleteFunc(ivs, func(iv Interval) bool { return iv.Hi.Less(iv.Lo) })
	if len(ivs) == 0 {
		return Domain{}
	}

	slices.SortFunc(ivs, func(a, b Interval) int { return a.Lo.Cmp(b.Lo) })
	res := []Interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &res[len(res)-1]
		if !last.Hi.Add(One).Less(iv.Lo) {
			last.Hi = MaxScalar(last.Hi, iv.Hi)
			continue
		}
		res = append(res, iv)
	}

	return Domain{ivs: res}
}

// Intervals returns a copy of the intervals of d.
func (d Domain) Intervals() []Interval {
	return slices.Clone(d.ivs)
}

// Exist tells whether the domain holds at least one definite value.
func (d Domain) Exist() bool {
	return len(d.ivs) > 0
}

// IsSingleton tells whether the domain holds exactly one value.
func (d Domain) IsSingleton() bool {
	return len(d.ivs) == 1 && d.ivs[0].Lo == d.ivs[0].Hi
}

// Min returns the least value. It must not be called on an empty domain.
func (d Domain) Min() Scalar {
	return d.ivs[0].Lo
}

// Max returns the greatest value. It must not be called on an empty domain.
func (d Domain) Max() Scalar {
	return d.ivs[len(d.ivs)-1].Hi
}

// Contains tells whether v belongs to the domain.
func (d Domain) Contains(v Scalar) bool {
	for _, iv := range d.ivs {
		if !v.Less(iv.Lo) && !iv.Hi.Less(v) {
			return true
		}
	}
	return false
}

// Equal compares domains by their values.
func (d Domain) Equal(o Domain) bool {
	return slices.Equal(d.ivs, o.ivs)
}

// Hull returns the smallest single interval containing d.
func (d Domain) Hull() Domain {
	if !d.Exist() {
		return d
	}
	return Range(d.Min(), d.Max())
}

// Union returns d ∪ o.
func (d Domain) Union(o Domain) Domain {
	all := make([]Interval, 0, len(d.ivs)+len(o.ivs))
	all = append(all, d.ivs...)
	all = append(all, o.ivs...)
	return normalize(all)
}

// Intersect returns d ∩ o.
func (d Domain) Intersect(o Domain) Domain {
	var res []Interval
	i, j := 0, 0
	for i < len(d.ivs) && j < len(o.ivs) {
		a, b := d.ivs[i], o.ivs[j]
		lo := MaxScalar(a.Lo, b.Lo)
		hi := MinScalar(a.Hi, b.Hi)
		if !hi.Less(lo) {
			res = append(res, Interval{Lo: lo, Hi: hi})
		}
		if a.Hi.Less(b.Hi) {
			i++
		} else {
			j++
		}
	}

	return Domain{ivs: res}
}

// Subtract returns d \ o.
func (d Domain) Subtract(o Domain) Domain {
	res := slices.Clone(d.ivs)
	for _, cut := range o.ivs {
		var next []Interval
		for _, iv := range res {
			if cut.Hi.Less(iv.Lo) || iv.Hi.Less(cut.Lo) {
				next = append(next, iv)
				continue
			}
			if iv.Lo.Less(cut.Lo) {
				next = append(next, Interval{Lo: iv.Lo, Hi: cut.Lo.Sub(One)})
			}
			if cut.Hi.Less(iv.Hi) {
				next = append(next, Interval{Lo: cut.Hi.Add(One), Hi: iv.Hi})
			}
		}
		res = next
	}

	return normalize(res)
}

// Narrow keeps the values of d for which "value op rhs" may hold.
func (d Domain) Narrow(op Operator, rhs Domain) Domain {
	if !d.Exist() || !rhs.Exist() {
		return Domain{}
	}

	switch op {
	case OpEQ:
		return d.Intersect(rhs)
	case OpNE:
		if rhs.IsSingleton() {
			return d.Subtract(rhs)
		}
		return d
	case OpLT:
		return d.Intersect(Range(Infimum, rhs.Max().Sub(One)))
	case OpLE:
		return d.Intersect(Range(Infimum, rhs.Max()))
	case OpGT:
		return d.Intersect(Range(rhs.Min().Add(One), Supremum))
	case OpGE:
		return d.Intersect(Range(rhs.Min(), Supremum))
	default:
		panic("missing handling for operator " + op.String())
	}
}

// Widen adds to d every value of limit for which "value op rhs" may hold.
func (d Domain) Widen(op Operator, rhs Domain, limit Domain) Domain {
	return d.Union(limit.Narrow(op, rhs))
}

// Compare tests "d op rhs" for every pair of values.
func (d Domain) Compare(op Operator, rhs Domain) Truth {
	if !d.Exist() || !rhs.Exist() {
		return Truth{}
	}

	return Truth{
		mayTrue:  d.Narrow(op, rhs).Exist(),
		mayFalse: d.Narrow(op.Negate(), rhs).Exist(),
	}
}

// Neg returns {-v | v ∈ d}.
func (d Domain) Neg() Domain {
	res := make([]Interval, 0, len(d.ivs))
	for _, iv := range d.ivs {
		res = append(res, Interval{Lo: iv.Hi.Neg(), Hi: iv.Lo.Neg()})
	}
	return normalize(res)
}

// Add returns {a + b | a ∈ d, b ∈ o}.
func (d Domain) Add(o Domain) Domain {
	return d.pairwise(o, func(a, b Interval) Interval {
		return Interval{Lo: a.Lo.Add(b.Lo), Hi: a.Hi.Add(b.Hi)}
	})
}

// Sub returns {a - b | a ∈ d, b ∈ o}.
func (d Domain) Sub(o Domain) Domain {
	return d.Add(o.Neg())
}

// Mul returns a domain containing every a * b with a ∈ d, b ∈ o.
func (d Domain) Mul(o Domain) Domain {
	return d.pairwise(o, func(a, b Interval) Interval {
		c := []Scalar{a.Lo.Mul(b.Lo), a.Lo.Mul(b.Hi), a.Hi.Mul(b.Lo), a.Hi.Mul(b.Hi)}
		return Interval{Lo: slices.MinFunc(c, Scalar.Cmp), Hi: slices.MaxFunc(c, Scalar.Cmp)}
	})
}

func (d Domain) pairwise(o Domain, f func(a, b Interval) Interval) Domain {
	if !d.Exist() || !o.Exist() {
		return Domain{}
	}

	l, r := d.ivs, o.ivs
	if len(l)*len(r) > maxPairwise {
		l, r = d.Hull().ivs, o.Hull().ivs
	}

	res := make([]Interval, 0, len(l)*len(r))
	for _, a := range l {
		for _, b := range r {
			res = append(res, f(a, b))
		}
	}
	return normalize(res)
}

// Exact applies f to the only values of two singleton domains. It reports false when
// either domain is not a singleton or when f fails.
func Exact(d, o Domain, f func(a, b Scalar) (Scalar, bool)) (Domain, bool) {
	if !d.IsSingleton() || !o.IsSingleton() {
		return Domain{}, false
	}

	v, ok := f(d.Min(), o.Min())
	if !ok {
		return Domain{}, false
	}
	return Of(v), true
}

// String renders the domain as a list of intervals, like "{[-3,0],[5,5]}".
func (d Domain) String() string {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, iv := range d.ivs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		buf.WriteString(iv.Lo.String())
		buf.WriteByte(',')
		buf.WriteString(iv.Hi.String())
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.String()
}
