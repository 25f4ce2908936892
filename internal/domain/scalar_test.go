package domain

import (
	"math"
	"testing"
)

func TestScalarInt64RoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 255, -128, math.MaxInt64, math.MinInt64}

	for _, n := range tests {
		got, ok := Int64(n).Int64()
		if !ok {
			t.Fatalf("%d must fit into int64", n)
		}
		if got != n {
			t.Errorf("expected %d, got %d", n, got)
		}
	}

	if _, ok := Uint64(math.MaxUint64).Int64(); ok {
		t.Error("max uint64 must not fit into int64")
	}
}

func TestScalarArithmetic(t *testing.T) {
	type test struct {
		name string
		got  Scalar
		want string
	}

	q, _ := Int64(-7).Quo(Int64(2))
	r, _ := Int64(-7).Rem(Int64(2))

	tests := []test{
		{name: "add", got: Int64(-3).Add(Int64(5)), want: "2"},
		{name: "sub below zero", got: Int64(3).Sub(Int64(5)), want: "-2"},
		{name: "mul", got: Int64(-3).Mul(Int64(5)), want: "-15"},
		{name: "quo truncates", got: q, want: "-3"},
		{name: "rem follows dividend", got: r, want: "-1"},
		{name: "beyond uint64", got: Uint64(math.MaxUint64).Add(One), want: "18446744073709551616"},
		{name: "shr keeps sign", got: Int64(-8).Shr(1), want: "-4"},
		{name: "not", got: Int64(0).Not(), want: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got.String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseScalar(t *testing.T) {
	s, err := ParseScalar("-42")
	if err != nil {
		t.Fatal(err)
	}
	if s.Cmp(Int64(-42)) != 0 {
		t.Errorf("expected -42, got %s", s)
	}

	if _, err := ParseScalar("forty-two"); err == nil {
		t.Error("error expected for a non-numeric text")
	}
}
