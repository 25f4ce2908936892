package domain

import (
	"testing"
)

func rng(lo, hi int64) Domain { return Range(Int64(lo), Int64(hi)) }
func val(v int64) Domain      { return Of(Int64(v)) }

func TestDomainSetOperations(t *testing.T) {
	type test struct {
		name string
		got  Domain
		want string
	}

	tests := []test{
		{
			name: "union merges adjacent",
			got:  rng(0, 4).Union(rng(5, 9)),
			want: "{[0,9]}",
		},
		{
			name: "union keeps gaps",
			got:  rng(0, 3).Union(rng(5, 9)),
			want: "{[0,3],[5,9]}",
		},
		{
			name: "intersect",
			got:  rng(0, 3).Union(rng(5, 9)).Intersect(rng(2, 6)),
			want: "{[2,3],[5,6]}",
		},
		{
			name: "subtract middle",
			got:  rng(-5, 5).Subtract(val(0)),
			want: "{[-5,-1],[1,5]}",
		},
		{
			name: "subtract everything",
			got:  rng(-5, 5).Subtract(rng(-10, 10)),
			want: "{}",
		},
		{
			name: "negation",
			got:  rng(-2, 7).Neg(),
			want: "{[-7,2]}",
		},
		{
			name: "addition",
			got:  rng(0, 3).Add(val(10)),
			want: "{[10,13]}",
		},
		{
			name: "subtraction",
			got:  rng(0, 3).Sub(rng(1, 2)),
			want: "{[-2,2]}",
		},
		{
			name: "multiplication crosses zero",
			got:  rng(-2, 3).Mul(rng(-4, 1)),
			want: "{[-12,8]}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got.String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDomainNarrow(t *testing.T) {
	tests := []struct {
		name string
		d    Domain
		op   Operator
		rhs  Domain
		want string
	}{
		{name: "gt", d: rng(-10, 10), op: OpGT, rhs: val(0), want: "{[1,10]}"},
		{name: "ge", d: rng(-10, 10), op: OpGE, rhs: val(0), want: "{[0,10]}"},
		{name: "lt against range", d: rng(-10, 10), op: OpLT, rhs: rng(3, 5), want: "{[-10,4]}"},
		{name: "le", d: rng(-10, 10), op: OpLE, rhs: val(-10), want: "{[-10,-10]}"},
		{name: "eq", d: rng(-10, 10), op: OpEQ, rhs: val(3), want: "{[3,3]}"},
		{name: "ne singleton", d: rng(0, 2), op: OpNE, rhs: val(1), want: "{[0,0],[2,2]}"},
		{name: "ne range keeps all", d: rng(0, 2), op: OpNE, rhs: rng(1, 2), want: "{[0,2]}"},
		{name: "unsatisfiable", d: rng(-5, -1), op: OpGT, rhs: val(0), want: "{}"},
		{name: "empty rhs", d: rng(-5, -1), op: OpEQ, rhs: Empty(), want: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Narrow(tt.op, tt.rhs).String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDomainWiden(t *testing.T) {
	got := val(1).Widen(OpEQ, val(2), rng(0, 255))
	if want := "{[1,2]}"; got.String() != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	got = val(0).Widen(OpGE, val(10), rng(0, 100))
	if want := "{[0,0],[10,100]}"; got.String() != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestDomainCompare(t *testing.T) {
	tests := []struct {
		name string
		d    Domain
		op   Operator
		rhs  Domain
		want string
	}{
		{name: "must be true", d: rng(1, 5), op: OpGT, rhs: val(0), want: "true"},
		{name: "must be false", d: rng(1, 5), op: OpLT, rhs: val(0), want: "false"},
		{name: "arbitrary", d: rng(-1, 5), op: OpGT, rhs: val(0), want: "arbitrary"},
		{name: "ne singletons equal", d: val(3), op: OpNE, rhs: val(3), want: "false"},
		{name: "eq singletons equal", d: val(3), op: OpEQ, rhs: val(3), want: "true"},
		{name: "empty operand", d: Empty(), op: OpEQ, rhs: val(3), want: "undefined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Compare(tt.op, tt.rhs).String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTruthOfValue(t *testing.T) {
	if !TruthOfValue(val(7)).MustBeTrue() {
		t.Error("non-zero value must be true")
	}
	if !TruthOfValue(val(0)).MustBeFalse() {
		t.Error("zero value must be false")
	}
	if got := TruthOfValue(rng(0, 1)).Domain().String(); got != "{[0,1]}" {
		t.Errorf("unexpected truth domain %s", got)
	}
	if got := TruthOfValue(rng(0, 1)).Not().And(Arbitrary()).String(); got != "arbitrary" {
		t.Errorf("unexpected combined truth %s", got)
	}
}

func TestExact(t *testing.T) {
	got, ok := Exact(val(-7), val(2), Scalar.Rem)
	if !ok || got.String() != "{[-1,-1]}" {
		t.Errorf("unexpected remainder %s (%v)", got, ok)
	}

	if _, ok := Exact(val(1), val(0), Scalar.Quo); ok {
		t.Error("division by zero must not be exact")
	}

	if _, ok := Exact(rng(1, 2), val(1), Scalar.Quo); ok {
		t.Error("non-singleton operand must not be exact")
	}
}
