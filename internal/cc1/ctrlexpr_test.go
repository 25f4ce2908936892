package cc1

import (
	"testing"

	"github.com/sirkon/cadlint/internal/syntax"
)

func TestControllingExpressionNarrowing(t *testing.T) {
	x, y := ident("x"), ident("y")

	tests := []struct {
		name    string
		expr    syntax.Expr
		wantX   string
		wantY   string
		complex bool
	}{
		{
			name:  "greater than",
			expr:  bin(">", x, lit(3)),
			wantX: "{[4,10]}",
			wantY: "{[5,20]}",
		},
		{
			name:  "negated comparison",
			expr:  not(bin(">", x, lit(3))),
			wantX: "{[-10,3]}",
			wantY: "{[5,20]}",
		},
		{
			name:  "variable on the right",
			expr:  bin("<", lit(3), x),
			wantX: "{[4,10]}",
			wantY: "{[5,20]}",
		},
		{
			name:  "bare variable",
			expr:  x,
			wantX: "{[-10,-1],[1,10]}",
			wantY: "{[5,20]}",
		},
		{
			name:  "negated variable",
			expr:  not(x),
			wantX: "{[0,0]}",
			wantY: "{[5,20]}",
		},
		{
			name:  "two variables",
			expr:  bin("==", x, y),
			wantX: "{[5,10]}",
			wantY: "{[5,10]}",
		},
		{
			name:    "conjunction",
			expr:    bin("&&", bin(">", x, lit(0)), bin("<", x, lit(5))),
			wantX:   "{[1,4]}",
			wantY:   "{[5,20]}",
			complex: true,
		},
		{
			name:    "conjunction sees narrowed operands",
			expr:    bin("&&", bin("<", y, lit(8)), bin(">", x, y)),
			wantX:   "{[6,10]}",
			wantY:   "{[5,7]}",
			complex: true,
		},
		{
			name:    "disjunction",
			expr:    bin("||", bin("<", x, &syntax.Unary{Op: "-", X: lit(5)}), bin(">", x, lit(5))),
			wantX:   "{[-10,-6],[6,10]}",
			wantY:   "{[5,20]}",
			complex: false,
		},
		{
			name:    "negated disjunction",
			expr:    not(bin("||", bin("<", x, &syntax.Unary{Op: "-", X: lit(5)}), bin(">", x, lit(5)))),
			wantX:   "{[-5,5]}",
			wantY:   "{[5,20]}",
			complex: true,
		},
		{
			name:    "disjunction over distinct variables",
			expr:    bin("||", bin(">", x, lit(0)), bin(">", y, lit(10))),
			wantX:   "{[-10,10]}",
			wantY:   "{[5,20]}",
			complex: false,
		},
		{
			name:    "negated conjunction",
			expr:    not(bin("&&", bin(">", x, &syntax.Unary{Op: "-", X: lit(5)}), bin("<", x, lit(5)))),
			wantX:   "{[-10,-5],[5,10]}",
			wantY:   "{[5,20]}",
			complex: false,
		},
		{
			name:    "disjunction with impossible operand",
			expr:    bin("||", bin(">", x, lit(100)), bin(">", y, lit(10))),
			wantX:   "{[-10,10]}",
			wantY:   "{[11,20]}",
			complex: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			vx := f.declare("x", -10, 10)
			vy := f.declare("y", 5, 20)

			f.env.BranchedEval(tt.expr, OptionNarrowing|OptionFinal, func(b *Branch) Result {
				if got := vx.Value().String(); got != tt.wantX {
					t.Errorf("x: expected %s, got %s", tt.wantX, got)
				}
				if got := vy.Value().String(); got != tt.wantY {
					t.Errorf("y: expected %s, got %s", tt.wantY, got)
				}
				if got := b.ControllingExpression().ComplexlyCompounded(); got != tt.complex {
					t.Errorf("complexly compounded: expected %v, got %v", tt.complex, got)
				}
				return Completed()
			})

			if got := vx.Value().String(); got != "{[-10,10]}" {
				t.Errorf("x must be restored after the construct, got %s", got)
			}
			f.assertBalanced(t)
		})
	}
}

func TestControllingExpressionAffectedVariables(t *testing.T) {
	f := newFixture(t)
	f.declare("x", -10, 10)
	f.declare("y", 5, 20)

	f.env.BranchedEval(bin("&&", bin(">", ident("y"), lit(6)), bin("<", ident("x"), lit(0))), OptionNarrowing|OptionFinal, func(b *Branch) Result {
		var names []string
		for _, v := range b.ControllingExpression().AffectedVariables() {
			names = append(names, v.Name())
		}
		if len(names) != 2 || names[0] != "x" || names[1] != "y" {
			t.Errorf("unexpected affected variables %v", names)
		}
		return Completed()
	})
}

func TestControllingExpressionTruth(t *testing.T) {
	tests := []struct {
		name string
		expr syntax.Expr
		want string
	}{
		{name: "always true", expr: bin(">=", ident("x"), lit(0)), want: "true"},
		{name: "always false", expr: bin(">", ident("x"), lit(10)), want: "false"},
		{name: "arbitrary", expr: bin(">", ident("x"), lit(5)), want: "arbitrary"},
		{name: "constant", expr: lit(0), want: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.declare("x", 0, 10)

			var truth string
			f.env.Subscribe(&recorder{evaluated: func(b *Branch, ce *ControllingExpression) {
				truth = ce.Truth().String()
			}})

			ran := false
			f.env.BranchedEval(tt.expr, OptionNarrowing|OptionFinal, func(b *Branch) Result {
				ran = true
				return Completed()
			})

			if truth != tt.want {
				t.Errorf("expected %s, got %s", tt.want, truth)
			}
			if tt.want == "false" && ran {
				t.Error("branch with always false condition must not be executed")
			}
			if tt.want != "false" && !ran {
				t.Error("branch must be executed")
			}
		})
	}
}
