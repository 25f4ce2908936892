package cc1

import (
	"testing"

	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/symtab"
	"github.com/sirkon/cadlint/internal/syntax"
)

// countingTable records calls of the versioning group protocol.
type countingTable struct {
	*symtab.VariableTable
	entered   int
	left      int
	raised    []bool
	rollbacks []bool
}

func (t *countingTable) ThinLatestVersion(withRollback bool) {
	t.rollbacks = append(t.rollbacks, withRollback)
	t.VariableTable.ThinLatestVersion(withRollback)
}

func (t *countingTable) EnterVersioningGroup() {
	t.entered++
	t.VariableTable.EnterVersioningGroup()
}

func (t *countingTable) LeaveVersioningGroup(raiseComplement bool) {
	t.left++
	t.raised = append(t.raised, raiseComplement)
	t.VariableTable.LeaveVersioningGroup(raiseComplement)
}

// testEvaluator evaluates identifiers, integer literals, negation, logical not,
// comparisons and logical operators.
type testEvaluator struct {
	cat  *ctype.Catalog
	vars *countingTable
}

func (ev *testEvaluator) ValueOf(e syntax.Expr, view map[*symtab.Variable]domain.Domain) symtab.Object {
	truth := func(t domain.Truth) symtab.Object {
		return symtab.Object{Type: ev.cat.Int(), Value: t.Domain()}
	}

	switch e := e.(type) {
	case *syntax.Ident:
		v := ev.vars.Lookup(e.Name)
		if v == nil {
			return symtab.Object{}
		}
		if d, ok := view[v]; ok {
			return symtab.Object{Type: v.Type(), Value: d}
		}
		return v.Object()
	case *syntax.IntLit:
		return symtab.Object{Type: ev.cat.Int(), Value: domain.Of(domain.Uint64(e.Value))}
	case *syntax.Unary:
		x := ev.ValueOf(e.X, view)
		switch e.Op {
		case "-":
			return symtab.Object{Type: x.Type, Value: x.Value.Neg()}
		case "!":
			return truth(domain.TruthOfValue(x.Value).Not())
		}
	case *syntax.Binary:
		x := ev.ValueOf(e.X, view)
		y := ev.ValueOf(e.Y, view)
		switch e.Op {
		case "&&":
			return truth(domain.TruthOfValue(x.Value).And(domain.TruthOfValue(y.Value)))
		case "||":
			return truth(domain.TruthOfValue(x.Value).Or(domain.TruthOfValue(y.Value)))
		}
		if op, ok := domain.OperatorOf(e.Op); ok {
			return truth(x.Value.Compare(op, y.Value))
		}
	}

	return symtab.Object{}
}

type fixture struct {
	cat  *ctype.Catalog
	vars *countingTable
	env  *Environment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := ctype.NewCatalog(ctype.DefaultTraits())
	if err != nil {
		t.Fatal(err)
	}

	vars := &countingTable{VariableTable: symtab.NewVariableTable()}
	env := NewEnvironment(cat, vars, symtab.NewFunctionTable(), &testEvaluator{cat: cat, vars: vars})
	return &fixture{cat: cat, vars: vars, env: env}
}

func (f *fixture) declare(name string, lo, hi int64) *symtab.Variable {
	return f.vars.Declare(name, f.cat.Int(), rng(lo, hi), false)
}

func (f *fixture) assertBalanced(t *testing.T) {
	t.Helper()

	if f.vars.entered != f.vars.left {
		t.Errorf("versioning groups entered %d times, left %d times", f.vars.entered, f.vars.left)
	}
	if depth := f.vars.VersioningDepth(); depth != 0 {
		t.Errorf("versioning groups left open: %d", depth)
	}
	if depth := f.env.Depth(); depth != 0 {
		t.Errorf("branch depth is %d after the construct", depth)
	}
}

func rng(lo, hi int64) domain.Domain {
	return domain.Range(domain.Int64(lo), domain.Int64(hi))
}

func ident(name string) syntax.Expr {
	return &syntax.Ident{Name: name}
}

func lit(v uint64) syntax.Expr {
	return &syntax.IntLit{Value: v}
}

func bin(op string, x, y syntax.Expr) syntax.Expr {
	return &syntax.Binary{Op: op, X: x, Y: y}
}

func not(x syntax.Expr) syntax.Expr {
	return &syntax.Unary{Op: "!", X: x}
}

func completed(*Branch) Result {
	return Completed()
}

func brokeWith(kind BreakKind) func(*Branch) Result {
	return func(*Branch) Result {
		return BrokeWith(kind)
	}
}
