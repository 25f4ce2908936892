package symtab

import (
	"testing"

	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
)

func rng(lo, hi int64) domain.Domain { return domain.Range(domain.Int64(lo), domain.Int64(hi)) }
func val(v int64) domain.Domain      { return domain.Of(domain.Int64(v)) }

func newTestTable(t *testing.T) (*VariableTable, *ctype.Catalog) {
	t.Helper()

	cat, err := ctype.NewCatalog(ctype.DefaultTraits())
	if err != nil {
		t.Fatal(err)
	}
	return NewVariableTable(), cat
}

func expectValue(t *testing.T, v *Variable, want string) {
	t.Helper()

	if got := v.Value().String(); got != want {
		t.Errorf("%s: expected %s, got %s", v.Name(), want, got)
	}
}

func TestVariableTableScopes(t *testing.T) {
	tab, cat := newTestTable(t)

	g := tab.Declare("x", cat.Int(), val(1), false)
	tab.EnterScope()
	l := tab.Declare("x", cat.Int(), val(2), false)
	if tab.Lookup("x") != l || l.Depth() != 1 {
		t.Fatal("inner declaration must shadow the global one")
	}
	tab.LeaveScope()
	if tab.Lookup("x") != g || g.Depth() != 0 {
		t.Fatal("global declaration must be visible again")
	}
	if tab.Lookup("y") != nil {
		t.Fatal("unknown variable must not be found")
	}
}

func TestVariableTableIfElseMerge(t *testing.T) {
	tab, cat := newTestTable(t)
	x := tab.Declare("x", cat.Int(), rng(-10, 10), false)
	y := tab.Declare("y", cat.Int(), rng(0, 100), false)

	// if (x > 0) y = 1; else y = 2;
	tab.EnterVersioningGroup()
	tab.BeginVersioning()
	tab.Narrow(x, rng(1, 10), true)
	tab.Assign(y, val(1))
	tab.EndVersioning()

	expectValue(t, x, "{[-10,10]}")
	expectValue(t, y, "{[0,100]}")

	tab.BeginVersioning()
	tab.Narrow(x, tab.Complement(x), true)
	expectValue(t, x, "{[-10,0]}")
	tab.Assign(y, val(2))
	tab.EndVersioning()
	tab.LeaveVersioningGroup(false)

	expectValue(t, x, "{[-10,10]}")
	expectValue(t, y, "{[1,2]}")
	if tab.VersioningDepth() != 0 {
		t.Fatal("versioning groups must be balanced")
	}
}

func TestVariableTableThinning(t *testing.T) {
	tab, cat := newTestTable(t)
	x := tab.Declare("x", cat.Int(), rng(-10, 10), false)

	// if (x > 0) return;
	tab.EnterVersioningGroup()
	tab.BeginVersioning()
	tab.Narrow(x, rng(1, 10), true)
	tab.ThinLatestVersion(false)
	tab.EndVersioning()
	tab.LeaveVersioningGroup(true)

	expectValue(t, x, "{[-10,0]}")
}

func TestVariableTableThinningWithRollback(t *testing.T) {
	tab, cat := newTestTable(t)
	x := tab.Declare("x", cat.Int(), rng(-10, 10), false)

	tab.EnterVersioningGroup()
	tab.BeginVersioning()
	tab.Narrow(x, rng(1, 10), true)
	tab.ThinLatestVersion(true)
	tab.EndVersioning()

	// The second branch still starts from the whole base.
	tab.BeginVersioning()
	expectValue(t, x, "{[-10,10]}")
	tab.EndVersioning()
	tab.LeaveVersioningGroup(false)

	expectValue(t, x, "{[-10,10]}")
}

func TestVariableTableIncompleteGroup(t *testing.T) {
	tab, cat := newTestTable(t)
	x := tab.Declare("x", cat.Int(), rng(-10, 10), false)

	// if (x > 0) x = 100;
	tab.EnterVersioningGroup()
	tab.BeginVersioning()
	tab.Narrow(x, rng(1, 10), true)
	tab.Assign(x, val(100))
	tab.EndVersioning()
	tab.LeaveVersioningGroup(true)

	expectValue(t, x, "{[-10,0],[100,100]}")
}

func TestVariableTableLateTouch(t *testing.T) {
	tab, cat := newTestTable(t)
	x := tab.Declare("x", cat.Int(), val(5), false)

	// The first branch does not touch x, so its outcome is the value x had on entry.
	tab.EnterVersioningGroup()
	tab.BeginVersioning()
	tab.EndVersioning()
	tab.BeginVersioning()
	tab.Assign(x, val(7))
	tab.EndVersioning()
	tab.LeaveVersioningGroup(false)

	expectValue(t, x, "{[5,5],[7,7]}")
}

func TestVariableTableNestedGroups(t *testing.T) {
	tab, cat := newTestTable(t)
	x := tab.Declare("x", cat.Int(), val(0), false)

	tab.EnterVersioningGroup()
	tab.BeginVersioning()
	{
		tab.EnterVersioningGroup()
		tab.BeginVersioning()
		tab.Assign(x, val(1))
		tab.EndVersioning()
		tab.LeaveVersioningGroup(true)
	}
	expectValue(t, x, "{[0,1]}")
	tab.EndVersioning()
	tab.LeaveVersioningGroup(true)

	expectValue(t, x, "{[0,1]}")
}

func TestVariableTableAllBranchesThinned(t *testing.T) {
	tab, cat := newTestTable(t)
	x := tab.Declare("x", cat.Int(), rng(0, 1), false)

	tab.EnterVersioningGroup()
	tab.BeginVersioning()
	tab.Narrow(x, val(0), true)
	tab.ThinLatestVersion(false)
	tab.EndVersioning()
	tab.BeginVersioning()
	tab.Narrow(x, tab.Complement(x), true)
	tab.ThinLatestVersion(false)
	tab.EndVersioning()
	tab.LeaveVersioningGroup(false)

	if x.Value().Exist() {
		t.Errorf("no path rejoins, got %s", x.Value())
	}
}

func TestVariableTableUnbalancedPanics(t *testing.T) {
	tab, _ := newTestTable(t)

	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	tab.BeginVersioning()
}

func TestFunctionTableDeclare(t *testing.T) {
	cat, err := ctype.NewCatalog(ctype.DefaultTraits())
	if err != nil {
		t.Fatal(err)
	}
	tab := NewFunctionTable()

	decl := tab.Declare(&Function{Name: "f", Result: cat.Int()})
	def := tab.Declare(&Function{
		Name:       "f",
		Result:     cat.Int(),
		Params:     []*ctype.Type{cat.Builtin(ctype.KindChar)},
		Prototyped: true,
		Defined:    true,
	})
	if decl != def {
		t.Fatal("redeclaration must update the first declaration")
	}
	if !def.Defined || !def.Prototyped || len(def.Params) != 1 {
		t.Errorf("unexpected merged function %+v", def)
	}

	tab.EnterScope()
	tab.Declare(&Function{Name: "g", Result: cat.Void()})
	if tab.Lookup("g") == nil {
		t.Fatal("block-scope function must be visible")
	}
	tab.LeaveScope()
	if tab.Lookup("g") != nil {
		t.Fatal("block-scope function must not leak")
	}
}
