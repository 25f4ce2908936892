package cc1

import (
	"cmp"
	"maps"
	"slices"

	"github.com/sirkon/cadlint/internal/conv"
	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/symtab"
	"github.com/sirkon/cadlint/internal/syntax"
)

// ControllingExpression is the condition a branch is entered under. Implicit branches
// like else and default have no expression: they are entered when none of their siblings
// were.
type ControllingExpression struct {
	branch  *Branch
	expr    syntax.Expr
	truth   domain.Truth
	complex bool
	manips  []*Manipulation
}

func newControllingExpression(b *Branch, expr syntax.Expr) *ControllingExpression {
	ce := &ControllingExpression{
		branch: b,
		expr:   expr,
		truth:  domain.Arbitrary(),
	}

	if expr == nil {
		for _, sibling := range b.group.branches {
			if sibling != b && sibling.ctrlexpr != nil && sibling.ctrlexpr.expr != nil && sibling.ctrlexpr.truth.MustBeTrue() {
				ce.truth = domain.TruthOf(false, true)
				break
			}
		}
		return ce
	}

	ce.complex = conjunctive(expr, false)
	if obj := b.group.env.eval.ValueOf(expr, nil); obj.Type != nil && obj.Type.IsScalar() {
		ce.truth = domain.TruthOfValue(obj.Value)
	}
	return ce
}

// Expr returns the expression, nil for implicit branches.
func (ce *ControllingExpression) Expr() syntax.Expr { return ce.expr }

// Truth returns the truth of the expression computed before the branch was entered.
// An implicit branch is never entered after a sibling whose expression always holds.
func (ce *ControllingExpression) Truth() domain.Truth { return ce.truth }

// MustBeFalse tells whether the branch can never be entered by its condition.
func (ce *ControllingExpression) MustBeFalse() bool { return ce.truth.MustBeFalse() }

// ComplexlyCompounded tells whether the expression is a conjunction once negations are
// pushed down to comparisons: !(a || b) is one as well. Narrowings of such expressions
// are not exact. A disjunction narrows to the union of its operands exactly.
func (ce *ControllingExpression) ComplexlyCompounded() bool { return ce.complex }

// AffectedVariables returns variables narrowed or widened by the expression.
func (ce *ControllingExpression) AffectedVariables() []*symtab.Variable {
	var res []*symtab.Variable
	for _, m := range ce.manips {
		for _, v := range m.order {
			if !slices.Contains(res, v) {
				res = append(res, v)
			}
		}
	}
	return res
}

// EnsureTrueByNarrowing prepares the narrowing of controlling variables to the values
// the expression holds for. An implicit branch narrows every controlling variable of
// the group to the values its siblings did not cover.
func (ce *ControllingExpression) EnsureTrueByNarrowing() *Manipulation {
	env := ce.branch.group.env

	var m *Manipulation
	if ce.expr == nil {
		m = newManipulation(env.vars, true)
		for _, v := range ce.branch.group.AllControllingVariables() {
			m.set(v, env.vars.Complement(v))
		}
	} else {
		n := narrower{types: env.types, vars: env.vars, eval: env.eval}
		m = newManipulation(env.vars, !ce.complex)
		for v, d := range n.narrow(ce.expr, nil, false) {
			m.set(v, d)
		}
	}

	m.sort()
	ce.manips = append(ce.manips, m)
	return m
}

// EnsureTrueByWidening prepares the widening of controlling variables so that expr,
// or the branch's own expression when nil, may hold.
func (ce *ControllingExpression) EnsureTrueByWidening(expr syntax.Expr) *Manipulation {
	env := ce.branch.group.env
	if expr == nil {
		expr = ce.expr
	}

	var m *Manipulation
	if expr == nil {
		m = newManipulation(env.vars, false)
		for _, v := range ce.branch.group.AllControllingVariables() {
			m.set(v, v.Type().Range())
		}
	} else {
		view := map[*symtab.Variable]domain.Domain{}
		for _, v := range referredVariables(env.vars, expr) {
			view[v] = v.Type().Range()
		}

		n := narrower{types: env.types, vars: env.vars, eval: env.eval}
		m = newManipulation(env.vars, !conjunctive(expr, false))
		for v, d := range n.narrow(expr, view, false) {
			m.set(v, d)
		}
	}
	m.widening = true

	m.sort()
	ce.manips = append(ce.manips, m)
	return m
}

// SaveAffectedVariables remembers current values of the affected variables.
func (ce *ControllingExpression) SaveAffectedVariables() {
	for _, m := range ce.manips {
		m.save()
	}
}

// RestoreAffectedVariables assigns values remembered by SaveAffectedVariables back.
func (ce *ControllingExpression) RestoreAffectedVariables() {
	for _, m := range ce.manips {
		m.restore()
	}
}

// Manipulation is a prepared change of controlling variables values. A widening adds
// its values to the ones variables have when it is committed.
type Manipulation struct {
	vars     VariableTable
	exact    bool
	widening bool
	order    []*symtab.Variable
	values   map[*symtab.Variable]domain.Domain
	saved    map[*symtab.Variable]domain.Domain
}

func newManipulation(vars VariableTable, exact bool) *Manipulation {
	return &Manipulation{
		vars:   vars,
		exact:  exact,
		values: map[*symtab.Variable]domain.Domain{},
	}
}

func (m *Manipulation) set(v *symtab.Variable, d domain.Domain) {
	if _, ok := m.values[v]; !ok {
		m.order = append(m.order, v)
	}
	m.values[v] = d
}

func (m *Manipulation) sort() {
	slices.SortStableFunc(m.order, func(a, b *symtab.Variable) int {
		return cmp.Or(cmp.Compare(a.Name(), b.Name()), cmp.Compare(a.Depth(), b.Depth()))
	})
}

// Values returns the prepared values.
func (m *Manipulation) Values() map[*symtab.Variable]domain.Domain {
	return maps.Clone(m.values)
}

// Commit applies the prepared values.
func (m *Manipulation) Commit() {
	for _, v := range m.order {
		d := m.values[v]
		if m.widening {
			d = v.Value().Union(d)
		}
		m.vars.Narrow(v, d, m.exact)
	}
}

func (m *Manipulation) save() {
	m.saved = map[*symtab.Variable]domain.Domain{}
	for _, v := range m.order {
		m.saved[v] = v.Value()
	}
}

func (m *Manipulation) restore() {
	for _, v := range m.order {
		if d, ok := m.saved[v]; ok {
			m.vars.Assign(v, d)
		}
	}
	m.saved = nil
}

// narrower computes values of variables an expression holds for.
type narrower struct {
	types TypeCatalog
	vars  VariableTable
	eval  Evaluator
}

type constraint = map[*symtab.Variable]domain.Domain

func (n narrower) narrow(e syntax.Expr, view constraint, negated bool) constraint {
	switch e := e.(type) {
	case *syntax.Unary:
		if e.Op == "!" {
			return n.narrow(e.X, view, !negated)
		}
	case *syntax.Binary:
		switch {
		case e.Op == "&&" && !negated, e.Op == "||" && negated:
			return n.conjunction(e.X, e.Y, view, negated)
		case e.Op == "||" && !negated, e.Op == "&&" && negated:
			return n.disjunction(e.X, e.Y, view, negated)
		case syntax.IsComparison(e.Op):
			op, _ := domain.OperatorOf(e.Op)
			if negated {
				op = op.Negate()
			}
			lhs := n.eval.ValueOf(e.X, view)
			rhs := n.eval.ValueOf(e.Y, view)
			return n.compare(n.variableOf(e.X), lhs, op, n.variableOf(e.Y), rhs, view)
		case e.Op == ",":
			return n.narrow(e.Y, view, negated)
		}
	}

	obj := n.eval.ValueOf(e, view)
	if obj.Type == nil || !obj.Type.IsScalar() {
		return nil
	}
	op := domain.OpNE
	if negated {
		op = domain.OpEQ
	}
	zero := symtab.Object{Type: obj.Type, Value: domain.Of(domain.Zero)}
	return n.compare(n.variableOf(e), obj, op, nil, zero, view)
}

func (n narrower) conjunction(x, y syntax.Expr, view constraint, negated bool) constraint {
	lhs := n.narrow(x, view, negated)
	rhs := n.narrow(y, overlay(view, lhs), negated)
	return overlay(lhs, rhs)
}

func (n narrower) disjunction(x, y syntax.Expr, view constraint, negated bool) constraint {
	lhs := n.narrow(x, view, negated)
	rhs := n.narrow(y, view, negated)
	switch {
	case unsatisfiable(lhs):
		return rhs
	case unsatisfiable(rhs):
		return lhs
	}

	res := constraint{}
	for v, l := range lhs {
		if r, ok := rhs[v]; ok {
			res[v] = l.Union(r)
		}
	}
	return res
}

func (n narrower) compare(
	lv *symtab.Variable,
	lhs symtab.Object,
	op domain.Operator,
	rv *symtab.Variable,
	rhs symtab.Object,
	view constraint,
) constraint {
	if lhs.Type == nil || rhs.Type == nil {
		return nil
	}

	if lhs.Type.IsArithmetic() && rhs.Type.IsArithmetic() {
		lhs, rhs = conv.UsualArithmeticConversion(n.types, lhs, rhs)
	}

	res := constraint{}
	if lv != nil && preservesValues(lv.Type(), lhs.Type) {
		res[lv] = valueIn(view, lv).Narrow(op, rhs.Value)
	}
	if rv != nil && rv != lv && preservesValues(rv.Type(), rhs.Type) {
		res[rv] = valueIn(view, rv).Narrow(op.Mirror(), lhs.Value)
	}
	return res
}

func (n narrower) variableOf(e syntax.Expr) *symtab.Variable {
	id, ok := e.(*syntax.Ident)
	if !ok {
		return nil
	}
	return n.vars.Lookup(id.Name)
}

func preservesValues(from, to *ctype.Type) bool {
	switch {
	case from == to:
		return true
	case from.IsInteger() && to.IsInteger():
		return to.CanRepresent(from)
	case from.IsFloating() && to.IsFloating():
		return true
	default:
		return false
	}
}

func valueIn(view constraint, v *symtab.Variable) domain.Domain {
	if d, ok := view[v]; ok {
		return d
	}
	return v.Value()
}

func overlay(base, top constraint) constraint {
	res := maps.Clone(base)
	if res == nil {
		res = constraint{}
	}
	maps.Copy(res, top)
	return res
}

func unsatisfiable(c constraint) bool {
	for _, d := range c {
		if !d.Exist() {
			return true
		}
	}
	return false
}

// conjunctive tells whether e holds a logical AND, looking through negations and the
// operands of logical operators the way the narrower does.
func conjunctive(e syntax.Expr, negated bool) bool {
	switch e := e.(type) {
	case *syntax.Unary:
		if e.Op == "!" {
			return conjunctive(e.X, !negated)
		}
	case *syntax.Binary:
		switch {
		case e.Op == "&&" && !negated, e.Op == "||" && negated:
			return true
		case syntax.IsLogical(e.Op):
			return conjunctive(e.X, negated) || conjunctive(e.Y, negated)
		case e.Op == ",":
			return conjunctive(e.Y, negated)
		}
	}
	return false
}

func referredVariables(vars VariableTable, e syntax.Expr) []*symtab.Variable {
	var res []*symtab.Variable
	syntax.Inspect(e, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			if v := vars.Lookup(id.Name); v != nil && !slices.Contains(res, v) {
				res = append(res, v)
			}
		}
		return true
	})
	return res
}
