package interp

import (
	"strings"

	"github.com/sirkon/cadlint/internal/conv"
	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/symtab"
	"github.com/sirkon/cadlint/internal/syntax"
)

// ValueOf computes the value of the expression without side effects and
// notifications. Variables found in view take values of the view. An object with a nil
// type means the value is unknown.
func (in *Interpreter) ValueOf(expr syntax.Expr, view map[*symtab.Variable]domain.Domain) symtab.Object {
	return evaluator{in: in, view: view, quiet: true}.expr(expr)
}

// eval computes the value of the expression applying its side effects.
func (in *Interpreter) eval(expr syntax.Expr) symtab.Object {
	return evaluator{in: in}.expr(expr)
}

// convertImplicitly converts the value of expr to the given type as initialization,
// assignment, argument passing and return do.
func (in *Interpreter) convertImplicitly(expr syntax.Expr, obj symtab.Object, to *ctype.Type) symtab.Object {
	return evaluator{in: in}.convert(expr, obj, to)
}

type evaluator struct {
	in    *Interpreter
	view  map[*symtab.Variable]domain.Domain
	quiet bool
}

func (ev evaluator) expr(e syntax.Expr) symtab.Object {
	types := ev.in.types

	switch e := e.(type) {
	case *syntax.Ident:
		return ev.ident(e)
	case *syntax.IntLit:
		return symtab.Object{Type: ev.in.intLitType(e), Value: domain.Of(domain.Uint64(e.Value))}
	case *syntax.CharLit:
		return symtab.Object{Type: types.Int(), Value: domain.Of(domain.Int64(e.Value))}
	case *syntax.FloatLit:
		return symtab.Object{Type: types.Double(), Value: types.Double().Range()}
	case *syntax.StringLit:
		p := types.PointerTo(types.Builtin(ctype.KindChar))
		return symtab.Object{Type: p, Value: nonNull(p)}
	case *syntax.Unary:
		return ev.unary(e)
	case *syntax.Binary:
		return ev.binary(e)
	case *syntax.Assign:
		return ev.assign(e)
	case *syntax.IncDec:
		return ev.incDec(e)
	case *syntax.Conditional:
		return ev.conditional(e)
	case *syntax.Call:
		return ev.call(e)
	case *syntax.Cast:
		return ev.cast(e)
	case *syntax.Sizeof:
		return ev.sizeof(e)
	case *syntax.Index:
		x := ev.expr(e.X)
		ev.expr(e.Index)
		return pointee(x)
	case *syntax.Member:
		ev.expr(e.X)
		return symtab.Object{}
	default:
		return symtab.Object{}
	}
}

func (ev evaluator) ident(e *syntax.Ident) symtab.Object {
	if v := ev.in.vars.Lookup(e.Name); v != nil {
		return symtab.Object{Type: v.Type(), Value: ev.valueOf(v)}
	}
	if obj, ok := ev.in.constant(e.Name); ok {
		return obj
	}
	if f := ev.in.funcs.Lookup(e.Name); f != nil {
		p := ev.in.types.VoidPointer()
		return symtab.Object{Type: p, Value: nonNull(p)}
	}
	return symtab.Object{}
}

func (ev evaluator) valueOf(v *symtab.Variable) domain.Domain {
	if d, ok := ev.view[v]; ok {
		return d
	}
	return v.Value()
}

func (ev evaluator) variableOf(e syntax.Expr) *symtab.Variable {
	id, ok := e.(*syntax.Ident)
	if !ok {
		return nil
	}
	return ev.in.vars.Lookup(id.Name)
}

// --- Operators ------------------------------------------------------------------------------------------------------

func (ev evaluator) unary(e *syntax.Unary) symtab.Object {
	types := ev.in.types

	switch e.Op {
	case "!":
		return ev.in.boolean(truthOf(ev.expr(e.X)).Not())
	case "*":
		return pointee(ev.expr(e.X))
	case "&":
		var t *ctype.Type
		if v := ev.variableOf(e.X); v != nil {
			t = v.Type()
		} else {
			t = ev.expr(e.X).Type
		}
		if t == nil {
			t = types.Void()
		}
		p := types.PointerTo(t)
		return symtab.Object{Type: p, Value: nonNull(p)}
	}

	x := ev.expr(e.X)
	if x.Type == nil || !x.Type.IsArithmetic() {
		return symtab.Object{}
	}
	x = conv.IntegerPromotion(types, x)
	t := x.Type

	switch e.Op {
	case "+":
		return x
	case "-":
		if t.IsFloating() {
			return symtab.Object{Type: t, Value: t.Range()}
		}
		if t.IsSigned() {
			return fit(t, x.Value.Neg())
		}
		// Unsigned negation wraps every value but zero to max + 1 - v.
		modulus := domain.Of(t.Max().Add(domain.One))
		res := modulus.Sub(x.Value.Subtract(domain.Of(domain.Zero)))
		if x.Value.Contains(domain.Zero) {
			res = res.Union(domain.Of(domain.Zero))
		}
		return fit(t, res)
	case "~":
		if !t.IsInteger() {
			return symtab.Object{}
		}
		if t.IsSigned() {
			return fit(t, x.Value.Neg().Sub(domain.Of(domain.One)))
		}
		return fit(t, domain.Of(t.Max()).Sub(x.Value))
	default:
		return symtab.Object{}
	}
}

func (ev evaluator) binary(e *syntax.Binary) symtab.Object {
	switch e.Op {
	case ",":
		ev.expr(e.X)
		return ev.expr(e.Y)
	case "&&", "||":
		return ev.logical(e)
	}

	x := ev.expr(e.X)
	y := ev.expr(e.Y)
	return ev.operate(e.Op, x, y)
}

func (ev evaluator) logical(e *syntax.Binary) symtab.Object {
	lhs := truthOf(ev.expr(e.X))
	switch {
	case e.Op == "&&" && lhs.MustBeFalse():
		return ev.in.boolean(lhs)
	case e.Op == "||" && lhs.MustBeTrue():
		return ev.in.boolean(lhs)
	}

	rhs := truthOf(ev.expr(e.Y))
	if e.Op == "&&" {
		return ev.in.boolean(lhs.And(rhs))
	}
	return ev.in.boolean(lhs.Or(rhs))
}

// operate applies a binary operator other than logical and comma ones.
func (ev evaluator) operate(op string, x, y symtab.Object) symtab.Object {
	types := ev.in.types

	if syntax.IsComparison(op) {
		if x.Type == nil || y.Type == nil {
			return ev.in.boolean(domain.Arbitrary())
		}
		if x.Type.IsArithmetic() && y.Type.IsArithmetic() {
			x, y = conv.UsualArithmeticConversion(types, x, y)
		}
		cmp, _ := domain.OperatorOf(op)
		return ev.in.boolean(x.Value.Compare(cmp, y.Value))
	}

	if x.Type == nil || y.Type == nil {
		return symtab.Object{}
	}

	switch {
	case op == "<<" || op == ">>":
		return shift(types, op, x, y)
	case x.Type.IsPointer() || y.Type.IsPointer():
		return ev.in.pointerArithmetic(op, x, y)
	case !x.Type.IsArithmetic() || !y.Type.IsArithmetic():
		return symtab.Object{}
	}

	x, y = conv.UsualArithmeticConversion(types, x, y)
	return arithmetic(op, x, y)
}

func arithmetic(op string, x, y symtab.Object) symtab.Object {
	t := x.Type
	if t.IsFloating() {
		return symtab.Object{Type: t, Value: t.Range()}
	}

	var res domain.Domain
	switch op {
	case "+":
		res = x.Value.Add(y.Value)
	case "-":
		res = x.Value.Sub(y.Value)
	case "*":
		res = x.Value.Mul(y.Value)
	case "/":
		res = quotient(t, x.Value, y.Value)
	case "%":
		res = remainder(t, x.Value, y.Value)
	case "&", "|", "^":
		res = bitwise(t, op, x.Value, y.Value)
	default:
		return symtab.Object{}
	}
	return fit(t, res)
}

func quotient(t *ctype.Type, x, y domain.Domain) domain.Domain {
	if d, ok := domain.Exact(x, y, domain.Scalar.Quo); ok {
		return d
	}
	if !x.Exist() || !y.Exist() || y.Hull().Contains(domain.Zero) {
		return t.Range()
	}

	// Truncating division is monotonic in each operand when the divisor keeps its sign.
	var res domain.Domain
	for _, a := range []domain.Scalar{x.Min(), x.Max()} {
		for _, b := range []domain.Scalar{y.Min(), y.Max()} {
			q, _ := a.Quo(b)
			res = res.Union(domain.Of(q))
		}
	}
	return res.Hull()
}

func remainder(t *ctype.Type, x, y domain.Domain) domain.Domain {
	if d, ok := domain.Exact(x, y, domain.Scalar.Rem); ok {
		return d
	}
	if !x.Exist() || !y.Exist() || y.Contains(domain.Zero) || x.Min().Sign() < 0 {
		return t.Range()
	}

	m := domain.MaxScalar(y.Max(), y.Min().Neg())
	return domain.Range(domain.Zero, domain.MinScalar(m.Sub(domain.One), x.Max()))
}

func bitwise(t *ctype.Type, op string, x, y domain.Domain) domain.Domain {
	f := map[string]func(a, b domain.Scalar) domain.Scalar{
		"&": domain.Scalar.And,
		"|": domain.Scalar.Or,
		"^": domain.Scalar.Xor,
	}[op]
	if d, ok := domain.Exact(x, y, func(a, b domain.Scalar) (domain.Scalar, bool) { return f(a, b), true }); ok {
		return d
	}

	if op == "&" && x.Exist() && y.Exist() && x.Min().Sign() >= 0 && y.Min().Sign() >= 0 {
		return domain.Range(domain.Zero, domain.MinScalar(x.Max(), y.Max()))
	}
	return t.Range()
}

func shift(types *ctype.Catalog, op string, x, y symtab.Object) symtab.Object {
	if !x.Type.IsInteger() || !y.Type.IsInteger() {
		return symtab.Object{}
	}

	x = conv.IntegerPromotion(types, x)
	t := x.Type
	if !x.Value.IsSingleton() || !y.Value.IsSingleton() {
		return symtab.Object{Type: t, Value: t.Range()}
	}

	n, ok := y.Value.Min().Int64()
	if !ok || n < 0 || n >= int64(t.Bits()) {
		return symtab.Object{Type: t, Value: t.Range()}
	}

	v := x.Value.Min()
	if op == "<<" {
		return fit(t, domain.Of(v.Shl(uint(n))))
	}
	return fit(t, domain.Of(v.Shr(uint(n))))
}

func (in *Interpreter) pointerArithmetic(op string, x, y symtab.Object) symtab.Object {
	switch {
	case x.Type.IsPointer() && y.Type.IsPointer() && op == "-":
		t := in.types.Builtin(ctype.KindLong)
		return symtab.Object{Type: t, Value: t.Range()}
	case x.Type.IsPointer() && y.Type.IsInteger() && (op == "+" || op == "-"):
		return symtab.Object{Type: x.Type, Value: x.Value}
	case x.Type.IsInteger() && y.Type.IsPointer() && op == "+":
		return symtab.Object{Type: y.Type, Value: y.Value}
	default:
		return symtab.Object{}
	}
}

// --- Side effects ---------------------------------------------------------------------------------------------------

func (ev evaluator) assign(e *syntax.Assign) symtab.Object {
	rhs := ev.expr(e.Y)

	v := ev.variableOf(e.X)
	if v == nil {
		lhs := ev.expr(e.X)
		if lhs.Type == nil {
			return rhs
		}
		return ev.convert(e.Y, rhs, lhs.Type)
	}

	if op := strings.TrimSuffix(e.Op, "="); op != "" {
		rhs = ev.operate(op, symtab.Object{Type: v.Type(), Value: ev.valueOf(v)}, rhs)
	}

	res := ev.convert(e.Y, rhs, v.Type())
	if !ev.quiet {
		ev.in.vars.Assign(v, res.Value)
	}
	return res
}

func (ev evaluator) incDec(e *syntax.IncDec) symtab.Object {
	v := ev.variableOf(e.X)
	if v == nil {
		ev.expr(e.X)
		return symtab.Object{}
	}

	cur := symtab.Object{Type: v.Type(), Value: ev.valueOf(v)}
	next := cur
	if !v.Type().IsPointer() {
		next = cast(ev.operate(e.Op[:1], cur, ev.in.one()), v.Type())
	}

	if !ev.quiet {
		ev.in.vars.Assign(v, next.Value)
	}
	if e.Postfix {
		return cur
	}
	return next
}

func (ev evaluator) conditional(e *syntax.Conditional) symtab.Object {
	cond := truthOf(ev.expr(e.Cond))
	switch {
	case cond.MustBeTrue():
		return ev.expr(e.Then)
	case cond.MustBeFalse():
		return ev.expr(e.Else)
	}

	a := ev.expr(e.Then)
	b := ev.expr(e.Else)
	switch {
	case a.Type == nil || b.Type == nil:
		return symtab.Object{}
	case a.Type.IsArithmetic() && b.Type.IsArithmetic():
		a, b = conv.UsualArithmeticConversion(ev.in.types, a, b)
		return symtab.Object{Type: a.Type, Value: a.Value.Union(b.Value)}
	case a.Type == b.Type:
		return symtab.Object{Type: a.Type, Value: a.Value.Union(b.Value)}
	default:
		return symtab.Object{Type: a.Type, Value: a.Type.Range()}
	}
}

func (ev evaluator) call(e *syntax.Call) symtab.Object {
	var f *symtab.Function
	if e.Name != "" {
		f = ev.in.funcs.Lookup(e.Name)
	} else {
		ev.expr(e.Fun)
	}

	for i, a := range e.Args {
		obj := ev.expr(a)
		switch {
		case f != nil && f.Prototyped && i < len(f.Params) && f.Params[i] != nil:
			ev.convert(a, obj, f.Params[i])
		case obj.Type != nil && obj.Type.IsArithmetic():
			// Arguments without a prototyped parameter.
			ev.convert(a, obj, conv.DefaultArgumentPromotion(ev.in.types, obj).Type)
		}
	}

	// Calls of undeclared functions return int.
	res := ev.in.types.Int()
	if f != nil {
		res = f.Result
	}
	if res == nil {
		return symtab.Object{}
	}
	return symtab.Object{Type: res, Value: res.Range()}
}

func (ev evaluator) cast(e *syntax.Cast) symtab.Object {
	x := ev.expr(e.X)
	to := ev.in.resolve(e.Type)
	switch {
	case to == nil:
		return symtab.Object{}
	case x.Type == nil:
		return symtab.Object{Type: to, Value: to.Range()}
	default:
		return cast(x, to)
	}
}

func (ev evaluator) sizeof(e *syntax.Sizeof) symtab.Object {
	size := ev.in.types.Builtin(ctype.KindUnsignedLong)

	var t *ctype.Type
	if e.X != nil {
		t = ev.in.ValueOf(e.X, ev.view).Type
	} else {
		t = ev.in.resolve(e.Type)
	}
	if t == nil {
		return symtab.Object{Type: size, Value: domain.Range(domain.One, size.Max())}
	}
	return symtab.Object{Type: size, Value: domain.Of(domain.Int64(int64(ev.in.types.SizeOf(t))))}
}

// convert converts obj to the type of an object it initializes or is assigned to.
func (ev evaluator) convert(e syntax.Expr, obj symtab.Object, to *ctype.Type) symtab.Object {
	switch {
	case to == nil:
		return obj
	case obj.Type == nil:
		return symtab.Object{Type: to, Value: to.Range()}
	case obj.Type == to:
		return obj
	}

	if !ev.quiet {
		for _, l := range ev.in.listeners {
			l.ImplicitConversion(e, obj, to)
		}
	}
	return cast(obj, to)
}

// --- Helpers --------------------------------------------------------------------------------------------------------

func (in *Interpreter) boolean(t domain.Truth) symtab.Object {
	return symtab.Object{Type: in.types.Int(), Value: t.Domain()}
}

func (in *Interpreter) one() symtab.Object {
	return symtab.Object{Type: in.types.Int(), Value: domain.Of(domain.One)}
}

func truthOf(obj symtab.Object) domain.Truth {
	if obj.Type == nil || !obj.Type.IsScalar() || !obj.Value.Exist() {
		return domain.Arbitrary()
	}
	return domain.TruthOfValue(obj.Value)
}

// fit bounds the result of an operation by the values of its type. Unsigned results
// wrap around, which is approximated with the whole range.
func fit(t *ctype.Type, d domain.Domain) symtab.Object {
	r := d.Intersect(t.Range())
	if !r.Equal(d) && (t.IsUnsigned() || !r.Exist()) {
		r = t.Range()
	}
	return symtab.Object{Type: t, Value: r}
}

func cast(obj symtab.Object, to *ctype.Type) symtab.Object {
	if to.IsVoid() {
		return symtab.Object{Type: to, Value: domain.Empty()}
	}
	if res, ok := conv.Convert(obj, to); ok {
		return res
	}
	return symtab.Object{Type: to, Value: to.Range()}
}

func pointee(p symtab.Object) symtab.Object {
	if p.Type == nil || !p.Type.IsPointer() || !p.Type.Elem().IsScalar() {
		return symtab.Object{}
	}
	return symtab.Object{Type: p.Type.Elem(), Value: p.Type.Elem().Range()}
}

func nonNull(p *ctype.Type) domain.Domain {
	return domain.Range(domain.One, p.Max())
}
