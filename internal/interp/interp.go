// Package interp executes translation units over value domains. Statements are run
// once per function with control flow forked and merged through cc1 branches, and
// every event worth examining is passed to listeners.
package interp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sirkon/cadlint/internal/cc1"
	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/symtab"
	"github.com/sirkon/cadlint/internal/syntax"
)

// Listener receives events of the interpretation on top of branch lifecycle ones.
type Listener interface {
	cc1.Observer

	FunctionStarted(fn *syntax.FuncDef)
	FunctionEnded(fn *syntax.FuncDef)

	// StatementExecuted is called before the statement is run. Statements never passed
	// here were not reached.
	StatementExecuted(s syntax.Stmt)

	// ControllingExpressionValue reports the truth of the condition of if, while, do
	// and for statements at the moment it is evaluated.
	ControllingExpressionValue(site syntax.Stmt, expr syntax.Expr, truth domain.Truth)

	// BranchUnreachable reports a branch whose body was not run since its controlling
	// variables cannot hold values entering it. Site is the body of the branch or the
	// case label.
	BranchUnreachable(site syntax.Node)

	// ImplicitConversion reports conversions of initialization, assignment, argument
	// passing and return.
	ImplicitConversion(expr syntax.Expr, from symtab.Object, to *ctype.Type)
}

// NopListener implements Listener with methods doing nothing. Embed it to handle only
// the events of interest.
type NopListener struct{}

func (NopListener) BranchStarted(*cc1.Branch)                                           {}
func (NopListener) BranchEnded(*cc1.Branch)                                             {}
func (NopListener) ControllingExpressionEvaluated(*cc1.Branch, *cc1.ControllingExpression) {}
func (NopListener) FunctionStarted(*syntax.FuncDef)                                     {}
func (NopListener) FunctionEnded(*syntax.FuncDef)                                       {}
func (NopListener) StatementExecuted(syntax.Stmt)                                       {}
func (NopListener) ControllingExpressionValue(syntax.Stmt, syntax.Expr, domain.Truth)   {}
func (NopListener) BranchUnreachable(syntax.Node)                                       {}
func (NopListener) ImplicitConversion(syntax.Expr, symtab.Object, *ctype.Type)           {}

// AbortError is returned for a function whose interpretation ran into an inconsistent
// state. Err is the typed error raised, like *conv.ClassificationError or
// *cc1.OptionsError.
type AbortError struct {
	Func string
	Pos  syntax.Pos
	Err  error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("abort interpretation of %s at %s: %s", e.Func, e.Pos, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// Interpreter runs a single translation unit.
type Interpreter struct {
	types *ctype.Catalog
	vars  *symtab.VariableTable
	funcs *symtab.FunctionTable
	env   *cc1.Environment

	listeners []Listener

	// consts holds enumerators per scope.
	consts []map[string]symtab.Object

	fn     *syntax.FuncDef
	result *ctype.Type
	pos    syntax.Pos

	// sites are the syntax nodes of the branches being entered.
	sites []syntax.Node

	// loops are the effective controlling expressions of the loops being executed.
	loops []syntax.Expr

	noreturn map[string]bool

	log *slog.Logger
}

// New creates an interpreter with fresh symbol tables over the given type catalog.
func New(types *ctype.Catalog, listeners ...Listener) *Interpreter {
	in := &Interpreter{
		types:     types,
		vars:      symtab.NewVariableTable(),
		funcs:     symtab.NewFunctionTable(),
		listeners: listeners,
		consts:    []map[string]symtab.Object{{}},
		noreturn:  map[string]bool{},
		log:       slog.Default().With(slog.String("component", "interp")),
	}

	in.env = cc1.NewEnvironment(types, in.vars, in.funcs, in)
	in.env.Subscribe(siteObserver{in})
	for _, l := range listeners {
		in.env.Subscribe(l)
	}
	return in
}

// Variables returns the variable table of the translation unit.
func (in *Interpreter) Variables() *symtab.VariableTable {
	return in.vars
}

// Functions returns the function table of the translation unit.
func (in *Interpreter) Functions() *symtab.FunctionTable {
	return in.funcs
}

// NoReturn marks functions that never return to their callers. Statements calling them
// end the path they are executed on.
func (in *Interpreter) NoReturn(names ...string) {
	for _, name := range names {
		in.noreturn[name] = true
	}
}

// Run interprets declarations of the unit in order and the body of every function
// defined. A function aborted with an inconsistent state is reported with *AbortError
// and the rest of the unit is still interpreted.
func (in *Interpreter) Run(ctx context.Context, tu *syntax.TranslationUnit) error {
	var errs []error
	for _, d := range tu.Decls {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interpret %s: %w", tu.File, err)
		}

		switch d := d.(type) {
		case *syntax.DeclStmt:
			in.declare(d)
		case *syntax.EnumDecl:
			in.enum(d)
		case *syntax.FuncDecl:
			in.declareFunction(d.Signature, false)
		case *syntax.FuncDef:
			if err := in.function(d); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func (in *Interpreter) function(fn *syntax.FuncDef) (err error) {
	f := in.declareFunction(fn.Signature, true)

	in.fn = fn
	in.result = f.Result
	in.pos = fn.Pos()
	defer func() {
		r := recover()
		in.fn = nil
		in.result = nil
		if r == nil {
			return
		}

		cause, ok := r.(error)
		if !ok {
			cause = fmt.Errorf("%v", r)
		}
		err = &AbortError{Func: fn.Name, Pos: in.pos, Err: cause}
		in.log.Error("function aborted", slog.String("function", fn.Name), slog.Any("err", cause))

		in.env.Reset()
		in.consts = in.consts[:1]
		in.sites = nil
		in.loops = nil
	}()

	in.resetGlobals()
	in.enterScope()
	defer in.leaveScope()

	for _, p := range fn.Params {
		if p.Name == "" {
			continue
		}
		if t := in.resolve(p.Type); t != nil {
			in.vars.Declare(p.Name, t, t.Range(), p.Type.Const)
		}
	}

	for _, l := range in.listeners {
		l.FunctionStarted(fn)
	}
	in.log.Debug("function started", slog.String("function", fn.Name), slog.String("pos", fn.Pos().String()))

	in.items(fn.Body.Items)

	for _, l := range in.listeners {
		l.FunctionEnded(fn)
	}
	return nil
}

// resetGlobals makes every writable global take any value of its type: a function may
// be called in any state of the unit.
func (in *Interpreter) resetGlobals() {
	for _, v := range in.vars.Globals() {
		if !v.Readonly() {
			in.vars.Assign(v, v.Type().Range())
		}
	}
}

func (in *Interpreter) declareFunction(sig syntax.Signature, defined bool) *symtab.Function {
	f := &symtab.Function{
		Name:       sig.Name,
		Result:     in.resolve(sig.Result),
		Prototyped: sig.Prototyped,
		Variadic:   sig.Variadic,
		Defined:    defined,
	}
	for _, p := range sig.Params {
		f.Params = append(f.Params, in.resolve(p.Type))
	}
	return in.funcs.Declare(f)
}

// --- Scopes ---------------------------------------------------------------------------------------------------------

func (in *Interpreter) enterScope() {
	in.env.EnterScope()
	in.consts = append(in.consts, map[string]symtab.Object{})
}

func (in *Interpreter) leaveScope() {
	in.env.LeaveScope()
	in.consts = in.consts[:len(in.consts)-1]
}

func (in *Interpreter) constant(name string) (symtab.Object, bool) {
	for i := len(in.consts) - 1; i >= 0; i-- {
		if obj, ok := in.consts[i][name]; ok {
			return obj, true
		}
	}
	return symtab.Object{}, false
}

// --- Declarations ---------------------------------------------------------------------------------------------------

func (in *Interpreter) declare(d *syntax.DeclStmt) {
	global := in.fn == nil
	for _, vd := range d.Vars {
		t := in.resolve(vd.Type)
		if t == nil || t.IsVoid() {
			in.log.Debug("variable of unsupported type skipped", slog.String("name", vd.Name), slog.String("type", vd.Type.String()))
			if vd.Init != nil {
				in.eval(vd.Init)
			}
			continue
		}

		var value domain.Domain
		switch {
		case vd.Init != nil:
			value = in.convertImplicitly(vd.Init, in.eval(vd.Init), t).Value
		case global:
			value = domain.Of(domain.Zero)
		default:
			value = t.Range()
		}
		in.vars.Declare(vd.Name, t, value, vd.Type.Const)
	}
}

func (in *Interpreter) enum(d *syntax.EnumDecl) {
	consts := in.consts[len(in.consts)-1]
	next := domain.Zero
	var values []domain.Scalar
	for _, e := range d.Enumerators {
		if e.Value != nil {
			if obj := in.ValueOf(e.Value, nil); obj.Type != nil && obj.Value.IsSingleton() {
				next = obj.Value.Min()
			}
		}
		values = append(values, next)
		consts[e.Name] = symtab.Object{Type: in.types.Int(), Value: domain.Of(next)}
		next = next.Add(domain.One)
	}
	in.types.Enum(d.Tag, values)
}

// --- Branches -------------------------------------------------------------------------------------------------------

// branch runs body in a cc1 branch entered at the given syntax site.
func (in *Interpreter) branch(site syntax.Node, expr syntax.Expr, opts cc1.Options, body func(*cc1.Branch) cc1.Result) cc1.Result {
	in.sites = append(in.sites, site)
	defer func() {
		in.sites = in.sites[:len(in.sites)-1]
	}()

	return in.env.BranchedEval(expr, opts, body)
}

// siteObserver reports infeasible branches at the sites they were entered from.
type siteObserver struct {
	in *Interpreter
}

func (o siteObserver) BranchStarted(b *cc1.Branch) {
	o.in.log.Debug("branch started", slog.String("options", b.Options().String()), slog.Int("depth", o.in.env.Depth()))
}

func (o siteObserver) BranchEnded(b *cc1.Branch) {
	if b.Feasible() || len(o.in.sites) == 0 {
		return
	}

	site := o.in.sites[len(o.in.sites)-1]
	for _, l := range o.in.listeners {
		l.BranchUnreachable(site)
	}
}

func (o siteObserver) ControllingExpressionEvaluated(*cc1.Branch, *cc1.ControllingExpression) {}
