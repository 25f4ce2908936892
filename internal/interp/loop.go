package interp

import (
	"slices"

	"github.com/sirkon/cadlint/internal/cc1"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/syntax"
)

// Loop bodies are run once. Before that, variables the loop changes are widened to
// every value their type holds, keeping the bound they start from when they only grow
// or only decrease.

func (in *Interpreter) whileStmt(s *syntax.While) cc1.Result {
	varying := in.widenVarying(s.Cond, s.Body)

	truth := truthOf(in.eval(s.Cond))
	for _, l := range in.listeners {
		l.ControllingExpressionValue(s, s.Cond, truth)
	}
	if truth.MustBeFalse() {
		return cc1.Completed()
	}

	org, ctrl := effectiveControl(s.Cond, s.Body, varying)
	return in.loop(s.Body, org, ctrl, truth.MustBeTrue(), func() cc1.Result {
		return in.stmt(s.Body)
	})
}

func (in *Interpreter) doWhileStmt(s *syntax.DoWhile) cc1.Result {
	varying := in.widenVarying(s.Cond, s.Body)

	org, ctrl := effectiveControl(s.Cond, s.Body, varying)
	res := in.loop(s.Body, org, ctrl, true, func() cc1.Result {
		return in.stmt(s.Body)
	})
	if res.IsReturn() {
		return res
	}

	truth := truthOf(in.eval(s.Cond))
	for _, l := range in.listeners {
		l.ControllingExpressionValue(s, s.Cond, truth)
	}
	return cc1.Completed()
}

func (in *Interpreter) forStmt(s *syntax.For) cc1.Result {
	in.enterScope()
	defer in.leaveScope()

	if s.Init != nil {
		in.stmt(s.Init)
	}

	varying := in.widenVarying(s.Cond, s.Post, s.Body)

	truth := domain.TruthOf(true, false)
	if s.Cond != nil {
		truth = truthOf(in.eval(s.Cond))
		for _, l := range in.listeners {
			l.ControllingExpressionValue(s, s.Cond, truth)
		}
	}
	if truth.MustBeFalse() {
		return cc1.Completed()
	}

	org, ctrl := effectiveControl(s.Cond, s.Body, varying)
	return in.loop(s.Body, org, ctrl, truth.MustBeTrue(), func() cc1.Result {
		res := in.stmt(s.Body)
		if !res.IsCompleted() && !res.IsContinue() {
			return res
		}
		if s.Post != nil {
			in.eval(s.Post)
		}
		return res
	})
}

// loop runs body in the branch of an iteration statement. Break and continue end the
// iteration only, return leaves the loop.
func (in *Interpreter) loop(site syntax.Stmt, org, ctrl syntax.Expr, complete bool, body func() cc1.Result) cc1.Result {
	in.loops = append(in.loops, org)
	defer func() {
		in.loops = in.loops[:len(in.loops)-1]
	}()

	opts := cc1.OptionNarrowing | cc1.OptionFinal | cc1.OptionImplicitCond | cc1.OptionIteration
	if complete {
		opts |= cc1.OptionComplete
	}

	res := in.branch(site, ctrl, opts, func(*cc1.Branch) cc1.Result {
		return body()
	})
	if res.IsReturn() {
		return res
	}
	return cc1.Completed()
}

// --- Varying variables ----------------------------------------------------------------------------------------------

type direction int

const (
	_ direction = iota
	increasing
	decreasing
)

// varying maps names of variables a loop changes to the way they change, zero when it
// is not known.
type varying struct {
	names []string
	paths map[string][]direction
}

func (v varying) add(name string, dir direction) varying {
	if v.paths == nil {
		v.paths = map[string][]direction{}
	}
	if !slices.Contains(v.names, name) {
		v.names = append(v.names, name)
	}
	if dir != 0 {
		v.paths[name] = append(v.paths[name], dir)
	}
	return v
}

func (v varying) with(o varying) varying {
	for _, name := range o.names {
		v = v.add(name, 0)
		v.paths[name] = append(v.paths[name], o.paths[name]...)
	}
	return v
}

// direction returns the prevailing direction of the variable's changes.
func (v varying) direction(name string) direction {
	var inc, dec int
	for _, d := range v.paths[name] {
		switch d {
		case increasing:
			inc++
		case decreasing:
			dec++
		}
	}

	switch {
	case inc == 0 && dec == 0:
		return 0
	case dec <= inc:
		return increasing
	default:
		return decreasing
	}
}

func (v varying) contains(name string) bool {
	return slices.Contains(v.names, name)
}

// widenVarying collects variables changed in the given nodes and widens them.
func (in *Interpreter) widenVarying(nodes ...syntax.Node) varying {
	var res varying
	for _, n := range nodes {
		res = res.with(in.varyingOf(n))
	}
	in.applyWidening(res)
	return res
}

func (in *Interpreter) applyWidening(v varying) {
	for _, name := range v.names {
		vr := in.vars.Lookup(name)
		if vr == nil {
			continue
		}

		org := vr.Value()
		value := vr.Type().Range()
		if org.Exist() {
			switch v.direction(name) {
			case increasing:
				value = value.Narrow(domain.OpGE, org)
			case decreasing:
				value = value.Narrow(domain.OpLE, org)
			}
		}
		in.vars.Assign(vr, value)
	}
}

func (in *Interpreter) varyingOf(n syntax.Node) varying {
	var res varying
	if n == nil {
		return res
	}

	syntax.Inspect(n, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Assign:
			if id, ok := n.X.(*syntax.Ident); ok {
				res = res.add(id.Name, assignDirection(id.Name, n))
			}
		case *syntax.IncDec:
			if id, ok := n.X.(*syntax.Ident); ok {
				dir := increasing
				if n.Op == "--" {
					dir = decreasing
				}
				res = res.add(id.Name, dir)
			}
		}
		return true
	})
	return res
}

func assignDirection(name string, a *syntax.Assign) direction {
	switch a.Op {
	case "+=":
		return increasing
	case "-=":
		return decreasing
	case "=":
		b, ok := a.Y.(*syntax.Binary)
		if !ok {
			return 0
		}
		if id, ok := b.X.(*syntax.Ident); !ok || id.Name != name {
			return 0
		}
		switch b.Op {
		case "+":
			return increasing
		case "-":
			return decreasing
		}
	}
	return 0
}

// --- Controlling expression -----------------------------------------------------------------------------------------

// effectiveControl picks the expression a loop is controlled by: its condition when it
// refers to a variable the loop changes, otherwise the negated condition of the first
// if statement breaking out of the loop that does. The first result is the expression
// as it is written, the second one is what the loop body is narrowed by.
func effectiveControl(cond syntax.Expr, body syntax.Stmt, v varying) (syntax.Expr, syntax.Expr) {
	if cond != nil && refersTo(cond, v) {
		return cond, cond
	}

	var org syntax.Expr
	inspectLoopBody(body, func(n syntax.Node) {
		s, ok := n.(*syntax.If)
		if !ok || org != nil || !refersTo(s.Cond, v) {
			return
		}
		if breaksLoop(s.Then) || s.Else != nil && breaksLoop(s.Else) {
			org = s.Cond
		}
	})
	if org == nil {
		return nil, nil
	}

	b := org.Bounds()
	return org, &syntax.Unary{Span: b, Op: "!", X: org}
}

func refersTo(e syntax.Expr, v varying) bool {
	found := false
	syntax.Inspect(e, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok && v.contains(id.Name) {
			found = true
		}
		return !found
	})
	return found
}

// breaksLoop tells whether the statement leaves the enclosing loop.
func breaksLoop(s syntax.Stmt) bool {
	found := false
	inspectLoopBody(s, func(n syntax.Node) {
		switch n.(type) {
		case *syntax.Break, *syntax.Return:
			found = true
		}
	})
	return found
}

// inspectLoopBody visits nodes of a loop body except the ones belonging to nested loops
// and switches.
func inspectLoopBody(s syntax.Stmt, f func(syntax.Node)) {
	if s == nil {
		return
	}

	syntax.Inspect(s, func(n syntax.Node) bool {
		if n != syntax.Node(s) {
			switch n.(type) {
			case *syntax.While, *syntax.DoWhile, *syntax.For, *syntax.Switch:
				return false
			}
		}
		f(n)
		return true
	})
}
