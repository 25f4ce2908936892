package interp

import (
	"log/slog"

	"github.com/sirkon/cadlint/internal/cc1"
	"github.com/sirkon/cadlint/internal/domain"
	"github.com/sirkon/cadlint/internal/syntax"
)

// items runs statements in order up to the first one breaking out.
func (in *Interpreter) items(items []syntax.Stmt) cc1.Result {
	for _, s := range items {
		if res := in.stmt(s); !res.IsCompleted() {
			return res
		}
	}
	return cc1.Completed()
}

func (in *Interpreter) stmt(s syntax.Stmt) cc1.Result {
	in.pos = s.Pos()
	for _, l := range in.listeners {
		l.StatementExecuted(s)
	}

	switch s := s.(type) {
	case *syntax.Block:
		in.enterScope()
		defer in.leaveScope()
		return in.items(s.Items)
	case *syntax.DeclStmt:
		in.declare(s)
	case *syntax.EnumDecl:
		in.enum(s)
	case *syntax.ExprStmt:
		if s.X == nil {
			break
		}
		in.eval(s.X)
		if c, ok := s.X.(*syntax.Call); ok && in.noreturn[c.Name] {
			return cc1.BrokeWith(cc1.BreakKindReturn)
		}
	case *syntax.If:
		return in.ifStmt(s)
	case *syntax.While:
		return in.whileStmt(s)
	case *syntax.DoWhile:
		return in.doWhileStmt(s)
	case *syntax.For:
		return in.forStmt(s)
	case *syntax.Switch:
		return in.switchStmt(s)
	case *syntax.Case:
		// A label out of the switch body top level is run like a block.
		return in.items(s.Body)
	case *syntax.Labeled:
		return in.stmt(s.Stmt)
	case *syntax.Break:
		return cc1.BrokeWith(cc1.BreakKindBreak)
	case *syntax.Continue:
		return cc1.BrokeWith(cc1.BreakKindContinue)
	case *syntax.Return:
		return in.returnStmt(s)
	case *syntax.Goto:
		in.log.Debug("goto is not followed", slog.String("label", s.Label), slog.String("pos", s.Pos().String()))
	}
	return cc1.Completed()
}

func (in *Interpreter) returnStmt(s *syntax.Return) cc1.Result {
	if s.X != nil {
		obj := in.eval(s.X)
		if in.result != nil && !in.result.IsVoid() {
			in.convertImplicitly(s.X, obj, in.result)
		}
	}
	return cc1.BrokeWith(cc1.BreakKindReturn)
}

// condition evaluates the controlling expression of a statement and returns its truth
// along with the expression its branch is to be narrowed by. The condition a loop is
// controlled by is not narrowed again by the if statements checking it inside the loop.
func (in *Interpreter) condition(site syntax.Stmt, cond syntax.Expr) (domain.Truth, syntax.Expr) {
	if len(in.loops) > 0 && in.loops[len(in.loops)-1] == cond {
		return domain.Arbitrary(), nil
	}

	truth := truthOf(in.eval(cond))
	for _, l := range in.listeners {
		l.ControllingExpressionValue(site, cond, truth)
	}
	return truth, cond
}

func (in *Interpreter) ifStmt(s *syntax.If) cc1.Result {
	truth, ctrl := in.condition(s, s.Cond)
	then := func(*cc1.Branch) cc1.Result {
		return in.stmt(s.Then)
	}

	if s.Else == nil {
		switch {
		case truth.MustBeTrue():
			return in.branch(s.Then, ctrl, cc1.OptionNarrowing|cc1.OptionFinal|cc1.OptionImplicitCond|cc1.OptionComplete, then)
		case truth.MayBeTrue():
			return in.branch(s.Then, ctrl, cc1.OptionNarrowing|cc1.OptionFinal|cc1.OptionImplicitCond, then)
		default:
			// Closes the group of an else-if chain.
			return in.branch(s, nil, cc1.OptionNarrowing|cc1.OptionFinal, func(*cc1.Branch) cc1.Result {
				return cc1.Completed()
			})
		}
	}

	switch {
	case truth.MustBeTrue():
		return in.branch(s.Then, ctrl, cc1.OptionNarrowing|cc1.OptionFinal|cc1.OptionImplicitCond|cc1.OptionComplete, then)
	case truth.MayBeTrue():
		in.branch(s.Then, ctrl, cc1.OptionNarrowing|cc1.OptionImplicitCond, then)
	}

	if elif, ok := s.Else.(*syntax.If); ok {
		in.pos = elif.Pos()
		for _, l := range in.listeners {
			l.StatementExecuted(elif)
		}
		return in.ifStmt(elif)
	}

	opts := cc1.OptionNarrowing | cc1.OptionComplemental | cc1.OptionFinal | cc1.OptionComplete
	return in.branch(s.Else, nil, opts, func(*cc1.Branch) cc1.Result {
		return in.stmt(s.Else)
	})
}
