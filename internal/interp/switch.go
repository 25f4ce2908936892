package interp

import (
	"github.com/sirkon/cadlint/internal/cc1"
	"github.com/sirkon/cadlint/internal/syntax"
)

// switchStmt runs every case label in a branch of a single group. A label is entered with
// its controlling expression normalized into a comparison with the tag, default with the
// conjunction of the negated comparisons of all cases. Falling through to the next label
// continues in the same branch widening the tag to the values of that label.
func (in *Interpreter) switchStmt(s *syntax.Switch) cc1.Result {
	in.eval(s.Tag)

	in.enterScope()
	defer in.leaveScope()

	if s.Body == nil {
		return cc1.Completed()
	}

	sw := newSwitchBody(s)
	if len(sw.labels) == 0 {
		return cc1.Completed()
	}

	base := cc1.OptionSmotherBreak | cc1.OptionImplicitCond | cc1.OptionNarrowing
	if sw.hasDefault() {
		base |= cc1.OptionComplete
	}

	res := cc1.Completed()
	idx := sw.seek(0)
	for idx < len(sw.items) {
		label := sw.items[idx].(*syntax.Case)
		cond := sw.conds[label]

		opts := base
		if sw.isLast(label) {
			opts |= cc1.OptionFinal
		}
		truth := truthOf(in.ValueOf(cond, nil))
		if truth.MustBeTrue() {
			opts |= cc1.OptionFinal | cc1.OptionComplete
		}
		if label.IsDefault() {
			opts |= cc1.OptionComplemental
		}

		if truth.MustBeFalse() {
			res = in.branch(label, cond, opts, func(*cc1.Branch) cc1.Result {
				return cc1.Completed()
			})
			if opts.Has(cc1.OptionFinal) {
				break
			}
			idx = sw.seek(idx + 1)
			continue
		}

		idx++
		res = in.branch(label, cond, opts, func(b *cc1.Branch) cc1.Result {
			for ; idx < len(sw.items); idx++ {
				if next, ok := sw.items[idx].(*syntax.Case); ok {
					opts |= in.enterNextClause(b, next, sw.conds[next], sw.isLast(next))
					continue
				}
				if r := in.stmt(sw.items[idx]); !r.IsCompleted() {
					return r
				}
			}
			return cc1.BrokeWith(cc1.BreakKindBreak)
		})
		if opts.Has(cc1.OptionFinal) {
			break
		}
		idx = sw.seek(idx)
	}

	return res
}

// enterNextClause continues the branch of a label in the clause of the next one,
// returning options added to the branch.
func (in *Interpreter) enterNextClause(b *cc1.Branch, label *syntax.Case, cond syntax.Expr, last bool) cc1.Options {
	var added cc1.Options
	var widening *cc1.Manipulation
	b.RestartVersioning(func() {
		truth := truthOf(in.ValueOf(cond, nil))
		if truth.MustBeFalse() {
			return
		}
		if truth.MustBeTrue() {
			added |= cc1.OptionFinal | cc1.OptionComplete
		}
		widening = b.ControllingExpression().EnsureTrueByWidening(cond)
	})
	if widening != nil {
		widening.Commit()
	}

	if label.IsDefault() {
		added |= cc1.OptionComplemental
	}
	if last {
		added |= cc1.OptionFinal
	}
	b.AddOptions(added)
	return added
}

// --- Switch body ----------------------------------------------------------------------------------------------------

// switchBody is the switch body flattened into labels and the statements following them.
type switchBody struct {
	items  []syntax.Stmt
	labels []*syntax.Case
	conds  map[*syntax.Case]syntax.Expr
}

func newSwitchBody(s *syntax.Switch) *switchBody {
	sw := &switchBody{
		conds: map[*syntax.Case]syntax.Expr{},
	}
	for _, item := range s.Body.Items {
		c, ok := item.(*syntax.Case)
		if !ok {
			sw.items = append(sw.items, item)
			continue
		}
		sw.labels = append(sw.labels, c)
		sw.items = append(sw.items, c)
		sw.items = append(sw.items, c.Body...)
	}

	var def *syntax.Case
	var others syntax.Expr
	for _, c := range sw.labels {
		if c.IsDefault() {
			def = c
			continue
		}
		sw.conds[c] = &syntax.Binary{Span: c.Span, Op: "==", X: s.Tag, Y: c.Value}

		ne := &syntax.Binary{Span: c.Span, Op: "!=", X: s.Tag, Y: c.Value}
		if others == nil {
			others = ne
		} else {
			others = &syntax.Binary{Span: c.Span, Op: "&&", X: others, Y: ne}
		}
	}

	if def != nil {
		if others == nil {
			others = &syntax.Binary{Span: def.Span, Op: "==", X: s.Tag, Y: s.Tag}
		}
		sw.conds[def] = others
	}
	return sw
}

func (sw *switchBody) hasDefault() bool {
	for _, c := range sw.labels {
		if c.IsDefault() {
			return true
		}
	}
	return false
}

func (sw *switchBody) isLast(c *syntax.Case) bool {
	return sw.labels[len(sw.labels)-1] == c
}

// seek returns the index of the first label at or after i.
func (sw *switchBody) seek(i int) int {
	for ; i < len(sw.items); i++ {
		if _, ok := sw.items[i].(*syntax.Case); ok {
			return i
		}
	}
	return len(sw.items)
}
