// Package spans indexes nested source spans of a translation unit by byte offset, so
// that findings can name the constructs they were found in.
package spans

import (
	"fmt"

	"github.com/sirkon/rbtree"

	"github.com/sirkon/cadlint/internal/syntax"
)

// Index holds labeled spans. Any two spans must either be disjoint or nested.
type Index struct {
	tree *rbtree.Tree[*node]
}

// New creates an empty index.
func New() *Index {
	return &Index{tree: rbtree.New[*node]()}
}

// Build indexes function definitions of the unit together with the loops and switches
// they contain.
func Build(tu *syntax.TranslationUnit) *Index {
	idx := New()
	for _, d := range tu.Decls {
		fn, ok := d.(*syntax.FuncDef)
		if !ok {
			continue
		}

		idx.Add(fn.Bounds(), fn.Name)
		syntax.Inspect(fn.Body, func(n syntax.Node) bool {
			switch n := n.(type) {
			case *syntax.While:
				idx.Add(n.Bounds(), fmt.Sprintf("while@%s", n.Pos()))
			case *syntax.DoWhile:
				idx.Add(n.Bounds(), fmt.Sprintf("do@%s", n.Pos()))
			case *syntax.For:
				idx.Add(n.Bounds(), fmt.Sprintf("for@%s", n.Pos()))
			case *syntax.Switch:
				idx.Add(n.Bounds(), fmt.Sprintf("switch@%s", n.Pos()))
			}
			return true
		})
	}
	return idx
}

// Add registers a span under the given label. Enclosing spans are to be added before the
// ones they contain. Spans partially overlapping a registered one are rejected with a panic.
func (idx *Index) Add(s syntax.Span, label string) {
	attachInto(idx.tree, &node{start: s.Start.Offset, end: s.End.Offset, label: label})
}

// Path returns labels of the spans covering the offset from the outermost to the
// innermost one.
func (idx *Index) Path(offset int) []string {
	var res []string
	key := &node{start: offset, end: offset}
	for t := idx.tree; t != nil; {
		n := t.Search(key)
		if n == nil {
			break
		}
		res = append(res, n.label)
		t = n.children
	}
	return res
}

// Innermost returns the label of the innermost span covering the offset.
func (idx *Index) Innermost(offset int) (string, bool) {
	path := idx.Path(offset)
	if len(path) == 0 {
		return "", false
	}
	return path[len(path)-1], true
}

// --- Tree nodes -----------------------------------------------------------------------------------------------------

// node is a [start,end) span with a nested tree of the spans it contains.
type node struct {
	start int
	end   int
	label string

	children *rbtree.Tree[*node]
}

// Cmp orders disjoint spans by position and reports any overlap as equality. Overlapping
// spans are nested, so equality means one contains the other.
func (n *node) Cmp(other *node) int {
	if n.end <= other.start && n.start != other.start {
		return -1
	}
	if n.start >= other.end && n.start != other.start {
		return 1
	}
	return 0
}

func contains(a, b *node) bool {
	return a.start <= b.start && a.end >= b.end
}

// attachInto inserts s into t. A span containing the overlapping node takes its place in
// the tree and gets the node as a child, a span contained in it descends into its children.
func attachInto(t *rbtree.Tree[*node], s *node) {
	r := t.InsertReturn(s)
	if r == s {
		return
	}

	switch {
	case contains(r, s):
		if r.children == nil {
			r.children = rbtree.New[*node]()
		}
		attachInto(r.children, s)
	case contains(s, r):
		old := *r
		*r = *s
		r.children = rbtree.New[*node]()
		attachInto(r.children, &old)
	default:
		panic(fmt.Errorf("span [%d,%d) %s partially overlaps [%d,%d) %s", s.start, s.end, s.label, r.start, r.end, r.label))
	}
}
