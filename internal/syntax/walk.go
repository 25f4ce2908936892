package syntax

// Inspect traverses the tree rooted at n in depth-first order. It calls f for every
// node; children are not visited when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}

	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Children returns direct descendants of the node in source order.
func Children(n Node) []Node {
	var res []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if !isNil(c) {
				res = append(res, c)
			}
		}
	}

	switch n := n.(type) {
	case *TranslationUnit:
		for _, d := range n.Decls {
			add(d)
		}
	case *FuncDef:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *FuncDecl:
		for _, p := range n.Params {
			add(p)
		}
	case *EnumDecl:
		for _, e := range n.Enumerators {
			add(e)
		}
	case *Enumerator:
		add(n.Value)

	case *Block:
		for _, s := range n.Items {
			add(s)
		}
	case *DeclStmt:
		for _, v := range n.Vars {
			add(v)
		}
	case *VarDecl:
		add(n.Init)
	case *ExprStmt:
		add(n.X)
	case *If:
		add(n.Cond, n.Then, n.Else)
	case *While:
		add(n.Cond, n.Body)
	case *DoWhile:
		add(n.Body, n.Cond)
	case *For:
		add(n.Init, n.Cond, n.Post, n.Body)
	case *Switch:
		add(n.Tag, n.Body)
	case *Case:
		add(n.Value)
		for _, s := range n.Body {
			add(s)
		}
	case *Labeled:
		add(n.Stmt)
	case *Return:
		add(n.X)

	case *Unary:
		add(n.X)
	case *Binary:
		add(n.X, n.Y)
	case *Assign:
		add(n.X, n.Y)
	case *IncDec:
		add(n.X)
	case *Conditional:
		add(n.Cond, n.Then, n.Else)
	case *Call:
		add(n.Fun)
		for _, a := range n.Args {
			add(a)
		}
	case *Cast:
		add(n.X)
	case *Sizeof:
		add(n.X)
	case *Index:
		add(n.X, n.Index)
	case *Member:
		add(n.X)
	}

	return res
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	b, ok := n.(*Block)
	return ok && b == nil
}
