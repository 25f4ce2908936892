// Package syntax defines the abstract syntax of the C subset the interpreter executes.
package syntax

import "fmt"

// Pos is a location in a source file. Line and column are 1-based.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span covers a node in its source file.
type Span struct {
	Start Pos
	End   Pos
}

// Bounds returns the span itself. Nodes embed spans to implement Node.
func (s Span) Bounds() Span {
	return s
}

// Pos returns the start of the span.
func (s Span) Pos() Pos {
	return s.Start
}

// Node is an element of a syntax tree.
type Node interface {
	Bounds() Span
	Pos() Pos
	isNode()
}

// Expr is an expression.
type Expr interface {
	Node
	isExpr()
}

// Stmt is a statement.
type Stmt interface {
	Node
	isStmt()
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	isDecl()
}

// TypeName is a spelled type: specifiers like "unsigned long" or an enumeration tag,
// followed by pointer declarators.
type TypeName struct {
	Spec     string
	Enum     string
	Pointers int
	Const    bool
}

func (t TypeName) String() string {
	res := t.Spec
	if t.Enum != "" {
		res = "enum " + t.Enum
	}
	for range t.Pointers {
		res += " *"
	}
	return res
}

// TranslationUnit is a parsed source file.
type TranslationUnit struct {
	Span
	File  string
	Decls []Decl
}

func (*TranslationUnit) isNode() {}
