package syntax

// Block is a compound statement.
type Block struct {
	Span
	Items []Stmt
}

// VarDecl declares a single variable.
type VarDecl struct {
	Span
	Name string
	Type TypeName
	Init Expr
}

// DeclStmt is a declaration of one or more variables.
type DeclStmt struct {
	Span
	Vars []*VarDecl
}

// ExprStmt is an expression statement. X is nil for a null statement.
type ExprStmt struct {
	Span
	X Expr
}

type If struct {
	Span
	Cond Expr
	Then Stmt
	Else Stmt
}

type While struct {
	Span
	Cond Expr
	Body Stmt
}

type DoWhile struct {
	Span
	Body Stmt
	Cond Expr
}

// For is a for statement. Init is a DeclStmt, an ExprStmt or nil; Cond and Post may be
// nil.
type For struct {
	Span
	Init Stmt
	Cond Expr
	Post Expr
	Body Stmt
}

type Switch struct {
	Span
	Tag  Expr
	Body *Block
}

// Case is a case label of a switch body together with the statements following it up
// to the next label. Value is nil for default.
type Case struct {
	Span
	Value Expr
	Body  []Stmt
}

// IsDefault tells whether the label is default.
func (c *Case) IsDefault() bool {
	return c.Value == nil
}

// Labeled is a statement with a goto label.
type Labeled struct {
	Span
	Label string
	Stmt  Stmt
}

type Break struct {
	Span
}

type Continue struct {
	Span
}

type Return struct {
	Span
	X Expr
}

type Goto struct {
	Span
	Label string
}

func (*Block) isNode()    {}
func (*VarDecl) isNode()  {}
func (*DeclStmt) isNode() {}
func (*ExprStmt) isNode() {}
func (*If) isNode()       {}
func (*While) isNode()    {}
func (*DoWhile) isNode()  {}
func (*For) isNode()      {}
func (*Switch) isNode()   {}
func (*Case) isNode()     {}
func (*Labeled) isNode()  {}
func (*Break) isNode()    {}
func (*Continue) isNode() {}
func (*Return) isNode()   {}
func (*Goto) isNode()     {}

func (*Block) isStmt()    {}
func (*DeclStmt) isStmt() {}
func (*ExprStmt) isStmt() {}
func (*If) isStmt()       {}
func (*While) isStmt()    {}
func (*DoWhile) isStmt()  {}
func (*For) isStmt()      {}
func (*Switch) isStmt()   {}
func (*Case) isStmt()     {}
func (*Labeled) isStmt()  {}
func (*Break) isStmt()    {}
func (*Continue) isStmt() {}
func (*Return) isStmt()   {}
func (*Goto) isStmt()     {}
