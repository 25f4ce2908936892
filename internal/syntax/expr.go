package syntax

// Ident refers to a variable, enumerator or function by name.
type Ident struct {
	Span
	Name string
}

// IntLit is an integer constant. Value holds the magnitude, suffixes are kept as
// flags.
type IntLit struct {
	Span
	Text     string
	Value    uint64
	Unsigned bool
	Longs    int
	Decimal  bool
}

// FloatLit is a floating constant.
type FloatLit struct {
	Span
	Text string
}

// CharLit is a character constant.
type CharLit struct {
	Span
	Text  string
	Value int64
}

// StringLit is a string literal.
type StringLit struct {
	Span
	Text string
}

// Unary is a prefix operator: - + ! ~ * &.
type Unary struct {
	Span
	Op string
	X  Expr
}

// Binary is an infix operator including comparisons, logical && and || and the comma.
type Binary struct {
	Span
	Op string
	X  Expr
	Y  Expr
}

// Assign is a simple or compound assignment.
type Assign struct {
	Span
	Op string
	X  Expr
	Y  Expr
}

// IncDec is ++ or -- in prefix or postfix form.
type IncDec struct {
	Span
	Op      string
	X       Expr
	Postfix bool
}

// Conditional is "cond ? then : else".
type Conditional struct {
	Span
	Cond Expr
	Then Expr
	Else Expr
}

// Call is a function call. Name is empty when the callee is not a plain identifier.
type Call struct {
	Span
	Name string
	Fun  Expr
	Args []Expr
}

// Cast is an explicit conversion.
type Cast struct {
	Span
	Type TypeName
	X    Expr
}

// Sizeof is sizeof applied to a type name (X is nil) or to an expression.
type Sizeof struct {
	Span
	Type TypeName
	X    Expr
}

// Index is an array subscript.
type Index struct {
	Span
	X     Expr
	Index Expr
}

// Member is a structure or union member access.
type Member struct {
	Span
	X     Expr
	Name  string
	Arrow bool
}

// Opaque is an expression the interpreter does not model. Its value is arbitrary.
type Opaque struct {
	Span
	Kind string
	Text string
}

func (*Ident) isNode()       {}
func (*IntLit) isNode()      {}
func (*FloatLit) isNode()    {}
func (*CharLit) isNode()     {}
func (*StringLit) isNode()   {}
func (*Unary) isNode()       {}
func (*Binary) isNode()      {}
func (*Assign) isNode()      {}
func (*IncDec) isNode()      {}
func (*Conditional) isNode() {}
func (*Call) isNode()        {}
func (*Cast) isNode()        {}
func (*Sizeof) isNode()      {}
func (*Index) isNode()       {}
func (*Member) isNode()      {}
func (*Opaque) isNode()      {}

func (*Ident) isExpr()       {}
func (*IntLit) isExpr()      {}
func (*FloatLit) isExpr()    {}
func (*CharLit) isExpr()     {}
func (*StringLit) isExpr()   {}
func (*Unary) isExpr()       {}
func (*Binary) isExpr()      {}
func (*Assign) isExpr()      {}
func (*IncDec) isExpr()      {}
func (*Conditional) isExpr() {}
func (*Call) isExpr()        {}
func (*Cast) isExpr()        {}
func (*Sizeof) isExpr()      {}
func (*Index) isExpr()       {}
func (*Member) isExpr()      {}
func (*Opaque) isExpr()      {}

// IsComparison tells whether the operator is one of == != < > <= >=.
func IsComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	default:
		return false
	}
}

// IsLogical tells whether the operator is && or ||.
func IsLogical(op string) bool {
	return op == "&&" || op == "||"
}
