package syntax

// Param is a function parameter. Name is empty in prototypes without names.
type Param struct {
	Span
	Name string
	Type TypeName
}

// Signature is the part shared by function declarations and definitions.
type Signature struct {
	Name       string
	Result     TypeName
	Params     []*Param
	Variadic   bool
	Prototyped bool
}

// FuncDecl declares a function without defining it.
type FuncDecl struct {
	Span
	Signature
}

// FuncDef defines a function.
type FuncDef struct {
	Span
	Signature
	Body *Block
}

// Enumerator is a member of an enumeration. Value is nil when it is implied.
type Enumerator struct {
	Span
	Name  string
	Value Expr
}

// EnumDecl declares an enumeration.
type EnumDecl struct {
	Span
	Tag         string
	Enumerators []*Enumerator
}

func (*Param) isNode()      {}
func (*FuncDecl) isNode()   {}
func (*FuncDef) isNode()    {}
func (*Enumerator) isNode() {}
func (*EnumDecl) isNode()   {}

func (*DeclStmt) isDecl() {}
func (*FuncDecl) isDecl() {}
func (*FuncDef) isDecl()  {}
func (*EnumDecl) isDecl() {}

// Enumerations may be declared at block scope as well.
func (*EnumDecl) isStmt() {}
