// Package cparse builds syntax trees of C translation units out of tree-sitter parse trees.
package cparse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/sirkon/cadlint/internal/syntax"
)

// SyntaxError is a malformed or missing part of the source.
type SyntaxError struct {
	File    string
	Pos     syntax.Pos
	Text    string
	Missing bool
}

func (e *SyntaxError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s:%s: missing %s", e.File, e.Pos, e.Text)
	}
	return fmt.Sprintf("%s:%s: unexpected %q", e.File, e.Pos, e.Text)
}

// Parse parses a C source. Syntax errors are returned joined together with the tree
// built from the parts that could be recognized; each of them is a *SyntaxError.
func Parse(ctx context.Context, file string, src []byte) (*syntax.TranslationUnit, error) {
	log := slog.Default().With(slog.String("component", "cparse"), slog.String("file", file))

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	conv := &converter{
		file:     file,
		src:      src,
		typedefs: map[string]syntax.TypeName{},
	}

	tu := &syntax.TranslationUnit{
		Span: conv.span(root),
		File: file,
	}
	for _, n := range namedChildren(root) {
		tu.Decls = append(tu.Decls, conv.topLevel(n)...)
	}

	if root.HasError() {
		conv.collectErrors(root)
	}

	log.Debug("source parsed", slog.Int("declarations", len(tu.Decls)), slog.Int("errors", len(conv.errs)))
	return tu, errors.Join(conv.errs...)
}

type converter struct {
	file     string
	src      []byte
	typedefs map[string]syntax.TypeName
	errs     []error
}

func (c *converter) collectErrors(n *sitter.Node) {
	switch {
	case n.IsMissing():
		c.errs = append(c.errs, &SyntaxError{File: c.file, Pos: c.pos(n), Text: n.Type(), Missing: true})
		return
	case n.IsError():
		c.errs = append(c.errs, &SyntaxError{File: c.file, Pos: c.pos(n), Text: firstLine(n.Content(c.src))})
		return
	}

	for i := range int(n.ChildCount()) {
		ch := n.Child(i)
		if ch != nil && (ch.HasError() || ch.IsMissing()) {
			c.collectErrors(ch)
		}
	}
}

// --- Declarations ---------------------------------------------------------------------------------------------------

func (c *converter) topLevel(n *sitter.Node) []syntax.Decl {
	switch n.Type() {
	case "function_definition":
		return []syntax.Decl{c.functionDefinition(n)}
	case "declaration":
		return c.declaration(n)
	case "type_definition":
		return c.typeDefinition(n)
	default:
		return nil
	}
}

func (c *converter) functionDefinition(n *sitter.Node) *syntax.FuncDef {
	result := c.typeName(n)
	var d declarator
	c.declarator(n.ChildByFieldName("declarator"), &d)
	result.Pointers += d.pointers

	res := &syntax.FuncDef{
		Span:      c.span(n),
		Signature: c.signature(d, result),
	}
	if body := n.ChildByFieldName("body"); body != nil {
		res.Body = c.block(body)
	}
	return res
}

// declaration converts a declaration into global variables, function prototypes and
// enumerations it defines.
func (c *converter) declaration(n *sitter.Node) []syntax.Decl {
	var res []syntax.Decl
	if e := c.enumDefinition(n.ChildByFieldName("type")); e != nil {
		res = append(res, e)
	}

	stmt := &syntax.DeclStmt{Span: c.span(n)}
	typ := c.typeName(n)
	for _, dn := range fieldChildren(n, "declarator") {
		var d declarator
		c.declarator(dn, &d)
		if d.name == "" {
			continue
		}

		if d.function() {
			result := typ
			result.Pointers += d.pointers
			res = append(res, &syntax.FuncDecl{Span: c.span(dn), Signature: c.signature(d, result)})
			continue
		}

		vt := typ
		vt.Pointers += d.pointers
		v := &syntax.VarDecl{Span: c.span(dn), Name: d.name, Type: vt}
		if d.init != nil {
			v.Init = c.expr(d.init)
		}
		stmt.Vars = append(stmt.Vars, v)
	}

	if len(stmt.Vars) > 0 {
		res = append(res, stmt)
	}
	return res
}

func (c *converter) typeDefinition(n *sitter.Node) []syntax.Decl {
	var res []syntax.Decl
	if e := c.enumDefinition(n.ChildByFieldName("type")); e != nil {
		res = append(res, e)
	}

	typ := c.typeName(n)
	for _, dn := range fieldChildren(n, "declarator") {
		var d declarator
		c.declarator(dn, &d)
		if d.name == "" {
			continue
		}
		t := typ
		t.Pointers += d.pointers
		c.typedefs[d.name] = t
	}
	return res
}

func (c *converter) enumDefinition(n *sitter.Node) *syntax.EnumDecl {
	if n == nil || n.Type() != "enum_specifier" {
		return nil
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	res := &syntax.EnumDecl{Span: c.span(n), Tag: c.enumTag(n)}
	for _, en := range namedChildren(body) {
		if en.Type() != "enumerator" {
			continue
		}
		e := &syntax.Enumerator{
			Span: c.span(en),
			Name: c.text(en.ChildByFieldName("name")),
		}
		if v := en.ChildByFieldName("value"); v != nil {
			e.Value = c.expr(v)
		}
		res.Enumerators = append(res.Enumerators, e)
	}
	return res
}

func (c *converter) enumTag(n *sitter.Node) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return c.text(name)
	}
	p := c.pos(n)
	return fmt.Sprintf("<anonymous@%d:%d>", p.Line, p.Column)
}

func (c *converter) signature(d declarator, result syntax.TypeName) syntax.Signature {
	sig := syntax.Signature{
		Name:   d.name,
		Result: result,
	}
	if d.fn == nil {
		return sig
	}

	params := d.fn.ChildByFieldName("parameters")
	if params == nil {
		return sig
	}
	for _, pn := range namedChildren(params) {
		switch pn.Type() {
		case "variadic_parameter":
			sig.Variadic = true
			sig.Prototyped = true
		case "parameter_declaration":
			sig.Prototyped = true
			pt := c.typeName(pn)
			var pd declarator
			if dn := pn.ChildByFieldName("declarator"); dn != nil {
				c.declarator(dn, &pd)
			}
			pt.Pointers += pd.pointers
			if pt.Spec == "void" && pt.Pointers == 0 && pd.name == "" {
				continue
			}
			sig.Params = append(sig.Params, &syntax.Param{Span: c.span(pn), Name: pd.name, Type: pt})
		}
	}
	return sig
}

// declarator is what a declarator tells about the declared entity.
type declarator struct {
	name     string
	pointers int
	fn       *sitter.Node
	fnPtr    bool
	init     *sitter.Node
}

// function tells whether the declarator declares a function rather than a pointer to it.
func (d declarator) function() bool {
	return d.fn != nil && !d.fnPtr
}

func (c *converter) declarator(n *sitter.Node, d *declarator) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "identifier", "field_identifier", "type_identifier":
		d.name = c.text(n)
	case "pointer_declarator", "abstract_pointer_declarator", "array_declarator", "abstract_array_declarator":
		if d.fn != nil {
			d.fnPtr = true
		}
		d.pointers++
		c.declarator(n.ChildByFieldName("declarator"), d)
	case "function_declarator", "abstract_function_declarator":
		if d.fn == nil {
			d.fn = n
		}
		c.declarator(n.ChildByFieldName("declarator"), d)
	case "init_declarator":
		d.init = n.ChildByFieldName("value")
		c.declarator(n.ChildByFieldName("declarator"), d)
	case "parenthesized_declarator", "abstract_parenthesized_declarator":
		for _, ch := range namedChildren(n) {
			c.declarator(ch, d)
		}
	}
}

// typeName reads the type specifier and qualifiers of a declaration-like node.
func (c *converter) typeName(n *sitter.Node) syntax.TypeName {
	var res syntax.TypeName
	for _, ch := range namedChildren(n) {
		if ch.Type() == "type_qualifier" && c.text(ch) == "const" {
			res.Const = true
		}
	}

	tn := n.ChildByFieldName("type")
	if tn == nil {
		res.Spec = "int"
		return res
	}

	switch tn.Type() {
	case "primitive_type", "sized_type_specifier":
		res.Spec = strings.Join(strings.Fields(c.text(tn)), " ")
	case "enum_specifier":
		res.Enum = c.enumTag(tn)
	case "type_identifier":
		if td, ok := c.typedefs[c.text(tn)]; ok {
			td.Const = td.Const || res.Const
			return td
		}
		res.Spec = c.text(tn)
	default:
		res.Spec = strings.Join(strings.Fields(c.text(tn)), " ")
	}
	return res
}

func (c *converter) typeDescriptor(n *sitter.Node) syntax.TypeName {
	res := c.typeName(n)
	var d declarator
	c.declarator(n.ChildByFieldName("declarator"), &d)
	res.Pointers += d.pointers
	return res
}

// --- Statements -----------------------------------------------------------------------------------------------------

func (c *converter) block(n *sitter.Node) *syntax.Block {
	res := &syntax.Block{Span: c.span(n)}
	for _, ch := range namedChildren(n) {
		res.Items = append(res.Items, c.blockItem(ch)...)
	}
	return res
}

func (c *converter) blockItem(n *sitter.Node) []syntax.Stmt {
	switch n.Type() {
	case "declaration":
		var res []syntax.Stmt
		for _, d := range c.declaration(n) {
			if s, ok := d.(syntax.Stmt); ok {
				res = append(res, s)
			}
		}
		return res
	case "type_definition":
		var res []syntax.Stmt
		for _, d := range c.typeDefinition(n) {
			if s, ok := d.(syntax.Stmt); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if s := c.stmt(n); s != nil {
		return []syntax.Stmt{s}
	}
	return nil
}

func (c *converter) stmt(n *sitter.Node) syntax.Stmt {
	if n == nil {
		return nil
	}

	span := c.span(n)
	switch n.Type() {
	case "compound_statement":
		return c.block(n)
	case "declaration":
		items := c.blockItem(n)
		if len(items) == 1 {
			return items[0]
		}
		return &syntax.Block{Span: span, Items: items}
	case "expression_statement":
		res := &syntax.ExprStmt{Span: span}
		if ch := namedChildren(n); len(ch) > 0 {
			res.X = c.expr(ch[0])
		}
		return res
	case "if_statement":
		res := &syntax.If{
			Span: span,
			Cond: c.expr(n.ChildByFieldName("condition")),
			Then: c.stmt(n.ChildByFieldName("consequence")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				if ch := namedChildren(alt); len(ch) > 0 {
					alt = ch[0]
				}
			}
			res.Else = c.stmt(alt)
		}
		return res
	case "while_statement":
		return &syntax.While{
			Span: span,
			Cond: c.expr(n.ChildByFieldName("condition")),
			Body: c.stmt(n.ChildByFieldName("body")),
		}
	case "do_statement":
		return &syntax.DoWhile{
			Span: span,
			Body: c.stmt(n.ChildByFieldName("body")),
			Cond: c.expr(n.ChildByFieldName("condition")),
		}
	case "for_statement":
		return c.forStatement(n)
	case "switch_statement":
		res := &syntax.Switch{Span: span, Tag: c.expr(n.ChildByFieldName("condition"))}
		if body := n.ChildByFieldName("body"); body != nil && body.Type() == "compound_statement" {
			res.Body = c.block(body)
		} else {
			res.Body = &syntax.Block{Span: span}
			if s := c.stmt(body); s != nil {
				res.Body.Items = []syntax.Stmt{s}
			}
		}
		return res
	case "case_statement":
		return c.caseStatement(n)
	case "labeled_statement":
		res := &syntax.Labeled{Span: span, Label: c.text(n.ChildByFieldName("label"))}
		if ch := namedChildren(n); len(ch) > 1 {
			res.Stmt = c.stmt(ch[len(ch)-1])
		}
		return res
	case "break_statement":
		return &syntax.Break{Span: span}
	case "continue_statement":
		return &syntax.Continue{Span: span}
	case "return_statement":
		res := &syntax.Return{Span: span}
		if ch := namedChildren(n); len(ch) > 0 {
			res.X = c.expr(ch[0])
		}
		return res
	case "goto_statement":
		return &syntax.Goto{Span: span, Label: c.text(n.ChildByFieldName("label"))}
	default:
		return &syntax.ExprStmt{Span: span}
	}
}

func (c *converter) forStatement(n *sitter.Node) *syntax.For {
	res := &syntax.For{
		Span: c.span(n),
		Body: c.stmt(n.ChildByFieldName("body")),
	}

	if init := n.ChildByFieldName("initializer"); init != nil {
		if init.Type() == "declaration" {
			res.Init = c.stmt(init)
		} else {
			res.Init = &syntax.ExprStmt{Span: c.span(init), X: c.expr(init)}
		}
	}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		res.Cond = c.expr(cond)
	}

	updates := fieldChildren(n, "update")
	for _, u := range updates {
		x := c.expr(u)
		if res.Post == nil {
			res.Post = x
			continue
		}
		res.Post = &syntax.Binary{Span: c.span(u), Op: ",", X: res.Post, Y: x}
	}
	return res
}

func (c *converter) caseStatement(n *sitter.Node) *syntax.Case {
	res := &syntax.Case{Span: c.span(n)}

	value := n.ChildByFieldName("value")
	if value != nil {
		res.Value = c.expr(value)
	}
	for _, ch := range namedChildren(n) {
		if value != nil && sameNode(ch, value) {
			continue
		}
		res.Body = append(res.Body, c.blockItem(ch)...)
	}
	return res
}

// --- Expressions ----------------------------------------------------------------------------------------------------

func (c *converter) expr(n *sitter.Node) syntax.Expr {
	if n == nil {
		return &syntax.Opaque{Kind: "missing"}
	}

	span := c.span(n)
	switch n.Type() {
	case "identifier":
		name := c.text(n)
		if name == "NULL" {
			return &syntax.IntLit{Span: span, Text: name, Decimal: true}
		}
		return &syntax.Ident{Span: span, Name: name}
	case "number_literal":
		return c.number(n)
	case "char_literal":
		text := c.text(n)
		v, err := charValue(text)
		if err != nil {
			return &syntax.Opaque{Span: span, Kind: n.Type(), Text: text}
		}
		return &syntax.CharLit{Span: span, Text: text, Value: v}
	case "string_literal", "concatenated_string":
		return &syntax.StringLit{Span: span, Text: c.text(n)}
	case "true":
		return &syntax.IntLit{Span: span, Text: "true", Value: 1, Decimal: true}
	case "false", "null":
		return &syntax.IntLit{Span: span, Text: c.text(n), Decimal: true}
	case "parenthesized_expression":
		if ch := namedChildren(n); len(ch) > 0 {
			return c.expr(ch[0])
		}
	case "binary_expression":
		return &syntax.Binary{
			Span: span,
			Op:   c.operator(n),
			X:    c.expr(n.ChildByFieldName("left")),
			Y:    c.expr(n.ChildByFieldName("right")),
		}
	case "comma_expression":
		return &syntax.Binary{
			Span: span,
			Op:   ",",
			X:    c.expr(n.ChildByFieldName("left")),
			Y:    c.expr(n.ChildByFieldName("right")),
		}
	case "unary_expression", "pointer_expression":
		return &syntax.Unary{
			Span: span,
			Op:   c.operator(n),
			X:    c.expr(n.ChildByFieldName("argument")),
		}
	case "update_expression":
		op := c.operator(n)
		first := n.Child(0)
		return &syntax.IncDec{
			Span:    span,
			Op:      op,
			X:       c.expr(n.ChildByFieldName("argument")),
			Postfix: first != nil && first.Type() != op,
		}
	case "assignment_expression":
		return &syntax.Assign{
			Span: span,
			Op:   c.operator(n),
			X:    c.expr(n.ChildByFieldName("left")),
			Y:    c.expr(n.ChildByFieldName("right")),
		}
	case "conditional_expression":
		return &syntax.Conditional{
			Span: span,
			Cond: c.expr(n.ChildByFieldName("condition")),
			Then: c.expr(n.ChildByFieldName("consequence")),
			Else: c.expr(n.ChildByFieldName("alternative")),
		}
	case "call_expression":
		fn := n.ChildByFieldName("function")
		res := &syntax.Call{Span: span, Fun: c.expr(fn)}
		if id, ok := res.Fun.(*syntax.Ident); ok {
			res.Name = id.Name
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for _, a := range namedChildren(args) {
				res.Args = append(res.Args, c.expr(a))
			}
		}
		return res
	case "cast_expression":
		return &syntax.Cast{
			Span: span,
			Type: c.typeDescriptor(n.ChildByFieldName("type")),
			X:    c.expr(n.ChildByFieldName("value")),
		}
	case "sizeof_expression":
		if t := n.ChildByFieldName("type"); t != nil {
			return &syntax.Sizeof{Span: span, Type: c.typeDescriptor(t)}
		}
		return &syntax.Sizeof{Span: span, X: c.expr(n.ChildByFieldName("value"))}
	case "subscript_expression":
		return &syntax.Index{
			Span:  span,
			X:     c.expr(n.ChildByFieldName("argument")),
			Index: c.expr(n.ChildByFieldName("index")),
		}
	case "field_expression":
		op := n.ChildByFieldName("operator")
		return &syntax.Member{
			Span:  span,
			X:     c.expr(n.ChildByFieldName("argument")),
			Name:  c.text(n.ChildByFieldName("field")),
			Arrow: op != nil && op.Type() == "->",
		}
	}

	return &syntax.Opaque{Span: span, Kind: n.Type(), Text: c.text(n)}
}

func (c *converter) operator(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	return ""
}

func (c *converter) number(n *sitter.Node) syntax.Expr {
	span := c.span(n)
	text := c.text(n)

	lit, ok := parseInteger(text)
	if !ok {
		return &syntax.FloatLit{Span: span, Text: text}
	}
	lit.Span = span
	return lit
}

// parseInteger parses an integer constant with its suffixes. It reports false for
// floating constants and for integers that do not fit into 64 bits.
func parseInteger(text string) (*syntax.IntLit, bool) {
	lower := strings.ToLower(strings.ReplaceAll(text, "'", ""))
	hex := strings.HasPrefix(lower, "0x")
	if !hex && strings.ContainsAny(lower, ".e") || hex && strings.ContainsAny(lower, ".p") {
		return nil, false
	}

	body := strings.TrimRight(lower, "ul")
	suffix := lower[len(body):]

	v, err := strconv.ParseUint(body, 0, 64)
	if err != nil {
		return nil, false
	}

	return &syntax.IntLit{
		Text:     text,
		Value:    v,
		Unsigned: strings.Contains(suffix, "u"),
		Longs:    strings.Count(suffix, "l"),
		Decimal:  !strings.HasPrefix(body, "0") || body == "0",
	}, true
}

// charValue computes the value of a character constant.
func charValue(text string) (int64, error) {
	start := strings.IndexByte(text, '\'')
	end := strings.LastIndexByte(text, '\'')
	if start < 0 || end <= start {
		return 0, fmt.Errorf("malformed character constant %s", text)
	}
	body := text[start+1 : end]

	if len(body) >= 2 && body[0] == '\\' && body[1] >= '0' && body[1] <= '7' {
		v, err := strconv.ParseInt(body[1:], 8, 64)
		if err != nil {
			return 0, fmt.Errorf("parse octal escape %s: %w", text, err)
		}
		return v, nil
	}

	r, _, tail, err := strconv.UnquoteChar(body, '\'')
	if err != nil {
		return 0, fmt.Errorf("unquote %s: %w", text, err)
	}
	if tail != "" {
		return 0, fmt.Errorf("multi-character constant %s", text)
	}
	return int64(r), nil
}

// --- Helpers --------------------------------------------------------------------------------------------------------

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func (c *converter) pos(n *sitter.Node) syntax.Pos {
	p := n.StartPoint()
	return syntax.Pos{Offset: int(n.StartByte()), Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (c *converter) span(n *sitter.Node) syntax.Span {
	p := n.EndPoint()
	return syntax.Span{
		Start: c.pos(n),
		End:   syntax.Pos{Offset: int(n.EndByte()), Line: int(p.Row) + 1, Column: int(p.Column) + 1},
	}
}

// namedChildren returns named children except comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	var res []*sitter.Node
	for i := range int(n.NamedChildCount()) {
		ch := n.NamedChild(i)
		if ch == nil || ch.Type() == "comment" {
			continue
		}
		res = append(res, ch)
	}
	return res
}

// fieldChildren returns every child of n under the given field name.
func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var res []*sitter.Node
	for i := range int(n.ChildCount()) {
		if n.FieldNameForChild(i) == field {
			res = append(res, n.Child(i))
		}
	}
	return res
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
