// Package syntax builds a shallow syntax tree for Typst markup.
//
// Only the constructs needed to inspect top-level show rules are modeled in
// detail: show rules, identifiers, field accesses, function calls and their
// arguments. Everything else is kept as an opaque Expr carrying its source
// text. Comments, raw spans, math, strings and nested blocks are understood
// well enough that their contents never surface as top-level expressions.
package syntax

// Kind identifies the type of a Node.
type Kind int

const (
	KindMarkup Kind = iota
	KindShowRule
	KindFuncCall
	KindFieldAccess
	KindIdent
	KindArgs
	KindNamedArg
	KindPositionalArg
	KindSpreadArg
	KindExpr
)

var kindNames = map[Kind]string{
	KindMarkup:        "markup",
	KindShowRule:      "show-rule",
	KindFuncCall:      "func-call",
	KindFieldAccess:   "field-access",
	KindIdent:         "ident",
	KindArgs:          "args",
	KindNamedArg:      "named-arg",
	KindPositionalArg: "positional-arg",
	KindSpreadArg:     "spread-arg",
	KindExpr:          "expr",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Span is a half-open byte range into the parsed source.
type Span struct {
	Start int
	End   int
}

// Node is an element of the syntax tree.
type Node interface {
	Kind() Kind
	Span() Span
	// Text returns the source text covered by the node.
	Text() string
	Children() []Node
}

type base struct {
	span Span
	text string
}

func (b base) Span() Span   { return b.span }
func (b base) Text() string { return b.text }

// Markup is the root of a parsed file. Exprs holds the expressions embedded
// directly in the top-level markup, in source order.
type Markup struct {
	base
	Exprs  []Node
	Errors []*Error
}

func (*Markup) Kind() Kind         { return KindMarkup }
func (m *Markup) Children() []Node { return m.Exprs }

// ShowRule is `show selector: transform`. Selector is nil for `show: transform`.
type ShowRule struct {
	base
	Selector  Node
	Transform Node
}

func (*ShowRule) Kind() Kind { return KindShowRule }

func (s *ShowRule) Children() []Node {
	return nonNil(s.Selector, s.Transform)
}

// FuncCall is `callee(args)` with any trailing content blocks folded into Args.
type FuncCall struct {
	base
	Callee Node
	Args   *Args
}

func (*FuncCall) Kind() Kind { return KindFuncCall }

func (c *FuncCall) Children() []Node {
	if c.Args == nil {
		return nonNil(c.Callee)
	}
	return nonNil(c.Callee, c.Args)
}

// FieldAccess is `target.field`.
type FieldAccess struct {
	base
	Target Node
	Field  *Ident
}

func (*FieldAccess) Kind() Kind { return KindFieldAccess }

func (f *FieldAccess) Children() []Node {
	if f.Field == nil {
		return nonNil(f.Target)
	}
	return nonNil(f.Target, f.Field)
}

// Ident is an identifier.
type Ident struct {
	base
	Name string
}

func (*Ident) Kind() Kind       { return KindIdent }
func (*Ident) Children() []Node { return nil }

// Args is an argument list.
type Args struct {
	base
	Items []Node
}

func (*Args) Kind() Kind         { return KindArgs }
func (a *Args) Children() []Node { return a.Items }

// NamedArg is `name: value`.
type NamedArg struct {
	base
	Name  *Ident
	Value Node
}

func (*NamedArg) Kind() Kind { return KindNamedArg }

func (a *NamedArg) Children() []Node {
	if a.Name == nil {
		return nonNil(a.Value)
	}
	return nonNil(a.Name, a.Value)
}

// PositionalArg is a bare argument value, including trailing content blocks.
type PositionalArg struct {
	base
	Value Node
}

func (*PositionalArg) Kind() Kind         { return KindPositionalArg }
func (a *PositionalArg) Children() []Node { return nonNil(a.Value) }

// SpreadArg is `..value`.
type SpreadArg struct {
	base
	Value Node
}

func (*SpreadArg) Kind() Kind         { return KindSpreadArg }
func (a *SpreadArg) Children() []Node { return nonNil(a.Value) }

// Expr is any expression the parser does not model further. Keyword is set
// for statements introduced by a keyword such as let, set or import.
type Expr struct {
	base
	Keyword string
}

func (*Expr) Kind() Kind       { return KindExpr }
func (*Expr) Children() []Node { return nil }

func nonNil(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Walk visits n and its descendants depth-first. Children are skipped when
// visit returns false.
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, visit)
	}
}

// Filter returns the nodes of type T, preserving order.
func Filter[T Node](nodes []Node) []T {
	var out []T
	for _, n := range nodes {
		if typed, ok := n.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// OfKind collects every node of kind k reachable from root.
func OfKind(root Node, k Kind) []Node {
	var out []Node
	Walk(root, func(n Node) bool {
		if n.Kind() == k {
			out = append(out, n)
		}
		return true
	})
	return out
}
