package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error describes a problem found while parsing. Parse keeps going after
// most errors, so they are reported on Markup.Errors rather than returned.
type Error struct {
	Offset  int
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

var statementKeywords = map[string]struct{}{
	"let":      {},
	"set":      {},
	"import":   {},
	"include":  {},
	"if":       {},
	"for":      {},
	"while":    {},
	"break":    {},
	"continue": {},
	"return":   {},
	"context":  {},
}

// Parse parses src as Typst markup. The only fatal error is source that is
// not valid UTF-8.
func Parse(src string) (*Markup, error) {
	if !utf8.ValidString(src) {
		off := firstInvalid(src)
		return nil, &Error{Offset: off, Line: lineOf(src, off), Message: "source is not valid UTF-8"}
	}

	p := &parser{src: src}
	return p.markup(), nil
}

type parser struct {
	src    string
	pos    int
	errors []*Error
}

func (p *parser) markup() *Markup {
	m := &Markup{}
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			p.skipEscape()
		case p.at("//") && !p.inLink():
			p.skipLineComment()
		case p.at("/*"):
			p.skipBlockComment()
		case c == '`':
			p.skipRaw()
		case c == '$':
			p.skipMath()
		case c == '#':
			if node := p.embedded(); node != nil {
				m.Exprs = append(m.Exprs, node)
			}
		default:
			p.pos++
		}
	}
	m.base = base{span: Span{Start: 0, End: len(p.src)}, text: p.src}
	m.Errors = p.errors
	return m
}

// embedded parses the expression following a '#'. It returns nil when the
// hash does not start an expression.
func (p *parser) embedded() Node {
	hash := p.pos
	p.pos++
	if p.eof() {
		return nil
	}

	switch c := p.src[p.pos]; {
	case p.identStart(p.pos):
		start := p.pos
		name := p.ident()
		if name == "show" {
			return p.showRule(start)
		}
		if _, ok := statementKeywords[name]; ok {
			p.skipStatement()
			return &Expr{base: p.baseFrom(start), Keyword: name}
		}
		p.pos = start
		return p.chain()
	case c == '{':
		start := p.pos
		p.pos++
		p.skipCode('}')
		return &Expr{base: p.baseFrom(start)}
	case c == '[':
		start := p.pos
		p.pos++
		p.skipMarkup(']')
		return &Expr{base: p.baseFrom(start)}
	case c == '(':
		start := p.pos
		p.pos++
		p.skipCode(')')
		return &Expr{base: p.baseFrom(start)}
	case c == '"':
		start := p.pos
		p.skipString()
		return &Expr{base: p.baseFrom(start)}
	default:
		p.pos = hash + 1
		return nil
	}
}

// showRule parses the remainder of a show rule; start points at the keyword.
func (p *parser) showRule(start int) Node {
	rule := &ShowRule{}

	p.skipSpace()
	if p.peek() != ':' {
		selStart := p.pos
		end := p.scan(func(c byte) bool { return c == ':' || c == '\n' || c == ';' })
		if end > selStart {
			rule.Selector = p.valueNode(selStart, end)
		}
		if p.peek() != ':' {
			p.errorf(p.pos, "expected colon after show rule selector")
			rule.base = p.baseFrom(start)
			return rule
		}
	}
	p.pos++
	p.skipSpace()

	tStart := p.pos
	var transform Node
	if p.identStart(p.pos) {
		transform = p.chain()
	}
	chainEnd := p.pos
	end := p.scan(isStatementEnd)
	if transform == nil || end > chainEnd {
		if end > tStart {
			transform = &Expr{base: base{span: Span{Start: tStart, End: end}, text: p.src[tStart:end]}}
		} else {
			p.errorf(tStart, "expected transform in show rule")
		}
	}
	rule.Transform = transform
	if p.peek() == ';' {
		p.pos++
	}

	rule.base = base{span: Span{Start: start, End: p.pos}, text: strings.TrimSpace(p.src[start:p.pos])}
	return rule
}

// chain parses an identifier followed by field accesses, calls and trailing
// content blocks.
func (p *parser) chain() Node {
	start := p.pos
	name := p.ident()
	var node Node = &Ident{base: p.baseFrom(start), Name: name}

	for !p.eof() {
		switch p.src[p.pos] {
		case '.':
			if !p.identStart(p.pos + 1) {
				return node
			}
			p.pos++
			fieldStart := p.pos
			field := p.ident()
			node = &FieldAccess{
				base:   p.baseFrom(start),
				Target: node,
				Field:  &Ident{base: p.baseFrom(fieldStart), Name: field},
			}
		case '(':
			args := p.args()
			p.trailingContent(args)
			node = &FuncCall{base: p.baseFrom(start), Callee: node, Args: args}
		case '[':
			args := &Args{base: base{span: Span{Start: p.pos, End: p.pos}}}
			p.trailingContent(args)
			node = &FuncCall{base: p.baseFrom(start), Callee: node, Args: args}
		default:
			return node
		}
	}
	return node
}

func (p *parser) trailingContent(args *Args) {
	for p.peek() == '[' {
		start := p.pos
		p.pos++
		p.skipMarkup(']')
		block := &Expr{base: p.baseFrom(start)}
		args.Items = append(args.Items, &PositionalArg{base: block.base, Value: block})
	}
	args.base = p.baseFrom(args.span.Start)
}

func (p *parser) args() *Args {
	start := p.pos
	p.pos++
	args := &Args{}

	for {
		p.skipTrivia()
		if p.eof() {
			p.errorf(start, "unclosed argument list")
			break
		}
		c := p.src[p.pos]
		if c == ')' {
			p.pos++
			break
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == ']' || c == '}' {
			p.errorf(p.pos, "unexpected %q in argument list", c)
			break
		}
		before := p.pos
		args.Items = append(args.Items, p.arg())
		if p.pos == before {
			p.errorf(p.pos, "unexpected %q in argument list", c)
			p.pos++
		}
	}

	args.base = p.baseFrom(start)
	return args
}

func (p *parser) arg() Node {
	start := p.pos
	if p.at("..") {
		p.pos += 2
		value := p.argValue()
		return &SpreadArg{base: p.baseFrom(start), Value: value}
	}

	if p.identStart(p.pos) {
		name := p.ident()
		nameNode := &Ident{base: p.baseFrom(start), Name: name}
		p.skipTrivia()
		if p.peek() == ':' {
			p.pos++
			p.skipTrivia()
			value := p.argValue()
			return &NamedArg{base: p.baseFrom(start), Name: nameNode, Value: value}
		}
		p.pos = start
	}

	value := p.argValue()
	return &PositionalArg{base: p.baseFrom(start), Value: value}
}

func (p *parser) argValue() Node {
	start := p.pos
	end := p.scan(func(c byte) bool { return c == ',' || c == ')' })
	if end <= start {
		return nil
	}
	return p.valueNode(start, end)
}

// valueNode models src[start:end] as a chain when it is exactly one, and as
// an opaque Expr otherwise.
func (p *parser) valueNode(start, end int) Node {
	if p.identStart(start) {
		sub := &parser{src: p.src[:end], pos: start}
		node := sub.chain()
		if sub.pos == end && len(sub.errors) == 0 {
			return node
		}
	}
	return &Expr{base: base{span: Span{Start: start, End: end}, text: p.src[start:end]}}
}

// scan advances through code until stop matches a byte at nesting depth zero,
// an unmatched closing delimiter is found, or the input ends. It returns the
// offset just past the last byte that is not whitespace or a comment.
func (p *parser) scan(stop func(c byte) bool) int {
	last := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if stop(c) {
			return last
		}
		switch {
		case c == '(':
			p.pos++
			p.skipCode(')')
		case c == '{':
			p.pos++
			p.skipCode('}')
		case c == '[':
			p.pos++
			p.skipMarkup(']')
		case c == '"':
			p.skipString()
		case p.at("//"):
			p.skipLineComment()
			continue
		case p.at("/*"):
			p.skipBlockComment()
			continue
		case isSpace(c):
			p.pos++
			continue
		case c == ')' || c == '}' || c == ']':
			return last
		default:
			p.pos++
		}
		last = p.pos
	}
	return last
}

func (p *parser) skipCode(closer byte) {
	open := p.pos - 1
	p.scan(func(c byte) bool { return c == closer })
	if p.eof() {
		p.errorf(open, "unclosed delimiter, expected %q", closer)
		return
	}
	if p.src[p.pos] == closer {
		p.pos++
		return
	}
	p.errorf(p.pos, "mismatched delimiter %q, expected %q", p.src[p.pos], closer)
}

func (p *parser) skipMarkup(closer byte) {
	open := p.pos - 1
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == closer:
			p.pos++
			return
		case c == '[':
			p.pos++
			p.skipMarkup(']')
		case c == '\\':
			p.skipEscape()
		case p.at("//") && !p.inLink():
			p.skipLineComment()
		case p.at("/*"):
			p.skipBlockComment()
		case c == '`':
			p.skipRaw()
		case c == '$':
			p.skipMath()
		case c == '#':
			p.embedded()
		default:
			p.pos++
		}
	}
	p.errorf(open, "unclosed content block")
}

func (p *parser) skipStatement() {
	p.scan(isStatementEnd)
	if p.peek() == ';' {
		p.pos++
	}
}

func (p *parser) skipString() {
	open := p.pos
	p.pos++
	for !p.eof() {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			p.pos++
			return
		default:
			p.pos++
		}
	}
	p.pos = len(p.src)
	p.errorf(open, "unclosed string")
}

func (p *parser) skipEscape() {
	p.pos++
	if p.eof() {
		return
	}
	_, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
}

func (p *parser) skipLineComment() {
	if idx := strings.IndexByte(p.src[p.pos:], '\n'); idx >= 0 {
		p.pos += idx
		return
	}
	p.pos = len(p.src)
}

func (p *parser) skipBlockComment() {
	open := p.pos
	p.pos += 2
	depth := 1
	for !p.eof() {
		switch {
		case p.at("/*"):
			depth++
			p.pos += 2
		case p.at("*/"):
			depth--
			p.pos += 2
			if depth == 0 {
				return
			}
		default:
			p.pos++
		}
	}
	p.errorf(open, "unclosed block comment")
}

func (p *parser) skipRaw() {
	open := p.pos
	n := 0
	for !p.eof() && p.src[p.pos] == '`' {
		n++
		p.pos++
	}
	if n == 2 {
		return
	}
	fence := strings.Repeat("`", n)
	idx := strings.Index(p.src[p.pos:], fence)
	if idx < 0 {
		p.pos = len(p.src)
		p.errorf(open, "unclosed raw text")
		return
	}
	p.pos += idx + n
}

func (p *parser) skipMath() {
	open := p.pos
	p.pos++
	for !p.eof() {
		switch p.src[p.pos] {
		case '\\':
			p.skipEscape()
		case '$':
			p.pos++
			return
		default:
			p.pos++
		}
	}
	p.errorf(open, "unclosed equation")
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) skipTrivia() {
	for !p.eof() {
		switch {
		case isSpace(p.src[p.pos]):
			p.pos++
		case p.at("//"):
			p.skipLineComment()
		case p.at("/*"):
			p.skipBlockComment()
		default:
			return
		}
	}
}

func (p *parser) ident() string {
	start := p.pos
	if !p.identStart(p.pos) {
		return ""
	}
	_, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isIdentContinue(r) {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *parser) identStart(at int) bool {
	if at >= len(p.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(p.src[at:])
	return unicode.IsLetter(r) || r == '_'
}

// inLink reports whether a "//" at the current position belongs to a URL
// such as https://example.com rather than starting a comment.
func (p *parser) inLink() bool {
	before := p.src[:p.pos]
	return strings.HasSuffix(before, "http:") || strings.HasSuffix(before, "https:")
}

func (p *parser) baseFrom(start int) base {
	return base{span: Span{Start: start, End: p.pos}, text: p.src[start:p.pos]}
}

func (p *parser) errorf(offset int, format string, args ...any) {
	p.errors = append(p.errors, &Error{
		Offset:  offset,
		Line:    lineOf(p.src, offset),
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) at(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func isStatementEnd(c byte) bool {
	return c == '\n' || c == ';'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isIdentContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

func lineOf(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return strings.Count(src[:offset], "\n") + 1
}

func firstInvalid(src string) int {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(src)
}
