package view

import (
	"fmt"

	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/source"
)

// Parse parses one template-macro invocation's body. macroNames feed the
// detection of nested invocations inside expression blocks.
func Parse(file *source.File, call *parser.MacroCall, macroNames []string, alloc *parser.Alloc) (*Body, error) {
	names := make(map[string]bool, len(macroNames))
	for _, n := range macroNames {
		names[n] = true
	}
	return parseBody(file, call.Body, call.BodySpan, names, alloc, 0)
}

func parseBody(
	file *source.File,
	tokens []lexer.Token,
	span source.Span,
	names map[string]bool,
	alloc *parser.Alloc,
	depth int,
) (*Body, error) {
	if depth > MaxNestingDepth {
		return nil, &StructureError{
			File: file.Name,
			Pos:  file.Position(span.Start),
			Msg:  fmt.Sprintf("template nesting exceeds %d levels", MaxNestingDepth),
		}
	}

	p := &tmplParser{file: file, names: names, alloc: alloc, depth: depth}
	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.KindLineComment, lexer.KindBlockComment:
			// Non-doc comments go through gap association, not the parser.
		case lexer.KindDocComment:
			return nil, &StructureError{
				File: file.Name,
				Pos:  file.Position(tok.Span.Start),
				Msg:  "doc comments are not supported inside template bodies",
			}
		default:
			p.toks = append(p.toks, tok)
		}
	}

	body := &Body{ScopeID: alloc.Next(), Span: span}
	nodes, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errHere("unexpected closing tag")
	}
	body.Nodes = nodes
	return body, nil
}

type tmplParser struct {
	file  *source.File
	toks  []lexer.Token
	pos   int
	names map[string]bool
	alloc *parser.Alloc
	depth int
}

func (p *tmplParser) done() bool {
	return p.pos >= len(p.toks)
}

func (p *tmplParser) peek(n int) lexer.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return lexer.Token{Kind: lexer.KindEOF}
}

func (p *tmplParser) cur() lexer.Token {
	return p.peek(0)
}

func (p *tmplParser) errHere(msg string) *StructureError {
	pos := p.file.Position(len(p.file.Content))
	if !p.done() {
		pos = p.file.Position(p.cur().Span.Start)
	}
	return &StructureError{File: p.file.Name, Pos: pos, Msg: msg}
}

// parseNodes parses children until a closing tag (`</`) or the end of the
// token stream. The closing tag is left for the caller.
func (p *tmplParser) parseNodes() ([]*Node, error) {
	var nodes []*Node
	for !p.done() {
		tok := p.cur()

		if tok.Text == "<" && p.peek(1).Text == "/" {
			return nodes, nil
		}

		switch {
		case tok.Text == "<":
			el, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, el)

		case tok.Kind == lexer.KindString:
			nodes = append(nodes, &Node{Kind: NodeText, Span: tok.Span, Text: tok})
			p.pos++

		case tok.Kind == lexer.KindOpen && tok.Text == "{":
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, block)

		default:
			return nil, p.errHere(fmt.Sprintf("unexpected `%s` in template body", tok.Text))
		}
	}
	return nodes, nil
}

func (p *tmplParser) parseElement() (*Node, error) {
	openAngle := p.cur()
	p.pos++ // <

	name, nameSpan := "", source.Span{}
	if p.cur().Text != ">" {
		var err error
		name, nameSpan, err = p.parseTagName()
		if err != nil {
			return nil, err
		}
	}
	_ = nameSpan

	el := &Element{Name: name}

	// Attributes until `>`, `/>`, or trouble.
	for {
		if p.done() {
			return nil, p.errHere(fmt.Sprintf("unclosed <%s> tag", name))
		}
		tok := p.cur()
		if tok.Text == ">" || (tok.Text == "/" && p.peek(1).Text == ">") {
			break
		}
		attr, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		el.Attrs = append(el.Attrs, attr)
	}

	// Self-closing form.
	if p.cur().Text == "/" {
		p.pos += 2 // / >
		end := p.toks[p.pos-1].Span.End
		el.SelfClosed = true
		el.ChildScope = p.alloc.Next()
		el.ChildSpan = source.NewSpan(end, end)
		return &Node{
			Kind:    NodeElement,
			Span:    source.NewSpan(openAngle.Span.Start, end),
			Element: el,
		}, nil
	}

	gt := p.cur()
	p.pos++ // >

	el.ChildScope = p.alloc.Next()

	children, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	el.Children = children

	// Closing tag.
	if p.done() {
		return nil, p.errHere(fmt.Sprintf("unclosed <%s> tag", name))
	}
	closeStart := p.cur().Span.Start
	p.pos += 2 // < /
	closeName := ""
	if p.cur().Text != ">" {
		closeName, _, err = p.parseTagName()
		if err != nil {
			return nil, err
		}
	}
	if closeName != name {
		return nil, p.errHere(fmt.Sprintf("mismatched closing tag: expected </%s>, found </%s>", name, closeName))
	}
	if p.done() || p.cur().Text != ">" {
		return nil, p.errHere(fmt.Sprintf("malformed closing tag </%s>", name))
	}
	end := p.cur().Span.End
	p.pos++ // >

	el.ChildSpan = source.NewSpan(gt.Span.End, closeStart)
	return &Node{
		Kind:    NodeElement,
		Span:    source.NewSpan(openAngle.Span.Start, end),
		Element: el,
	}, nil
}

// parseTagName consumes an element name: an identifier optionally joined by
// `::`, `.`, `-`, or `:` segments (Foo::Bar, svg:path, data-driven names).
func (p *tmplParser) parseTagName() (string, source.Span, error) {
	if p.done() || p.cur().Kind != lexer.KindIdent {
		return "", source.Span{}, p.errHere("expected tag name")
	}
	first := p.cur()
	name := first.Text
	span := first.Span
	p.pos++

	for !p.done() {
		sep := p.cur().Text
		if sep != "::" && sep != "." && sep != "-" && sep != ":" {
			break
		}
		next := p.peek(1)
		if next.Kind != lexer.KindIdent && next.Kind != lexer.KindNumber {
			break
		}
		name += sep + next.Text
		span = source.NewSpan(span.Start, next.Span.End)
		p.pos += 2
	}
	return name, span, nil
}

func (p *tmplParser) parseAttr() (Attr, error) {
	name, nameSpan, err := p.parseTagName()
	if err != nil {
		return Attr{}, p.errHere("expected attribute name")
	}
	attr := Attr{Name: name, NameSpan: nameSpan}

	if p.done() || p.cur().Text != "=" {
		return attr, nil
	}
	p.pos++ // =

	if p.done() {
		return Attr{}, p.errHere(fmt.Sprintf("attribute `%s` is missing a value", name))
	}

	tok := p.cur()
	if tok.Kind == lexer.KindOpen && tok.Text == "{" {
		inner, err := p.collectGroup()
		if err != nil {
			return Attr{}, err
		}
		attr.Value = &AttrValue{Braced: true, Tokens: inner}
		return attr, nil
	}

	// Unbraced: a single token, or a single delimited group. Anything more
	// complex must be braced.
	if tok.Kind == lexer.KindOpen {
		open := tok
		inner, err := p.collectGroup()
		if err != nil {
			return Attr{}, err
		}
		toks := append([]lexer.Token{open}, inner...)
		toks = append(toks, p.toks[p.pos-1])
		attr.Value = &AttrValue{Tokens: toks}
		return attr, nil
	}

	attr.Value = &AttrValue{Tokens: []lexer.Token{tok}}
	p.pos++
	return attr, nil
}

// collectGroup consumes a balanced delimited group starting at the current
// open token and returns the interior tokens.
func (p *tmplParser) collectGroup() ([]lexer.Token, error) {
	open := p.cur()
	p.pos++
	var inner []lexer.Token
	depth := 1
	for {
		if p.done() {
			return nil, &StructureError{
				File: p.file.Name,
				Pos:  p.file.Position(open.Span.Start),
				Msg:  "unterminated `" + open.Text + "` group in template",
			}
		}
		tok := p.cur()
		if tok.Kind == lexer.KindOpen {
			depth++
		}
		if tok.Kind == lexer.KindClose {
			depth--
			if depth == 0 {
				p.pos++
				return inner, nil
			}
		}
		inner = append(inner, tok)
		p.pos++
	}
}

// parseBlock parses a `{ ... }` expression block, detecting nested template
// invocations so they can be formatted recursively.
func (p *tmplParser) parseBlock() (*Node, error) {
	open := p.cur()
	inner, err := p.collectGroup()
	if err != nil {
		return nil, err
	}
	closeTok := p.toks[p.pos-1]

	block := &Block{Span: source.NewSpan(open.Span.Start, closeTok.Span.End)}

	var run []lexer.Token
	for i := 0; i < len(inner); i++ {
		tok := inner[i]
		if tok.Kind == lexer.KindIdent && p.names[tok.Text] &&
			i+2 < len(inner) && inner[i+1].Text == "!" && inner[i+2].Kind == lexer.KindOpen {
			// Nested template invocation.
			bodyStart := i + 3
			d := 1
			j := bodyStart
			for ; j < len(inner); j++ {
				if inner[j].Kind == lexer.KindOpen {
					d++
				}
				if inner[j].Kind == lexer.KindClose {
					d--
					if d == 0 {
						break
					}
				}
			}
			if j >= len(inner) {
				return nil, &StructureError{
					File: p.file.Name,
					Pos:  p.file.Position(tok.Span.Start),
					Msg:  "unterminated nested `" + tok.Text + "!` invocation",
				}
			}

			bodySpan := source.NewSpan(inner[i+2].Span.End, inner[j].Span.Start)
			nestedBody, err := parseBody(p.file, inner[bodyStart:j], bodySpan, p.names, p.alloc, p.depth+1)
			if err != nil {
				return nil, err
			}

			if len(run) > 0 {
				block.Segments = append(block.Segments, Segment{Tokens: run})
				run = nil
			}
			block.Segments = append(block.Segments, Segment{Macro: &Nested{
				Name: tok.Text,
				Span: source.NewSpan(tok.Span.Start, inner[j].Span.End),
				Body: nestedBody,
			}})
			i = j
			continue
		}
		run = append(run, tok)
	}
	if len(run) > 0 {
		block.Segments = append(block.Segments, Segment{Tokens: run})
	}

	return &Node{Kind: NodeBlock, Span: block.Span, Block: block}, nil
}
