package parser

import (
	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/source"
)

// Parse builds the token tree for a scanned file. macroNames are the
// identifiers treated as template-macro invocations when followed by `!` and
// a delimited group. Non-doc comments in the token stream are skipped; they
// are owned by the comment extractor and the gap machinery.
func Parse(file *source.File, tokens []lexer.Token, macroNames []string, alloc *Alloc) (*File, error) {
	names := make(map[string]bool, len(macroNames))
	for _, n := range macroNames {
		names[n] = true
	}

	p := &hostParser{file: file, toks: tokens, macroNames: names, alloc: alloc}

	root := &File{
		ID:   alloc.Next(),
		Span: source.NewSpan(0, len(file.Content)),
	}

	trees, err := p.parseTrees("")
	if err != nil {
		return nil, err
	}
	root.Stmts = partition(trees, alloc)

	return root, nil
}

type hostParser struct {
	file       *source.File
	toks       []lexer.Token
	pos        int
	macroNames map[string]bool
	alloc      *Alloc
}

func (p *hostParser) cur() lexer.Token {
	return p.toks[p.pos]
}

// peekCode returns the next non-comment token at or after index i, without
// advancing.
func (p *hostParser) peekCode(i int) lexer.Token {
	for ; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind == lexer.KindLineComment || t.Kind == lexer.KindBlockComment {
			continue
		}
		return t
	}
	return p.toks[len(p.toks)-1]
}

func (p *hostParser) errAt(tok lexer.Token, msg string) *ParseError {
	return &ParseError{File: p.file.Name, Pos: p.file.Position(tok.Span.Start), Msg: msg}
}

// parseTrees consumes trees until the given closing delimiter (or EOF when
// stopClose is empty). The closing token itself is consumed.
func (p *hostParser) parseTrees(stopClose string) ([]*Tree, error) {
	var trees []*Tree

	for {
		tok := p.cur()

		switch tok.Kind {
		case lexer.KindEOF:
			if stopClose != "" {
				return nil, p.errAt(tok, "unexpected end of file, expected `"+stopClose+"`")
			}
			return trees, nil

		case lexer.KindClose:
			if tok.Text == stopClose {
				p.pos++
				return trees, nil
			}
			return nil, p.errAt(tok, "unexpected closing delimiter `"+tok.Text+"`")

		case lexer.KindLineComment, lexer.KindBlockComment:
			p.pos++

		case lexer.KindOpen:
			group, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			trees = append(trees, group)

		case lexer.KindIdent:
			if p.macroNames[tok.Text] {
				bang := p.peekCode(p.pos + 1)
				open := p.peekCode(p.pos + 2)
				if bang.Kind == lexer.KindPunct && bang.Text == "!" && open.Kind == lexer.KindOpen {
					mac, err := p.parseMacro()
					if err != nil {
						return nil, err
					}
					trees = append(trees, mac)
					continue
				}
			}
			trees = append(trees, leaf(tok))
			p.pos++

		default:
			trees = append(trees, leaf(tok))
			p.pos++
		}
	}
}

func leaf(tok lexer.Token) *Tree {
	return &Tree{Kind: TreeToken, Span: tok.Span, Tok: tok}
}

var matchingClose = map[string]string{"(": ")", "[": "]", "{": "}"}

func (p *hostParser) parseGroup() (*Tree, error) {
	open := p.cur()
	p.pos++

	children, err := p.parseTrees(matchingClose[open.Text])
	if err != nil {
		return nil, err
	}
	closeTok := p.toks[p.pos-1]

	group := &Tree{
		Kind:  TreeGroup,
		Span:  source.NewSpan(open.Span.Start, closeTok.Span.End),
		Open:  open,
		Close: closeTok,
	}
	if open.Text == "{" {
		group.ScopeID = p.alloc.Next()
		group.Stmts = partition(children, p.alloc)
	} else {
		group.Trees = children
	}
	return group, nil
}

// parseMacro consumes `name ! <delim> ... </delim>` keeping the body tokens
// raw. The body must be delimiter-balanced; its internal structure belongs to
// the template sub-parser.
func (p *hostParser) parseMacro() (*Tree, error) {
	name := p.cur()
	p.pos++
	for p.cur().IsComment() {
		p.pos++
	}
	bang := p.cur()
	p.pos++
	for p.cur().IsComment() {
		p.pos++
	}
	open := p.cur()
	p.pos++

	var body []lexer.Token
	depth := 1
	for {
		tok := p.cur()
		if tok.Kind == lexer.KindEOF {
			return nil, p.errAt(open, "unterminated macro invocation `"+name.Text+"!`")
		}
		if tok.Kind == lexer.KindOpen {
			depth++
		}
		if tok.Kind == lexer.KindClose {
			depth--
			if depth == 0 {
				p.pos++
				mac := &MacroCall{
					ID:       p.alloc.Next(),
					Name:     name,
					Bang:     bang,
					Open:     open,
					Close:    tok,
					Body:     body,
					Span:     source.NewSpan(name.Span.Start, tok.Span.End),
					BodySpan: source.NewSpan(open.Span.End, tok.Span.Start),
				}
				return &Tree{Kind: TreeMacro, Span: mac.Span, Macro: mac}, nil
			}
		}
		body = append(body, tok)
		p.pos++
	}
}

// continuePuncts are tokens that keep a statement going after a brace group,
// such as the method call in `Foo { x }.bar()`.
var continuePuncts = map[string]bool{
	".": true, "?": true, "=>": true, "=": true,
	"==": true, "!=": true, "&&": true, "||": true,
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"^": true, "&": true, "|": true, "<": true, ">": true,
	"<=": true, ">=": true, "<<": true, ">>": true,
	"..": true, "..=": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

func continuesAfterBlock(t *Tree) bool {
	if t.Kind != TreeToken {
		return false
	}
	if t.Tok.Kind == lexer.KindIdent {
		return t.Tok.Text == "else"
	}
	return t.Tok.Kind == lexer.KindPunct && continuePuncts[t.Tok.Text]
}

// partition splits a tree sequence into statements. A statement ends at a
// `;`, at a `,` that terminates a match arm (one with a `=>` before it), or
// after a brace group or macro invocation that is not continued by a token
// like `else` or `.`; a `;` or `,` directly after the group is pulled into
// the same statement (match arms, struct fields).
func partition(trees []*Tree, alloc *Alloc) []*Stmt {
	var stmts []*Stmt
	var cur []*Tree
	sawArrow := false

	flush := func() {
		if len(cur) == 0 {
			return
		}
		stmts = append(stmts, &Stmt{
			ID:    alloc.Next(),
			Span:  source.NewSpan(cur[0].Span.Start, cur[len(cur)-1].Span.End),
			Trees: cur,
		})
		cur = nil
		sawArrow = false
	}

	for i := 0; i < len(trees); i++ {
		t := trees[i]
		cur = append(cur, t)

		if t.Kind == TreeToken && t.Tok.Text == "=>" {
			sawArrow = true
		}

		if t.Kind == TreeToken && t.Tok.Text == ";" {
			flush()
			continue
		}
		if t.Kind == TreeToken && t.Tok.Text == "," && sawArrow {
			flush()
			continue
		}

		if t.IsBrace() || t.Kind == TreeMacro {
			if i+1 < len(trees) {
				next := trees[i+1]
				if next.Kind == TreeToken && (next.Tok.Text == ";" || next.Tok.Text == ",") {
					cur = append(cur, next)
					i++
					flush()
					continue
				}
				if continuesAfterBlock(next) {
					continue
				}
			}
			flush()
		}
	}
	flush()

	return stmts
}
