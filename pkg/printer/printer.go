package printer

import (
	"strings"

	"github.com/montrs/montfmt/pkg/config"
	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/source"
)

// PieceKind discriminates the Piece union.
type PieceKind int

const (
	// PieceText is literal printed text, possibly spanning lines.
	PieceText PieceKind = iota

	// PieceBlock is a nested brace block whose final layout (inline or
	// multi-line) the recomposer decides.
	PieceBlock

	// PieceMacro marks a template-macro invocation printed by the
	// comment-aware macro printer, not by this package.
	PieceMacro
)

// Piece is one segment of a printed statement.
type Piece struct {
	Kind  PieceKind
	Text  string
	Block *BlockChunk
	Macro *parser.MacroCall
}

// Chunk is the printed form of one statement: alternating text, blocks, and
// macro positions in source order.
type Chunk struct {
	StmtID parser.NodeID
	Span   source.Span
	Pieces []Piece
}

// BlockChunk is the printed interior of a brace group. Braces themselves are
// emitted by the recomposer, which chooses between Inline and the multi-line
// statement list.
type BlockChunk struct {
	ScopeID parser.NodeID
	Span    source.Span
	Stmts   []Chunk

	// CanInline is true when the interior may legally collapse onto one
	// line; the recomposer still rejects the collapse if comments are
	// attached under this scope or the line would overflow.
	CanInline bool

	// Inline is the single-line interior rendering, valid when CanInline.
	Inline string

	// Tight suppresses the interior padding spaces when inlined, for
	// use-tree style `::{a, b}` groups.
	Tight bool
}

// Printer formats ordinary host code from the token tree.
type Printer struct {
	src      string
	settings *config.Settings
}

// New creates a Printer for one file's source text.
func New(src string, settings *config.Settings) *Printer {
	return &Printer{src: src, settings: settings}
}

// PrintFile renders every top-level statement into a chunk.
func (p *Printer) PrintFile(f *parser.File) []Chunk {
	chunks := make([]Chunk, 0, len(f.Stmts))
	for _, stmt := range f.Stmts {
		chunks = append(chunks, p.printStmt(stmt, 0))
	}
	return chunks
}

// RenderTokens renders a flat token slice on one line with canonical
// spacing. The template printer uses it for expression blocks and attribute
// values.
func (p *Printer) RenderTokens(toks []lexer.Token) string {
	sp := newSpacer(p.src)
	var b strings.Builder
	for _, tok := range toks {
		if tok.IsComment() {
			continue
		}
		b.WriteString(sp.next(tok))
		b.WriteString(tok.Text)
	}
	return b.String()
}

func (p *Printer) indent(depth int) string {
	return strings.Repeat(p.settings.Indent(), depth)
}

// indentWidth is the display width of one level of indentation; tabs count
// as tab_spaces columns.
func (p *Printer) indentWidth() int {
	return p.settings.TabSpaces
}

func (p *Printer) printStmt(stmt *parser.Stmt, depth int) Chunk {
	chunk := p.renderStmt(stmt, depth, false)

	// A single overlong text line gets a second, wrapping pass that breaks
	// the first top-level argument group across lines.
	if len(chunk.Pieces) == 1 && chunk.Pieces[0].Kind == PieceText &&
		!strings.Contains(chunk.Pieces[0].Text, "\n") &&
		depth*p.indentWidth()+len(chunk.Pieces[0].Text) > p.settings.MaxWidth {
		wrapped := p.renderStmt(stmt, depth, true)
		if len(wrapped.Pieces) > 0 {
			return wrapped
		}
	}
	return chunk
}

type stmtRenderer struct {
	p     *Printer
	depth int
	sp    *spacer
	buf   strings.Builder
	out   []Piece

	// wrap requests breaking the first eligible argument group.
	wrap     bool
	wrapped  bool
	groupTop int // delimiter depth while rendering flat groups
}

func (p *Printer) renderStmt(stmt *parser.Stmt, depth int, wrap bool) Chunk {
	r := &stmtRenderer{p: p, depth: depth, sp: newSpacer(p.src), wrap: wrap}
	r.renderTrees(stmt.Trees, true)
	r.flushText()
	return Chunk{StmtID: stmt.ID, Span: stmt.Span, Pieces: r.out}
}

func (r *stmtRenderer) flushText() {
	if r.buf.Len() == 0 {
		return
	}
	r.out = append(r.out, Piece{Kind: PieceText, Text: r.buf.String()})
	r.buf.Reset()
}

func (r *stmtRenderer) write(tok lexer.Token) {
	r.buf.WriteString(r.sp.next(tok))
	r.buf.WriteString(tok.Text)
}

// lineBreak ends the current logical line inside the statement text, used
// after attributes and doc comments.
func (r *stmtRenderer) lineBreak() {
	r.buf.WriteString("\n")
	r.buf.WriteString(r.p.indent(r.depth))
	r.sp.reset()
}

// renderTrees walks a tree sequence. leading tracks whether we are still in
// the statement's attribute/doc prefix, which prints one construct per line.
func (r *stmtRenderer) renderTrees(trees []*parser.Tree, leading bool) {
	for i := 0; i < len(trees); i++ {
		t := trees[i]

		if leading && t.Kind == parser.TreeToken && t.Tok.Kind == lexer.KindDocComment {
			r.buf.WriteString(t.Tok.Text)
			r.lineBreak()
			continue
		}

		// Outer `#[...]` and inner `#![...]` attributes get their own lines
		// while still in the statement prefix.
		if leading && t.Kind == parser.TreeToken && t.Tok.Text == "#" {
			consumed := r.renderAttr(trees, i)
			if consumed > 0 {
				i += consumed - 1
				r.lineBreak()
				continue
			}
		}

		leading = false
		r.renderTree(t)
	}
}

// renderAttr renders `# [ ... ]` or `# ! [ ... ]` and returns how many trees
// it consumed, or zero if the shape does not match.
func (r *stmtRenderer) renderAttr(trees []*parser.Tree, i int) int {
	j := i + 1
	bang := false
	if j < len(trees) && trees[j].Kind == parser.TreeToken && trees[j].Tok.Text == "!" {
		bang = true
		j++
	}
	if j >= len(trees) || trees[j].Kind != parser.TreeGroup || trees[j].Open.Text != "[" {
		return 0
	}

	r.write(trees[i].Tok)
	if bang {
		r.write(trees[i+1].Tok)
	}
	r.renderFlatGroup(trees[j])
	return j - i + 1
}

func (r *stmtRenderer) renderTree(t *parser.Tree) {
	switch t.Kind {
	case parser.TreeToken:
		if t.Tok.Kind == lexer.KindDocComment {
			// A doc comment mid-statement still takes its own line.
			r.lineBreak()
			r.buf.WriteString(t.Tok.Text)
			r.lineBreak()
			return
		}
		r.write(t.Tok)

	case parser.TreeGroup:
		if t.IsBrace() {
			r.emitBlock(t)
			return
		}
		r.renderFlatGroup(t)

	case parser.TreeMacro:
		r.buf.WriteString(r.sp.next(t.Macro.Name))
		r.flushText()
		r.out = append(r.out, Piece{Kind: PieceMacro, Macro: t.Macro})
		r.sp.force(t.Macro.Close)
	}
}

// renderFlatGroup renders a paren or bracket group inline, descending into
// nested groups. Brace groups and macros nested inside still become their
// own pieces.
func (r *stmtRenderer) renderFlatGroup(t *parser.Tree) {
	wrapHere := r.wrap && !r.wrapped && r.groupTop == 0 && wrapEligible(t)
	r.write(t.Open)
	r.groupTop++

	if wrapHere {
		r.wrapped = true
		inner := r.p.indent(r.depth + 1)
		r.buf.WriteString("\n")
		r.buf.WriteString(inner)
		r.sp.reset()
		for _, c := range t.Trees {
			r.renderTree(c)
			if c.Kind == parser.TreeToken && c.Tok.Text == "," {
				r.buf.WriteString("\n")
				r.buf.WriteString(inner)
				r.sp.reset()
			}
		}
		r.buf.WriteString("\n")
		r.buf.WriteString(r.p.indent(r.depth))
		r.sp.reset()
	} else {
		for _, c := range t.Trees {
			r.renderTree(c)
		}
	}

	r.groupTop--
	if wrapHere {
		// Closing delimiter starts its own line; keep it tight.
		r.buf.WriteString(t.Close.Text)
		r.sp.force(t.Close)
	} else {
		r.write(t.Close)
	}
}

// wrapEligible reports whether a group is worth breaking: it must contain a
// top-level comma and no nested blocks or macros.
func wrapEligible(t *parser.Tree) bool {
	hasComma := false
	for _, c := range t.Trees {
		switch c.Kind {
		case parser.TreeMacro:
			return false
		case parser.TreeGroup:
			if c.IsBrace() {
				return false
			}
		case parser.TreeToken:
			if c.Tok.Text == "," {
				hasComma = true
			}
		}
	}
	return hasComma
}

// emitBlock turns a brace group into a block piece.
func (r *stmtRenderer) emitBlock(t *parser.Tree) {
	tight := r.sp.prev.Text == "::"
	if !tight {
		r.buf.WriteString(r.sp.next(t.Open))
	}
	r.flushText()

	block := &BlockChunk{
		ScopeID: t.ScopeID,
		Span:    source.NewSpan(t.Open.Span.End, t.Close.Span.Start),
		Tight:   tight,
	}
	for _, s := range t.Stmts {
		block.Stmts = append(block.Stmts, r.p.printStmt(s, r.depth+1))
	}
	block.CanInline, block.Inline = r.p.inlineBlock(block)

	r.out = append(r.out, Piece{Kind: PieceBlock, Block: block})
	r.sp.force(t.Close)
}

// inlineBlock computes the single-line interior rendering of a block, if one
// is legal: no semicolon-terminated statements, no macros, no multi-line
// text, and every nested block inlinable.
func (p *Printer) inlineBlock(b *BlockChunk) (bool, string) {
	parts := make([]string, 0, len(b.Stmts))
	for _, stmt := range b.Stmts {
		text, ok := p.inlineStmt(stmt)
		if !ok {
			return false, ""
		}
		if strings.HasSuffix(text, ";") {
			return false, ""
		}
		parts = append(parts, text)
	}
	// A trailing comma marks deliberately multi-line interiors (struct
	// fields, enum variants).
	if n := len(parts); n > 0 && strings.HasSuffix(parts[n-1], ",") {
		return false, ""
	}
	return true, strings.Join(parts, " ")
}

func (p *Printer) inlineStmt(c Chunk) (string, bool) {
	var b strings.Builder
	for _, piece := range c.Pieces {
		switch piece.Kind {
		case PieceText:
			if strings.Contains(piece.Text, "\n") {
				return "", false
			}
			b.WriteString(piece.Text)
		case PieceBlock:
			if !piece.Block.CanInline {
				return "", false
			}
			b.WriteString(RenderInlineBraces(piece.Block))
		case PieceMacro:
			return "", false
		}
	}
	return b.String(), true
}

// RenderInlineBraces renders `{ interior }` (or `{interior}` when tight, or
// `{}` when empty) for an inlinable block.
func RenderInlineBraces(b *BlockChunk) string {
	if b.Inline == "" {
		return "{}"
	}
	if b.Tight {
		return "{" + b.Inline + "}"
	}
	return "{ " + b.Inline + " }"
}
