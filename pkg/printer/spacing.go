// Package printer is the delegated pretty-printer for ordinary host-language
// code. It operates purely on the token tree and knows nothing about
// comments: it emits a chunk tree that tags every brace block and template
// macro position, and the recomposition engine decides final line layout and
// comment injection.
package printer

import (
	"github.com/montrs/montfmt/pkg/lexer"
)

// spaceKeywords are identifiers that take a space before a following paren,
// unlike function calls.
var spaceKeywords = map[string]bool{
	"if": true, "else": true, "match": true, "while": true, "for": true,
	"loop": true, "return": true, "in": true, "let": true, "mut": true,
	"move": true, "async": true, "await": true, "yield": true, "break": true,
	"continue": true, "where": true,
}

// spacedOps always print with a space on both sides.
var spacedOps = map[string]bool{
	"=": true, "=>": true, "->": true,
	"==": true, "!=": true, "<=": true, ">=": true,
	"&&": true, "||": true,
	"+": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// adjacencyOps are ambiguous between unary and binary (or generic and
// comparison) use; spacing follows whatever the source did.
var adjacencyOps = map[string]bool{
	"&": true, "*": true, "-": true, "<": true, ">": true,
	"|": true, "%": true, "/": true, "^": true, "<<": true, ">>": true,
	"..": true, "..=": true,
}

// spacer decides inter-token spacing for a flat token stream. Ambiguous
// pairs consult the original source adjacency, which makes the decision
// deterministic and stable across repeated passes.
type spacer struct {
	src      string
	prev     lexer.Token
	prevPrev lexer.Token
	started  bool
}

func newSpacer(src string) *spacer {
	return &spacer{src: src}
}

// next returns the separator to emit before tok, and records it as consumed.
func (sp *spacer) next(tok lexer.Token) string {
	defer func() {
		sp.prevPrev = sp.prev
		sp.prev = tok
		sp.started = true
	}()

	if !sp.started {
		return ""
	}
	if sp.needSpace(sp.prevPrev, sp.prev, tok) {
		return " "
	}
	return ""
}

// reset clears the stream state, e.g. at a line break.
func (sp *spacer) reset() {
	sp.started = false
	sp.prev = lexer.Token{}
	sp.prevPrev = lexer.Token{}
}

// force records tok as the previous token without emitting anything, used
// when a nested piece (block or macro) was rendered out of band.
func (sp *spacer) force(tok lexer.Token) {
	sp.prevPrev = sp.prev
	sp.prev = tok
	sp.started = true
}

//nolint:gocyclo // One rule table, deliberately in a single place.
func (sp *spacer) needSpace(prevPrev, prev, next lexer.Token) bool {
	// Tight punctuation.
	switch next.Text {
	case ",", ";", "?", ":":
		return false
	case ".", "::":
		return false
	}
	switch prev.Text {
	case ".", "::":
		return false
	case ",", ":":
		return true
	}

	// Delimiter interiors are tight: `(a`, `a)`, `[a`, `a]`.
	if prev.Kind == lexer.KindOpen && prev.Text != "{" {
		return false
	}
	if next.Kind == lexer.KindClose && next.Text != "}" {
		return false
	}

	// Attributes: `#[...]` and `#![...]`.
	if prev.Text == "#" {
		return false
	}
	if prev.Text == "!" && prevPrev.Text == "#" {
		return false
	}

	// Macro bang: `name!(...)`, `name![...]` tight, `name! {` spaced.
	if prev.Text == "!" && prevPrev.Kind == lexer.KindIdent {
		return next.Text == "{"
	}
	if next.Text == "!" {
		if prev.Kind == lexer.KindIdent {
			// `assert!` binds tight, but a keyword is never a macro name:
			// `if !ready`, `return !done`.
			return spaceKeywords[prev.Text]
		}
		return sp.sourceAdjacent(prev, next)
	}
	// Unary bang: `!x`.
	if prev.Text == "!" {
		return false
	}

	// Calls and indexing bind tight; keywords do not.
	if next.Text == "(" || next.Text == "[" {
		if prev.Kind == lexer.KindIdent {
			return spaceKeywords[prev.Text]
		}
		if prev.Kind == lexer.KindClose || prev.Kind == lexer.KindString ||
			prev.Kind == lexer.KindNumber {
			return next.Text == "(" && prev.Text == "}"
		}
		return sp.sourceAdjacent(prev, next)
	}

	// Blocks and struct literals read better spaced: `if x {`, `Foo {`.
	if next.Text == "{" {
		return true
	}
	if prev.Text == "}" {
		return true
	}

	// Operators that are always spaced.
	if spacedOps[prev.Text] || spacedOps[next.Text] {
		return true
	}

	// Unary-or-binary operators and angle brackets: follow the source.
	if adjacencyOps[prev.Text] || adjacencyOps[next.Text] {
		return sp.sourceAdjacent(prev, next)
	}

	// Lifetimes hug a preceding `&` (handled above) and a following `>`.
	if prev.Kind == lexer.KindLifetime && (next.Text == "," || next.Text == ">") {
		return false
	}

	return true
}

// sourceAdjacent reports whether the source separated the two tokens.
// Removed trivia between them (a relocated comment) counts as separation.
func (sp *spacer) sourceAdjacent(prev, next lexer.Token) bool {
	if next.Span.Start > len(sp.src) || prev.Span.End > next.Span.Start {
		// Synthetic or reordered tokens with no faithful gap: spaced.
		return true
	}
	return prev.Span.End != next.Span.Start
}
