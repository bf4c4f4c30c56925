// Package lexer tokenizes MontRS host-language source. It produces a flat
// token stream with byte-exact spans, including comment tokens, which the
// parser and comment extractor consume independently. The scan is purely
// lexical: it succeeds or fails without reference to any syntax tree, so a
// file that will not parse can still be scanned for comments.
package lexer

import (
	"fmt"

	"github.com/montrs/montfmt/pkg/source"
)

// Kind classifies a lexical token.
type Kind int

const (
	// KindEOF marks the end of the token stream.
	KindEOF Kind = iota

	// KindIdent is an identifier, keyword, or raw identifier (r#type).
	KindIdent

	// KindLifetime is a lifetime or loop label ('a, 'static).
	KindLifetime

	// KindNumber is an integer or float literal, including suffixes.
	KindNumber

	// KindString is a string literal in any form: "...", r"...", r#"..."#,
	// b"...", br"...".
	KindString

	// KindChar is a character or byte-character literal ('x', b'x').
	KindChar

	// KindPunct is an operator or punctuation token (::, ->, +, #, ...).
	KindPunct

	// KindOpen is an opening delimiter: ( [ {.
	KindOpen

	// KindClose is a closing delimiter: ) ] }.
	KindClose

	// KindLineComment is a non-doc line comment (// ...).
	KindLineComment

	// KindBlockComment is a non-doc block comment (/* ... */).
	KindBlockComment

	// KindDocComment is a doc comment in any form: ///, //!, /** */, /*! */.
	// Doc comments travel with the token stream and are printed in place by
	// the host printer rather than going through gap association.
	KindDocComment
)

var kindNames = map[Kind]string{
	KindEOF:          "eof",
	KindIdent:        "ident",
	KindLifetime:     "lifetime",
	KindNumber:       "number",
	KindString:       "string",
	KindChar:         "char",
	KindPunct:        "punct",
	KindOpen:         "open-delim",
	KindClose:        "close-delim",
	KindLineComment:  "line-comment",
	KindBlockComment: "block-comment",
	KindDocComment:   "doc-comment",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Token is a single lexical token with its span into the source buffer.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsComment reports whether the token is any comment form, doc or not.
func (t Token) IsComment() bool {
	return t.Kind == KindLineComment || t.Kind == KindBlockComment || t.Kind == KindDocComment
}

// LexError reports a lexical failure such as an unterminated literal.
// The file is left untouched when a scan fails.
type LexError struct {
	File string
	Pos  source.Position
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%s: lex error: %s", e.File, e.Pos, e.Msg)
}
