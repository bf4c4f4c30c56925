// Package trivia owns the non-semantic source content the formatter must
// preserve: non-doc comments, their extraction, and their association with
// the gaps between sibling syntax nodes.
package trivia

import (
	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/source"
)

// CommentKind distinguishes line from block comments.
type CommentKind int

const (
	// CommentLine is a // comment.
	CommentLine CommentKind = iota

	// CommentBlock is a /* */ comment.
	CommentBlock
)

// Comment is one extracted non-doc comment. Immutable: created during
// extraction, consumed exactly once during recomposition.
type Comment struct {
	Span source.Span
	Text string
	Kind CommentKind
}

// Extract scans the file and returns every non-doc comment in offset order.
// It is a pure lexical pass: it works on files that do not parse, and fails
// only on lexical damage such as an unterminated literal.
func Extract(file *source.File) ([]Comment, error) {
	tokens, err := lexer.Scan(file)
	if err != nil {
		return nil, err
	}
	return FromTokens(tokens), nil
}

// FromTokens filters an existing token stream down to non-doc comments,
// avoiding a second scan when the caller already tokenized the file.
func FromTokens(tokens []lexer.Token) []Comment {
	var comments []Comment
	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.KindLineComment:
			comments = append(comments, Comment{Span: tok.Span, Text: tok.Text, Kind: CommentLine})
		case lexer.KindBlockComment:
			comments = append(comments, Comment{Span: tok.Span, Text: tok.Text, Kind: CommentBlock})
		}
	}
	return comments
}
