package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/montrs/montfmt/pkg/source"
)

// Scan tokenizes the file content into a flat token stream terminated by a
// KindEOF token. Comment tokens are included in the stream.
func Scan(file *source.File) ([]Token, error) {
	lx := &lexer{file: file, src: file.Content}
	return lx.run()
}

type lexer struct {
	file   *source.File
	src    string
	pos    int
	tokens []Token
}

func (lx *lexer) run() ([]Token, error) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			lx.pos++
		case c == '/' && lx.peekAt(1) == '/':
			lx.lineComment()
		case c == '/' && lx.peekAt(1) == '*':
			if err := lx.blockComment(); err != nil {
				return nil, err
			}
		case c == '"':
			if err := lx.stringLit(lx.pos); err != nil {
				return nil, err
			}
		case c == 'r' && (lx.peekAt(1) == '"' || lx.peekAt(1) == '#'):
			if err := lx.rawOrIdent(); err != nil {
				return nil, err
			}
		case c == 'b' && (lx.peekAt(1) == '"' || lx.peekAt(1) == '\''):
			if err := lx.byteLit(); err != nil {
				return nil, err
			}
		case c == 'b' && lx.peekAt(1) == 'r' && (lx.peekAt(2) == '"' || lx.peekAt(2) == '#'):
			start := lx.pos
			lx.pos++ // consume b, rawString handles the rest
			if err := lx.rawString(start); err != nil {
				return nil, err
			}
		case c == '\'':
			if err := lx.lifetimeOrChar(); err != nil {
				return nil, err
			}
		case c >= '0' && c <= '9':
			lx.number()
		case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
			lx.ident()
		case c == '(' || c == '[' || c == '{':
			lx.emit(KindOpen, lx.pos, lx.pos+1)
		case c == ')' || c == ']' || c == '}':
			lx.emit(KindClose, lx.pos, lx.pos+1)
		default:
			lx.punct()
		}
	}

	lx.tokens = append(lx.tokens, Token{
		Kind: KindEOF,
		Span: source.NewSpan(len(lx.src), len(lx.src)),
	})
	return lx.tokens, nil
}

func (lx *lexer) peekAt(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}
	return 0
}

func (lx *lexer) emit(kind Kind, start, end int) {
	lx.tokens = append(lx.tokens, Token{
		Kind: kind,
		Span: source.NewSpan(start, end),
		Text: lx.src[start:end],
	})
	lx.pos = end
}

func (lx *lexer) errAt(offset int, msg string) *LexError {
	return &LexError{File: lx.file.Name, Pos: lx.file.Position(offset), Msg: msg}
}

func (lx *lexer) lineComment() {
	start := lx.pos
	end := strings.IndexByte(lx.src[start:], '\n')
	if end < 0 {
		end = len(lx.src)
	} else {
		end += start
	}
	text := lx.src[start:end]

	kind := KindLineComment
	// /// and //! are doc comments, but //// and beyond are plain.
	if strings.HasPrefix(text, "//!") {
		kind = KindDocComment
	} else if strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////") {
		kind = KindDocComment
	}
	lx.emit(kind, start, end)
}

// blockComment consumes a (possibly nested) block comment.
func (lx *lexer) blockComment() error {
	start := lx.pos
	depth := 0
	i := lx.pos
	for i < len(lx.src) {
		if i+1 < len(lx.src) && lx.src[i] == '/' && lx.src[i+1] == '*' {
			depth++
			i += 2
			continue
		}
		if i+1 < len(lx.src) && lx.src[i] == '*' && lx.src[i+1] == '/' {
			depth--
			i += 2
			if depth == 0 {
				break
			}
			continue
		}
		i++
	}
	if depth != 0 {
		return lx.errAt(start, "unterminated block comment")
	}

	text := lx.src[start:i]
	kind := KindBlockComment
	// /** */ and /*! */ are doc comments; /**/ and /*** are not.
	if strings.HasPrefix(text, "/*!") {
		kind = KindDocComment
	} else if strings.HasPrefix(text, "/**") && len(text) > 4 && text[3] != '*' && text[3] != '/' {
		kind = KindDocComment
	}
	lx.emit(kind, start, i)
	return nil
}

// stringLit consumes a double-quoted string with escapes. start is the span
// start, which precedes lx.pos when a b prefix was already consumed.
func (lx *lexer) stringLit(start int) error {
	i := lx.pos + 1 // past opening quote
	for i < len(lx.src) {
		switch lx.src[i] {
		case '\\':
			i += 2
		case '"':
			lx.emit(KindString, start, i+1)
			return nil
		default:
			i++
		}
	}
	return lx.errAt(start, "unterminated string literal")
}

// rawOrIdent disambiguates r"...", r#"..."#, and raw identifiers r#name.
func (lx *lexer) rawOrIdent() error {
	if lx.peekAt(1) == '"' {
		return lx.rawString(lx.pos)
	}
	// r# followed by a quote (possibly after more hashes) is a raw string;
	// r# followed by an identifier character is a raw identifier.
	i := lx.pos + 1
	for i < len(lx.src) && lx.src[i] == '#' {
		i++
	}
	if i < len(lx.src) && lx.src[i] == '"' {
		return lx.rawString(lx.pos)
	}
	lx.ident()
	return nil
}

// rawString consumes r"..." or r#"..."# with any number of hashes.
// start may precede lx.pos by one byte for br"..." forms.
func (lx *lexer) rawString(start int) error {
	i := lx.pos + 1 // past r
	hashes := 0
	for i < len(lx.src) && lx.src[i] == '#' {
		hashes++
		i++
	}
	if i >= len(lx.src) || lx.src[i] != '"' {
		return lx.errAt(start, "malformed raw string literal")
	}
	i++ // past opening quote
	closer := `"` + strings.Repeat("#", hashes)
	end := strings.Index(lx.src[i:], closer)
	if end < 0 {
		return lx.errAt(start, "unterminated raw string literal")
	}
	lx.emit(KindString, start, i+end+len(closer))
	return nil
}

// byteLit consumes b"..." or b'x'.
func (lx *lexer) byteLit() error {
	if lx.peekAt(1) == '"' {
		start := lx.pos
		lx.pos++
		return lx.stringLit(start)
	}
	// b'x'
	start := lx.pos
	lx.pos++
	return lx.charLit(start)
}

// lifetimeOrChar disambiguates 'a (lifetime) from 'a' (char literal).
// A quote followed by an identifier is a lifetime unless a closing quote
// follows the identifier character.
func (lx *lexer) lifetimeOrChar() error {
	next := lx.peekAt(1)
	if isIdentStart(rune(next)) && lx.peekAt(2) != '\'' {
		start := lx.pos
		i := lx.pos + 1
		for i < len(lx.src) && isIdentContinue(rune(lx.src[i])) {
			i++
		}
		lx.emit(KindLifetime, start, i)
		return nil
	}
	return lx.charLit(lx.pos)
}

// charLit consumes a character literal starting at the quote at lx.pos.
// start is the span start (differs from lx.pos for b'x').
func (lx *lexer) charLit(start int) error {
	i := lx.pos + 1
	for i < len(lx.src) {
		switch lx.src[i] {
		case '\\':
			i += 2
		case '\'':
			lx.emit(KindChar, start, i+1)
			return nil
		case '\n':
			return lx.errAt(start, "unterminated character literal")
		default:
			i++
		}
	}
	return lx.errAt(start, "unterminated character literal")
}

func (lx *lexer) number() {
	start := lx.pos
	i := lx.pos
	if lx.src[i] == '0' && i+1 < len(lx.src) &&
		(lx.src[i+1] == 'x' || lx.src[i+1] == 'o' || lx.src[i+1] == 'b') {
		i += 2
		for i < len(lx.src) && (isHexDigit(lx.src[i]) || lx.src[i] == '_') {
			i++
		}
	} else {
		for i < len(lx.src) && (isDigit(lx.src[i]) || lx.src[i] == '_') {
			i++
		}
		// Fractional part: a dot followed by a digit. `1..2` and `1.method()`
		// keep the dot as punctuation.
		if i+1 < len(lx.src) && lx.src[i] == '.' && isDigit(lx.src[i+1]) {
			i++
			for i < len(lx.src) && (isDigit(lx.src[i]) || lx.src[i] == '_') {
				i++
			}
		}
		// Exponent.
		if i < len(lx.src) && (lx.src[i] == 'e' || lx.src[i] == 'E') {
			j := i + 1
			if j < len(lx.src) && (lx.src[j] == '+' || lx.src[j] == '-') {
				j++
			}
			if j < len(lx.src) && isDigit(lx.src[j]) {
				i = j
				for i < len(lx.src) && (isDigit(lx.src[i]) || lx.src[i] == '_') {
					i++
				}
			}
		}
	}
	// Type suffix (u32, f64, usize, ...).
	for i < len(lx.src) && isIdentContinue(rune(lx.src[i])) {
		i++
	}
	lx.emit(KindNumber, start, i)
}

func (lx *lexer) ident() {
	start := lx.pos
	i := lx.pos
	// Raw identifier prefix.
	if lx.src[i] == 'r' && lx.peekAt(1) == '#' {
		i += 2
	}
	for i < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[i:])
		if !isIdentContinue(r) {
			break
		}
		i += size
	}
	lx.emit(KindIdent, start, i)
}

// multiPuncts are multi-byte operators, longest first within each group.
var multiPuncts = []string{
	"..=", "...", "<<=", ">>=",
	"::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||", "..",
	"+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "<<", ">>",
}

func (lx *lexer) punct() {
	for _, op := range multiPuncts {
		if strings.HasPrefix(lx.src[lx.pos:], op) {
			lx.emit(KindPunct, lx.pos, lx.pos+len(op))
			return
		}
	}
	lx.emit(KindPunct, lx.pos, lx.pos+1)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
