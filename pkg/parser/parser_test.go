package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/source"
)

func parse(t *testing.T, src string, macros ...string) *parser.File {
	t.Helper()

	if macros == nil {
		macros = []string{"view"}
	}
	file := source.NewFile("test.rs", src)
	toks, err := lexer.Scan(file)
	require.NoError(t, err)

	root, err := parser.Parse(file, toks, macros, &parser.Alloc{})
	require.NoError(t, err)
	return root
}

func TestParseStatementSplitting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		src       string
		wantStmts int
	}{
		{"empty file", "", 0},
		{"single item", "fn main() {}", 1},
		{"two semicolon statements", "let a = 1; let b = 2;", 2},
		{"two items", "fn a() {}\nfn b() {}", 2},
		{"block followed by else stays one statement", "if x {} else {}", 1},
		{"block followed by method call stays one statement", "Foo { x }.bar()", 1},
		{"use with trailing semicolon", "use foo::{a, b};", 1},
		{"item then statement", "struct S;\nfn f() {}", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := parse(t, tt.src)
			assert.Len(t, root.Stmts, tt.wantStmts)
		})
	}
}

func TestParseBraceGroups(t *testing.T) {
	t.Parallel()

	root := parse(t, "fn main() { let a = 1; let b = 2; }")
	require.Len(t, root.Stmts, 1)

	trees := root.Stmts[0].Trees
	require.NotEmpty(t, trees)

	block := trees[len(trees)-1]
	require.True(t, block.IsBrace())
	assert.Len(t, block.Stmts, 2)
	assert.NotZero(t, block.ScopeID)
}

func TestParseParenGroupsKeepRawTrees(t *testing.T) {
	t.Parallel()

	root := parse(t, "call(a, b)")
	require.Len(t, root.Stmts, 1)

	var group *parser.Tree
	for _, tr := range root.Stmts[0].Trees {
		if tr.Kind == parser.TreeGroup {
			group = tr
		}
	}
	require.NotNil(t, group)
	assert.Equal(t, "(", group.Open.Text)
	assert.False(t, group.IsBrace())
	assert.Len(t, group.Trees, 3) // a , b
	assert.Nil(t, group.Stmts)
}

func TestParseMacroDetection(t *testing.T) {
	t.Parallel()

	t.Run("configured name becomes a macro call", func(t *testing.T) {
		t.Parallel()

		src := `fn app() { view! { <p></p> } }`
		root := parse(t, src)

		block := root.Stmts[0].Trees[len(root.Stmts[0].Trees)-1]
		require.True(t, block.IsBrace())
		require.Len(t, block.Stmts, 1)

		mac := block.Stmts[0].Trees[0]
		require.Equal(t, parser.TreeMacro, mac.Kind)
		assert.Equal(t, "view", mac.Macro.Name.Text)
		assert.Equal(t, "{", mac.Macro.Open.Text)
		assert.NotEmpty(t, mac.Macro.Body)
		assert.Equal(t, src[mac.Macro.Span.Start:mac.Macro.Span.End], "view! { <p></p> }")
	})

	t.Run("unconfigured macro stays plain tokens", func(t *testing.T) {
		t.Parallel()

		root := parse(t, "println!(\"hi\");")
		require.Len(t, root.Stmts, 1)
		for _, tr := range root.Stmts[0].Trees {
			assert.NotEqual(t, parser.TreeMacro, tr.Kind)
		}
	})

	t.Run("configured name without bang stays an identifier", func(t *testing.T) {
		t.Parallel()

		root := parse(t, "let view = 1;")
		require.Len(t, root.Stmts, 1)
		for _, tr := range root.Stmts[0].Trees {
			assert.NotEqual(t, parser.TreeMacro, tr.Kind)
		}
	})

	t.Run("macro body keeps comment tokens", func(t *testing.T) {
		t.Parallel()

		root := parse(t, "view! { // note\n }")
		mac := root.Stmts[0].Trees[0]
		require.Equal(t, parser.TreeMacro, mac.Kind)

		var hasComment bool
		for _, tok := range mac.Macro.Body {
			if tok.IsComment() {
				hasComment = true
			}
		}
		assert.True(t, hasComment)
	})

	t.Run("custom macro names", func(t *testing.T) {
		t.Parallel()

		root := parse(t, "html! { <p></p> }", "html")
		mac := root.Stmts[0].Trees[0]
		require.Equal(t, parser.TreeMacro, mac.Kind)
		assert.Equal(t, "html", mac.Macro.Name.Text)
	})
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"unclosed brace", "fn main() {"},
		{"stray close", "fn main() }"},
		{"mismatched delimiters", "fn main(]"},
		{"unterminated macro", "view! { <p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := source.NewFile("bad.rs", tt.src)
			toks, err := lexer.Scan(file)
			require.NoError(t, err)

			_, err = parser.Parse(file, toks, []string{"view"}, &parser.Alloc{})
			require.Error(t, err)

			var parseErr *parser.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "bad.rs", parseErr.File)
		})
	}
}

func TestParseSpansCoverStatements(t *testing.T) {
	t.Parallel()

	src := "let a = 1;\nlet b = 2;"
	root := parse(t, src)
	require.Len(t, root.Stmts, 2)

	assert.Equal(t, "let a = 1;", root.Stmts[0].Span.Text(src))
	assert.Equal(t, "let b = 2;", root.Stmts[1].Span.Text(src))
}

func TestAllocUniqueIDs(t *testing.T) {
	t.Parallel()

	alloc := &parser.Alloc{}
	seen := make(map[parser.NodeID]bool)
	for range 100 {
		id := alloc.Next()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
