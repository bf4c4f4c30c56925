package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/source"
	"github.com/montrs/montfmt/pkg/view"
)

// parseView extracts the first view! invocation from src and parses its body.
func parseView(t *testing.T, src string) (*view.Body, error) {
	t.Helper()

	file := source.NewFile("test.rs", src)
	toks, err := lexer.Scan(file)
	require.NoError(t, err)

	alloc := &parser.Alloc{}
	root, err := parser.Parse(file, toks, []string{"view"}, alloc)
	require.NoError(t, err)
	require.NotEmpty(t, root.Stmts)

	mac := findMacro(root.Stmts)
	require.NotNil(t, mac, "no view! invocation in %q", src)

	return view.Parse(file, mac, []string{"view"}, alloc)
}

func findMacro(stmts []*parser.Stmt) *parser.MacroCall {
	for _, s := range stmts {
		for _, tr := range s.Trees {
			switch tr.Kind {
			case parser.TreeMacro:
				return tr.Macro
			case parser.TreeGroup:
				if tr.IsBrace() {
					if mc := findMacro(tr.Stmts); mc != nil {
						return mc
					}
				}
			}
		}
	}
	return nil
}

func TestParseElements(t *testing.T) {
	t.Parallel()

	t.Run("nested elements", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <div><p>"hi"</p></div> }`)
		require.NoError(t, err)
		require.Len(t, body.Nodes, 1)

		div := body.Nodes[0]
		require.Equal(t, view.NodeElement, div.Kind)
		assert.Equal(t, "div", div.Element.Name)
		require.Len(t, div.Element.Children, 1)

		p := div.Element.Children[0]
		assert.Equal(t, "p", p.Element.Name)
		require.Len(t, p.Element.Children, 1)
		assert.Equal(t, view.NodeText, p.Element.Children[0].Kind)
		assert.Equal(t, `"hi"`, p.Element.Children[0].Text.Text)
	})

	t.Run("self-closing element", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <br /> }`)
		require.NoError(t, err)
		require.Len(t, body.Nodes, 1)

		el := body.Nodes[0].Element
		assert.Equal(t, "br", el.Name)
		assert.True(t, el.SelfClosed)
		assert.Empty(t, el.Children)
	})

	t.Run("fragment", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <><p></p><p></p></> }`)
		require.NoError(t, err)
		require.Len(t, body.Nodes, 1)

		frag := body.Nodes[0].Element
		assert.Equal(t, "", frag.Name)
		assert.Len(t, frag.Children, 2)
	})

	t.Run("compound tag names", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			src  string
			want string
		}{
			{`view! { <Foo::Bar></Foo::Bar> }`, "Foo::Bar"},
			{`view! { <svg:path /> }`, "svg:path"},
			{`view! { <my-widget /> }`, "my-widget"},
		}
		for _, tt := range tests {
			body, err := parseView(t, tt.src)
			require.NoError(t, err, tt.src)
			assert.Equal(t, tt.want, body.Nodes[0].Element.Name)
		}
	})

	t.Run("sibling order preserved", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <a /> "text" {expr} <b /> }`)
		require.NoError(t, err)
		require.Len(t, body.Nodes, 4)
		assert.Equal(t, view.NodeElement, body.Nodes[0].Kind)
		assert.Equal(t, view.NodeText, body.Nodes[1].Kind)
		assert.Equal(t, view.NodeBlock, body.Nodes[2].Kind)
		assert.Equal(t, view.NodeElement, body.Nodes[3].Kind)
	})
}

func TestParseAttributes(t *testing.T) {
	t.Parallel()

	t.Run("bare attribute", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <input disabled /> }`)
		require.NoError(t, err)

		attrs := body.Nodes[0].Element.Attrs
		require.Len(t, attrs, 1)
		assert.Equal(t, "disabled", attrs[0].Name)
		assert.Nil(t, attrs[0].Value)
	})

	t.Run("literal value", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <div class="wide" /> }`)
		require.NoError(t, err)

		attrs := body.Nodes[0].Element.Attrs
		require.Len(t, attrs, 1)
		require.NotNil(t, attrs[0].Value)
		assert.False(t, attrs[0].Value.Braced)
		assert.True(t, attrs[0].Value.Literal())
	})

	t.Run("braced expression value", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <div class={compute(x)} /> }`)
		require.NoError(t, err)

		attrs := body.Nodes[0].Element.Attrs
		require.Len(t, attrs, 1)
		require.NotNil(t, attrs[0].Value)
		assert.True(t, attrs[0].Value.Braced)
		assert.False(t, attrs[0].Value.Literal())
	})

	t.Run("compound attribute names", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <button on:click={handler} data-id=7 /> }`)
		require.NoError(t, err)

		attrs := body.Nodes[0].Element.Attrs
		require.Len(t, attrs, 2)
		assert.Equal(t, "on:click", attrs[0].Name)
		assert.Equal(t, "data-id", attrs[1].Name)
	})
}

func TestParseBlocks(t *testing.T) {
	t.Parallel()

	t.Run("plain expression block", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <p>{count + 1}</p> }`)
		require.NoError(t, err)

		p := body.Nodes[0].Element
		require.Len(t, p.Children, 1)
		block := p.Children[0].Block
		require.NotNil(t, block)
		require.Len(t, block.Segments, 1)
		assert.Nil(t, block.Segments[0].Macro)
		assert.NotEmpty(t, block.Segments[0].Tokens)
	})

	t.Run("nested invocation inside block", func(t *testing.T) {
		t.Parallel()

		body, err := parseView(t, `view! { <div>{ if ok { view! { <p></p> } } }</div> }`)
		require.NoError(t, err)

		block := body.Nodes[0].Element.Children[0].Block
		require.NotNil(t, block)

		var nested *view.Nested
		for _, seg := range block.Segments {
			if seg.Macro != nil {
				nested = seg.Macro
			}
		}
		require.NotNil(t, nested)
		assert.Equal(t, "view", nested.Name)
		require.Len(t, nested.Body.Nodes, 1)
		assert.Equal(t, "p", nested.Body.Nodes[0].Element.Name)
	})
}

func TestParseStructureErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"mismatched closing tag", `view! { <div></span> }`},
		{"stray closing tag", `view! { </div> }`},
		{"stray token", `view! { 42 }`},
		{"doc comment in body", "view! { /// docs\n<p></p> }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseView(t, tt.src)
			require.Error(t, err)

			var structErr *view.StructureError
			require.ErrorAs(t, err, &structErr)
		})
	}
}

func TestBodyScopes(t *testing.T) {
	t.Parallel()

	body, err := parseView(t, `view! { <div><p></p></div> <span /> }`)
	require.NoError(t, err)

	info := body.Scopes()
	assert.Equal(t, body.ScopeID, info.ID)
	assert.Len(t, info.Children, 2)

	// div and span each contribute a child scope; div's contains p's.
	require.Len(t, info.Inner, 2)
	divScope := info.Inner[0]
	assert.Len(t, divScope.Children, 1)
	require.Len(t, divScope.Inner, 1)
	assert.Empty(t, divScope.Inner[0].Children)
}
