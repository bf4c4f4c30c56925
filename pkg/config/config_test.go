package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montrs/montfmt/pkg/config"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	s := config.Default()

	assert.Equal(t, 100, s.MaxWidth)
	assert.Equal(t, 4, s.TabSpaces)
	assert.Equal(t, config.IndentSpaces, s.IndentationStyle)
	assert.Equal(t, config.NewlineUnix, s.NewlineStyle)
	assert.Equal(t, config.CloseSelfClosing, s.View.ClosingTagStyle)
	assert.Equal(t, config.BracesWhenRequired, s.View.AttrValueBraceStyle)
	assert.Equal(t, []string{"view"}, s.View.MacroNames)
	assert.Equal(t, config.MacroErrorPreserve, s.View.OnError)

	require.NoError(t, s.Validate())
}

func TestIndent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		style config.IndentationStyle
		tabs  int
		want  string
	}{
		{"four spaces", config.IndentSpaces, 4, "    "},
		{"two spaces", config.IndentSpaces, 2, "  "},
		{"tabs ignore tab_spaces", config.IndentTabs, 4, "\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := config.Default()
			s.IndentationStyle = tt.style
			s.TabSpaces = tt.tabs
			assert.Equal(t, tt.want, s.Indent())
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Settings)
		wantIn string
	}{
		{
			name:   "zero max width",
			mutate: func(s *config.Settings) { s.MaxWidth = 0 },
			wantIn: "max_width",
		},
		{
			name:   "negative tab spaces",
			mutate: func(s *config.Settings) { s.TabSpaces = -1 },
			wantIn: "tab_spaces",
		},
		{
			name:   "bad indentation style",
			mutate: func(s *config.Settings) { s.IndentationStyle = "dots" },
			wantIn: "indentation_style",
		},
		{
			name:   "bad newline style",
			mutate: func(s *config.Settings) { s.NewlineStyle = "mac" },
			wantIn: "newline_style",
		},
		{
			name:   "bad closing tag style",
			mutate: func(s *config.Settings) { s.View.ClosingTagStyle = "sometimes" },
			wantIn: "closing_tag_style",
		},
		{
			name:   "bad brace style",
			mutate: func(s *config.Settings) { s.View.AttrValueBraceStyle = "maybe" },
			wantIn: "attr_value_brace_style",
		},
		{
			name:   "bad error policy",
			mutate: func(s *config.Settings) { s.View.OnError = "panic" },
			wantIn: "on_error",
		},
		{
			name:   "empty macro names",
			mutate: func(s *config.Settings) { s.View.MacroNames = nil },
			wantIn: "macro_names",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := config.Default()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantIn)
		})
	}
}
