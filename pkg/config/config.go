// Package config defines the formatter settings types. These are pure data
// structures: loading and layering live in internal/configloader, and a
// resolved *Settings is passed explicitly into every formatting call. There
// is no ambient configuration state.
package config

import "fmt"

// IndentationStyle selects the indentation unit.
type IndentationStyle string

const (
	IndentSpaces IndentationStyle = "spaces"
	IndentTabs   IndentationStyle = "tabs"
)

// IsValid reports whether the style is a recognized value.
func (s IndentationStyle) IsValid() bool {
	return s == IndentSpaces || s == IndentTabs
}

// NewlineStyle selects the line terminator of the output.
type NewlineStyle string

const (
	NewlineUnix    NewlineStyle = "unix"
	NewlineWindows NewlineStyle = "windows"
)

// IsValid reports whether the style is a recognized value.
func (s NewlineStyle) IsValid() bool {
	return s == NewlineUnix || s == NewlineWindows
}

// ClosingTagStyle controls how childless template elements are closed.
type ClosingTagStyle string

const (
	// CloseSelfClosing prints childless elements as <div />.
	CloseSelfClosing ClosingTagStyle = "self_closing"

	// CloseNonSelfClosing prints childless elements as <div></div>.
	CloseNonSelfClosing ClosingTagStyle = "non_self_closing"

	// ClosePreserve keeps whichever form the source used.
	ClosePreserve ClosingTagStyle = "preserve"
)

// IsValid reports whether the style is a recognized value.
func (s ClosingTagStyle) IsValid() bool {
	switch s {
	case CloseSelfClosing, CloseNonSelfClosing, ClosePreserve:
		return true
	default:
		return false
	}
}

// AttrValueBraceStyle controls braces around template attribute values.
type AttrValueBraceStyle string

const (
	// BracesWhenRequired braces only non-literal values.
	BracesWhenRequired AttrValueBraceStyle = "when_required"

	// BracesAlways braces every attribute value.
	BracesAlways AttrValueBraceStyle = "always"

	// BracesNever strips braces wherever the value is a single expression.
	BracesNever AttrValueBraceStyle = "never"
)

// IsValid reports whether the style is a recognized value.
func (s AttrValueBraceStyle) IsValid() bool {
	switch s {
	case BracesWhenRequired, BracesAlways, BracesNever:
		return true
	default:
		return false
	}
}

// MacroErrorPolicy decides what a malformed template invocation does to the
// rest of its file.
type MacroErrorPolicy string

const (
	// MacroErrorPreserve leaves the malformed invocation's original text
	// byte-for-byte and formats the rest of the file.
	MacroErrorPreserve MacroErrorPolicy = "preserve"

	// MacroErrorAbort fails the whole file; nothing is written.
	MacroErrorAbort MacroErrorPolicy = "abort"
)

// IsValid reports whether the policy is a recognized value.
func (p MacroErrorPolicy) IsValid() bool {
	return p == MacroErrorPreserve || p == MacroErrorAbort
}

// ViewSettings configures the template-macro printer.
type ViewSettings struct {
	ClosingTagStyle     ClosingTagStyle     `yaml:"closing_tag_style"`
	AttrValueBraceStyle AttrValueBraceStyle `yaml:"attr_value_brace_style"`
	MacroNames          []string            `yaml:"macro_names"`
	OnError             MacroErrorPolicy    `yaml:"on_error"`
}

// Settings is the complete, immutable per-invocation configuration.
type Settings struct {
	MaxWidth         int              `yaml:"max_width"`
	TabSpaces        int              `yaml:"tab_spaces"`
	IndentationStyle IndentationStyle `yaml:"indentation_style"`
	NewlineStyle     NewlineStyle     `yaml:"newline_style"`
	View             ViewSettings     `yaml:"view"`
}

// Default returns the built-in settings, matching the documented defaults:
// 100-column width, four-space indentation, Unix newlines, self-closing
// childless tags, braces only when required, and the `view` macro.
func Default() *Settings {
	return &Settings{
		MaxWidth:         100,
		TabSpaces:        4,
		IndentationStyle: IndentSpaces,
		NewlineStyle:     NewlineUnix,
		View: ViewSettings{
			ClosingTagStyle:     CloseSelfClosing,
			AttrValueBraceStyle: BracesWhenRequired,
			MacroNames:          []string{"view"},
			OnError:             MacroErrorPreserve,
		},
	}
}

// Indent returns the indentation string for one level.
func (s *Settings) Indent() string {
	if s.IndentationStyle == IndentTabs {
		return "\t"
	}
	out := make([]byte, s.TabSpaces)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}

// Validate checks every field and returns an error naming the first invalid
// value. It runs once at startup, before any file is processed.
func (s *Settings) Validate() error {
	if s.MaxWidth <= 0 {
		return fmt.Errorf("max_width must be positive, got %d", s.MaxWidth)
	}
	if s.TabSpaces <= 0 {
		return fmt.Errorf("tab_spaces must be positive, got %d", s.TabSpaces)
	}
	if !s.IndentationStyle.IsValid() {
		return fmt.Errorf("indentation_style must be %q or %q, got %q",
			IndentSpaces, IndentTabs, s.IndentationStyle)
	}
	if !s.NewlineStyle.IsValid() {
		return fmt.Errorf("newline_style must be %q or %q, got %q",
			NewlineUnix, NewlineWindows, s.NewlineStyle)
	}
	if !s.View.ClosingTagStyle.IsValid() {
		return fmt.Errorf("view.closing_tag_style: unrecognized value %q", s.View.ClosingTagStyle)
	}
	if !s.View.AttrValueBraceStyle.IsValid() {
		return fmt.Errorf("view.attr_value_brace_style: unrecognized value %q", s.View.AttrValueBraceStyle)
	}
	if !s.View.OnError.IsValid() {
		return fmt.Errorf("view.on_error: unrecognized value %q", s.View.OnError)
	}
	if len(s.View.MacroNames) == 0 {
		return fmt.Errorf("view.macro_names must name at least one macro")
	}
	return nil
}
