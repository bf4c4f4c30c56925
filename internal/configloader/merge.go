package configloader

import "github.com/montrs/montfmt/pkg/config"

// Partial is one configuration source's contribution: every field optional,
// so later sources only override what they actually set.
type Partial struct {
	MaxWidth         *int    `yaml:"max_width"`
	TabSpaces        *int    `yaml:"tab_spaces"`
	IndentationStyle *string `yaml:"indentation_style"`
	NewlineStyle     *string `yaml:"newline_style"`

	View PartialView `yaml:"view"`
}

// PartialView is the optional template-macro section of a Partial.
type PartialView struct {
	ClosingTagStyle     *string  `yaml:"closing_tag_style"`
	AttrValueBraceStyle *string  `yaml:"attr_value_brace_style"`
	MacroNames          []string `yaml:"macro_names"`
	OnError             *string  `yaml:"on_error"`
}

// apply overlays a partial onto settings, field by field.
func apply(s *config.Settings, p *Partial) {
	if p == nil {
		return
	}
	if p.MaxWidth != nil {
		s.MaxWidth = *p.MaxWidth
	}
	if p.TabSpaces != nil {
		s.TabSpaces = *p.TabSpaces
	}
	if p.IndentationStyle != nil {
		s.IndentationStyle = config.IndentationStyle(*p.IndentationStyle)
	}
	if p.NewlineStyle != nil {
		s.NewlineStyle = config.NewlineStyle(*p.NewlineStyle)
	}
	if p.View.ClosingTagStyle != nil {
		s.View.ClosingTagStyle = config.ClosingTagStyle(*p.View.ClosingTagStyle)
	}
	if p.View.AttrValueBraceStyle != nil {
		s.View.AttrValueBraceStyle = config.AttrValueBraceStyle(*p.View.AttrValueBraceStyle)
	}
	if len(p.View.MacroNames) > 0 {
		s.View.MacroNames = p.View.MacroNames
	}
	if p.View.OnError != nil {
		s.View.OnError = config.MacroErrorPolicy(*p.View.OnError)
	}
}
