// Package format runs the formatting pass: lex, parse, comment association,
// printing, and recomposition, producing the formatted text for one file.
// Everything here is pure string-to-string; file I/O belongs to the runner.
package format

import (
	"strings"

	"github.com/montrs/montfmt/pkg/config"
	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/printer"
	"github.com/montrs/montfmt/pkg/source"
	"github.com/montrs/montfmt/pkg/trivia"
	"github.com/montrs/montfmt/pkg/view"
)

// Format formats one file's source text. The pass is all-or-nothing: any
// error means the caller must leave the file untouched. A malformed template
// invocation is governed by view.on_error: preserve keeps that invocation's
// original bytes and formats the rest, abort fails the file.
func Format(name, src string, settings *config.Settings) (string, error) {
	if settings == nil {
		settings = config.Default()
	}

	normalized := source.Normalize(src)
	file := source.NewFile(name, normalized)

	tokens, err := lexer.Scan(file)
	if err != nil {
		return "", err
	}
	comments := trivia.FromTokens(tokens)

	alloc := &parser.Alloc{}
	root, err := parser.Parse(file, tokens, settings.View.MacroNames, alloc)
	if err != nil {
		return "", err
	}

	// Parse every template invocation up front so the error policy can act
	// before anything is printed.
	bodies := make(map[parser.NodeID]*view.Body)
	preserved := make(map[parser.NodeID]bool)
	var preservedSpans []source.Span
	for _, mc := range collectMacros(root.Stmts) {
		body, err := view.Parse(file, mc, settings.View.MacroNames, alloc)
		if err != nil {
			if settings.View.OnError == config.MacroErrorAbort {
				return "", err
			}
			preserved[mc.ID] = true
			preservedSpans = append(preservedSpans, mc.Span)
			continue
		}
		bodies[mc.ID] = body
	}

	// Comments inside a preserved invocation travel with its original bytes.
	kept := comments[:0:0]
	for _, c := range comments {
		if !insideAny(c.Span, preservedSpans) {
			kept = append(kept, c)
		}
	}

	scopeRoot := buildScopes(root, bodies)
	m := trivia.Associate(scopeRoot, kept)

	host := printer.New(normalized, settings)
	chunks := host.PrintFile(root)
	tmpl := view.NewPrinter(normalized, settings, m, host)

	r := &recomposer{
		src:       normalized,
		settings:  settings,
		comments:  m,
		view:      tmpl,
		bodies:    bodies,
		preserved: preserved,
	}
	out := r.file(root, chunks)

	if settings.NewlineStyle == config.NewlineWindows {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return out, nil
}

func insideAny(span source.Span, outer []source.Span) bool {
	for _, o := range outer {
		if o.Contains(span) {
			return true
		}
	}
	return false
}

// collectMacros gathers every template invocation in the host tree, in
// source order.
func collectMacros(stmts []*parser.Stmt) []*parser.MacroCall {
	var out []*parser.MacroCall
	var walkTrees func(trees []*parser.Tree)
	var walkStmts func(stmts []*parser.Stmt)

	walkTrees = func(trees []*parser.Tree) {
		for _, t := range trees {
			switch t.Kind {
			case parser.TreeMacro:
				out = append(out, t.Macro)
			case parser.TreeGroup:
				if t.IsBrace() {
					walkStmts(t.Stmts)
				} else {
					walkTrees(t.Trees)
				}
			}
		}
	}
	walkStmts = func(stmts []*parser.Stmt) {
		for _, s := range stmts {
			walkTrees(s.Trees)
		}
	}

	walkStmts(stmts)
	return out
}

// buildScopes flattens the token tree and the parsed template bodies into
// the scope tree gap association runs on.
func buildScopes(root *parser.File, bodies map[parser.NodeID]*view.Body) *trivia.Scope {
	s := &trivia.Scope{ID: root.ID, Span: root.Span}
	for _, stmt := range root.Stmts {
		s.AddChild(stmt.Span)
	}
	s.Inner = scopesInStmts(root.Stmts, bodies)
	return s
}

func scopesInStmts(stmts []*parser.Stmt, bodies map[parser.NodeID]*view.Body) []*trivia.Scope {
	var out []*trivia.Scope
	for _, stmt := range stmts {
		out = append(out, scopesInTrees(stmt.Trees, bodies)...)
	}
	return out
}

func scopesInTrees(trees []*parser.Tree, bodies map[parser.NodeID]*view.Body) []*trivia.Scope {
	var out []*trivia.Scope
	for _, t := range trees {
		switch t.Kind {
		case parser.TreeGroup:
			if !t.IsBrace() {
				out = append(out, scopesInTrees(t.Trees, bodies)...)
				continue
			}
			s := &trivia.Scope{
				ID:   t.ScopeID,
				Span: source.NewSpan(t.Open.Span.End, t.Close.Span.Start),
			}
			for _, stmt := range t.Stmts {
				s.AddChild(stmt.Span)
			}
			s.Inner = scopesInStmts(t.Stmts, bodies)
			out = append(out, s)

		case parser.TreeMacro:
			if body := bodies[t.Macro.ID]; body != nil {
				out = append(out, toScope(body.Scopes()))
			}
		}
	}
	return out
}

func toScope(info view.ScopeInfo) *trivia.Scope {
	s := &trivia.Scope{ID: info.ID, Span: info.Span, Children: info.Children}
	for _, inner := range info.Inner {
		s.Inner = append(s.Inner, toScope(inner))
	}
	return s
}
