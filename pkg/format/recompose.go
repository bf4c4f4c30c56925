package format

import (
	"strings"

	"github.com/montrs/montfmt/pkg/config"
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/printer"
	"github.com/montrs/montfmt/pkg/trivia"
	"github.com/montrs/montfmt/pkg/view"
)

// recomposer assembles the final text from the printed chunk tree: it owns
// line layout, indentation, blank-line policy, inline-versus-expanded block
// decisions, and comment injection.
type recomposer struct {
	src       string
	settings  *config.Settings
	comments  *trivia.CommentMap
	view      *view.Printer
	bodies    map[parser.NodeID]*view.Body
	preserved map[parser.NodeID]bool

	b strings.Builder
}

func (r *recomposer) file(root *parser.File, chunks []printer.Chunk) string {
	r.writeStmts(root.ID, root.Span.Start, chunks, 0)

	out := strings.TrimRight(r.b.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (r *recomposer) indent(depth int) string {
	return strings.Repeat(r.settings.Indent(), depth)
}

// col returns the width of the current (unterminated) output line.
func (r *recomposer) col() int {
	s := r.b.String()
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return len(s) - i - 1
	}
	return len(s)
}

// blankBetween reports whether the source had at least one blank line
// between the two offsets; the output keeps exactly one.
func (r *recomposer) blankBetween(prevEnd, nextStart int) bool {
	if prevEnd <= 0 || prevEnd >= nextStart || nextStart > len(r.src) {
		return false
	}
	return strings.Count(r.src[prevEnd:nextStart], "\n") >= 2
}

// writeStmts emits a statement list, one chunk per line, weaving in the
// scope's gap comments.
func (r *recomposer) writeStmts(scope parser.NodeID, scopeStart int, chunks []printer.Chunk, depth int) {
	ind := r.indent(depth)
	prevEnd := scopeStart

	emitComments := func(gap int) {
		for _, c := range r.comments.At(scope, gap) {
			if r.blankBetween(prevEnd, c.Span.Start) {
				r.b.WriteString("\n")
			}
			r.b.WriteString(ind)
			r.b.WriteString(c.Text)
			r.b.WriteString("\n")
			prevEnd = c.Span.End
		}
	}

	for i, c := range chunks {
		emitComments(i)
		if r.blankBetween(prevEnd, c.Span.Start) {
			r.b.WriteString("\n")
		}
		r.b.WriteString(ind)
		r.writeStmt(c, depth)
		r.b.WriteString("\n")
		prevEnd = c.Span.End
	}
	emitComments(len(chunks))
}

// writeStmt streams one statement's pieces onto the current line, expanding
// blocks and template invocations as layout demands.
func (r *recomposer) writeStmt(c printer.Chunk, depth int) {
	for _, piece := range c.Pieces {
		switch piece.Kind {
		case printer.PieceText:
			r.b.WriteString(piece.Text)

		case printer.PieceBlock:
			r.writeBlock(piece.Block, depth)

		case printer.PieceMacro:
			mc := piece.Macro
			if r.preserved[mc.ID] {
				r.b.WriteString(mc.Span.Text(r.src))
				continue
			}
			r.b.WriteString(r.view.PrintInvocation(mc.Name.Text, r.bodies[mc.ID], depth))
		}
	}
}

// writeBlock chooses the block's final layout. Inline requires the printer
// to have allowed it, zero comments anywhere under the scope, and the line
// to stay within max_width.
func (r *recomposer) writeBlock(blk *printer.BlockChunk, depth int) {
	if blk.CanInline && r.comments.SubtreeCount(blk.ScopeID) == 0 {
		inline := printer.RenderInlineBraces(blk)
		if r.col()+len(inline) <= r.settings.MaxWidth {
			r.b.WriteString(inline)
			return
		}
	}

	r.b.WriteString("{\n")
	r.writeStmts(blk.ScopeID, blk.Span.Start, blk.Stmts, depth+1)
	r.b.WriteString(r.indent(depth))
	r.b.WriteString("}")
}
