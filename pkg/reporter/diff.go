package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/montrs/montfmt/internal/ui/pretty"
	"github.com/montrs/montfmt/pkg/runner"
)

// diffContext is the number of unchanged lines shown around each hunk.
const diffContext = 3

// lcsSizeLimit caps the LCS table size; larger middles degrade to a single
// replace hunk.
const lcsSizeLimit = 4_000_000

// Diff is a unified diff between two versions of one file.
type Diff struct {
	// Path is the file the diff describes.
	Path string

	// Additions and Deletions count changed lines.
	Additions int
	Deletions int

	hunks []hunk
}

type hunk struct {
	aStart, aCount int
	bStart, bCount int
	lines          []string // prefixed with ' ', '-', or '+'
}

// HasChanges reports whether the diff contains any changed lines.
func (d *Diff) HasChanges() bool {
	return len(d.hunks) > 0
}

// String renders the diff in unified format, including ---/+++ headers.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", d.Path)
	fmt.Fprintf(&b, "+++ b/%s\n", d.Path)
	for _, h := range d.hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.aStart, h.aCount, h.bStart, h.bCount)
		for _, line := range h.lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

type diffOp struct {
	kind byte // ' ', '-', '+'
	text string
}

// ComputeDiff builds a unified diff between two versions of a file.
func ComputeDiff(path, before, after string) *Diff {
	a := splitLines(before)
	b := splitLines(after)
	ops := diffOps(a, b)

	d := &Diff{Path: path}
	for _, op := range ops {
		switch op.kind {
		case '-':
			d.Deletions++
		case '+':
			d.Additions++
		}
	}
	d.hunks = groupHunks(ops)
	return d
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// diffOps computes a line-level edit script: common prefix and suffix are
// stripped, the middle goes through an LCS pass.
func diffOps(a, b []string) []diffOp {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	var ops []diffOp
	for _, line := range a[:prefix] {
		ops = append(ops, diffOp{' ', line})
	}
	ops = append(ops, middleOps(a[prefix:len(a)-suffix], b[prefix:len(b)-suffix])...)
	for _, line := range a[len(a)-suffix:] {
		ops = append(ops, diffOp{' ', line})
	}
	return ops
}

func middleOps(a, b []string) []diffOp {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	var ops []diffOp
	if len(a)*len(b) > lcsSizeLimit {
		for _, line := range a {
			ops = append(ops, diffOp{'-', line})
		}
		for _, line := range b {
			ops = append(ops, diffOp{'+', line})
		}
		return ops
	}

	// LCS table, then backtrack.
	m, n := len(a), len(b)
	table := make([][]int, m+1)
	for i := range table {
		table[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			ops = append(ops, diffOp{' ', a[i]})
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			ops = append(ops, diffOp{'-', a[i]})
			i++
		default:
			ops = append(ops, diffOp{'+', b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		ops = append(ops, diffOp{'-', a[i]})
	}
	for ; j < n; j++ {
		ops = append(ops, diffOp{'+', b[j]})
	}
	return ops
}

// groupHunks merges changed runs closer than two contexts apart into hunks
// with diffContext lines of surrounding context.
func groupHunks(ops []diffOp) []hunk {
	// Lines of a and b consumed before each op.
	aPos := make([]int, len(ops)+1)
	bPos := make([]int, len(ops)+1)
	for i, op := range ops {
		aPos[i+1] = aPos[i]
		bPos[i+1] = bPos[i]
		if op.kind != '+' {
			aPos[i+1]++
		}
		if op.kind != '-' {
			bPos[i+1]++
		}
	}

	var hunks []hunk
	i := 0
	for i < len(ops) {
		if ops[i].kind == ' ' {
			i++
			continue
		}

		// Extend the group while change runs are within merge distance.
		lo := i
		hi := i
		j := i + 1
		gap := 0
		for j < len(ops) {
			if ops[j].kind == ' ' {
				gap++
				if gap > 2*diffContext {
					break
				}
			} else {
				gap = 0
				hi = j
			}
			j++
		}

		start := max(lo-diffContext, 0)
		end := min(hi+diffContext, len(ops)-1)

		h := hunk{
			aStart: aPos[start] + 1,
			bStart: bPos[start] + 1,
			aCount: aPos[end+1] - aPos[start],
			bCount: bPos[end+1] - bPos[start],
		}
		if h.aCount == 0 {
			h.aStart = aPos[start]
		}
		if h.bCount == 0 {
			h.bStart = bPos[start]
		}
		for _, op := range ops[start : end+1] {
			h.lines = append(h.lines, string(op.kind)+op.text)
		}
		hunks = append(hunks, h)

		i = end + 1
	}
	return hunks
}

// DiffReporter formats results as unified diffs in GitHub style.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Report implements Reporter.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil {
		return 0, nil
	}

	var filesWithDiffs int
	var totalAdditions, totalDeletions int

	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(r.out, "%s: %s\n",
				r.styles.FilePath.Render(relativePath(file.Path)),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}
		if !file.Changed {
			continue
		}

		diff := ComputeDiff(relativePath(file.Path), file.Before, file.After)
		if !diff.HasChanges() {
			continue
		}

		filesWithDiffs++
		totalAdditions += diff.Additions
		totalDeletions += diff.Deletions
		r.writeDiff(diff)
	}

	if filesWithDiffs > 0 && r.opts.ShowSummary {
		r.writeSummary(filesWithDiffs, totalAdditions, totalDeletions)
	}

	return filesWithDiffs, nil
}

// writeDiff outputs a single file's diff with formatting.
func (r *DiffReporter) writeDiff(diff *Diff) {
	// Git-style header: "diff --git a/file b/file"
	header := fmt.Sprintf("diff --git a/%s b/%s", diff.Path, diff.Path)
	fmt.Fprintln(r.out, r.styles.DiffHeader.Render(header))

	for _, line := range strings.Split(strings.TrimRight(diff.String(), "\n"), "\n") {
		r.writeDiffLine(line)
	}

	fmt.Fprintln(r.out) // Blank line between files
}

// relativePath converts an absolute path to a relative path from the current directory.
// If the relative path would require too many "../" traversals, use the basename instead.
func relativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return filepath.Base(path)
	}
	if strings.Count(rel, "..") > 2 {
		return filepath.Base(path)
	}
	return rel
}

// writeDiffLine formats a single diff line with color.
func (r *DiffReporter) writeDiffLine(line string) {
	var styled string

	switch {
	case strings.HasPrefix(line, "@@"):
		styled = r.styles.DiffHunk.Render(line)
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "+"):
		styled = r.styles.DiffAdd.Render(line)
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "-"):
		styled = r.styles.DiffRemove.Render(line)
	default:
		styled = r.styles.DiffContext.Render(line)
	}

	fmt.Fprintln(r.out, styled)
}

// writeSummary writes a summary line at the end.
func (r *DiffReporter) writeSummary(files, additions, deletions int) {
	var parts []string

	fileWord := "files"
	if files == 1 {
		fileWord = "file"
	}
	parts = append(parts, fmt.Sprintf("%d %s changed", files, fileWord))

	if additions > 0 {
		word := "insertions"
		if additions == 1 {
			word = "insertion"
		}
		parts = append(parts, r.styles.DiffAdd.Render(fmt.Sprintf("%d %s(+)", additions, word)))
	}
	if deletions > 0 {
		word := "deletions"
		if deletions == 1 {
			word = "deletion"
		}
		parts = append(parts, r.styles.DiffRemove.Render(fmt.Sprintf("%d %s(-)", deletions, word)))
	}

	fmt.Fprintln(r.out, strings.Join(parts, ", "))
}
