package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/montrs/montfmt/internal/ui/pretty"
	"github.com/montrs/montfmt/pkg/runner"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// TextReporter writes human-readable per-file lines and a run summary.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil {
		return 0, nil
	}

	out := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)

	changed := 0
	for _, file := range result.Files {
		switch {
		case file.Error != nil:
			fmt.Fprintf(out, "%s: %s\n",
				r.styles.FilePath.Render(relativePath(file.Path)),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
		case file.Skipped:
			fmt.Fprintf(out, "%s: %s\n",
				r.styles.FilePath.Render(relativePath(file.Path)),
				r.styles.Warning.Render("skipped (modified during run)"),
			)
		case file.Changed:
			changed++
			fmt.Fprintln(out, r.styles.FilePath.Render(relativePath(file.Path)))
		}
	}

	if r.opts.ShowSummary {
		io.WriteString(out, r.styles.FormatSummaryOneLine(result.Stats, r.opts.Check))
	}

	if err := out.Flush(); err != nil {
		return changed, fmt.Errorf("write output: %w", err)
	}
	return changed, nil
}
