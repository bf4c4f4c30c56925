package pretty

import (
	"fmt"
	"strings"

	"github.com/montrs/montfmt/pkg/runner"
)

const (
	wordFile  = "file"
	wordFiles = "files"
)

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files reformatted, 12 unchanged" or
// "2 files would be reformatted (run without --check to apply)".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, check bool) string {
	if stats.FilesChanged == 0 && stats.FilesErrored == 0 {
		return s.Success.Render("All files formatted") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, plural(stats.FilesProcessed))) + "\n"
	}

	var parts []string

	if stats.FilesChanged > 0 {
		verb := "reformatted"
		if check {
			verb = "would be reformatted"
		}
		parts = append(parts, s.Bold.Render(fmt.Sprintf("%d %s %s", stats.FilesChanged, plural(stats.FilesChanged), verb)))
	}
	if stats.FilesUnchanged > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d unchanged", stats.FilesUnchanged)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		errWord := "errors"
		if stats.FilesErrored == 1 {
			errWord = "error"
		}
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s", stats.FilesErrored, errWord)))
	}

	return strings.Join(parts, ", ") + "\n"
}

func plural(n int) string {
	if n == 1 {
		return wordFile
	}
	return wordFiles
}
