package reporter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/montrs/montfmt/pkg/runner"
)

// JSONReporter emits machine-readable run results.
type JSONReporter struct {
	opts Options
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{opts: opts}
}

// jsonFile is the wire form of one file outcome.
type jsonFile struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Written bool   `json:"written,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// jsonReport is the wire form of a whole run.
type jsonReport struct {
	Files []jsonFile   `json:"files"`
	Stats runner.Stats `json:"stats"`
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil {
		return 0, nil
	}

	report := jsonReport{
		Files: make([]jsonFile, 0, len(result.Files)),
		Stats: result.Stats,
	}

	changed := 0
	for _, file := range result.Files {
		jf := jsonFile{
			Path:    file.Path,
			Changed: file.Changed,
			Written: file.Written,
			Skipped: file.Skipped,
		}
		if file.Error != nil {
			jf.Error = file.Error.Error()
		}
		if file.Changed {
			changed++
		}
		report.Files = append(report.Files, jf)
	}

	enc := json.NewEncoder(r.opts.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return changed, fmt.Errorf("encode JSON: %w", err)
	}
	return changed, nil
}
