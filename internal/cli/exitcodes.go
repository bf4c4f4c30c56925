package cli

import "github.com/montrs/montfmt/pkg/runner"

// Exit codes for montfmt.
const (
	// ExitSuccess indicates successful execution with nothing to reformat
	// (or everything reformatted in write mode).
	ExitSuccess = 0

	// ExitChanged indicates check mode found files that need formatting.
	ExitChanged = 1

	// ExitRunError indicates at least one file failed to format.
	ExitRunError = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromResult determines the exit code for a run.
// Errors dominate; in check mode, pending changes fail the run.
func ExitCodeFromResult(result *runner.Result, check bool) int {
	if result == nil {
		return ExitSuccess
	}
	if result.HasErrors() {
		return ExitRunError
	}
	if check && result.HasChanges() {
		return ExitChanged
	}
	return ExitSuccess
}
