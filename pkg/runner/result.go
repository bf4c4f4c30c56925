package runner

// FileOutcome is the result of formatting one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Changed reports whether the formatted output differs from the input.
	Changed bool

	// Written reports whether the file was rewritten on disk.
	Written bool

	// Skipped reports that the file changed on disk between read and write,
	// so the formatter left it alone.
	Skipped bool

	// Before and After hold the file content around the formatting pass.
	// Populated for changed files only when Options.KeepOriginals (or Check)
	// is set; reporters use them to render diffs.
	Before string
	After  string

	// Error is set if the file could not be processed. The file on disk is
	// untouched in that case.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files formatted without error.
	FilesProcessed int

	// FilesChanged is the number of files whose output differed.
	FilesChanged int

	// FilesUnchanged is the number of files already formatted.
	FilesUnchanged int

	// FilesWritten is the number of files rewritten on disk.
	FilesWritten int

	// FilesSkipped is the number of files skipped due to concurrent modification.
	FilesSkipped int

	// FilesErrored is the number of files that encountered errors.
	FilesErrored int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file.
	// Files are ordered deterministically (by path).
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasChanges reports whether any file needed formatting.
func (r *Result) HasChanges() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesChanged > 0
}

// HasErrors reports whether any file failed to process.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	r.Stats.FilesProcessed++

	if outcome.Skipped {
		r.Stats.FilesSkipped++
	}
	if outcome.Changed {
		r.Stats.FilesChanged++
	} else {
		r.Stats.FilesUnchanged++
	}
	if outcome.Written {
		r.Stats.FilesWritten++
	}
}
