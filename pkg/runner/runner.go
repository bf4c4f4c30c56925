package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/montrs/montfmt/internal/logging"
	"github.com/montrs/montfmt/pkg/config"
	"github.com/montrs/montfmt/pkg/format"
	"github.com/montrs/montfmt/pkg/fsutil"
)

// Runner orchestrates formatting across many files.
type Runner struct{}

// New creates a new Runner.
func New() *Runner {
	return &Runner{}
}

// Run discovers files under opts.Paths and formats them concurrently.
// It returns a deterministic collection of FileOutcome values and aggregate
// stats.
//
// The runner:
//   - Discovers files matching the options criteria
//   - Formats files concurrently using a worker pool
//   - Aggregates results into a single Result with statistics
//   - Respects context cancellation
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Settings == nil {
		opts.Settings = config.Default()
	}

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(files) {
		jobs = len(files)
	}

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup

	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, opts)
		}()
	}

	// Feed work in a separate goroutine.
	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers complete out of order; key by path so the result can be
	// rebuilt in discovery order.
	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// worker formats files from workCh and sends outcomes to outCh.
func (r *Runner) worker(ctx context.Context, workCh <-chan string, outCh chan<- FileOutcome, opts Options) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.processFile(ctx, path, opts)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// processFile runs the formatting pass for one file and, outside check mode,
// rewrites the file atomically when the output differs.
func (r *Runner) processFile(ctx context.Context, path string, opts Options) FileOutcome {
	logger := logging.FromContext(ctx)
	outcome := FileOutcome{Path: path}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	formatted, err := format.Format(path, string(content), opts.Settings)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	if formatted == string(content) {
		logger.Debug("already formatted", logging.FieldPath, path)
		return outcome
	}
	outcome.Changed = true

	if opts.Check || opts.KeepOriginals {
		outcome.Before = string(content)
		outcome.After = formatted
	}
	if opts.Check {
		logger.Debug("needs formatting", logging.FieldPath, path)
		return outcome
	}

	// The file may have changed under us while formatting; rewriting it
	// would destroy the edit.
	modified, err := fsutil.CheckModified(ctx, info)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	if modified {
		logger.Warn("file changed during formatting, skipping", logging.FieldPath, path)
		outcome.Skipped = true
		return outcome
	}

	if _, err := fsutil.CreateBackup(ctx, path, opts.Backup); err != nil {
		outcome.Error = err
		return outcome
	}

	if err := fsutil.WriteAtomic(ctx, path, []byte(formatted), info.Mode); err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Written = true
	logger.Debug("formatted", logging.FieldPath, path)

	return outcome
}
