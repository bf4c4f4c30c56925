package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/montrs/montfmt/internal/configloader"
	"github.com/montrs/montfmt/internal/logging"
	"github.com/montrs/montfmt/pkg/config"
	"github.com/montrs/montfmt/pkg/format"
	"github.com/montrs/montfmt/pkg/fsutil"
	"github.com/montrs/montfmt/pkg/reporter"
	"github.com/montrs/montfmt/pkg/runner"
)

// ErrCheckFailed signals that check mode found files needing formatting.
var ErrCheckFailed = errors.New("files need formatting")

// ErrFilesFailed signals that at least one file could not be formatted.
var ErrFilesFailed = errors.New("some files failed to format")

type formatFlags struct {
	check          bool
	stdin          bool
	verbose        bool
	outputFormat   string
	ignore         []string
	followSymlinks bool
	jobs           int
	backup         bool

	maxWidth    int
	tabSpaces   int
	indentation string
	newline     string
	macroNames  []string
	onError     string
}

func newFormatCommand() *cobra.Command {
	flags := &formatFlags{}

	cmd := &cobra.Command{
		Use:   "format [paths...]",
		Short: "Format MontRS source files",
		Long:  formatLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, flags)
		},
	}

	addFormatFlags(cmd, flags)

	return cmd
}

const formatLongDescription = `Format MontRS source files in place.

By default, formats all .rs files in the current directory and
subdirectories. Specify paths to format specific files or directories.
Input can also come from stdin, in which case the result goes to stdout.

Examples:
  montfmt format                  # Format current directory
  montfmt format src/             # Format src directory
  montfmt format main.rs          # Format single file
  montfmt format --check          # Report files needing formatting (CI)
  montfmt format --check --format diff  # Show pending changes as diffs
  montfmt format --stdin < main.rs      # Format stdin to stdout`

func runFormat(cmd *cobra.Command, args []string, flags *formatFlags) error {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLI:          cliPartial(cmd, flags),
	})
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}
	settings := loadResult.Settings

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldMaxWidth, settings.MaxWidth,
		logging.FieldTabSpaces, settings.TabSpaces,
		logging.FieldMacros, settings.View.MacroNames,
	)

	// Piped input with no paths formats stdin, like an explicit --stdin.
	if flags.stdin || (len(args) == 0 && !stdinIsTerminal()) {
		return runFormatStdin(cmd, flags, settings)
	}

	backup := fsutil.DefaultBackupConfig()
	backup.Enabled = flags.backup

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		Extensions:     runner.DefaultExtensions(),
		ExcludeGlobs:   flags.ignore,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           flags.jobs,
		Check:          flags.check,
		KeepOriginals:  flags.outputFormat == "diff",
		Backup:         backup,
		Settings:       settings,
	}

	logger.Debug("starting format run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldCheck, runOpts.Check,
		logging.FieldJobs, runOpts.Jobs,
	)

	ctx = logging.WithLogger(ctx, logger)
	result, err := runner.New().Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("format run failed"), err)
	}

	if flags.verbose {
		for _, file := range result.Files {
			if file.Written {
				logger.Info("formatted", logging.FieldPath, file.Path)
			}
		}
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	outputFormat, err := reporter.ParseFormat(flags.outputFormat)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      outputFormat,
		Color:       colorMode,
		Check:       flags.check,
		ShowSummary: true,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	switch ExitCodeFromResult(result, flags.check) {
	case ExitChanged:
		return ErrCheckFailed
	case ExitRunError:
		return ErrFilesFailed
	default:
		return nil
	}
}

// runFormatStdin formats a single document from stdin to stdout.
// In check mode nothing is written; the exit code reports whether the input
// was already formatted.
func runFormatStdin(cmd *cobra.Command, flags *formatFlags, settings *config.Settings) error {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	formatted, err := format.Format("<stdin>", string(content), settings)
	if err != nil {
		return errors.Join(ErrFilesFailed, err)
	}

	if flags.check {
		if formatted != string(content) {
			return ErrCheckFailed
		}
		return nil
	}

	if _, err := io.WriteString(cmd.OutOrStdout(), formatted); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	return nil
}

// stdinIsTerminal reports whether stdin is an interactive terminal.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// cliPartial converts explicitly set CLI flags into a config partial.
// Unset flags contribute nothing, so file and env values shine through.
func cliPartial(cmd *cobra.Command, flags *formatFlags) *configloader.Partial {
	p := &configloader.Partial{}

	if cmd.Flags().Changed("max-width") {
		p.MaxWidth = &flags.maxWidth
	}
	if cmd.Flags().Changed("tab-spaces") {
		p.TabSpaces = &flags.tabSpaces
	}
	if cmd.Flags().Changed("indentation") {
		p.IndentationStyle = &flags.indentation
	}
	if cmd.Flags().Changed("newline") {
		p.NewlineStyle = &flags.newline
	}
	if cmd.Flags().Changed("macros") {
		p.View.MacroNames = flags.macroNames
	}
	if cmd.Flags().Changed("on-error") {
		p.View.OnError = &flags.onError
	}

	return p
}

func addFormatFlags(cmd *cobra.Command, flags *formatFlags) {
	cmd.Flags().BoolVar(&flags.check, "check", false,
		"report files that need formatting without writing")
	cmd.Flags().BoolVar(&flags.stdin, "stdin", false, "format stdin to stdout")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log each rewritten file")
	cmd.Flags().StringVar(&flags.outputFormat, "format", "text", "output format: text, json, diff")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "traverse directory symlinks")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep a sidecar backup of rewritten files")

	cmd.Flags().IntVar(&flags.maxWidth, "max-width", 100, "maximum line width")
	cmd.Flags().IntVar(&flags.tabSpaces, "tab-spaces", 4, "spaces per indentation level")
	cmd.Flags().StringVar(&flags.indentation, "indentation", "spaces", "indentation style: spaces, tabs")
	cmd.Flags().StringVar(&flags.newline, "newline", "unix", "newline style: unix, windows")
	cmd.Flags().StringSliceVar(&flags.macroNames, "macros", nil, "template macro names to format")
	cmd.Flags().StringVar(&flags.onError, "on-error", "preserve",
		"malformed template handling: preserve, abort")
}
