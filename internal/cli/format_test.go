package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montrs/montfmt/internal/cli"
	"github.com/montrs/montfmt/pkg/runner"
)

const (
	unformatted = "fn main(){let x=1;}"
	formatted   = "fn main() {\n    let x = 1;\n}\n"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "none", Date: "unknown"})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatCommandWritesFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "dirty.rs", unformatted)

	out, _, err := execute(t, "format", dir)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, formatted, string(got))
	assert.Contains(t, out, "1 file reformatted")
}

func TestFormatCommandCheckMode(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "dirty.rs", unformatted)

	out, _, err := execute(t, "format", "--check", dir)
	require.ErrorIs(t, err, cli.ErrCheckFailed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unformatted, string(got), "check mode must not rewrite files")
	assert.Contains(t, out, "would be reformatted")
}

func TestFormatCommandCheckCleanTree(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "clean.rs", formatted)

	out, _, err := execute(t, "format", "--check", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "All files formatted")
}

func TestFormatCommandDiffOutput(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "dirty.rs", unformatted)

	out, _, err := execute(t, "format", "--check", "--format", "diff", "--color", "never", dir)
	require.ErrorIs(t, err, cli.ErrCheckFailed)
	assert.Contains(t, out, "diff --git")
	assert.Contains(t, out, "+fn main() {")
}

func TestFormatCommandJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "dirty.rs", unformatted)

	out, _, err := execute(t, "format", "--format", "json", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"changed": true`)
	assert.Contains(t, out, `"stats"`)
}

func TestFormatCommandBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "broken.rs", "fn main() {\n")

	_, _, err := execute(t, "format", dir)
	require.ErrorIs(t, err, cli.ErrFilesFailed)

	got, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "fn main() {\n", string(got))
}

func TestFormatCommandInvalidFormatFlag(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.rs", formatted)

	_, _, err := execute(t, "format", "--format", "csv", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFormatCommandStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := cli.NewRootCommand(cli.BuildInfo{})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(unformatted))
	cmd.SetArgs([]string{"format", "--stdin"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, formatted, out.String())
}

func TestFormatCommandStdinCheck(t *testing.T) {
	t.Run("needs formatting", func(t *testing.T) {
		cmd := cli.NewRootCommand(cli.BuildInfo{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(strings.NewReader(unformatted))
		cmd.SetArgs([]string{"format", "--stdin", "--check"})

		require.ErrorIs(t, cmd.Execute(), cli.ErrCheckFailed)
	})

	t.Run("already formatted", func(t *testing.T) {
		var out bytes.Buffer
		cmd := cli.NewRootCommand(cli.BuildInfo{})
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(strings.NewReader(formatted))
		cmd.SetArgs([]string{"format", "--stdin", "--check"})

		require.NoError(t, cmd.Execute())
		assert.Empty(t, out.String(), "check mode writes nothing to stdout")
	})
}

func TestFormatCommandMaxWidthFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "wide.rs",
		"let result = compute(alpha, beta, gamma, delta);\n")

	_, _, err := execute(t, "format", "--max-width", "40", dir)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "compute(\n")
}

func TestVersionCommand(t *testing.T) {
	_, _, err := execute(t, "version")
	require.NoError(t, err)
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *runner.Result
		check  bool
		want   int
	}{
		{"nil result", nil, false, cli.ExitSuccess},
		{"clean run", &runner.Result{}, false, cli.ExitSuccess},
		{
			"changes in write mode",
			&runner.Result{Stats: runner.Stats{FilesChanged: 2}},
			false,
			cli.ExitSuccess,
		},
		{
			"changes in check mode",
			&runner.Result{Stats: runner.Stats{FilesChanged: 2}},
			true,
			cli.ExitChanged,
		},
		{
			"errors dominate check",
			&runner.Result{Stats: runner.Stats{FilesChanged: 1, FilesErrored: 1}},
			true,
			cli.ExitRunError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, cli.ExitCodeFromResult(tt.result, tt.check))
		})
	}
}
