package configloader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montrs/montfmt/internal/configloader"
	"github.com/montrs/montfmt/pkg/config"
)

// newProject creates a temp directory marked as a VCS root so upward config
// searches never escape into the test machine's real tree.
func newProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func isolatedOptions(dir string) configloader.LoadOptions {
	return configloader.LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	result, err := configloader.Load(context.Background(), isolatedOptions(newProject(t)))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), result.Settings)
	assert.Empty(t, result.LoadedFrom)
	assert.Empty(t, result.Warnings)
}

func TestLoadProjectConfig(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	path := writeConfig(t, dir, ".montfmt.yml", "max_width: 80\nview:\n  closing_tag_style: non_self_closing\n")

	result, err := configloader.Load(context.Background(), isolatedOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, 80, result.Settings.MaxWidth)
	assert.Equal(t, config.CloseNonSelfClosing, result.Settings.View.ClosingTagStyle)
	assert.Equal(t, config.Default().TabSpaces, result.Settings.TabSpaces)
	assert.Equal(t, []string{path}, result.LoadedFrom)
}

func TestLoadProjectConfigFoundUpward(t *testing.T) {
	t.Parallel()

	root := newProject(t)
	writeConfig(t, root, ".montfmt.yml", "max_width: 90\n")

	nested := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	opts := isolatedOptions(root)
	opts.WorkingDir = nested
	result, err := configloader.Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 90, result.Settings.MaxWidth)
}

func TestLoadManifestFmtSection(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	path := writeConfig(t, dir, "montrs.yaml", "package:\n  name: demo\nfmt:\n  tab_spaces: 2\n")

	result, err := configloader.Load(context.Background(), isolatedOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Settings.TabSpaces)
	assert.Equal(t, []string{path}, result.LoadedFrom)
}

func TestLoadManifestWithoutFmtSection(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	writeConfig(t, dir, "montrs.yaml", "package:\n  name: demo\n")

	result, err := configloader.Load(context.Background(), isolatedOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), result.Settings)
	assert.Empty(t, result.LoadedFrom)
}

func TestLoadProjectConfigShadowsManifest(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	writeConfig(t, dir, "montrs.yaml", "fmt:\n  max_width: 60\n")
	writeConfig(t, dir, ".montfmt.yml", "max_width: 110\n")

	result, err := configloader.Load(context.Background(), isolatedOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, 110, result.Settings.MaxWidth)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "fmt section of the manifest is ignored")
}

func TestLoadExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	writeConfig(t, dir, ".montfmt.yml", "max_width: 80\ntab_spaces: 2\n")
	explicit := writeConfig(t, dir, "ci.yml", "max_width: 120\n")

	opts := isolatedOptions(dir)
	opts.ExplicitPath = explicit
	result, err := configloader.Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 120, result.Settings.MaxWidth)
	assert.Equal(t, 2, result.Settings.TabSpaces, "fields the explicit file omits keep lower-precedence values")
	assert.Len(t, result.LoadedFrom, 2)
}

func TestLoadEnvOverridesFiles(t *testing.T) {
	dir := newProject(t)
	writeConfig(t, dir, ".montfmt.yml", "max_width: 80\n")

	t.Setenv("MONTFMT_MAX_WIDTH", "140")
	t.Setenv("MONTFMT_MACRO_NAMES", "view, html")

	opts := isolatedOptions(dir)
	opts.IgnoreEnv = false
	result, err := configloader.Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 140, result.Settings.MaxWidth)
	assert.Equal(t, []string{"view", "html"}, result.Settings.View.MacroNames)
}

func TestLoadCLIHasHighestPrecedence(t *testing.T) {
	dir := newProject(t)
	writeConfig(t, dir, ".montfmt.yml", "max_width: 80\n")
	t.Setenv("MONTFMT_MAX_WIDTH", "140")

	width := 72
	opts := isolatedOptions(dir)
	opts.IgnoreEnv = false
	opts.CLI = &configloader.Partial{MaxWidth: &width}

	result, err := configloader.Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 72, result.Settings.MaxWidth)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()

		opts := isolatedOptions(newProject(t))
		opts.ExplicitPath = filepath.Join(opts.WorkingDir, "nope.yml")
		_, err := configloader.Load(context.Background(), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load explicit config")
	})

	t.Run("malformed YAML", func(t *testing.T) {
		t.Parallel()

		dir := newProject(t)
		writeConfig(t, dir, ".montfmt.yml", "max_width: [not a number\n")
		_, err := configloader.Load(context.Background(), isolatedOptions(dir))
		require.Error(t, err)
	})

	t.Run("invalid setting value", func(t *testing.T) {
		t.Parallel()

		dir := newProject(t)
		writeConfig(t, dir, ".montfmt.yml", "indentation_style: elastic\n")
		_, err := configloader.Load(context.Background(), isolatedOptions(dir))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("invalid env value", func(t *testing.T) {
		t.Setenv("MONTFMT_TAB_SPACES", "four")

		opts := isolatedOptions(newProject(t))
		opts.IgnoreEnv = false
		_, err := configloader.Load(context.Background(), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MONTFMT_TAB_SPACES")
	})
}

func TestLoadIgnoreProjectConfig(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	writeConfig(t, dir, ".montfmt.yml", "max_width: 80\n")

	opts := isolatedOptions(dir)
	opts.IgnoreProjectConfig = true
	result, err := configloader.Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, config.Default().MaxWidth, result.Settings.MaxWidth)
}

func TestDiscoverPaths(t *testing.T) {
	t.Parallel()

	t.Run("finds project config and manifest", func(t *testing.T) {
		t.Parallel()

		dir := newProject(t)
		cfg := writeConfig(t, dir, ".montfmt.yml", "")
		man := writeConfig(t, dir, "montrs.yaml", "")

		paths, err := configloader.DiscoverPaths(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, cfg, paths.Project)
		assert.Equal(t, man, paths.Manifest)
	})

	t.Run("stops at VCS root", func(t *testing.T) {
		t.Parallel()

		outer := t.TempDir()
		writeConfig(t, outer, ".montfmt.yml", "")

		inner := filepath.Join(outer, "repo")
		require.NoError(t, os.MkdirAll(filepath.Join(inner, ".git"), 0o755))

		paths, err := configloader.DiscoverPaths(context.Background(), inner)
		require.NoError(t, err)
		assert.Empty(t, paths.Project, "config above the repository root does not apply")
	})

	t.Run("prefers earlier names", func(t *testing.T) {
		t.Parallel()

		dir := newProject(t)
		preferred := writeConfig(t, dir, ".montfmt.yml", "")
		writeConfig(t, dir, "montfmt.yaml", "")

		paths, err := configloader.DiscoverPaths(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, preferred, paths.Project)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := configloader.DiscoverPaths(ctx, t.TempDir())
		require.Error(t, err)
	})
}
