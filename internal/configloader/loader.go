// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, hierarchical merging,
// environment variable support, and validation.
package configloader

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/montrs/montfmt/pkg/config"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	ExplicitPath string

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration and the
	// project manifest.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// CLI contains configuration from CLI flags. Highest precedence.
	CLI *Partial
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Settings is the final merged configuration.
	Settings *config.Settings

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.CLI)
//  2. Environment variables (MONTFMT_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.montfmt.yml upward search)
//  5. Project manifest fmt section (montrs.yaml upward search)
//  6. User config ($XDG_CONFIG_HOME/montfmt/config.yaml)
//  7. System config (/etc/montfmt/config.yaml)
//  8. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	result := &LoadResult{Paths: &ConfigPaths{}}

	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	settings := config.Default()

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	result.Paths = paths

	if opts.ExplicitPath != "" {
		result.Paths.Explicit = opts.ExplicitPath
	}

	// Load and merge in order (lowest to highest precedence)

	// 1. System config
	if !opts.IgnoreSystemConfig && paths.System != "" {
		p, err := loadConfigFile(paths.System)
		if err != nil {
			return nil, fmt.Errorf("load system config: %w", err)
		}
		apply(settings, p)
		result.LoadedFrom = append(result.LoadedFrom, paths.System)
	}

	// 2. User config
	if !opts.IgnoreUserConfig && paths.User != "" {
		p, err := loadConfigFile(paths.User)
		if err != nil {
			return nil, fmt.Errorf("load user config: %w", err)
		}
		apply(settings, p)
		result.LoadedFrom = append(result.LoadedFrom, paths.User)
	}

	// 3. Manifest fmt section, unless a dedicated project config exists.
	if !opts.IgnoreProjectConfig && paths.Manifest != "" {
		if paths.Project != "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("both %s and %s exist; the fmt section of the manifest is ignored",
					paths.Project, paths.Manifest))
		} else {
			p, err := loadManifestFmt(paths.Manifest)
			if err != nil {
				return nil, fmt.Errorf("load manifest config: %w", err)
			}
			if p != nil {
				apply(settings, p)
				result.LoadedFrom = append(result.LoadedFrom, paths.Manifest)
			}
		}
	}

	// 4. Project config
	if !opts.IgnoreProjectConfig && paths.Project != "" {
		p, err := loadConfigFile(paths.Project)
		if err != nil {
			return nil, fmt.Errorf("load project config: %w", err)
		}
		apply(settings, p)
		result.LoadedFrom = append(result.LoadedFrom, paths.Project)
	}

	// 5. Explicit config (--config flag)
	if opts.ExplicitPath != "" {
		p, err := loadConfigFile(opts.ExplicitPath)
		if err != nil {
			return nil, fmt.Errorf("load explicit config: %w", err)
		}
		apply(settings, p)
		result.LoadedFrom = append(result.LoadedFrom, opts.ExplicitPath)
	}

	// 6. Environment variables
	if !opts.IgnoreEnv {
		p, err := fromEnv()
		if err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
		apply(settings, p)
	}

	// 7. CLI flags (highest precedence)
	apply(settings, opts.CLI)

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	result.Settings = settings
	return result, nil
}

// loadConfigFile loads a partial configuration from a YAML file.
func loadConfigFile(path string) (*Partial, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	p := &Partial{}
	if err := yaml.Unmarshal(content, p); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return p, nil
}

// manifest is the subset of the project manifest the formatter reads.
type manifest struct {
	Fmt *Partial `yaml:"fmt"`
}

// loadManifestFmt extracts the fmt section from a project manifest.
// Returns nil when the manifest has no fmt section.
func loadManifestFmt(path string) (*Partial, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	m := &manifest{}
	if err := yaml.Unmarshal(content, m); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return m.Fmt, nil
}
