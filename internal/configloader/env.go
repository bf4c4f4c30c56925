package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names recognized by the loader.
const (
	envMaxWidth         = "MONTFMT_MAX_WIDTH"
	envTabSpaces        = "MONTFMT_TAB_SPACES"
	envIndentationStyle = "MONTFMT_INDENTATION_STYLE"
	envNewlineStyle     = "MONTFMT_NEWLINE_STYLE"
	envMacroNames       = "MONTFMT_MACRO_NAMES"
)

// fromEnv builds a partial from MONTFMT_* environment variables.
func fromEnv() (*Partial, error) {
	p := &Partial{}

	if v := os.Getenv(envMaxWidth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envMaxWidth, err)
		}
		p.MaxWidth = &n
	}
	if v := os.Getenv(envTabSpaces); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envTabSpaces, err)
		}
		p.TabSpaces = &n
	}
	if v := os.Getenv(envIndentationStyle); v != "" {
		p.IndentationStyle = &v
	}
	if v := os.Getenv(envNewlineStyle); v != "" {
		p.NewlineStyle = &v
	}
	if v := os.Getenv(envMacroNames); v != "" {
		names := strings.Split(v, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		p.View.MacroNames = names
	}

	return p, nil
}
