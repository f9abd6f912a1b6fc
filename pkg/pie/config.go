package pie

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the name of the project configuration file.
const ConfigFile = "pie.toml"

// ProjectConfig represents a pie.toml project configuration file.
type ProjectConfig struct {
	// Prelude lists files processed before every program, relative to
	// pie.toml.
	Prelude []string `toml:"prelude,omitempty"`

	Check  CheckConfig  `toml:"check"`
	Output OutputConfig `toml:"output"`
}

// CheckConfig configures `pie check`.
type CheckConfig struct {
	// Include holds the globs checked when no paths are given.
	Include []string `toml:"include,omitempty"`

	// Jobs bounds how many files are checked at once. Zero means one per
	// CPU.
	Jobs int `toml:"jobs,omitempty"`
}

// OutputConfig configures how results are printed.
type OutputConfig struct {
	// Color is "auto", "always" or "never".
	Color string `toml:"color,omitempty"`
}

// LoadProjectConfig loads a pie.toml file from the given path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	switch config.Output.Color {
	case "", "auto", "always", "never":
	default:
		return nil, fmt.Errorf("%s: output.color must be auto, always or never, not %q", path, config.Output.Color)
	}
	if config.Check.Jobs < 0 {
		return nil, fmt.Errorf("%s: check.jobs must not be negative", path)
	}
	return &config, nil
}

// FindProjectConfig searches for a pie.toml file starting from dir and
// walking up to parent directories, stopping at a repository root. Returns
// the path to pie.toml and the parsed config, or ("", nil, nil) if not found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// LoadPrelude reads the prelude files named by the config at configPath.
func LoadPrelude(configPath string, config *ProjectConfig) ([]Source, error) {
	if config == nil {
		return nil, nil
	}
	dir := filepath.Dir(configPath)
	sources := make([]Source, 0, len(config.Prelude))
	for _, p := range config.Prelude {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		text, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading prelude: %w", err)
		}
		sources = append(sources, Source{Filename: p, Text: string(text)})
	}
	return sources, nil
}
