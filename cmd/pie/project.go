package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"

	"github.com/vito/pie/pkg/pie"
)

// project is pie.toml merged with the command line.
type project struct {
	Dir     string
	Config  *pie.ProjectConfig
	Prelude []pie.Source
	Color   bool
}

func loadProject(cfg Config) (*project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	proj := &project{Dir: cwd, Config: &pie.ProjectConfig{}}

	path, config, err := pie.FindProjectConfig(cwd)
	if err != nil {
		return nil, err
	}
	if config != nil {
		slog.Debug("loaded project config", "path", path)
		proj.Dir = filepath.Dir(path)
		proj.Config = config
		if !cfg.NoPrelude {
			proj.Prelude, err = pie.LoadPrelude(path, config)
			if err != nil {
				return nil, err
			}
		}
	}

	mode := cfg.Color
	if mode == "" {
		mode = proj.Config.Output.Color
	}
	switch mode {
	case "", "auto":
		fd := os.Stdout.Fd()
		proj.Color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	case "always":
		proj.Color = true
	case "never":
		proj.Color = false
	default:
		return nil, fmt.Errorf("--color must be auto, always or never, not %q", mode)
	}
	return proj, nil
}

// jobs is the number of files to check at once.
func (p *project) jobs(flag int) int {
	if flag > 0 {
		return flag
	}
	if p.Config.Check.Jobs > 0 {
		return p.Config.Check.Jobs
	}
	return runtime.NumCPU()
}

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// render applies style when color is on.
func (p *project) render(style lipgloss.Style, s string) string {
	if !p.Color {
		return s
	}
	return style.Render(s)
}
