package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/pie/pkg/ioctx"
	"github.com/vito/pie/pkg/pie"
)

func checkCmd(cfg *Config, color *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [path|glob...]",
		Short: "Check Pie files without printing their output",
		Long: `Check every declaration in the given files, reporting all errors
rather than stopping at the first one. Directories are searched for .pie
files and globs may use **. With no arguments, the include globs from
pie.toml are used.`,
		Example: `  # Check one file
  pie check proofs/plus.pie

  # Check a tree, four files at a time
  pie check -j 4 'proofs/**/*.pie'

  # Keep checking as files change
  pie check --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(*cfg)
			if err != nil {
				return err
			}
			*color = proj.Color
			return runCheck(cmd.Context(), proj, args, proj.jobs(cfg.Jobs), cfg.Watch)
		},
	}

	cmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", 0, "Files to check at once (default from pie.toml, else one per CPU)")
	cmd.Flags().BoolVarP(&cfg.Watch, "watch", "w", false, "Re-check whenever a .pie file changes")

	return cmd
}

// expandPaths resolves files, directories and globs into a sorted list of
// .pie files.
func expandPaths(dir string, patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}
		if info, err := os.Stat(pattern); err == nil {
			if !info.IsDir() {
				files = append(files, pattern)
				continue
			}
			pattern = filepath.Join(pattern, "**", "*.pie")
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

type fileResult struct {
	Path   string
	Errors []error
}

func checkFile(ctx context.Context, proj *project, path string) fileResult {
	result := fileResult{Path: path}
	source, err := os.ReadFile(path)
	if err != nil {
		result.Errors = []error{err}
		return result
	}
	session := pie.NewSession()
	for _, p := range proj.Prelude {
		if _, err := session.Eval(ctx, p); err != nil {
			result.Errors = []error{fmt.Errorf("prelude %s: %w", p.Filename, err)}
			return result
		}
	}
	result.Errors = session.Check(ctx, pie.Source{Filename: path, Text: string(source)})
	return result
}

// checkFiles checks each file in its own session, jobs at a time, and
// reports them in order.
func checkFiles(ctx context.Context, proj *project, files []string, jobs int) (int, error) {
	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, f := range files {
		g.Go(func() error {
			results[i] = checkFile(gctx, proj, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	out := ioctx.Stdout(ctx)
	failed := 0
	for _, r := range results {
		report(out, proj, r)
		if len(r.Errors) > 0 {
			failed++
		}
	}
	return failed, nil
}

func report(w io.Writer, proj *project, r fileResult) {
	name := r.Path
	if rel, err := filepath.Rel(proj.Dir, r.Path); err == nil && !strings.HasPrefix(rel, "..") {
		name = rel
	}
	if len(r.Errors) == 0 {
		fmt.Fprintf(w, "%s %s\n", proj.render(okStyle, "ok"), name)
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", proj.render(failStyle, "FAIL"), name,
		proj.render(dimStyle, fmt.Sprintf("(%d errors)", len(r.Errors))))
	for _, err := range r.Errors {
		fmt.Fprintln(w, pie.Format(err, proj.Color))
	}
}

func runCheck(ctx context.Context, proj *project, args []string, jobs int, watch bool) error {
	patterns := args
	if len(patterns) == 0 {
		patterns = proj.Config.Check.Include
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	files, err := expandPaths(proj.Dir, patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 && !watch {
		return fmt.Errorf("no .pie files match %s", strings.Join(patterns, " "))
	}

	failed, err := checkFiles(ctx, proj, files, jobs)
	if err != nil {
		return err
	}
	if watch {
		return watchFiles(ctx, proj, patterns, jobs)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// watchFiles re-checks everything matching patterns whenever a .pie file
// under the project changes, until ctx is done.
func watchFiles(ctx context.Context, proj *project, patterns []string, jobs int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(proj.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != proj.Dir && (strings.HasPrefix(name, ".") || name == "node_modules") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", proj.Dir, err)
	}

	out := ioctx.Stdout(ctx)
	fmt.Fprintln(out, proj.render(dimStyle, "watching for changes..."))

	// Editors write in bursts; wait for a quiet moment before re-checking.
	const settle = 100 * time.Millisecond
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			slog.Debug("file event", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if strings.HasSuffix(event.Name, ".pie") || filepath.Base(event.Name) == pie.ConfigFile {
				timer.Reset(settle)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)

		case <-timer.C:
			files, err := expandPaths(proj.Dir, patterns)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, proj.render(dimStyle, fmt.Sprintf("re-checking %d files", len(files))))
			if _, err := checkFiles(ctx, proj, files, jobs); err != nil {
				return err
			}
		}
	}
}
