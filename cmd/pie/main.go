package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/vito/pie/pkg/ioctx"
	"github.com/vito/pie/pkg/pie"
)

// Config holds the application configuration
type Config struct {
	Debug     bool
	NoPrelude bool
	Color     string
	Jobs      int
	Watch     bool
}

func main() {
	var cfg Config

	// Errors are rendered with the color setting of the loaded project, so
	// the handler reads it after the command has run.
	color := false

	rootCmd := &cobra.Command{
		Use:   "pie [flags] [file]",
		Short: "Pie: a small dependently typed language with tactics",
		Long: `Pie checks and runs programs written in a small dependently typed
language: claims, definitions, inductive datatypes and proofs built with
tactics.`,
		Example: `  # Check and run a file, printing its expressions and bindings
  pie proofs/plus.pie

  # Start an interactive session
  pie

  # Check every proof in the project, re-checking on change
  pie check --watch 'proofs/**/*.pie'

  # Serve JSON-RPC on stdio
  pie serve`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cfg.Debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(cfg)
			if err != nil {
				return err
			}
			color = proj.Color
			if len(args) == 1 {
				return runFile(cmd.Context(), proj, args[0], cfg.Debug)
			}
			return runREPL(cmd.Context(), proj, cfg.Debug)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging and dumps")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoPrelude, "no-prelude", false, "Skip the prelude files listed in pie.toml")
	rootCmd.PersistentFlags().StringVar(&cfg.Color, "color", "", "Color output: auto, always or never (default from pie.toml, else auto)")

	rootCmd.AddCommand(checkCmd(&cfg, &color), replCmd(&cfg), serveCmd(&cfg))

	ctx := context.Background()
	ctx = ioctx.WithStreams(ctx, ioctx.Streams{Out: os.Stdout, Err: os.Stderr})
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, pie.Format(err, color))
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func runFile(ctx context.Context, proj *project, path string, debug bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	out, err := pie.Run(ctx, string(source), pie.Options{
		Filename: path,
		Prelude:  proj.Prelude,
		Debug:    debug,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(ioctx.Stdout(ctx), out)
	return err
}
