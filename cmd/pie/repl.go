package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/vito/pie/pkg/ioctx"
	"github.com/vito/pie/pkg/pie"
	"github.com/vito/pie/pkg/syntax"
)

const (
	historyFile = ".pie_history"
	promptMain  = "pie> "
	promptCont  = "...  "
)

func replCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Read declarations and expressions one at a time, keeping every claim,
definition and datatype for the rest of the session. Forms may span lines.

Commands:
  :context  list everything defined so far
  :reset    forget everything except the prelude
  :help     show this list
  :quit     leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(*cfg)
			if err != nil {
				return err
			}
			return runREPL(cmd.Context(), proj, cfg.Debug)
		},
	}
}

// repl is a session plus what it needs to start over.
type repl struct {
	proj    *project
	debug   bool
	session *pie.Session
}

func newREPL(ctx context.Context, proj *project, debug bool) (*repl, error) {
	r := &repl{proj: proj, debug: debug}
	if err := r.reset(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *repl) reset(ctx context.Context) error {
	r.session = pie.NewSession()
	r.session.Debug = r.debug
	for _, p := range r.proj.Prelude {
		if _, err := r.session.Eval(ctx, p); err != nil {
			return fmt.Errorf("prelude %s: %w", p.Filename, err)
		}
	}
	return nil
}

// handle runs one complete input and reports whether the session should
// continue.
func (r *repl) handle(ctx context.Context, input string) bool {
	out := ioctx.Stdout(ctx)
	code := strings.TrimSpace(input)
	if code == "" {
		return true
	}

	if strings.HasPrefix(code, ":") {
		switch strings.ToLower(code) {
		case ":quit", ":q":
			return false
		case ":context":
			for _, line := range r.session.Bindings() {
				fmt.Fprintln(out, line)
			}
		case ":reset":
			if err := r.reset(ctx); err != nil {
				fmt.Fprintln(ioctx.Stderr(ctx), pie.Format(err, r.proj.Color))
				return false
			}
			fmt.Fprintln(out, r.proj.render(dimStyle, "context cleared"))
		case ":help":
			fmt.Fprintln(out, ":context  :reset  :help  :quit")
		default:
			fmt.Fprintf(out, "unknown command %s; try :help\n", code)
		}
		return true
	}

	lines, err := r.session.Eval(ctx, pie.Source{Filename: "<repl>", Text: input})
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	if err != nil {
		fmt.Fprintln(ioctx.Stderr(ctx), pie.Format(err, r.proj.Color))
		var fatal *pie.FatalError
		return !errors.As(err, &fatal)
	}
	return true
}

func runREPL(ctx context.Context, proj *project, debug bool) error {
	r, err := newREPL(ctx, proj, debug)
	if err != nil {
		return err
	}

	out := ioctx.Stdout(ctx)
	fmt.Fprintln(out, proj.render(dimStyle, "pie: type :help for commands, Ctrl-D to leave"))

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			ln.Close()
			os.Exit(130)
		}
	}()

	for {
		code, ok := readForm(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if !r.handle(ctx, code) {
			return nil
		}
	}
}

// readForm reads lines until they parse or fail for a reason other than
// running out of input. It returns false at end of input.
func readForm(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C drops the form in progress.
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

func incomplete(src string) bool {
	_, err := syntax.ReadProgram("<repl>", src)
	var perr *syntax.ParseError
	return errors.As(err, &perr) && perr.Incomplete
}
