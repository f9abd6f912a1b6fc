// Package rpc serves the checker over JSON-RPC 2.0, one request at a time.
//
// Methods:
//
//	pie.evaluate {source, filename} -> {output}
//	pie.check    {source, filename} -> {ok, diagnostics}
package rpc

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/vito/pie/pkg/pie"
)

// CodeProgramError is returned when pie.evaluate is given a program that
// does not check.
const CodeProgramError jrpc2.Code = -32001

type SourceParams struct {
	Source   string `json:"source"`
	Filename string `json:"filename,omitempty"`
}

type EvaluateResult struct {
	Output string `json:"output"`
}

type CheckResult struct {
	OK          bool         `json:"ok"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Diagnostic is one error found by pie.check. Line and Column are 1-based
// and zero when the error has no location.
type Diagnostic struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Length   int    `json:"length,omitempty"`
	Message  string `json:"message"`
	Fatal    bool   `json:"fatal,omitempty"`
}

// Service holds what every request shares.
type Service struct {
	Prelude []pie.Source
}

// Assigner maps method names to handlers.
func (s *Service) Assigner() handler.Map {
	return handler.Map{
		"pie.evaluate": handler.New(s.Evaluate),
		"pie.check":    handler.New(s.Check),
	}
}

func filename(p SourceParams) string {
	if p.Filename == "" {
		return "<input>"
	}
	return p.Filename
}

// Evaluate runs a program and returns what it prints.
func (s *Service) Evaluate(ctx context.Context, p SourceParams) (EvaluateResult, error) {
	out, err := pie.Run(ctx, p.Source, pie.Options{Filename: filename(p), Prelude: s.Prelude})
	if err != nil {
		var fatal *pie.FatalError
		if errors.As(err, &fatal) {
			return EvaluateResult{}, jrpc2.Errorf(jrpc2.InternalError, "%s", fatal)
		}
		return EvaluateResult{}, jrpc2.Errorf(CodeProgramError, "%s", pie.Format(err, false))
	}
	return EvaluateResult{Output: out}, nil
}

// Check processes every declaration and reports each one that fails.
func (s *Service) Check(ctx context.Context, p SourceParams) (CheckResult, error) {
	session := pie.NewSession()
	for _, src := range s.Prelude {
		if _, err := session.Eval(ctx, src); err != nil {
			return CheckResult{}, jrpc2.Errorf(CodeProgramError, "prelude %s: %s", src.Filename, pie.Format(err, false))
		}
	}
	errs := session.Check(ctx, pie.Source{Filename: filename(p), Text: p.Source})
	result := CheckResult{OK: len(errs) == 0, Diagnostics: []Diagnostic{}}
	for _, err := range errs {
		result.Diagnostics = append(result.Diagnostics, diagnostic(err))
	}
	return result, nil
}

func diagnostic(err error) Diagnostic {
	var fatal *pie.FatalError
	if errors.As(err, &fatal) {
		return Diagnostic{
			Filename: fatal.Location.Filename,
			Line:     fatal.Location.Line,
			Column:   fatal.Location.Column,
			Message:  fatal.Violation.Error(),
			Fatal:    true,
		}
	}
	var src *pie.SourceError
	if errors.As(err, &src) {
		return Diagnostic{
			Filename: src.Location.Filename,
			Line:     src.Location.Line,
			Column:   src.Location.Column,
			Length:   src.Location.Length,
			Message:  src.Message(),
		}
	}
	return Diagnostic{Message: err.Error()}
}

// Serve answers newline-delimited requests from r on w until r closes.
func Serve(ctx context.Context, svc *Service, r io.Reader, w io.WriteCloser) error {
	logger := slog.Default()
	srv := jrpc2.NewServer(svc.Assigner(), &jrpc2.ServerOptions{
		Concurrency: 1,
		Logger:      func(text string) { logger.Debug(text) },
	})
	logger.InfoContext(ctx, "serving JSON-RPC")
	srv.Start(channel.Line(r, w))
	err := srv.Wait()
	logger.InfoContext(ctx, "JSON-RPC server closed", "error", err)
	return err
}
