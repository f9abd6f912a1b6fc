// Package pie runs programs: it reads declarations, processes them against
// an accumulating typing context, and assembles the printed output.
package pie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kr/pretty"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vito/pie/pkg/check"
	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/ioctx"
	"github.com/vito/pie/pkg/syntax"
	"github.com/vito/pie/pkg/tactic"
)

var tracer = otel.Tracer("github.com/vito/pie/pkg/pie")

// Source is program text and the name it is reported under.
type Source struct {
	Filename string
	Text     string
}

// Options configure a run.
type Options struct {
	Filename string

	// Prelude is processed before the program, in the same context. Its
	// bare expressions print nothing.
	Prelude []Source

	// Debug dumps every parsed declaration and extracted proof to the
	// context's stderr.
	Debug bool
}

// EvaluateProgram runs source from an empty context and returns what it
// prints.
func EvaluateProgram(source string) (string, error) {
	return Run(context.Background(), source, Options{Filename: "<input>"})
}

// Run processes source from an empty context. It stops at the first error.
// The output lists each bare expression's value and type, followed by every
// binding in the final context.
func Run(ctx context.Context, source string, opts Options) (_ string, rerr error) {
	ctx, span := tracer.Start(ctx, "pie.run", trace.WithAttributes(
		attribute.String("pie.filename", opts.Filename),
		attribute.Int("pie.prelude", len(opts.Prelude)),
	))
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	s := NewSession()
	s.Debug = opts.Debug
	for _, p := range opts.Prelude {
		if _, err := s.Eval(ctx, p); err != nil {
			return "", fmt.Errorf("prelude %s: %w", p.Filename, err)
		}
	}
	lines, err := s.Eval(ctx, Source{Filename: opts.Filename, Text: source})
	if err != nil {
		return "", err
	}
	lines = append(lines, s.Bindings()...)

	var out strings.Builder
	for _, l := range lines {
		out.WriteString(l)
		out.WriteByte('\n')
	}
	return out.String(), nil
}

// Session is a typing context that declarations accumulate into. The REPL
// keeps one for its whole lifetime; a run uses a fresh one.
type Session struct {
	ctx   core.Context
	Debug bool
}

func NewSession() *Session {
	return &Session{}
}

// Context is the current typing context.
func (s *Session) Context() core.Context {
	return s.ctx
}

// Eval processes every declaration in src, stopping at the first error, and
// returns the output of its bare expressions.
func (s *Session) Eval(ctx context.Context, src Source) ([]string, error) {
	decls, err := syntax.ReadProgram(src.Filename, src.Text)
	if err != nil {
		return nil, NewSourceError(err, src.Text)
	}
	var lines []string
	for _, d := range decls {
		line, err := s.Declare(ctx, d)
		if err != nil {
			return lines, NewSourceError(err, src.Text)
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Check processes every declaration in src, continuing past errors, and
// returns all of them. A declaration that fails leaves the context as it
// was. Fatal errors still stop the run.
func (s *Session) Check(ctx context.Context, src Source) []error {
	decls, err := syntax.ReadProgram(src.Filename, src.Text)
	if err != nil {
		return []error{NewSourceError(err, src.Text)}
	}
	var errs []error
	for _, d := range decls {
		if _, err := s.Declare(ctx, d); err != nil {
			errs = append(errs, NewSourceError(err, src.Text))
			var fatal *FatalError
			if errors.As(err, &fatal) {
				break
			}
		}
	}
	return errs
}

// Declare processes one declaration. A bare expression returns its value
// and type as "<value>: <type>".
func (s *Session) Declare(ctx context.Context, d syntax.Decl) (line string, rerr error) {
	kind, name := describe(d)
	ctx, span := tracer.Start(ctx, "pie.declare", trace.WithAttributes(
		attribute.String("pie.kind", kind),
		attribute.String("pie.name", name),
		attribute.String("pie.location", d.Loc().String()),
	))
	defer func() {
		if r := recover(); r != nil {
			violation, ok := r.(*core.ContractViolation)
			if !ok {
				panic(r)
			}
			rerr = &FatalError{Violation: violation, Location: d.Loc()}
		}
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if s.Debug {
		_, _ = pretty.Fprintf(ioctx.Stderr(ctx), "%# v\n", d)
	}
	slog.Debug("processing declaration", "kind", kind, "name", name, "location", d.Loc())

	var err error
	next := s.ctx
	switch d := d.(type) {
	case *syntax.Claim:
		next, err = check.AddClaim(s.ctx, d.Name, d.Location, d.Type)
	case *syntax.Define:
		next, err = check.AddDefine(s.ctx, d.Name, d.Location, d.Expr)
	case *syntax.DefineTactically:
		var ps *tactic.ProofState
		next, ps, err = tactic.Prove(s.ctx, d)
		if err == nil && s.Debug {
			term, _ := ps.Extract()
			fmt.Fprintf(ioctx.Stderr(ctx), "%s = %s\n", d.Name, term)
		}
	case *syntax.CheckSame:
		err = check.CheckSame(s.ctx, d.Location, d.Type, d.Left, d.Right)
	case *syntax.Data:
		next, _, err = check.ElaborateData(s.ctx, d)
	case *syntax.Expr:
		var c core.Core
		var t core.Value
		c, t, err = check.Synth(s.ctx, nil, d.Expr)
		if err == nil {
			line = check.ShowValue(s.ctx, t, check.Eval(s.ctx, c)) + ": " + check.Show(s.ctx, t)
		}
	default:
		err = fmt.Errorf("unknown declaration %T", d)
	}
	if err != nil {
		return "", err
	}
	s.ctx = next
	return line, nil
}

func describe(d syntax.Decl) (kind, name string) {
	switch d := d.(type) {
	case *syntax.Claim:
		return "claim", d.Name
	case *syntax.Define:
		return "define", d.Name
	case *syntax.DefineTactically:
		return "define-tactically", d.Name
	case *syntax.CheckSame:
		return "check-same", ""
	case *syntax.Data:
		return "data", d.Name
	}
	return "expression", ""
}

// Bindings lists the context in declaration order: "<name> : <type>" for
// every claim, definition, datatype and constructor, and "<name> = <value>"
// after each definition.
func (s *Session) Bindings() []string {
	var lines []string
	for _, e := range s.ctx.Entries() {
		switch b := e.Binder.(type) {
		case *core.Claim, *core.DataBinder, *core.CtorBinder:
			lines = append(lines, fmt.Sprintf("%s : %s", e.Name, check.Show(s.ctx, b.Type())))
		case *core.Define:
			lines = append(lines,
				fmt.Sprintf("%s : %s", e.Name, check.Show(s.ctx, b.T)),
				fmt.Sprintf("%s = %s", e.Name, check.ShowValue(s.ctx, b.T, b.V)))
		}
	}
	return lines
}
