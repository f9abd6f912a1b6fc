package pie

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/vito/pie/pkg/ioctx"
	"github.com/vito/pie/pkg/syntax"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type RunSuite struct{}

func TestRun(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(RunSuite{})
}

func (RunSuite) TestGolden(ctx context.Context, t *testctx.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.pie"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".pie")
		t.Run(name, func(ctx context.Context, t *testctx.T) {
			src, err := os.ReadFile(file)
			require.NoError(t, err)
			out, err := Run(ctx, string(src), Options{Filename: file})
			require.NoError(t, err)
			golden.Assert(t, out, name+".golden")
		})
	}
}

func (RunSuite) TestIdentity(ctx context.Context, t *testctx.T) {
	out, err := EvaluateProgram(`
(claim id (Π ((A U)) (-> A A)))
(define id (λ (A x) x))
(id Nat 5)
`)
	require.NoError(t, err)
	assert.Equal(t, "5: Nat", strings.Split(out, "\n")[0])
}

func (RunSuite) TestScenarios(ctx context.Context, t *testctx.T) {
	for _, example := range []struct {
		Name string
		Src  string
		Line string
	}{
		{
			Name: "double",
			Src: `
(claim double (-> Nat Nat))
(define double (λ (n) (iter-Nat n 0 (λ (k) (add1 (add1 k))))))
(double 3)`,
			Line: "6: Nat",
		},
		{
			Name: "eta for functions",
			Src: `
(claim f (-> Nat Nat))
(define f (λ (x) (add1 x)))
(check-same (-> Nat Nat) f (λ (y) (add1 y)))
(the (-> Nat Nat) f)`,
			Line: "(λ (x) (add1 x)): (Π ((x Nat)) Nat)",
		},
		{
			Name: "tactics",
			Src: `
(claim f (Π ((n Nat)) (= Nat n n)))
(define-tactically f
  ((intro n)
   (elim-Nat n)
   (then (exact (same zero)))
   (then (intro n-1) (intro ih) (exact (same (add1 n-1))))))
(f 5)`,
			Line: "(same 5): (= Nat 5 5)",
		},
		{
			Name: "stuck recursion",
			Src: `
(claim g (-> Nat Nat))
(define g (λ (n) (iter-Nat n 0 (λ (k) (add1 k)))))
g`,
			Line: "(λ (n) (iter-Nat n (the Nat 0) (λ (k) (add1 k)))): (Π ((x Nat)) Nat)",
		},
	} {
		t.Run(example.Name, func(ctx context.Context, t *testctx.T) {
			out, err := Run(ctx, example.Src, Options{Filename: "test.pie"})
			require.NoError(t, err)
			assert.Equal(t, example.Line, strings.Split(out, "\n")[0])
		})
	}
}

func (RunSuite) TestStopsAtFirstError(ctx context.Context, t *testctx.T) {
	_, err := Run(ctx, `
(claim n Nat)
(define n 'oops)
(claim m Atom)
(define m 5)
`, Options{Filename: "test.pie"})
	require.Error(t, err)

	var src *SourceError
	require.True(t, errors.As(err, &src), "expected a SourceError, got %T", err)
	assert.Equal(t, 3, src.Location.Line)
	assert.Equal(t, "expected Nat, but the type is Atom", src.Message())

	rendered := Format(err, false)
	assert.Contains(t, rendered, "Error: expected Nat, but the type is Atom")
	assert.Contains(t, rendered, "--> test.pie:3:")
	assert.Contains(t, rendered, "  3 | (define n 'oops)")
	assert.Contains(t, rendered, "^")
	assert.NotContains(t, rendered, "\x1b[")
}

func (RunSuite) TestParseErrors(ctx context.Context, t *testctx.T) {
	_, err := EvaluateProgram("(claim n Nat")
	require.Error(t, err)
	var parse *syntax.ParseError
	require.True(t, errors.As(err, &parse), "expected a ParseError, got %T", err)
	assert.True(t, parse.Incomplete)
}

func (RunSuite) TestPrelude(ctx context.Context, t *testctx.T) {
	out, err := Run(ctx, "(plus2 3)", Options{
		Filename: "main.pie",
		Prelude: []Source{{
			Filename: "prelude.pie",
			Text: `
(claim plus2 (-> Nat Nat))
(define plus2 (λ (n) (add1 (add1 n))))
plus2`,
		}},
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"5: Nat",
		"plus2 : (Π ((x Nat)) Nat)",
		"plus2 = (λ (n) (add1 (add1 n)))",
	}, lines)

	_, err = Run(ctx, "zero", Options{
		Prelude: []Source{{Filename: "broken.pie", Text: "(define z 'a) (define z 'b)"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prelude broken.pie")
	assert.Contains(t, err.Error(), "the name z is already defined")
}

func (RunSuite) TestEveryRunStartsFresh(ctx context.Context, t *testctx.T) {
	_, err := Run(ctx, "(claim n Nat) (define n 1)", Options{})
	require.NoError(t, err)
	out, err := Run(ctx, "(claim n Atom) (define n 'one)", Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "n = 'one")
}

func (RunSuite) TestSessionCheckContinues(ctx context.Context, t *testctx.T) {
	s := NewSession()
	errs := s.Check(ctx, Source{Filename: "test.pie", Text: `
(claim a Nat)
(define a 'nope)
(claim b Atom)
(define b 'fine)
(define c (add1 'x))
`})
	require.Len(t, errs, 2)
	for _, err := range errs {
		var src *SourceError
		require.True(t, errors.As(err, &src))
	}

	b, found := s.Context().Lookup("b")
	require.True(t, found)
	assert.Equal(t, "'fine", strings.TrimPrefix(s.Bindings()[len(s.Bindings())-1], "b = "))
	assert.NotNil(t, b)

	_, found = s.Context().Lookup("c")
	assert.False(t, found, "a failed declaration leaves the context alone")
}

func (RunSuite) TestDebugDumps(ctx context.Context, t *testctx.T) {
	var stderr bytes.Buffer
	ctx = ioctx.WithStreams(ctx, ioctx.Streams{Err: &stderr})
	_, err := Run(ctx, `
(claim p (Pair Nat Nat))
(define-tactically p ((split-Pair) (then (exact 1)) (then (exact 2))))
`, Options{Filename: "test.pie", Debug: true})
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "syntax.Claim")
	assert.Contains(t, stderr.String(), "p = (cons 1 2)")
}
