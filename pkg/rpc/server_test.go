package rpc

import (
	"context"
	"errors"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/pie/pkg/pie"
)

func newClient(t *testing.T, svc *Service) *jrpc2.Client {
	t.Helper()
	loc := server.NewLocal(svc.Assigner(), nil)
	t.Cleanup(func() { _ = loc.Close() })
	return loc.Client
}

func TestEvaluate(t *testing.T) {
	cli := newClient(t, &Service{})
	ctx := context.Background()

	var result EvaluateResult
	err := cli.CallResult(ctx, "pie.evaluate", SourceParams{
		Source: "(claim n Nat)\n(define n 2)\n(add1 n)\n",
	}, &result)
	require.NoError(t, err)
	assert.Equal(t, "3: Nat\nn : Nat\nn = 2\n", result.Output)
}

func TestEvaluateProgramError(t *testing.T) {
	cli := newClient(t, &Service{})

	var result EvaluateResult
	err := cli.CallResult(context.Background(), "pie.evaluate", SourceParams{
		Source:   "(the Nat 'a)",
		Filename: "bad.pie",
	}, &result)
	require.Error(t, err)

	var rpcErr *jrpc2.Error
	require.True(t, errors.As(err, &rpcErr), "expected a JSON-RPC error, got %T", err)
	assert.Equal(t, CodeProgramError, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "expected Nat, but the type is Atom")
	assert.Contains(t, rpcErr.Message, "--> bad.pie:1:")
}

func TestCheck(t *testing.T) {
	cli := newClient(t, &Service{})

	var result CheckResult
	err := cli.CallResult(context.Background(), "pie.check", SourceParams{
		Source: "(claim a Nat)\n(define a 'x)\n(claim b Atom)\n(define b 'y)\n",
	}, &result)
	require.NoError(t, err)
	assert.False(t, result.OK)
	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, "<input>", d.Filename)
	assert.Equal(t, 2, d.Line)
	assert.Equal(t, "expected Nat, but the type is Atom", d.Message)
	assert.False(t, d.Fatal)

	err = cli.CallResult(context.Background(), "pie.check", SourceParams{Source: "(claim a Nat) (define a 1)"}, &result)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Empty(t, result.Diagnostics)
}

func TestPrelude(t *testing.T) {
	cli := newClient(t, &Service{Prelude: []pie.Source{{
		Filename: "prelude.pie",
		Text:     "(claim one Nat) (define one 1)",
	}}})

	var result EvaluateResult
	err := cli.CallResult(context.Background(), "pie.evaluate", SourceParams{Source: "(add1 one)"}, &result)
	require.NoError(t, err)
	assert.Contains(t, result.Output, "2: Nat\n")
}
