package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/pie/pkg/ioctx"
	"github.com/vito/pie/pkg/pie"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func captured(ctx context.Context) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return ioctx.WithStreams(ctx, ioctx.Streams{Out: &out, Err: &errOut}), &out, &errOut
}

func TestExpandPaths(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.pie":          "",
		"notes.txt":      "",
		"proofs/b.pie":   "",
		"proofs/x/c.pie": "",
	})

	files, err := expandPaths(dir, []string{"."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pie"),
		filepath.Join(dir, "proofs", "b.pie"),
		filepath.Join(dir, "proofs", "x", "c.pie"),
	}, files)

	files, err = expandPaths(dir, []string{"proofs/*.pie", "a.pie", "proofs/b.pie"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pie"),
		filepath.Join(dir, "proofs", "b.pie"),
	}, files)
}

func TestCheckFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"good.pie": "(claim n Nat) (define n 1)",
		"bad.pie":  "(claim a Nat)\n(define a 'x)\n(claim b Nat)\n(define b 'y)\n",
	})
	proj := &project{Dir: dir, Config: &pie.ProjectConfig{}}
	ctx, out, _ := captured(t.Context())

	err := runCheck(ctx, proj, nil, 2, false)
	require.Error(t, err)
	assert.Equal(t, "1 of 2 files failed", err.Error())

	assert.Contains(t, out.String(), "FAIL bad.pie (2 errors)\n")
	assert.Contains(t, out.String(), "ok good.pie\n")
	assert.Contains(t, out.String(), "--> "+filepath.Join(dir, "bad.pie")+":4:")
}

func TestCheckUsesPrelude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"uses.pie": "(claim two Nat) (define two (add1 one))",
	})
	proj := &project{
		Dir:     dir,
		Config:  &pie.ProjectConfig{},
		Prelude: []pie.Source{{Filename: "prelude.pie", Text: "(claim one Nat) (define one 1)"}},
	}
	ctx, out, _ := captured(t.Context())

	require.NoError(t, runCheck(ctx, proj, []string{"uses.pie"}, 1, false))
	assert.Equal(t, "ok uses.pie\n", out.String())
}

func TestCheckNoFiles(t *testing.T) {
	proj := &project{Dir: t.TempDir(), Config: &pie.ProjectConfig{}}
	ctx, _, _ := captured(t.Context())
	err := runCheck(ctx, proj, nil, 1, false)
	assert.ErrorContains(t, err, "no .pie files match")
}

func TestREPL(t *testing.T) {
	proj := &project{
		Config:  &pie.ProjectConfig{},
		Prelude: []pie.Source{{Filename: "prelude.pie", Text: "(claim one Nat) (define one 1)"}},
	}
	ctx, out, errOut := captured(t.Context())

	r, err := newREPL(ctx, proj, false)
	require.NoError(t, err)

	assert.True(t, r.handle(ctx, "(claim two Nat)\n(define two (add1 one))"))
	assert.True(t, r.handle(ctx, "(add1 two)"))
	assert.Equal(t, "3: Nat\n", out.String())

	out.Reset()
	assert.True(t, r.handle(ctx, ":context"))
	assert.Equal(t, "one : Nat\none = 1\ntwo : Nat\ntwo = 2\n", out.String())

	assert.True(t, r.handle(ctx, "(the Nat 'nope)"))
	assert.Contains(t, errOut.String(), "expected Nat, but the type is Atom")

	out.Reset()
	assert.True(t, r.handle(ctx, ":reset"))
	assert.True(t, r.handle(ctx, ":context"))
	assert.Equal(t, "context cleared\none : Nat\none = 1\n", out.String())

	assert.False(t, r.handle(ctx, ":quit"))
}

func TestIncompleteInput(t *testing.T) {
	assert.True(t, incomplete("(claim x"))
	assert.True(t, incomplete("(define f (λ (x)\n"))
	assert.False(t, incomplete("(claim x Nat)"))
	assert.False(t, incomplete("(claim x Nat))"))
}

func TestProjectJobs(t *testing.T) {
	proj := &project{Config: &pie.ProjectConfig{}}
	assert.Equal(t, 3, proj.jobs(3))
	proj.Config.Check.Jobs = 5
	assert.Equal(t, 5, proj.jobs(0))
	assert.Equal(t, 2, proj.jobs(2))
}
