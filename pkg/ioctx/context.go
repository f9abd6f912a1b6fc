// Package ioctx carries the output streams of a run through a
// context.Context, so that library code can print results and debug dumps
// without reaching for os.Stdout.
package ioctx

import (
	"context"
	"io"
)

type streamsKey struct{}

// Streams are the writers a run prints to. A nil writer discards.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// WithStreams returns ctx carrying s.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streams(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)
	return s
}

// Stdout is where results go.
func Stdout(ctx context.Context) io.Writer {
	if w := streams(ctx).Out; w != nil {
		return w
	}
	return io.Discard
}

// Stderr is where diagnostics and debug dumps go.
func Stderr(ctx context.Context) io.Writer {
	if w := streams(ctx).Err; w != nil {
		return w
	}
	return io.Discard
}
