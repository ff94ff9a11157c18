package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/testutil"
)

const (
	example1Text = testutil.Example1
	example2Text = testutil.Example2
)

// newTestEngine builds an engine over text with logging discarded and a
// fixed run ID. opts are applied after those defaults.
func newTestEngine(t testing.TB, text string, opts ...Option) *Engine {
	t.Helper()

	net, err := NewNetwork(testutil.MustParse(text))
	require.NoError(t, err)

	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRunIDGenerator(testutil.NewFixedRunIDGenerator("test-run")),
	}
	return New(net, append(base, opts...)...)
}

// recordTrace subscribes to e and returns a pointer to the rendered events.
func recordTrace(e *Engine) *[]string {
	var trace []string
	e.Subscribe(func(ev ir.Event) {
		trace = append(trace, ev.String())
	})
	return &trace
}
