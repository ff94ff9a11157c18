package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/testutil"
)

// createTestStore creates a new in-memory store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// recordPresses simulates presses of text and records every event under runID.
func recordPresses(t *testing.T, s *Store, runID, text string, presses int64) ir.NetworkSpec {
	t.Helper()
	ctx := context.Background()

	spec := testutil.MustParse(text)
	net, err := engine.NewNetwork(spec)
	if err != nil {
		t.Fatalf("NewNetwork() failed: %v", err)
	}
	e := engine.New(net,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(runID)),
	)

	rec, err := NewRecorder(ctx, s, e.RunID(), spec)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}
	unsubscribe := e.Subscribe(rec.Observe)
	if _, err := e.PressN(ctx, presses); err != nil {
		t.Fatalf("PressN() failed: %v", err)
	}
	unsubscribe()
	if err := rec.Close(); err != nil {
		t.Fatalf("Recorder.Close() failed: %v", err)
	}
	return spec
}

func networkHash(t *testing.T, spec ir.NetworkSpec) string {
	t.Helper()
	h, err := ir.NetworkHash(spec)
	if err != nil {
		t.Fatalf("NetworkHash() failed: %v", err)
	}
	return h
}
