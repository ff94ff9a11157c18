package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/testutil"
)

func TestReadRun(t *testing.T) {
	s := createTestStore(t)
	spec := recordPresses(t, s, "run-1", example, 1)

	run, err := s.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, networkHash(t, spec), run.NetworkHash)
	assert.Equal(t, ir.EngineVersion, run.EngineVersion)
	assert.Equal(t, ir.TraceVersion, run.TraceVersion)
	assert.Equal(t, "broadcaster", run.Network.Entry)
	require.Len(t, run.Network.Modules, 5)
	assert.Equal(t, ir.KindConjunction, run.Network.Modules[4].Kind)
	assert.Equal(t, networkHash(t, spec), networkHash(t, run.Network), "stored network round-trips")
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadEvents_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	recordPresses(t, s, "run-1", example, 2)

	events, err := s.ReadEvents(context.Background(), "run-1", EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 24)

	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.Seq)
	}
	assert.Equal(t, "button -low-> broadcaster", events[0].String())
	assert.Equal(t, "inv -high-> a", events[11].String())
	assert.Equal(t, int64(2), events[12].Press)
}

func TestReadEvents_Filters(t *testing.T) {
	s := createTestStore(t)
	recordPresses(t, s, "run-1", example, 2)
	ctx := context.Background()

	events, err := s.ReadEvents(ctx, "run-1", EventFilter{Module: "inv", Press: 1})
	require.NoError(t, err)

	var rendered []string
	for _, ev := range events {
		rendered = append(rendered, ev.String())
	}
	assert.Equal(t, []string{
		"c -high-> inv",
		"inv -low-> a",
		"c -low-> inv",
		"inv -high-> a",
	}, rendered)

	none, err := s.ReadEvents(ctx, "other-run", EventFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCountPulses_MatchesEngine(t *testing.T) {
	s := createTestStore(t)
	recordPresses(t, s, "run-2", testutil.Example2, 4)

	counts, err := s.CountPulses(context.Background(), "run-2")
	require.NoError(t, err)
	assert.Equal(t, ir.PulseCounts{Low: 17, High: 11}, counts)
}

func TestCountPulses_EmptyRun(t *testing.T) {
	s := createTestStore(t)

	counts, err := s.CountPulses(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, ir.PulseCounts{}, counts)
}

func TestEdgeSummary(t *testing.T) {
	s := createTestStore(t)
	recordPresses(t, s, "run-1", testutil.Fanin, 1)

	edges, err := s.EdgeSummary(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, []EdgeCount{
		{Source: "button", Destination: "broadcaster", Pulse: ir.Low, Count: 1},
		{Source: "broadcaster", Destination: "a", Pulse: ir.Low, Count: 1},
		{Source: "broadcaster", Destination: "b", Pulse: ir.Low, Count: 1},
		{Source: "a", Destination: "c", Pulse: ir.High, Count: 1},
		{Source: "b", Destination: "c", Pulse: ir.High, Count: 1},
		{Source: "c", Destination: "out", Pulse: ir.High, Count: 1},
		{Source: "c", Destination: "out", Pulse: ir.Low, Count: 1},
	}, edges)
}

func TestCountEdge(t *testing.T) {
	s := createTestStore(t)
	recordPresses(t, s, "run-1", example, 1000)
	ctx := context.Background()

	tests := []struct {
		source, destination string
		pulse               ir.Pulse
		want                int64
	}{
		{"inv", "a", ir.Low, 1000},
		{"inv", "a", ir.High, 1000},
		{"broadcaster", "", ir.Low, 3000},
		{"", "inv", ir.High, 1000},
		{"", "", ir.Low, 8000},
		{"a", "inv", ir.High, 0},
	}

	for _, tt := range tests {
		n, err := s.CountEdge(ctx, "run-1", tt.source, tt.destination, tt.pulse)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n, "%s -%s-> %s", tt.source, tt.pulse, tt.destination)
	}
}
