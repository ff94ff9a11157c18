package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
	"github.com/roach88/pulsenet/internal/testutil"
)

// traceOptions returns trace options with a fixed run ID.
func traceOptions(root *RootOptions) *TraceOptions {
	return &TraceOptions{
		RootOptions: root,
		RunIDs:      testutil.NewFixedRunIDGenerator("trace-run"),
	}
}

func TestTraceMissingArgs(t *testing.T) {
	_, err := execute(NewTraceCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTraceExample1Text(t *testing.T) {
	path := writeNetwork(t, "example1.txt", testutil.Example1)

	out, err := execute(newTraceCommand(traceOptions(&RootOptions{Format: "text"})), path)
	require.NoError(t, err)

	assert.Contains(t, out, "Trace for run: trace-run (1 presses)")
	assert.Contains(t, out, "  [1] press 1: button -low-> broadcaster\n")
	assert.Contains(t, out, "  [12] press 1: inv -high-> a\n")
	assert.Contains(t, out, "  c -high-> inv x1\n")
	assert.Contains(t, out, "  Low:  8\n")
	assert.Contains(t, out, "  High: 4\n")
}

func TestTraceModuleFilterJSON(t *testing.T) {
	path := writeNetwork(t, "example1.txt", testutil.Example1)

	out, err := execute(newTraceCommand(traceOptions(&RootOptions{Format: "json"})), path, "--module", "inv")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "trace-run", resp.Data.RunID)

	assert.Equal(t, []ir.Event{
		{Seq: 7, Press: 1, Source: "c", Destination: "inv", Pulse: ir.High},
		{Seq: 8, Press: 1, Source: "inv", Destination: "a", Pulse: ir.Low},
		{Seq: 11, Press: 1, Source: "c", Destination: "inv", Pulse: ir.Low},
		{Seq: 12, Press: 1, Source: "inv", Destination: "a", Pulse: ir.High},
	}, resp.Data.Timeline)
	assert.Equal(t, []store.EdgeCount{
		{Source: "c", Destination: "inv", Pulse: ir.High, Count: 1},
		{Source: "inv", Destination: "a", Pulse: ir.Low, Count: 1},
		{Source: "c", Destination: "inv", Pulse: ir.Low, Count: 1},
		{Source: "inv", Destination: "a", Pulse: ir.High, Count: 1},
	}, resp.Data.Edges)
	assert.Equal(t, ir.PulseCounts{Low: 8, High: 4}, resp.Data.Totals, "totals cover the whole run")
}

func TestTraceSeveralPresses(t *testing.T) {
	path := writeNetwork(t, "example2.txt", testutil.Example2)

	out, err := execute(newTraceCommand(traceOptions(&RootOptions{Format: "json"})), path, "--presses", "4")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(4), resp.Data.Presses)
	assert.Equal(t, ir.PulseCounts{Low: 17, High: 11}, resp.Data.Totals)
	require.NotEmpty(t, resp.Data.Timeline)
	assert.Equal(t, int64(4), resp.Data.Timeline[len(resp.Data.Timeline)-1].Press)
}

func TestTraceStrictShowsPartialTimeline(t *testing.T) {
	path := writeNetwork(t, "example2.txt", testutil.Example2)

	out, err := execute(newTraceCommand(traceOptions(&RootOptions{Format: "text", Strict: true})), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[1] press 1: button -low-> broadcaster")
	assert.Contains(t, out, "Error [UNKNOWN_DESTINATION]")
}

func TestTraceInvalidPresses(t *testing.T) {
	path := writeNetwork(t, "example1.txt", testutil.Example1)

	_, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), path, "--presses", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceNonExistentFile(t *testing.T) {
	_, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "/nonexistent/network.txt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
