package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Presses int64
	Module  string // optional - filter to one module's pulses

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID    string            `json:"run_id"`
	Presses  int64             `json:"presses"`
	Timeline []ir.Event        `json:"timeline"`
	Edges    []store.EdgeCount `json:"edges"`
	Totals   ir.PulseCounts    `json:"totals"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	return newTraceCommand(&TraceOptions{RootOptions: rootOpts})
}

func newTraceCommand(opts *TraceOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <network>",
		Short: "Show every pulse sent by a few presses",
		Long: `Record every pulse of the first presses and print them.

The output includes:
- Timeline: pulses in delivery order
- Edges: pulse counts per source, destination and level, in order of first use
- Totals: low and high pulses over all recorded presses

Examples:
  pulsenet trace ./network.txt
  pulsenet trace ./network.txt --presses 4 --module con
  pulsenet trace ./network.txt --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Presses, "presses", 1, "number of button presses to record")
	cmd.Flags().StringVar(&opts.Module, "module", "", "only show pulses sent or received by this module")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	if opts.Presses < 1 {
		return formatter.Fail("invalid flag", NewExitError(ExitCommandError, fmt.Sprintf("--presses must be positive, got %d", opts.Presses)))
	}

	spec, err := LoadNetwork(path)
	if err != nil {
		return formatter.Fail("failed to load network", err)
	}

	var extra []engine.Option
	if opts.RunIDs != nil {
		extra = append(extra, engine.WithRunIDGenerator(opts.RunIDs))
	}
	e, err := opts.newEngine(spec, extra...)
	if err != nil {
		return formatter.Fail("failed to build network", err)
	}

	st, err := store.Open()
	if err != nil {
		return formatter.Fail("failed to open trace store", err)
	}
	defer st.Close()

	rec, err := store.NewRecorder(ctx, st, e.RunID(), spec)
	if err != nil {
		return formatter.Fail("failed to record trace", err)
	}
	unsubscribe := e.Subscribe(rec.Observe)
	_, pressErr := e.PressN(ctx, opts.Presses)
	unsubscribe()
	if err := rec.Close(); err != nil {
		return formatter.Fail("failed to record trace", err)
	}

	result, err := readTrace(ctx, st, e.RunID(), opts.Module)
	if err != nil {
		return formatter.Fail("failed to read trace", err)
	}
	result.Presses = e.Presses()

	// the pulses up to a strict-policy failure are still worth showing
	if pressErr != nil {
		if opts.Format != "json" {
			writeTraceText(formatter.Writer, result)
		}
		return formatter.Fail("simulation failed", pressErr)
	}

	return formatter.Success(result, func(w io.Writer) {
		writeTraceText(w, result)
	})
}

// readTrace reads the recorded run back, narrowed to module if set.
func readTrace(ctx context.Context, st *store.Store, runID, module string) (TraceResult, error) {
	result := TraceResult{RunID: runID}

	events, err := st.ReadEvents(ctx, runID, store.EventFilter{Module: module})
	if err != nil {
		return result, err
	}
	result.Timeline = events

	edges, err := st.EdgeSummary(ctx, runID)
	if err != nil {
		return result, err
	}
	result.Edges = []store.EdgeCount{}
	for _, edge := range edges {
		if module == "" || edge.Source == module || edge.Destination == module {
			result.Edges = append(result.Edges, edge)
		}
	}

	if result.Totals, err = st.CountPulses(ctx, runID); err != nil {
		return result, err
	}
	return result, nil
}

// writeTraceText outputs the trace result as text.
func writeTraceText(w io.Writer, result TraceResult) {
	fmt.Fprintf(w, "Trace for run: %s (%d presses)\n", result.RunID, result.Presses)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no pulses)")
	}
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "  [%d] press %d: %s\n", ev.Seq, ev.Press, ev)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Edges ===")
	if len(result.Edges) == 0 {
		fmt.Fprintln(w, "  (no pulses)")
	}
	for _, edge := range result.Edges {
		fmt.Fprintf(w, "  %s -%s-> %s x%d\n", edge.Source, edge.Pulse, edge.Destination, edge.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Totals ===")
	fmt.Fprintf(w, "  Low:  %d\n", result.Totals.Low)
	fmt.Fprintf(w, "  High: %d\n", result.Totals.High)
}
