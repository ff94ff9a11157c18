package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Presses     int64
	Extrapolate bool
}

// RunResult is the output of the run command.
type RunResult struct {
	Network   string        `json:"network"`
	Presses   int64         `json:"presses"`
	Low       int64         `json:"low"`
	High      int64         `json:"high"`
	Product   int64         `json:"product"`
	Simulated int64         `json:"simulated"`
	Cycle     *engine.Cycle `json:"cycle,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <network>",
		Short: "Count pulses over a number of button presses",
		Long: `Press the button a number of times and count the low and high pulses sent.

With --extrapolate the network state is fingerprinted after every press.
Once a state repeats, the remaining presses are computed from the cycle
instead of simulated.

Examples:
  pulsenet run ./network.txt
  pulsenet run ./network.txt --presses 1000000000 --extrapolate
  pulsenet run ./network.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPresses(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Presses, "presses", engine.DefaultPresses, "number of button presses")
	cmd.Flags().BoolVar(&opts.Extrapolate, "extrapolate", false, "extrapolate from the first repeated state")

	return cmd
}

func runPresses(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Presses < 0 {
		return formatter.Fail("invalid flag", NewExitError(ExitCommandError, fmt.Sprintf("--presses must be non-negative, got %d", opts.Presses)))
	}

	spec, err := LoadNetwork(path)
	if err != nil {
		return formatter.Fail("failed to load network", err)
	}
	e, err := opts.newEngine(spec)
	if err != nil {
		return formatter.Fail("failed to build network", err)
	}

	result := RunResult{Network: path, Presses: opts.Presses}
	var counts ir.PulseCounts
	if opts.Extrapolate {
		x, err := engine.CountPulses(cmd.Context(), e, opts.Presses)
		if err != nil {
			return formatter.Fail("simulation failed", err)
		}
		counts = x.Counts
		result.Simulated = x.Simulated
		result.Cycle = x.Cycle
	} else {
		counts, err = e.PressN(cmd.Context(), opts.Presses)
		if err != nil {
			return formatter.Fail("simulation failed", err)
		}
		result.Simulated = e.Presses()
	}
	result.Low, result.High = counts.Low, counts.High
	result.Product, err = counts.Product()
	if err != nil {
		return formatter.Fail("simulation failed", &engine.RuntimeError{
			Code:    engine.ErrCodeOverflow,
			Message: fmt.Sprintf("product of %d low and %d high pulses overflows int64", counts.Low, counts.High),
			RunID:   e.RunID(),
		})
	}

	if result.Cycle != nil {
		formatter.VerboseLog("state repeats: cycle start %d, length %d", result.Cycle.Start, result.Cycle.Length)
	}
	formatter.VerboseLog("simulated %d of %d presses", result.Simulated, result.Presses)

	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "low:     %d\n", result.Low)
		fmt.Fprintf(w, "high:    %d\n", result.High)
		fmt.Fprintf(w, "product: %d\n", result.Product)
	})
}
