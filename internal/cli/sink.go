package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
)

// SinkOptions holds flags for the sink command.
type SinkOptions struct {
	*RootOptions
	Sink       string
	Method     string
	MaxPresses int64
	NoVerify   bool
}

// NewSinkCommand creates the sink command.
func NewSinkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SinkOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sink <network>",
		Short: "Find the first press that delivers a low pulse to a module",
		Long: `Find the fewest button presses after which a module has received a low pulse.

Methods:
  cycle  simulate until the sink receives low, or until the network state
         repeats (the sink is then unreachable)
  lcm    watch the single conjunction feeding the sink and combine the
         periods of its inputs (fast on counter networks)
  auto   lcm, falling back to cycle when the network does not fit

Exit codes:
  0 - Sink receives low
  1 - Sink unreachable, or the search failed
  2 - Command error (bad file, bad flag, etc.)

Examples:
  pulsenet sink ./network.txt
  pulsenet sink ./network.txt --sink output --method cycle
  pulsenet sink ./network.txt --method lcm --no-verify`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSink(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Sink, "sink", engine.DefaultSink, "module that must receive a low pulse")
	cmd.Flags().StringVar(&opts.Method, "method", string(engine.MethodAuto), "search method (auto|cycle|lcm)")
	cmd.Flags().Int64Var(&opts.MaxPresses, "max-presses", engine.DefaultMaxPresses, "press quota for the search")
	cmd.Flags().BoolVar(&opts.NoVerify, "no-verify", false, "trust the first feeder periods without checking them")

	return cmd
}

func runSink(opts *SinkOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	method, err := engine.ParseMethod(opts.Method)
	if err != nil {
		return formatter.Fail("invalid flag", WrapExitError(ExitCommandError, "--method", err))
	}
	if opts.MaxPresses <= 0 {
		return formatter.Fail("invalid flag", NewExitError(ExitCommandError, fmt.Sprintf("--max-presses must be positive, got %d", opts.MaxPresses)))
	}

	spec, err := LoadNetwork(path)
	if err != nil {
		return formatter.Fail("failed to load network", err)
	}
	e, err := opts.newEngine(spec, engine.WithMaxPresses(opts.MaxPresses))
	if err != nil {
		return formatter.Fail("failed to build network", err)
	}

	res, err := engine.FindSinkLow(cmd.Context(), e, opts.Sink,
		engine.WithMethod(method),
		engine.WithVerification(!opts.NoVerify),
	)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("no answer for sink %q", opts.Sink), err)
	}

	formatter.VerboseLog("method %s, simulated %d presses", res.Method, res.Simulated)
	if res.FellBack {
		formatter.VerboseLog("fell back from %s", engine.MethodFeederLCM)
	}
	for _, in := range slices.Sorted(maps.Keys(res.Periods)) {
		formatter.VerboseLog("  %s -high-> %s every %d presses", in, res.Watched, res.Periods[in])
	}

	return formatter.Success(res, func(w io.Writer) {
		fmt.Fprintln(w, res.Presses)
	})
}
