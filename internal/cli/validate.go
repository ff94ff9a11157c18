package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/compiler"
	"github.com/roach88/pulsenet/internal/ir"
)

// ValidationResult holds validation results.
// Diagnostics never make a network invalid; only load errors do.
type ValidationResult struct {
	Valid       bool                  `json:"valid"`
	Entry       string                `json:"entry"`
	Modules     int                   `json:"modules"`
	Hash        string                `json:"hash"`
	Diagnostics []compiler.Diagnostic `json:"diagnostics"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <network>",
		Short: "Check a network without simulating it",
		Long: `Parse a network and report findings that do not prevent simulation:
undeclared destinations, a missing entry module, modules unreachable from
the entry, conjunctions without inputs and feedback loops.

Exit codes:
  0 - Network loads (warnings may be reported)
  2 - Network file missing or malformed`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	spec, err := LoadNetwork(path)
	if err != nil {
		return formatter.Fail("validation failed", err)
	}
	formatter.VerboseLog("Loaded %d module(s) from %s", len(spec.Modules), path)

	hash, err := ir.NetworkHash(spec)
	if err != nil {
		return formatter.Fail("validation failed", err)
	}

	diags := compiler.Validate(spec)
	if diags == nil {
		diags = []compiler.Diagnostic{}
	}
	result := ValidationResult{
		Valid:       true,
		Entry:       spec.EntryName(),
		Modules:     len(spec.Modules),
		Hash:        hash,
		Diagnostics: diags,
	}

	return formatter.Success(result, func(w io.Writer) {
		for _, d := range result.Diagnostics {
			fmt.Fprintf(w, "%s: %s\n", d.Level, d)
		}
		fmt.Fprintf(w, "✓ %d module(s), entry %s\n", result.Modules, result.Entry)
	})
}
