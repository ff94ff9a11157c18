// Command pulsenet simulates pulse propagation networks.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pulsenet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "pulsenet: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
