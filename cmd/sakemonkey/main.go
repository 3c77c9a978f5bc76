// Command sakemonkey tracks sake brewing batches and runs the gravity,
// alcohol and dilution calculations used while brewing.
package main

import (
	"fmt"
	"os"

	"github.com/sakemonkey/sakemonkey/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
