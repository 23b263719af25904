// Command sqlcheck type-checks SQL expressions declared in CUE specs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sqlcheck/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
