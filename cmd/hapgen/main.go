// Command hapgen reconstructs candidate haplotypes from variant events.
package main

import (
	"fmt"
	"os"

	"github.com/strandbio/hapgen/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
