package main

import (
	"fmt"
	"os"

	"github.com/fjpolo/tlbench/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tlbench:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
