package main

import (
	"fmt"
	"os"

	"pomodesk/internal/cli"
)

func main() {
	if err := cli.BuildCLI(runDesktop).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
