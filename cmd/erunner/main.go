package main

import (
	"fmt"
	"os"

	"erunner/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "erunner:", err)
		os.Exit(1)
	}
}
