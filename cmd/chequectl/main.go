package main

import (
	"fmt"
	"os"

	"chequeprint/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chequectl: %v\n", err)
		os.Exit(1)
	}
}
