// Package main is the entry point for the goform CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/reoring/goform/internal/commands"
)

func main() {
	if err := commands.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
