// Package commands contains the goform CLI command definitions.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "goform",
		Short:         "Check values against form schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	registerCheckCmd(rootCmd)
	registerDescribeCmd(rootCmd)

	return rootCmd
}
