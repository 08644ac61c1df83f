package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "ecosim",
	Short:         "Deterministic environment engine and banded agent simulator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(initCmd, validateCmd, runCmd, inspectCmd, visualizeCmd)
}
