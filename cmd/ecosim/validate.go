package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/myopic/ecosim/scenario"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a scenario file and echo its canonical hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		hash, err := scenario.Hash(s)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}
