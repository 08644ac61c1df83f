package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/myopic/ecosim/scenario"
)

var initOut string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter scenario file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := scenario.WriteDefaults(initOut); err != nil {
			return err
		}
		fmt.Println(initOut)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initOut, "out", "scenario.yaml", "path to write the starter scenario")
}
