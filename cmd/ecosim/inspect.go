package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/myopic/ecosim/runstore"
)

var inspectTail int

var inspectCmd = &cobra.Command{
	Use:   "inspect <run>",
	Short: "Print a run directory's manifest summary and a tail of its metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := runstore.NewLayout(args[0])

		m, err := runstore.ReadManifest(l)
		if err != nil {
			return err
		}
		fmt.Printf("schema_version: %s\n", m.SchemaVersion)
		fmt.Printf("scenario_hash:  %s\n", m.ScenarioHash)
		fmt.Printf("label:          %s\n", m.Label)
		fmt.Printf("ticks:          %d\n", m.Ticks)
		fmt.Printf("world:          %dx%d (%s)\n", m.World.Width, m.World.Height, m.World.Type)
		fmt.Printf("runtime_s:      %.3f\n", m.RuntimeS)

		rows, err := runstore.ReadFieldStats(l.FieldStats())
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		fmt.Println("\nfield_stats (tail):")
		start := len(rows) - inspectTail
		if start < 0 {
			start = 0
		}
		for _, r := range rows[start:] {
			fmt.Printf("  tick=%-6d field=%-20s mean=%10.4f var=%10.4f\n", r.Tick, r.Field, r.Mean, r.Var)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectTail, "tail", 20, "number of trailing field_stats rows to print")
}
