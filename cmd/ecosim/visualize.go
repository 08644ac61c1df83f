package main

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/myopic/ecosim/envview"
)

var (
	visField string
	visType  string
	visTick  int
	visSave  string
)

// rowSummary is one row-band's min/mean/max for a field, the CSV shape
// visualize writes with --save. The matplotlib heatmaps/GIFs
// original_source's visualize_agent_migration.py produced are explicitly
// out of scope; this is the terminal/CSV-friendly replacement spec.md's
// CLI surface still names (see DESIGN.md).
type rowSummary struct {
	Row  int     `csv:"row"`
	Min  float64 `csv:"min"`
	Mean float64 `csv:"mean"`
	Max  float64 `csv:"max"`
}

var visualizeCmd = &cobra.Command{
	Use:   "visualize <run>",
	Short: "Print a per-row min/mean/max summary of one field at one tick",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := envview.New(args[0])
		if err != nil {
			return err
		}
		if err := g.LoadTick(visTick); err != nil {
			return err
		}
		r, err := g.GetField(visField)
		if err != nil {
			return err
		}

		rows := make([]rowSummary, r.H)
		for y := 0; y < r.H; y++ {
			min, max := r.At(0, y), r.At(0, y)
			var sum float64
			for x := 0; x < r.W; x++ {
				v := r.At(x, y)
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
				sum += float64(v)
			}
			rows[y] = rowSummary{Row: y, Min: float64(min), Mean: sum / float64(r.W), Max: float64(max)}
		}

		if visSave != "" {
			f, err := os.Create(visSave)
			if err != nil {
				return err
			}
			defer f.Close()
			return gocsv.Marshal(rows, f)
		}

		fmt.Printf("field=%s tick=%d type=%s\n", visField, visTick, visType)
		for _, row := range rows {
			fmt.Printf("  row=%-4d min=%8.4f mean=%8.4f max=%8.4f\n", row.Row, row.Min, row.Mean, row.Max)
		}
		return nil
	},
}

func init() {
	visualizeCmd.Flags().StringVar(&visField, "field", "", "field name to summarize")
	visualizeCmd.Flags().StringVar(&visType, "type", "heatmap", "visualization type, accepted for CLI compatibility but not rendered")
	visualizeCmd.Flags().IntVar(&visTick, "tick", 0, "tick to load")
	visualizeCmd.Flags().StringVar(&visSave, "save", "", "write the summary as CSV to this path instead of stdout")
	visualizeCmd.MarkFlagRequired("field")
}
