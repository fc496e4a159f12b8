package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/views"
)

const barWidth = 30

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals and row counts per table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withWorkspace(cmd, func(ws *workspace) error {
			snap, active := ws.store.State()
			summary := views.Summarize(snap)
			series := views.RowSeries(snap)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"summary":      summary,
					"distribution": views.RowDistribution(snap),
					"series":       series,
				})
			}

			bold := color.New(color.Bold)
			fmt.Println("📊 Summary")
			fmt.Printf("   Tables:  %s\n", bold.Sprint(summary.Tables))
			fmt.Printf("   Rows:    %s\n", bold.Sprint(summary.Rows))
			fmt.Printf("   Columns: %s\n", bold.Sprint(summary.Columns))
			if summary.MostRows != "" {
				fmt.Printf("   Most rows:    %s (%d)\n", summary.MostRows, summary.MostRowsCount)
			}
			if summary.MostCols != "" {
				fmt.Printf("   Most columns: %s (%d)\n", summary.MostCols, summary.MostColsCount)
			}

			if d, ok := views.Describe(snap, active); ok {
				fmt.Println()
				fmt.Printf("📋 %s: %d columns, %d rows\n", d.Name, d.NumCols, d.NumRows)
				if len(d.Columns) > 0 {
					fmt.Printf("   %s\n", strings.Join(d.Columns, ", "))
				}
			}

			if summary.Rows == 0 {
				return nil
			}

			fmt.Println()
			fmt.Println("📈 Rows per table")
			width := 0
			for _, b := range series {
				width = max(width, len(b.Name))
			}
			for _, b := range series {
				n := b.Rows * barWidth / series[0].Rows
				fmt.Printf("   %-*s %s %d\n", width, b.Name, color.CyanString(strings.Repeat("█", n)), b.Rows)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("json", false, "Print as JSON")
}
