package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/database"
	"github.com/Rana718/tablekeep/internal/views"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage status",
	Long: `Show where tables are stored and what was restored:
- Storage provider and namespace
- Whether a stored collection was found
- Number of tables, columns and rows`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			snap, active := ws.store.State()
			summary := views.Summarize(snap)

			fmt.Println("📦 Storage")
			fmt.Printf("   Provider:  %s\n", ws.cfg.Storage.Provider)
			fmt.Printf("   Namespace: %s (schema v%d)\n", database.Namespace, database.SchemaVersion)
			if ws.session.Restored() {
				fmt.Printf("   State:     %s\n", color.GreenString("restored"))
			} else {
				fmt.Printf("   State:     %s\n", color.YellowString("nothing stored yet"))
			}

			fmt.Println()
			fmt.Println("📋 Tables")
			fmt.Printf("   Tables:  %d\n", summary.Tables)
			fmt.Printf("   Columns: %d\n", summary.Columns)
			fmt.Printf("   Rows:    %d\n", summary.Rows)
			if active != "" {
				fmt.Printf("   First:   %s\n", active)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
