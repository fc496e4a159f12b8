package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tables",
	Long: `
Export every table to a timestamped file in the export directory.
Supported formats: json (default), csv, yaml, sqlite

Examples:
  tablekeep export
  tablekeep export --csv
  tablekeep export --sqlite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := export.FormatJSON
		if csv, _ := cmd.Flags().GetBool("csv"); csv {
			format = export.FormatCSV
		} else if yaml, _ := cmd.Flags().GetBool("yaml"); yaml {
			format = export.FormatYAML
		} else if sqlite, _ := cmd.Flags().GetBool("sqlite"); sqlite {
			format = export.FormatSQLite
		}

		return withWorkspace(cmd, func(ws *workspace) error {
			exportPath, err := export.PerformExport(cmd.Context(), ws.store.Snapshot(), ws.cfg.ExportPath, format)
			if err != nil {
				return err
			}

			if exportPath != "" {
				fmt.Printf("✅ Export completed: %s\n", exportPath)
			} else {
				fmt.Println("No export created (there are no tables)")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolP("json", "j", false, "Export as JSON (default)")
	exportCmd.Flags().BoolP("csv", "c", false, "Export as CSV, one file per table")
	exportCmd.Flags().BoolP("yaml", "y", false, "Export as YAML")
	exportCmd.Flags().BoolP("sqlite", "s", false, "Export as a SQLite database")
}
