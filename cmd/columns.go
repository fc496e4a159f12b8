package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:     "columns",
	Aliases: []string{"cols"},
	Short:   "Add, rename and delete columns of a table",
	Long: `
Column commands work on the table given with --table, or on the first table
when none is given.`,
}

var columnsAddCmd = &cobra.Command{
	Use:   "add <names>",
	Short: "Add columns from a comma separated list of names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			table := ws.store.Active()
			added, err := ws.store.AddColumns(table, strings.Join(args, ","))
			if err != nil {
				return err
			}
			fmt.Printf("✅ Added %s to %s\n", strings.Join(added, ", "), table)
			return nil
		})
	},
}

var columnsRenameCmd = &cobra.Command{
	Use:   "rename <name>...",
	Short: "Replace every column name, in order",
	Long: `
Give the full new list of column names, one per existing column. Row values
follow their column.

Example:
  tablekeep columns rename --table Users FullName Age`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			table := ws.store.Active()
			if err := ws.store.RenameColumns(table, args); err != nil {
				return err
			}
			fmt.Printf("✅ Columns of %s are now %s\n", table, strings.Join(args, ", "))
			return nil
		})
	},
}

var columnsRemoveCmd = &cobra.Command{
	Use:     "rm <name>...",
	Aliases: []string{"delete"},
	Short:   "Delete columns and their values",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			table := ws.store.Active()
			msg := fmt.Sprintf("⚠️  Delete %s from %s? Values in these columns are lost.", strings.Join(args, ", "), table)
			if !ws.input.AskConfirmation(msg, ws.force) {
				fmt.Println("❌ Cancelled")
				return nil
			}
			if err := ws.store.DeleteColumns(table, args...); err != nil {
				return err
			}
			fmt.Printf("🗑️  Deleted %s from %s\n", strings.Join(args, ", "), table)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.AddCommand(columnsAddCmd, columnsRenameCmd, columnsRemoveCmd)
}
