package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/utils"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Add, edit, delete and list rows of a table",
	Long: `
Row commands work on the table given with --table, or on the first table
when none is given. Rows are numbered from 0.`,
}

var rowsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the rows of a table",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			snap, active := ws.store.State()
			t, ok := snap.Table(active)
			if !ok {
				fmt.Println("No table selected")
				return nil
			}
			if len(t.Columns) == 0 {
				fmt.Printf("%s has no columns yet\n", active)
				return nil
			}
			fmt.Printf("📋 %s (%d rows)\n", active, len(t.Rows))
			utils.RenderTable(cmd.OutOrStdout(), t.Columns, t.Rows)
			return nil
		})
	},
}

var rowsAddCmd = &cobra.Command{
	Use:   "add <column=value>...",
	Short: "Append a row",
	Long: `
Append a row. Only the given columns are stored.

Example:
  tablekeep rows add --table Users Name=Ann Age=30`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := utils.ParseRow(args)
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ws *workspace) error {
			table := ws.store.Active()
			if err := ws.store.AddRow(table, row); err != nil {
				return err
			}
			fmt.Printf("✅ Added row to %s\n", table)
			return nil
		})
	},
}

var rowsEditCmd = &cobra.Command{
	Use:   "edit <index> <column=value>...",
	Short: "Replace a row",
	Long: `
Replace the row at index with the given values. Columns left out are
cleared.

Example:
  tablekeep rows edit --table Users 0 Name=Ann Age=31`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		row, err := utils.ParseRow(args[1:])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ws *workspace) error {
			table := ws.store.Active()
			if err := ws.store.EditRow(table, index, row); err != nil {
				return err
			}
			fmt.Printf("✅ Updated row %d of %s\n", index, table)
			return nil
		})
	},
}

var rowsRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"delete"},
	Short:   "Delete a row",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ws *workspace) error {
			table := ws.store.Active()
			if !ws.input.AskConfirmation(fmt.Sprintf("⚠️  Delete row %d of %s?", index, table), ws.force) {
				fmt.Println("❌ Cancelled")
				return nil
			}
			if err := ws.store.DeleteRow(table, index); err != nil {
				return err
			}
			fmt.Printf("🗑️  Deleted row %d of %s\n", index, table)
			return nil
		})
	},
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid row index %q", s)
	}
	return index, nil
}

func init() {
	rootCmd.AddCommand(rowsCmd)
	rowsCmd.AddCommand(rowsListCmd, rowsAddCmd, rowsEditCmd, rowsRemoveCmd)
}
