package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/utils"
)

var tablesCmd = &cobra.Command{
	Use:     "tables",
	Aliases: []string{"table"},
	Short:   "Create, rename, delete and list tables",
}

var tablesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tables",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			snap, active := ws.store.State()
			if snap.Len() == 0 {
				fmt.Println("No tables yet. Create one with 'tablekeep tables add <names>'")
				return nil
			}

			fmt.Printf("📋 Tables (%d):\n", snap.Len())
			for name, t := range snap.All() {
				marker := "  "
				if name == active {
					marker = color.GreenString("▸ ")
				}
				fmt.Printf("%s%s  %s\n", marker, color.New(color.Bold).Sprint(name),
					color.HiBlackString("%d columns, %d rows", len(t.Columns), len(t.Rows)))
			}
			return nil
		})
	},
}

var tablesAddCmd = &cobra.Command{
	Use:   "add <names>",
	Short: "Create tables from a comma separated list of names",
	Long: `
Create one or more tables. Names are separated by commas; blank names and
names that already exist are skipped.

Examples:
  tablekeep tables add "Users, Orders"
  tablekeep tables add Users Orders`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			created, err := ws.store.CreateTables(strings.Join(args, ","))
			if err != nil {
				return err
			}
			fmt.Printf("✅ Created %s\n", strings.Join(created, ", "))
			return nil
		})
	},
}

var tablesRenameCmd = &cobra.Command{
	Use:   "rename <old=new>...",
	Short: "Rename tables",
	Long: `
Rename tables in place. Table order and contents are kept.

Examples:
  tablekeep tables rename Users=People
  tablekeep tables rename a=b b=a`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mapping, err := utils.ParseRenames(args)
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ws *workspace) error {
			if err := ws.store.RenameTables(mapping); err != nil {
				return err
			}
			fmt.Printf("✅ Renamed %d table(s)\n", len(mapping))
			return nil
		})
	},
}

var tablesRemoveCmd = &cobra.Command{
	Use:     "rm <name>...",
	Aliases: []string{"delete"},
	Short:   "Delete tables",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			msg := fmt.Sprintf("⚠️  Delete %s and all of its rows?", strings.Join(args, ", "))
			if !ws.input.AskConfirmation(msg, ws.force) {
				fmt.Println("❌ Cancelled")
				return nil
			}

			removed := ws.store.DeleteTables(args...)
			if len(removed) == 0 {
				fmt.Println("No matching tables")
				return nil
			}
			fmt.Printf("🗑️  Deleted %s\n", strings.Join(removed, ", "))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesListCmd, tablesAddCmd, tablesRenameCmd, tablesRemoveCmd)
}
