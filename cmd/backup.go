package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup [comment]",
	Short: "Back up all tables",
	Long: `
Write every table to a timestamped JSON file in the backup directory.
Restore it later with 'tablekeep restore'.

Examples:
  tablekeep backup "before cleanup"
  tablekeep backup          # Creates backup with default comment
  tablekeep backup --list   # Show existing backups`,
	RunE: func(cmd *cobra.Command, args []string) error {
		comment := "Manual backup"
		if len(args) > 0 {
			comment = strings.Join(args, " ")
		}
		list, _ := cmd.Flags().GetBool("list")

		return withWorkspace(cmd, func(ws *workspace) error {
			bm := backup.NewBackupManager(ws.cfg.BackupPath)

			if list {
				backups, err := bm.ListBackups()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Println("No backups found")
					return nil
				}
				fmt.Printf("💾 Backups (%d):\n", len(backups))
				for _, b := range backups {
					fmt.Printf("   %s  %s  %s\n", b.Timestamp, color.CyanString("%d tables", b.Tables), b.Comment)
					fmt.Printf("   %s\n", color.HiBlackString(b.Path))
				}
				return nil
			}

			path, err := bm.CreateBackup(ws.store.Snapshot(), comment)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Backup created: %s\n", path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().BoolP("list", "l", false, "List existing backups")
}
