package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/backup"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-file]",
	Short: "Replace all tables with a backup",
	Long: `
Replace every table with the contents of a backup file. Without a file the
newest backup is used. JSON exports can be restored the same way.

The current tables are backed up first.

Examples:
  tablekeep restore
  tablekeep restore .tablekeep/backups/backup_2024-01-15_10-30-00.000.json
  tablekeep restore --force exports/export_2024-01-15_10-30-00.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *workspace) error {
			bm := backup.NewBackupManager(ws.cfg.BackupPath)

			file := ""
			if len(args) > 0 {
				file = args[0]
			} else {
				latest, err := bm.Latest()
				if err != nil {
					return err
				}
				if latest == "" {
					return fmt.Errorf("no backups found in %s", ws.cfg.BackupPath)
				}
				file = latest
			}

			incoming, err := backup.ReadBackup(file)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("⚠️  Replace all tables with the %d table(s) in %s?", incoming.Len(), file)
			if !ws.input.AskConfirmation(msg, ws.force) {
				fmt.Println("❌ Restore cancelled")
				return nil
			}

			if ws.store.Snapshot().Len() > 0 {
				path, err := bm.CreateBackup(ws.store.Snapshot(), "Pre-restore backup")
				if err != nil {
					return fmt.Errorf("failed to back up current tables: %w", err)
				}
				fmt.Printf("💾 Current tables saved to %s\n", path)
			}

			if err := ws.store.Replace(incoming); err != nil {
				return err
			}
			fmt.Printf("✅ Restored %d table(s) from %s\n", incoming.Len(), file)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
