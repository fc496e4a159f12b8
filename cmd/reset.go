package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/backup"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every table",
	Long: `
Delete every table, column and row. A backup is written first unless
--no-backup is given.

⚠️  WARNING: Without a backup this cannot be undone!`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noBackup, _ := cmd.Flags().GetBool("no-backup")

		return withWorkspace(cmd, func(ws *workspace) error {
			snap := ws.store.Snapshot()
			if snap.Len() == 0 {
				fmt.Println("Nothing to reset")
				return nil
			}

			msg := fmt.Sprintf("⚠️  Delete all %d table(s)?", snap.Len())
			if !ws.input.AskConfirmation(msg, ws.force) {
				fmt.Println("❌ Reset cancelled")
				return nil
			}

			if !noBackup {
				path, err := backup.NewBackupManager(ws.cfg.BackupPath).CreateBackup(snap, "Pre-reset backup")
				if err != nil {
					return fmt.Errorf("failed to back up tables: %w", err)
				}
				fmt.Printf("💾 Backup created: %s\n", path)
			}

			if err := ws.store.Replace(nil); err != nil {
				return err
			}
			fmt.Println("✅ All tables deleted")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().Bool("no-backup", false, "Skip the backup")
}
