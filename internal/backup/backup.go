package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Rana718/tablekeep/internal/tables"
	"github.com/Rana718/tablekeep/internal/types"
)

const filePrefix = "backup_"

// BackupManager writes and reads collection backups in a directory.
type BackupManager struct {
	backupPath string
	now        func() time.Time
}

func NewBackupManager(backupPath string) *BackupManager {
	return &BackupManager{backupPath: backupPath, now: time.Now}
}

// CreateBackup writes snap to a timestamped file and returns its path.
func (bm *BackupManager) CreateBackup(snap *tables.Snapshot, comment string) (string, error) {
	if err := os.MkdirAll(bm.backupPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := bm.now()
	data := types.BackupData{
		Timestamp: now.Format("2006-01-02 15:04:05"),
		Version:   types.FileVersion,
		Comment:   comment,
		Tables:    snap.Collection(),
	}

	jsonData, err := data.Encode()
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}

	name := fmt.Sprintf("%s%s.json", filePrefix, now.Format("2006-01-02_15-04-05.000"))
	path := filepath.Join(bm.backupPath, name)
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}

// ListBackups returns the backups in the directory, newest first. Files that
// cannot be read are skipped.
func (bm *BackupManager) ListBackups() ([]types.BackupInfo, error) {
	entries, err := os.ReadDir(bm.backupPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []types.BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(bm.backupPath, name)
		data, err := readFile(path)
		if err != nil {
			continue
		}
		backups = append(backups, types.BackupInfo{
			Path:      path,
			Timestamp: data.Timestamp,
			Comment:   data.Comment,
			Tables:    data.Tables.Len(),
		})
	}

	slices.SortFunc(backups, func(a, b types.BackupInfo) int {
		return strings.Compare(b.Path, a.Path)
	})
	return backups, nil
}

// Latest returns the path of the newest backup, or "" if there is none.
func (bm *BackupManager) Latest() (string, error) {
	backups, err := bm.ListBackups()
	if err != nil || len(backups) == 0 {
		return "", err
	}
	return backups[0].Path, nil
}

// ReadBackup loads the tables from a backup or JSON export file. A bare
// collection, as produced by the pretty JSON view, is accepted too. Files whose
// tables break the store's naming or row rules are rejected.
func ReadBackup(path string) (*tables.Collection, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := tables.CheckCollection(data.Tables); err != nil {
		return nil, fmt.Errorf("backup file %s is not a valid table collection: %w", path, err)
	}
	return data.Tables, nil
}

func readFile(path string) (*types.BackupData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	var data types.BackupData
	if err := json.Unmarshal(raw, &data); err == nil && data.Version != "" && data.Tables != nil {
		if data.Version != types.FileVersion {
			return nil, fmt.Errorf("unsupported backup version %q", data.Version)
		}
		return &data, nil
	}

	c := tables.NewCollection()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to parse backup file %s: %w", path, err)
	}
	return &types.BackupData{Version: types.FileVersion, Tables: c}, nil
}
