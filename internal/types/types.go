package types

import (
	"bytes"
	"encoding/json"

	"github.com/Rana718/tablekeep/internal/tables"
)

// FileVersion is written to every backup and JSON export.
const FileVersion = "1"

// BackupData is the file layout shared by JSON exports and backups.
type BackupData struct {
	Timestamp string             `json:"timestamp"`
	Version   string             `json:"version"`
	Comment   string             `json:"comment"`
	Tables    *tables.Collection `json:"tables"`
}

// Encode renders the file with two space indentation. Table names and values
// are written as typed, without HTML escaping.
func (d BackupData) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BackupInfo describes a backup file on disk.
type BackupInfo struct {
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	Comment   string `json:"comment"`
	Tables    int    `json:"tables"`
}
