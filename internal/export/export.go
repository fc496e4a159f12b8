package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Rana718/tablekeep/internal/tables"
	"github.com/Rana718/tablekeep/internal/types"
)

const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
)

var Formats = []string{FormatJSON, FormatCSV, FormatYAML, FormatSQLite}

// JSON renders the collection with two space indentation, tables in
// collection order.
func JSON(snap *tables.Snapshot) (string, error) {
	data, err := snap.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to marshal tables: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", fmt.Errorf("failed to indent tables: %w", err)
	}
	return buf.String(), nil
}

// YAML renders the collection as a YAML mapping, keeping table, column and
// field order.
func YAML(snap *tables.Snapshot) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(snap)); err != nil {
		return "", fmt.Errorf("failed to marshal tables: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PerformExport writes the snapshot under exportPath in the given format and
// returns the path of the file or directory written. Nothing is written for
// an empty collection.
func PerformExport(ctx context.Context, snap *tables.Snapshot, exportPath, format string) (string, error) {
	if snap.Len() == 0 {
		slog.Info("no tables to export")
		return "", nil
	}

	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")

	switch format {
	case FormatCSV:
		return exportToCSV(ctx, snap, filepath.Join(exportPath, fmt.Sprintf("export_%s_csv", timestamp)))
	case FormatYAML:
		return exportToYAML(snap, filepath.Join(exportPath, fmt.Sprintf("export_%s.yaml", timestamp)))
	case FormatSQLite:
		return exportToSQLite(ctx, snap, filepath.Join(exportPath, fmt.Sprintf("export_%s.db", timestamp)))
	default:
		return exportToJSON(snap, filepath.Join(exportPath, fmt.Sprintf("export_%s.json", timestamp)))
	}
}

func exportToJSON(snap *tables.Snapshot, filePath string) (string, error) {
	data := types.BackupData{
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		Version:   types.FileVersion,
		Comment:   "TableStateDB export",
		Tables:    snap.Collection(),
	}

	jsonData, err := data.Encode()
	if err != nil {
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

func exportToYAML(snap *tables.Snapshot, filePath string) (string, error) {
	out, err := YAML(snap)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filePath, []byte(out), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}

func yamlNode(snap *tables.Snapshot) *yaml.Node {
	str := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	for name, t := range snap.All() {
		columns := &yaml.Node{Kind: yaml.SequenceNode}
		for _, col := range t.Columns {
			columns.Content = append(columns.Content, str(col))
		}
		rows := &yaml.Node{Kind: yaml.SequenceNode}
		for _, row := range t.Rows {
			fields := &yaml.Node{Kind: yaml.MappingNode}
			for k, v := range row.All() {
				fields.Content = append(fields.Content, str(k), str(v))
			}
			rows.Content = append(rows.Content, fields)
		}
		table := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			str("columns"), columns,
			str("rows"), rows,
		}}
		root.Content = append(root.Content, str(name), table)
	}
	return root
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileNames maps table names to filesystem safe base names that stay unique
// on case-insensitive filesystems.
func fileNames(names []string) []string {
	bases := make([]string, len(names))
	for i, name := range names {
		base := strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_.")
		if base == "" {
			base = "table"
		}
		bases[i] = base
	}
	return uniqueFold(bases)
}

// sqlIdents maps names to identifiers SQLite accepts together in one scope:
// unique ignoring case and outside the reserved sqlite_ prefix.
func sqlIdents(names []string) []string {
	bases := make([]string, len(names))
	for i, name := range names {
		bases[i] = name
		if strings.HasPrefix(strings.ToLower(name), "sqlite_") {
			bases[i] = "t_" + name
		}
	}
	return uniqueFold(bases)
}

// uniqueFold suffixes _2, _3, ... to any name already taken, comparing
// without case. Suffixed names are checked against every earlier result.
func uniqueFold(bases []string) []string {
	out := make([]string, len(bases))
	taken := make(map[string]struct{}, len(bases))
	for i, base := range bases {
		name := base
		for n := 2; ; n++ {
			if _, ok := taken[strings.ToLower(name)]; !ok {
				break
			}
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[strings.ToLower(name)] = struct{}{}
		out[i] = name
	}
	return out
}

func exportToCSV(ctx context.Context, snap *tables.Snapshot, dirPath string) (string, error) {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create CSV directory: %w", err)
	}

	names := snap.Names()
	files := fileNames(names)

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		t, _ := snap.Table(name)
		filePath := filepath.Join(dirPath, files[i]+".csv")
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeCSV(filePath, t)
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return dirPath, nil
}

func writeCSV(filePath string, t tables.TableData) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", filePath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		values := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			values[i] = row.Get(col)
		}
		if err := writer.Write(values); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func exportToSQLite(ctx context.Context, snap *tables.Snapshot, filePath string) (string, error) {
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create SQLite database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	names := snap.Names()
	idents := sqlIdents(names)
	for i, name := range names {
		t, _ := snap.Table(name)
		if len(t.Columns) == 0 {
			slog.Warn("skipping table without columns", "table", name)
			continue
		}
		if idents[i] != name {
			slog.Warn("renaming table for SQLite", "table", name, "as", idents[i])
		}

		table := quoteIdent(idents[i])
		columns := make([]string, len(t.Columns))
		defs := make([]string, len(t.Columns))
		for j, col := range sqlIdents(t.Columns) {
			if col != t.Columns[j] {
				slog.Warn("renaming column for SQLite", "table", name, "column", t.Columns[j], "as", col)
			}
			columns[j] = quoteIdent(col)
			defs[j] = columns[j] + " TEXT"
		}
		createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
		if _, err := tx.ExecContext(ctx, createSQL); err != nil {
			return "", fmt.Errorf("failed to create table %s: %w", name, err)
		}

		for _, row := range t.Rows {
			values := make([]any, len(t.Columns))
			for i, col := range t.Columns {
				values[i] = row.Get(col)
			}
			query, args, err := qb.Insert(table).Columns(columns...).Values(values...).ToSql()
			if err != nil {
				return "", err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return "", fmt.Errorf("failed to insert row into %s: %w", name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit export: %w", err)
	}
	return filePath, nil
}
