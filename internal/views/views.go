package views

import (
	"cmp"
	"slices"

	"github.com/Rana718/tablekeep/internal/tables"
)

// Summary holds the dashboard totals.
type Summary struct {
	Tables        int    `json:"tables"`
	Rows          int    `json:"rows"`
	Columns       int    `json:"columns"`
	MostRows      string `json:"most_rows"`
	MostRowsCount int    `json:"most_rows_count"`
	MostCols      string `json:"most_columns"`
	MostColsCount int    `json:"most_columns_count"`
}

// Summarize computes totals over every table. The table with the most rows
// and the one with the most columns go to the first table reaching the
// maximum. Both names stay empty when every count is zero.
func Summarize(snap *tables.Snapshot) Summary {
	var s Summary
	for name, t := range snap.All() {
		s.Tables++
		s.Rows += len(t.Rows)
		s.Columns += len(t.Columns)
		if len(t.Rows) > s.MostRowsCount {
			s.MostRows, s.MostRowsCount = name, len(t.Rows)
		}
		if len(t.Columns) > s.MostColsCount {
			s.MostCols, s.MostColsCount = name, len(t.Columns)
		}
	}
	return s
}

// Slice is one table's share of all rows.
type Slice struct {
	Name  string  `json:"name"`
	Rows  int     `json:"rows"`
	Share float64 `json:"share"`
}

// RowDistribution returns every table with its share of the total row count,
// in collection order. Shares are zero when there are no rows at all.
func RowDistribution(snap *tables.Snapshot) []Slice {
	out := make([]Slice, 0, snap.Len())
	total := 0
	for name, t := range snap.All() {
		out = append(out, Slice{Name: name, Rows: len(t.Rows)})
		total += len(t.Rows)
	}
	if total == 0 {
		return out
	}
	for i := range out {
		out[i].Share = float64(out[i].Rows) / float64(total)
	}
	return out
}

// Bar is one entry of the ranked row series.
type Bar struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// RowSeries returns row counts ranked from largest to smallest. Tables with
// equal counts keep collection order.
func RowSeries(snap *tables.Snapshot) []Bar {
	out := make([]Bar, 0, snap.Len())
	for name, t := range snap.All() {
		out = append(out, Bar{Name: name, Rows: len(t.Rows)})
	}
	slices.SortStableFunc(out, func(a, b Bar) int {
		return cmp.Compare(b.Rows, a.Rows)
	})
	return out
}

// Detail describes a single table.
type Detail struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	NumCols int      `json:"column_count"`
	NumRows int      `json:"row_count"`
}

// Describe returns the detail of the named table, or false if it is absent.
func Describe(snap *tables.Snapshot, name string) (Detail, bool) {
	t, ok := snap.Table(name)
	if !ok {
		return Detail{}, false
	}
	return Detail{
		Name:    name,
		Columns: t.Columns,
		NumCols: len(t.Columns),
		NumRows: len(t.Rows),
	}, true
}
