package tables

import (
	"slices"
	"strings"
)

func (s *Store) checkRow(table string, t TableData, row Row) error {
	empty := true
	for k, v := range row.All() {
		if !t.HasColumn(k) {
			return invalid(KindUnknownColumn, "table %q has no column %q", table, k)
		}
		if strings.TrimSpace(v) != "" {
			empty = false
		}
	}
	if empty {
		return invalid(KindEmptyRow, "row has no values")
	}
	if s.requireComplete {
		for _, col := range t.Columns {
			if strings.TrimSpace(row.Get(col)) == "" {
				return invalid(KindIncompleteRow, "column %q is blank", col)
			}
		}
	}
	return nil
}

// AddRow appends a copy of row to the table. Only the supplied fields are
// stored.
func (s *Store) AddRow(table string, row Row) error {
	return s.apply(OpAddRow, func(c *Collection, active string) (string, bool, error) {
		t, err := s.tableFor(c, table)
		if err != nil {
			return active, false, err
		}
		if err := s.checkRow(table, t, row); err != nil {
			return active, false, err
		}
		c.set(table, TableData{
			Columns: t.Columns,
			Rows:    append(slices.Clone(t.Rows), row.Clone()),
		})
		return active, true, nil
	})
}

// EditRow replaces the row at index with row. Fields are not merged.
func (s *Store) EditRow(table string, index int, row Row) error {
	return s.apply(OpEditRow, func(c *Collection, active string) (string, bool, error) {
		t, err := s.tableFor(c, table)
		if err != nil {
			return active, false, err
		}
		if index < 0 || index >= len(t.Rows) {
			return active, false, rowOutOfRange(table, index, len(t.Rows))
		}
		if err := s.checkRow(table, t, row); err != nil {
			return active, false, err
		}
		rows := slices.Clone(t.Rows)
		rows[index] = row.Clone()
		c.set(table, TableData{Columns: t.Columns, Rows: rows})
		return active, true, nil
	})
}

// DeleteRow removes the row at index. Later rows move up by one, so indices
// taken before the call are stale afterwards.
func (s *Store) DeleteRow(table string, index int) error {
	return s.apply(OpDeleteRow, func(c *Collection, active string) (string, bool, error) {
		t, err := s.tableFor(c, table)
		if err != nil {
			return active, false, err
		}
		if index < 0 || index >= len(t.Rows) {
			return active, false, rowOutOfRange(table, index, len(t.Rows))
		}
		c.set(table, TableData{
			Columns: t.Columns,
			Rows:    slices.Delete(slices.Clone(t.Rows), index, index+1),
		})
		return active, true, nil
	})
}
