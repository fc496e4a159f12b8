package tables

import (
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func (s *Store) tableFor(c *Collection, table string) (TableData, error) {
	if table == "" {
		return TableData{}, invalid(KindNoTableSelected, "no table selected")
	}
	t, ok := c.get(table)
	if !ok {
		return TableData{}, unknownTable(table)
	}
	return t, nil
}

// AddColumns appends the new names from the comma separated raw input to the
// table's columns. A table that had no columns loses its rows.
func (s *Store) AddColumns(table, raw string) ([]string, error) {
	var added []string
	err := s.apply(OpAddColumns, func(c *Collection, active string) (string, bool, error) {
		t, err := s.tableFor(c, table)
		if err != nil {
			return active, false, err
		}
		names := SplitNames(raw)
		if len(names) == 0 {
			return active, false, invalid(KindEmptyInput, "enter at least one column name")
		}
		for _, name := range names {
			if !t.HasColumn(name) {
				added = append(added, name)
			}
		}
		if len(added) == 0 {
			return active, false, invalid(KindNoUniqueNames, "no unique column names in %q", raw)
		}

		next := TableData{
			Columns: append(slices.Clone(t.Columns), added...),
			Rows:    t.Rows,
		}
		if len(t.Columns) == 0 {
			next.Rows = []Row{}
		}
		c.set(table, next)
		return active, true, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RenameColumns replaces the table's columns with newNames, matched by
// position, and re-keys every row accordingly. Values and field order are
// kept.
func (s *Store) RenameColumns(table string, newNames []string) error {
	return s.apply(OpRenameColumns, func(c *Collection, active string) (string, bool, error) {
		t, err := s.tableFor(c, table)
		if err != nil {
			return active, false, err
		}
		if len(newNames) != len(t.Columns) {
			return active, false, invalid(KindLengthMismatch,
				"table %q has %d columns, got %d names", table, len(t.Columns), len(newNames))
		}

		names := make([]string, len(newNames))
		for i, n := range newNames {
			names[i] = strings.TrimSpace(n)
			if names[i] == "" {
				return active, false, invalid(KindBlankName, "new name for column %q is blank", t.Columns[i])
			}
		}
		if dup := firstDuplicate(names); dup != "" {
			return active, false, invalid(KindDuplicateName, "column name %q is used more than once", dup)
		}
		if slices.Equal(names, t.Columns) {
			return active, false, nil
		}

		mapping := make(map[string]string, len(names))
		targets := make(map[string]struct{}, len(names))
		for i, old := range t.Columns {
			mapping[old] = names[i]
			targets[names[i]] = struct{}{}
		}

		rows := make([]Row, len(t.Rows))
		for i, row := range t.Rows {
			rows[i] = rekey(row, mapping, targets)
		}
		c.set(table, TableData{Columns: names, Rows: rows})
		return active, true, nil
	})
}

// rekey renames the fields of row found in mapping. A field outside mapping
// is kept unless its name is taken by one of the renamed columns.
func rekey(row Row, mapping map[string]string, targets map[string]struct{}) Row {
	out := Row{fields: orderedmap.New[string, string]()}
	for k, v := range row.All() {
		if name, ok := mapping[k]; ok {
			out.fields.Set(name, v)
			continue
		}
		if _, taken := targets[k]; taken {
			continue
		}
		out.fields.Set(k, v)
	}
	return out
}

// DeleteColumns removes the named columns and strips their fields from every
// row. An empty table name does nothing.
func (s *Store) DeleteColumns(table string, names ...string) error {
	return s.apply(OpDeleteColumns, func(c *Collection, active string) (string, bool, error) {
		if table == "" {
			return active, false, nil
		}
		t, ok := c.get(table)
		if !ok {
			return active, false, unknownTable(table)
		}

		drop := make(map[string]struct{}, len(names))
		for _, n := range names {
			drop[n] = struct{}{}
		}
		columns := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			if _, ok := drop[col]; !ok {
				columns = append(columns, col)
			}
		}
		changed := len(columns) != len(t.Columns)

		rows := make([]Row, len(t.Rows))
		for i, row := range t.Rows {
			rows[i] = row
			for _, n := range names {
				if row.Has(n) {
					rows[i] = row.Without(names...)
					changed = true
					break
				}
			}
		}
		if !changed {
			return active, false, nil
		}
		c.set(table, TableData{Columns: columns, Rows: rows})
		return active, true, nil
	})
}
