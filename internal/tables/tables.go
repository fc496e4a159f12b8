package tables

import "strings"

// CreateTables registers every name in the comma separated raw input that is
// not already present, in input order, and selects the first one created.
func (s *Store) CreateTables(raw string) ([]string, error) {
	var created []string
	err := s.apply(OpCreateTables, func(c *Collection, active string) (string, bool, error) {
		names := SplitNames(raw)
		if len(names) == 0 {
			return active, false, invalid(KindEmptyInput, "enter at least one table name")
		}
		for _, name := range names {
			if c.Has(name) {
				continue
			}
			c.set(name, NewTableData())
			created = append(created, name)
		}
		if len(created) == 0 {
			return active, false, invalid(KindNoUniqueNames, "no unique table names in %q", raw)
		}
		return created[0], true, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RenameTables renames tables according to mapping (old name to new name).
// Tables missing from mapping keep their name. Order and contents are kept
// and the selection follows a renamed active table.
func (s *Store) RenameTables(mapping map[string]string) error {
	return s.apply(OpRenameTables, func(c *Collection, active string) (string, bool, error) {
		targets := make(map[string]string, len(mapping))
		for old, name := range mapping {
			if !c.Has(old) {
				return active, false, unknownTable(old)
			}
			name = strings.TrimSpace(name)
			if name == "" {
				return active, false, invalid(KindBlankName, "new name for table %q is blank", old)
			}
			targets[old] = name
		}

		order := c.Names()
		final := make([]string, len(order))
		changed := false
		for i, old := range order {
			final[i] = old
			if name, ok := targets[old]; ok {
				final[i] = name
				changed = changed || name != old
			}
		}
		if dup := firstDuplicate(final); dup != "" {
			return active, false, invalid(KindDuplicateName, "table name %q is used more than once", dup)
		}
		if !changed {
			return active, false, nil
		}

		rebuilt := NewCollection()
		for i, old := range order {
			t, _ := c.get(old)
			rebuilt.set(final[i], t)
		}
		*c = *rebuilt
		if name, ok := targets[active]; ok {
			active = name
		}
		return active, true, nil
	})
}

// DeleteTables removes the named tables. Absent names are ignored. When the
// active table is removed the first remaining table becomes active. It
// returns the names that were actually removed.
func (s *Store) DeleteTables(names ...string) []string {
	var removed []string
	_ = s.apply(OpDeleteTables, func(c *Collection, active string) (string, bool, error) {
		for _, name := range names {
			if c.Delete(name) {
				removed = append(removed, name)
			}
		}
		if len(removed) == 0 {
			return active, false, nil
		}
		if !c.Has(active) {
			active = ""
			if remaining := c.Names(); len(remaining) > 0 {
				active = remaining[0]
			}
		}
		return active, true, nil
	})
	return removed
}

// Replace swaps the whole collection for a copy of incoming. The selection is
// kept when the table still exists and moves to the first table otherwise.
func (s *Store) Replace(incoming *Collection) error {
	next := NewCollection()
	if incoming != nil {
		next = incoming.Clone()
	}
	if err := CheckCollection(next); err != nil {
		return err
	}
	return s.apply(OpReplace, func(c *Collection, active string) (string, bool, error) {
		if c.Equal(next) {
			return active, false, nil
		}
		*c = *next
		if !c.Has(active) {
			active = ""
			if names := c.Names(); len(names) > 0 {
				active = names[0]
			}
		}
		return active, true, nil
	})
}

// CheckCollection reports the first table in c that breaks the store's rules:
// a blank table or column name, a column listed twice, or a row holding a
// value for a column the table does not have.
func CheckCollection(c *Collection) error {
	for name, t := range c.entries() {
		if strings.TrimSpace(name) == "" {
			return invalid(KindBlankName, "table names cannot be blank")
		}
		for _, col := range t.Columns {
			if strings.TrimSpace(col) == "" {
				return invalid(KindBlankName, "table %q has a blank column name", name)
			}
		}
		if dup := firstDuplicate(t.Columns); dup != "" {
			return invalid(KindDuplicateName, "table %q lists column %q more than once", name, dup)
		}
		for i, row := range t.Rows {
			for col := range row.All() {
				if !t.HasColumn(col) {
					return invalid(KindUnknownColumn, "row %d of table %q has no column %q", i, name, col)
				}
			}
		}
	}
	return nil
}
