package tables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TableData is the content of one table: its ordered columns and its rows.
type TableData struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTableData returns an empty table with no columns and no rows.
func NewTableData() TableData {
	return TableData{Columns: []string{}, Rows: []Row{}}
}

// Clone returns a copy whose slices can be modified without affecting t.
func (t TableData) Clone() TableData {
	out := TableData{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([]Row, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	copy(out.Rows, t.Rows)
	return out
}

// HasColumn reports whether name is one of the table's columns.
func (t TableData) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Equal reports whether both tables have the same columns, in the same order,
// and equal rows at every position.
func (t TableData) Equal(o TableData) bool {
	if !slices.Equal(t.Columns, o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Rows {
		if !t.Rows[i].Equal(o.Rows[i]) {
			return false
		}
	}
	return true
}

func (t TableData) normalized() TableData {
	if t.Columns == nil {
		t.Columns = []string{}
	}
	if t.Rows == nil {
		t.Rows = []Row{}
	}
	return t
}

// Collection maps table names to their data, remembering insertion order.
// The zero value is an empty collection ready to use.
type Collection struct {
	tables *orderedmap.OrderedMap[string, TableData]
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{tables: orderedmap.New[string, TableData]()}
}

func (c *Collection) init() {
	if c.tables == nil {
		c.tables = orderedmap.New[string, TableData]()
	}
}

// Len returns the number of tables.
func (c *Collection) Len() int {
	if c == nil || c.tables == nil {
		return 0
	}
	return c.tables.Len()
}

// Names returns the table names in collection order.
func (c *Collection) Names() []string {
	names := make([]string, 0, c.Len())
	for name := range c.entries() {
		names = append(names, name)
	}
	return names
}

// Has reports whether a table called name exists.
func (c *Collection) Has(name string) bool {
	_, ok := c.get(name)
	return ok
}

// Table returns a copy of the named table.
func (c *Collection) Table(name string) (TableData, bool) {
	t, ok := c.get(name)
	if !ok {
		return TableData{}, false
	}
	return t.Clone(), true
}

// All iterates over copies of the tables in collection order.
func (c *Collection) All() iter.Seq2[string, TableData] {
	return func(yield func(string, TableData) bool) {
		for name, t := range c.entries() {
			if !yield(name, t.Clone()) {
				return
			}
		}
	}
}

// Put stores a copy of t under name. An existing table keeps its position;
// a new one is appended.
func (c *Collection) Put(name string, t TableData) {
	c.init()
	c.tables.Set(name, t.Clone().normalized())
}

// Delete removes the named table and reports whether it existed.
func (c *Collection) Delete(name string) bool {
	if c == nil || c.tables == nil {
		return false
	}
	_, ok := c.tables.Delete(name)
	return ok
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := NewCollection()
	for name, t := range c.entries() {
		out.tables.Set(name, t.Clone())
	}
	return out
}

// Equal reports whether both collections hold equal tables in the same order.
func (c *Collection) Equal(o *Collection) bool {
	if c.Len() != o.Len() {
		return false
	}
	names, other := c.Names(), o.Names()
	if !slices.Equal(names, other) {
		return false
	}
	for _, name := range names {
		a, _ := c.get(name)
		b, _ := o.get(name)
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the collection as an object keyed by table name,
// preserving collection order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return marshalOrdered(c.tables)
}

// UnmarshalJSON replaces the collection with the decoded tables.
func (c *Collection) UnmarshalJSON(data []byte) error {
	decoded := orderedmap.New[string, TableData]()
	if trimmed := bytes.TrimSpace(data); !bytes.Equal(trimmed, []byte("null")) {
		if !json.Valid(trimmed) {
			return fmt.Errorf("failed to decode tables: invalid JSON")
		}
		if err := decoded.UnmarshalJSON(trimmed); err != nil {
			return fmt.Errorf("failed to decode tables: %w", err)
		}
	}
	for pair := decoded.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value = pair.Value.normalized()
	}
	c.tables = decoded
	return nil
}

// get returns the stored value without copying. Callers must not modify
// the returned slices.
func (c *Collection) get(name string) (TableData, bool) {
	if c == nil || c.tables == nil {
		return TableData{}, false
	}
	return c.tables.Get(name)
}

// set stores t as is. Used by the store, which always hands over fresh slices.
func (c *Collection) set(name string, t TableData) {
	c.init()
	c.tables.Set(name, t)
}

// shallowClone copies the mapping while sharing the table values. Safe for
// copy-on-write because stored values are never modified in place.
func (c *Collection) shallowClone() *Collection {
	out := NewCollection()
	for name, t := range c.entries() {
		out.tables.Set(name, t)
	}
	return out
}

func (c *Collection) entries() iter.Seq2[string, TableData] {
	return func(yield func(string, TableData) bool) {
		if c == nil || c.tables == nil {
			return
		}
		for pair := c.tables.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}
