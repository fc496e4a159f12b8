package tables

import "iter"

// Snapshot is an immutable view of the collection at one version. Every
// accessor returns copies.
type Snapshot struct {
	tables  *Collection
	version uint64
}

func newSnapshot(c *Collection, version uint64) *Snapshot {
	if c == nil {
		c = NewCollection()
	}
	return &Snapshot{tables: c, version: version}
}

// Version increases by one with every committed mutation.
func (s *Snapshot) Version() uint64 {
	return s.version
}

func (s *Snapshot) Len() int {
	return s.tables.Len()
}

func (s *Snapshot) Names() []string {
	return s.tables.Names()
}

func (s *Snapshot) Has(name string) bool {
	return s.tables.Has(name)
}

func (s *Snapshot) Table(name string) (TableData, bool) {
	return s.tables.Table(name)
}

// All iterates over the tables in collection order.
func (s *Snapshot) All() iter.Seq2[string, TableData] {
	return s.tables.All()
}

// First returns the name of the first table, or "" for an empty collection.
func (s *Snapshot) First() string {
	for name := range s.tables.entries() {
		return name
	}
	return ""
}

// Collection returns a deep copy of the tables.
func (s *Snapshot) Collection() *Collection {
	return s.tables.Clone()
}

// MarshalJSON encodes the tables in the persisted layout.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return s.tables.MarshalJSON()
}
