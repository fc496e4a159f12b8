package tables

import (
	"bytes"
	"fmt"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is one record of a table: an ordered mapping from column name to value.
//
// Rows are values. None of the exported methods modify the receiver, so a Row
// taken from a snapshot can be kept or passed around freely. With and Without
// return modified copies.
type Row struct {
	fields *orderedmap.OrderedMap[string, string]
}

// NewRow builds a row from alternating column/value arguments. A trailing
// column without a value gets "". Repeated columns keep their first position
// and their last value.
func NewRow(kv ...string) Row {
	r := Row{fields: orderedmap.New[string, string]()}
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		r.fields.Set(kv[i], v)
	}
	return r
}

// Get returns the value stored under col, or "" when the row has no such field.
func (r Row) Get(col string) string {
	v, _ := r.Lookup(col)
	return v
}

// Lookup returns the value stored under col and whether it was present.
func (r Row) Lookup(col string) (string, bool) {
	if r.fields == nil {
		return "", false
	}
	return r.fields.Get(col)
}

// Has reports whether the row carries a field named col.
func (r Row) Has(col string) bool {
	_, ok := r.Lookup(col)
	return ok
}

// Len returns the number of fields.
func (r Row) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns the field names in insertion order.
func (r Row) Keys() []string {
	keys := make([]string, 0, r.Len())
	for k := range r.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over the fields in insertion order.
func (r Row) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if r.fields == nil {
			return
		}
		for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Map returns the fields as a plain map.
func (r Row) Map() map[string]string {
	m := make(map[string]string, r.Len())
	for k, v := range r.All() {
		m[k] = v
	}
	return m
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := Row{fields: orderedmap.New[string, string]()}
	for k, v := range r.All() {
		out.fields.Set(k, v)
	}
	return out
}

// With returns a copy of the row with col set to value.
func (r Row) With(col, value string) Row {
	out := r.Clone()
	out.fields.Set(col, value)
	return out
}

// Without returns a copy of the row with the named fields removed.
func (r Row) Without(cols ...string) Row {
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		drop[c] = struct{}{}
	}
	out := Row{fields: orderedmap.New[string, string]()}
	for k, v := range r.All() {
		if _, ok := drop[k]; ok {
			continue
		}
		out.fields.Set(k, v)
	}
	return out
}

// Equal reports whether both rows hold the same fields with the same values.
// Field order is ignored.
func (r Row) Equal(o Row) bool {
	if r.Len() != o.Len() {
		return false
	}
	for k, v := range r.All() {
		ov, ok := o.Lookup(k)
		if !ok || ov != v {
			return false
		}
	}
	return true
}

func (r Row) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Row(%v)", r.Map())
	}
	return string(data)
}

// MarshalJSON encodes the row as a JSON object keeping field order.
func (r Row) MarshalJSON() ([]byte, error) {
	return marshalOrdered(r.fields)
}

// UnmarshalJSON decodes a JSON object of string values. It always allocates
// a fresh mapping so copies of the previous value are unaffected.
func (r *Row) UnmarshalJSON(data []byte) error {
	fields := orderedmap.New[string, string]()
	if trimmed := bytes.TrimSpace(data); !bytes.Equal(trimmed, []byte("null")) {
		if err := fields.UnmarshalJSON(trimmed); err != nil {
			return fmt.Errorf("failed to decode row: %w", err)
		}
	}
	r.fields = fields
	return nil
}
