package tables

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNames(t *testing.T) {
	tests := map[string][]string{
		"":                 {},
		" , ,":             {},
		"a":                {"a"},
		" a , b,a ,c,, b ": {"a", "b", "c"},
		"A,a":              {"A", "a"},
	}
	for raw, want := range tests {
		assert.Equal(t, want, SplitNames(raw), "input %q", raw)
	}
}

func TestRow(t *testing.T) {
	r := NewRow("b", "2", "a", "1", "c")
	assert.Equal(t, []string{"b", "a", "c"}, r.Keys())
	assert.Equal(t, "", r.Get("c"))
	assert.True(t, r.Has("c"))
	assert.Equal(t, "", r.Get("missing"))

	w := r.With("a", "9")
	assert.Equal(t, "1", r.Get("a"))
	assert.Equal(t, "9", w.Get("a"))
	assert.Equal(t, []string{"b", "a", "c"}, w.Keys())

	assert.Equal(t, []string{"a"}, r.Without("b", "c").Keys())
	assert.True(t, NewRow("x", "1", "y", "2").Equal(NewRow("y", "2", "x", "1")))
	assert.False(t, NewRow("x", "1").Equal(NewRow("x", "2")))

	var zero Row
	assert.Equal(t, 0, zero.Len())
	assert.True(t, zero.Equal(NewRow()))
}

func TestRowJSON(t *testing.T) {
	data, err := json.Marshal(NewRow("Name", "Ann", "Age", "30"))
	require.NoError(t, err)
	assert.Equal(t, `{"Name":"Ann","Age":"30"}`, string(data))

	data, err = json.Marshal(Row{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	var r Row
	require.NoError(t, json.Unmarshal([]byte(`{"z":"1","a":"2"}`), &r))
	assert.Equal(t, []string{"z", "a"}, r.Keys())

	require.NoError(t, json.Unmarshal([]byte(`null`), &r))
	assert.Equal(t, 0, r.Len())

	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &r))
}

func TestCollectionJSON(t *testing.T) {
	c := NewCollection()
	c.Put("Zeta", TableData{Columns: []string{"b", "a"}, Rows: []Row{NewRow("b", "1", "a", "2")}})
	c.Put("Alpha", NewTableData())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Zeta":{"columns":["b","a"],"rows":[{"b":"1","a":"2"}]},"Alpha":{"columns":[],"rows":[]}}`, string(data))

	decoded := NewCollection()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"Zeta", "Alpha"}, decoded.Names())
	assert.True(t, c.Equal(decoded))

	require.NoError(t, json.Unmarshal([]byte(`{"t":{}}`), decoded))
	td, ok := decoded.Table("t")
	require.True(t, ok)
	assert.NotNil(t, td.Columns)
	assert.NotNil(t, td.Rows)

	assert.Error(t, json.Unmarshal([]byte(`{"t":`), decoded))
}

func TestCollectionJSONKeepsMarkup(t *testing.T) {
	c := NewCollection()
	c.Put("A&B", TableData{Columns: []string{"<x>"}, Rows: []Row{NewRow("<x>", `a>b & "c" \u0026`)}})

	data, err := c.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"A&B":{"columns":["<x>"],"rows":[{"<x>":"a>b & \"c\" \\u0026"}]}}`, string(data))

	decoded := NewCollection()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.True(t, c.Equal(decoded))

	row, err := NewRow("&", "<>").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"&":"<>"}`, string(row))
}

func TestCollectionCopies(t *testing.T) {
	c := NewCollection()
	c.Put("t", TableData{Columns: []string{"a"}})
	clone := c.Clone()
	clone.Put("u", NewTableData())
	td, _ := clone.Table("t")
	td.Columns[0] = "changed"

	assert.Equal(t, []string{"t"}, c.Names())
	orig, _ := c.Table("t")
	assert.Equal(t, []string{"a"}, orig.Columns)

	var zero Collection
	assert.Equal(t, 0, zero.Len())
	assert.False(t, zero.Delete("x"))
	zero.Put("x", NewTableData())
	assert.True(t, zero.Has("x"))
}
