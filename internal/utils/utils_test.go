package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/tablekeep/internal/tables"
)

func TestAskConfirmation(t *testing.T) {
	tests := []struct {
		input string
		force bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", false, false},
		{"", false, false},
		{"", true, true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		in := NewInputUtils(strings.NewReader(tt.input), &out)
		assert.Equal(t, tt.want, in.AskConfirmation("Delete?", tt.force), "input %q", tt.input)
		if !tt.force {
			assert.Equal(t, "Delete? (y/N): ", out.String())
		}
	}
}

func TestGetUserChoice(t *testing.T) {
	var out bytes.Buffer
	in := NewInputUtils(strings.NewReader("maybe\nno\n"), &out)
	assert.Equal(t, "no", in.GetUserChoice([]string{"yes", "no"}, "Continue", false))
	assert.Contains(t, out.String(), "Invalid option")
}

func TestParseRow(t *testing.T) {
	row, err := ParseRow([]string{"Name=Ann", " Age =30", "Note=a=b", "Empty="})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Age", "Note", "Empty"}, row.Keys())
	assert.Equal(t, "a=b", row.Get("Note"))
	assert.Equal(t, "", row.Get("Empty"))

	_, err = ParseRow([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseRow([]string{"=x"})
	assert.Error(t, err)
}

func TestParseRenames(t *testing.T) {
	m, err := ParseRenames([]string{"Users=People", "Orders=Sales"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Users": "People", "Orders": "Sales"}, m)

	_, err = ParseRenames([]string{"a=b", "a=c"})
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	var out bytes.Buffer
	RenderTable(&out, []string{"Name", "Age"}, []tables.Row{
		tables.NewRow("Name", "Ann", "Age", "30"),
		tables.NewRow("Name", "日本"),
	})
	want := "" +
		"┌───┬──────┬─────┐\n" +
		"│ # │ Name │ Age │\n" +
		"├───┼──────┼─────┤\n" +
		"│ 0 │ Ann  │ 30  │\n" +
		"│ 1 │ 日本 │     │\n" +
		"└───┴──────┴─────┘\n"
	assert.Equal(t, want, out.String())
}
