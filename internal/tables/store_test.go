package tables

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func usersStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil)
	_, err := s.CreateTables("Users, Orders")
	require.NoError(t, err)
	_, err = s.AddColumns("Users", "Name, Age")
	require.NoError(t, err)
	require.NoError(t, s.AddRow("Users", NewRow("Name", "Ann", "Age", "30")))
	require.NoError(t, s.AddRow("Users", NewRow("Name", "Bo", "Age", "25")))
	return s
}

func table(t *testing.T, s *Store, name string) TableData {
	t.Helper()
	td, ok := s.Snapshot().Table(name)
	require.True(t, ok, "table %q missing", name)
	return td
}

func requireKind(t *testing.T, err error, kind string) {
	t.Helper()
	v, ok := IsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, kind, v.Kind)
}

func TestScenario(t *testing.T) {
	s := NewStore(nil)

	created, err := s.CreateTables("Users, Orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"Users", "Orders"}, created)
	assert.Equal(t, []string{"Users", "Orders"}, s.Snapshot().Names())
	assert.True(t, table(t, s, "Users").Equal(NewTableData()))
	assert.True(t, table(t, s, "Orders").Equal(NewTableData()))
	assert.Equal(t, "Users", s.Active())

	_, err = s.AddColumns("Users", "Name, Age")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Age"}, table(t, s, "Users").Columns)
	assert.Empty(t, table(t, s, "Users").Rows)

	require.NoError(t, s.AddRow("Users", NewRow("Name", "Ann", "Age", "30")))
	require.NoError(t, s.AddRow("Users", NewRow("Name", "Bo", "Age", "25")))
	rows := table(t, s, "Users").Rows
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Equal(NewRow("Name", "Ann", "Age", "30")))
	assert.True(t, rows[1].Equal(NewRow("Name", "Bo", "Age", "25")))

	require.NoError(t, s.RenameColumns("Users", []string{"FullName", "Age"}))
	users := table(t, s, "Users")
	assert.Equal(t, []string{"FullName", "Age"}, users.Columns)
	assert.True(t, users.Rows[0].Equal(NewRow("FullName", "Ann", "Age", "30")))
	assert.Equal(t, []string{"FullName", "Age"}, users.Rows[0].Keys())

	require.NoError(t, s.DeleteRow("Users", 0))
	users = table(t, s, "Users")
	require.Len(t, users.Rows, 1)
	assert.True(t, users.Rows[0].Equal(NewRow("FullName", "Bo", "Age", "25")))

	removed := s.DeleteTables("Users")
	assert.Equal(t, []string{"Users"}, removed)
	assert.Equal(t, "Orders", s.Active())
}

func TestCreateTables(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		kind    string
		initial string
	}{
		{name: "trims and drops blanks", raw: " a , , b ,", want: []string{"a", "b"}},
		{name: "duplicates in input", raw: "a, a, b", want: []string{"a", "b"}},
		{name: "case sensitive", raw: "Users", initial: "users", want: []string{"Users"}},
		{name: "skips existing", raw: "users, orders", initial: "users", want: []string{"orders"}},
		{name: "blank input", raw: " , ", kind: KindEmptyInput},
		{name: "all existing", raw: "users", initial: "users", kind: KindNoUniqueNames},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(nil)
			if tt.initial != "" {
				_, err := s.CreateTables(tt.initial)
				require.NoError(t, err)
			}
			before := s.Snapshot()

			got, err := s.CreateTables(tt.raw)
			if tt.kind != "" {
				requireKind(t, err, tt.kind)
				assert.Same(t, before, s.Snapshot())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want[0], s.Active())
		})
	}
}

func TestUniqueTableNames(t *testing.T) {
	s := NewStore(nil)
	inputs := []string{"a,b", "b,c", "a", "c, d, a", " d ,e,e"}
	for _, raw := range inputs {
		_, _ = s.CreateTables(raw)
		names := s.Snapshot().Names()
		seen := map[string]bool{}
		for _, n := range names {
			require.False(t, seen[n], "duplicate table %q after %q", n, raw)
			seen[n] = true
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, s.Snapshot().Names())
}

func TestRenameTables(t *testing.T) {
	t.Run("preserves data order and selection", func(t *testing.T) {
		s := usersStore(t)
		before := table(t, s, "Users")

		require.NoError(t, s.RenameTables(map[string]string{"Users": " People "}))
		assert.Equal(t, []string{"People", "Orders"}, s.Snapshot().Names())
		assert.True(t, table(t, s, "People").Equal(before))
		assert.Equal(t, "People", s.Active())
	})

	t.Run("swap", func(t *testing.T) {
		s := usersStore(t)
		require.NoError(t, s.RenameTables(map[string]string{"Users": "Orders", "Orders": "Users"}))
		assert.Equal(t, []string{"Orders", "Users"}, s.Snapshot().Names())
		assert.Equal(t, []string{"Name", "Age"}, table(t, s, "Orders").Columns)
		assert.Equal(t, "Orders", s.Active())
	})

	t.Run("rejects", func(t *testing.T) {
		tests := []struct {
			mapping map[string]string
			kind    string
		}{
			{map[string]string{"Users": "  "}, KindBlankName},
			{map[string]string{"Users": "Orders"}, KindDuplicateName},
			{map[string]string{"Users": "X", "Orders": "X"}, KindDuplicateName},
		}
		for _, tt := range tests {
			s := usersStore(t)
			before := s.Snapshot()
			requireKind(t, s.RenameTables(tt.mapping), tt.kind)
			assert.Same(t, before, s.Snapshot())
			assert.Equal(t, "Users", s.Active())
		}
	})

	t.Run("unknown table is a fault", func(t *testing.T) {
		s := usersStore(t)
		err := s.RenameTables(map[string]string{"Nope": "X"})
		assert.ErrorIs(t, err, ErrUnknownTable)
		assert.True(t, IsFault(err))
	})
}

func TestDeleteTablesSelection(t *testing.T) {
	s := NewStore(nil)
	_, err := s.CreateTables("a, b, c")
	require.NoError(t, err)

	require.NoError(t, s.Select("b"))
	assert.Empty(t, s.DeleteTables("zzz"))
	assert.Equal(t, "b", s.Active())

	s.DeleteTables("a")
	assert.Equal(t, "b", s.Active(), "selection kept when another table is deleted")

	s.DeleteTables("b", "missing")
	assert.Equal(t, "c", s.Active())

	s.DeleteTables("c")
	assert.Equal(t, "", s.Active())
	assert.Equal(t, 0, s.Snapshot().Len())
}

func TestSelectionConsistency(t *testing.T) {
	names := []string{"t0", "t1", "t2", "t3", "t4"}
	for mask := 0; mask < 1<<len(names); mask++ {
		for active := range names {
			s := NewStore(nil)
			_, err := s.CreateTables("t0,t1,t2,t3,t4")
			require.NoError(t, err)
			require.NoError(t, s.Select(names[active]))

			var del []string
			for i, n := range names {
				if mask&(1<<i) != 0 {
					del = append(del, n)
				}
			}
			s.DeleteTables(del...)
			got := s.Active()
			if got != "" {
				assert.True(t, s.Snapshot().Has(got), "mask %b active %s", mask, got)
			} else {
				assert.Equal(t, 0, s.Snapshot().Len())
			}
		}
	}
}

func TestSelect(t *testing.T) {
	s := usersStore(t)
	require.NoError(t, s.Select("Orders"))
	assert.Equal(t, "Orders", s.Active())

	err := s.Select("Nope")
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.Equal(t, "Orders", s.Active())

	require.NoError(t, s.Select(""))
	assert.Equal(t, "", s.Active())
}

func TestAddColumns(t *testing.T) {
	s := usersStore(t)

	added, err := s.AddColumns("Users", "Age, Email, Name, Phone")
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Phone"}, added)
	users := table(t, s, "Users")
	assert.Equal(t, []string{"Name", "Age", "Email", "Phone"}, users.Columns)
	assert.Len(t, users.Rows, 2, "rows kept when the table already had columns")
	assert.Equal(t, "", users.Rows[0].Get("Email"))

	_, err = s.AddColumns("", "X")
	requireKind(t, err, KindNoTableSelected)
	_, err = s.AddColumns("Users", "Name")
	requireKind(t, err, KindNoUniqueNames)
	_, err = s.AddColumns("Users", " ,")
	requireKind(t, err, KindEmptyInput)
	_, err = s.AddColumns("Nope", "X")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestAddColumnsClearsRowsOfColumnlessTable(t *testing.T) {
	s := usersStore(t)
	require.NoError(t, s.DeleteColumns("Users", "Name", "Age"))
	users := table(t, s, "Users")
	require.Empty(t, users.Columns)
	require.Len(t, users.Rows, 2)

	_, err := s.AddColumns("Users", "X")
	require.NoError(t, err)
	users = table(t, s, "Users")
	assert.Equal(t, []string{"X"}, users.Columns)
	assert.Empty(t, users.Rows)
}

func TestRenameColumnsIntegrity(t *testing.T) {
	s := NewStore(nil)
	_, err := s.CreateTables("t")
	require.NoError(t, err)
	_, err = s.AddColumns("t", "a, b, c")
	require.NoError(t, err)
	require.NoError(t, s.AddRow("t", NewRow("a", "1", "b", "2", "c", "3")))
	require.NoError(t, s.AddRow("t", NewRow("c", "x")))
	require.NoError(t, s.AddRow("t", NewRow("b", "y", "a", "z")))
	before := table(t, s, "t")

	newNames := []string{"c", "a", "d"}
	require.NoError(t, s.RenameColumns("t", newNames))
	after := table(t, s, "t")
	assert.Equal(t, newNames, after.Columns)

	mapping := map[string]string{"a": "c", "b": "a", "c": "d"}
	for i, row := range before.Rows {
		got := after.Rows[i]
		require.Equal(t, row.Len(), got.Len())
		for k, v := range row.All() {
			nv, ok := got.Lookup(mapping[k])
			require.True(t, ok, "row %d lost field %s", i, k)
			assert.Equal(t, v, nv)
		}
	}
	assert.Equal(t, []string{"a", "c"}, after.Rows[2].Keys(), "field order follows the original row")
}

func TestRenameColumnsRejects(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		kind  string
	}{
		{"too few", []string{"Name"}, KindLengthMismatch},
		{"too many", []string{"a", "b", "c"}, KindLengthMismatch},
		{"blank", []string{"Name", " "}, KindBlankName},
		{"duplicate", []string{"X", "X"}, KindDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := usersStore(t)
			before := s.Snapshot()
			requireKind(t, s.RenameColumns("Users", tt.names), tt.kind)
			assert.Same(t, before, s.Snapshot())
		})
	}

	s := usersStore(t)
	assert.ErrorIs(t, s.RenameColumns("Nope", nil), ErrUnknownTable)
}

func TestRenameColumnsDropsCollidingStaleKey(t *testing.T) {
	c := NewCollection()
	c.Put("t", TableData{
		Columns: []string{"a"},
		Rows:    []Row{NewRow("b", "stale", "a", "keep")},
	})
	s := NewStore(c)
	require.NoError(t, s.RenameColumns("t", []string{"b"}))
	row := table(t, s, "t").Rows[0]
	assert.Equal(t, 1, row.Len())
	assert.Equal(t, "keep", row.Get("b"))
}

func TestDeleteColumnsCleanup(t *testing.T) {
	s := usersStore(t)
	_, err := s.AddColumns("Users", "Email")
	require.NoError(t, err)
	require.NoError(t, s.AddRow("Users", NewRow("Name", "Cy", "Email", "cy@example.com")))

	drop := []string{"Email", "Age", "Ghost"}
	require.NoError(t, s.DeleteColumns("Users", drop...))
	users := table(t, s, "Users")
	assert.Equal(t, []string{"Name"}, users.Columns)
	for i, row := range users.Rows {
		for _, d := range drop {
			assert.False(t, row.Has(d), "row %d still has %s", i, d)
		}
		assert.True(t, row.Has("Name"))
	}

	before := s.Snapshot()
	require.NoError(t, s.DeleteColumns("", "Name"))
	assert.Same(t, before, s.Snapshot())
	assert.ErrorIs(t, s.DeleteColumns("Nope", "Name"), ErrUnknownTable)
}

func TestRows(t *testing.T) {
	s := usersStore(t)

	requireKind(t, s.AddRow("Users", NewRow()), KindEmptyRow)
	requireKind(t, s.AddRow("Users", NewRow("Name", "  ")), KindEmptyRow)
	requireKind(t, s.AddRow("Users", NewRow("Ghost", "boo")), KindUnknownColumn)
	requireKind(t, s.AddRow("", NewRow("Name", "x")), KindNoTableSelected)
	assert.ErrorIs(t, s.AddRow("Nope", NewRow("Name", "x")), ErrUnknownTable)

	require.NoError(t, s.AddRow("Users", NewRow("Name", "Cy")))
	assert.Equal(t, "", table(t, s, "Users").Rows[2].Get("Age"))

	require.NoError(t, s.EditRow("Users", 0, NewRow("Age", "31")))
	row := table(t, s, "Users").Rows[0]
	assert.False(t, row.Has("Name"), "edit replaces the row wholesale")
	assert.Equal(t, "31", row.Get("Age"))

	for _, idx := range []int{-1, 3} {
		assert.ErrorIs(t, s.EditRow("Users", idx, NewRow("Name", "x")), ErrRowOutOfRange)
		assert.ErrorIs(t, s.DeleteRow("Users", idx), ErrRowOutOfRange)
	}
}

func TestRequireCompleteRows(t *testing.T) {
	s := NewStore(nil, WithRequireCompleteRows(true))
	_, err := s.CreateTables("t")
	require.NoError(t, err)
	_, err = s.AddColumns("t", "a, b")
	require.NoError(t, err)

	requireKind(t, s.AddRow("t", NewRow("a", "1")), KindIncompleteRow)
	requireKind(t, s.AddRow("t", NewRow("a", "1", "b", " ")), KindIncompleteRow)
	require.NoError(t, s.AddRow("t", NewRow("a", "1", "b", "2")))
	requireKind(t, s.EditRow("t", 0, NewRow("b", "2")), KindIncompleteRow)
}

func TestDeleteRowShifts(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for i := 0; i < n; i++ {
			s := NewStore(nil)
			_, err := s.CreateTables("t")
			require.NoError(t, err)
			_, err = s.AddColumns("t", "v")
			require.NoError(t, err)
			for r := 0; r < n; r++ {
				require.NoError(t, s.AddRow("t", NewRow("v", fmt.Sprint(r))))
			}
			before := table(t, s, "t").Rows

			require.NoError(t, s.DeleteRow("t", i))
			after := table(t, s, "t").Rows
			require.Len(t, after, n-1)
			for j := 0; j < i; j++ {
				assert.True(t, after[j].Equal(before[j]))
			}
			for j := i + 1; j < n; j++ {
				assert.True(t, after[j-1].Equal(before[j]))
			}
		}
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s := usersStore(t)
	snap := s.Snapshot()
	users, _ := snap.Table("Users")
	users.Columns[0] = "Hacked"
	users.Rows[0] = NewRow("Hacked", "yes")

	again, _ := snap.Table("Users")
	assert.Equal(t, "Name", again.Columns[0])
	assert.Equal(t, "Ann", again.Rows[0].Get("Name"))

	require.NoError(t, s.DeleteColumns("Users", "Name"))
	old, _ := snap.Table("Users")
	assert.Equal(t, "Ann", old.Rows[0].Get("Name"), "older snapshot unaffected by later mutations")
	assert.Greater(t, s.Snapshot().Version(), snap.Version())
}

type recordingObserver struct {
	ops  []Op
	errs []error
}

func (r *recordingObserver) ObserveMutation(op Op, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func TestSubscribeAndObserve(t *testing.T) {
	obs := &recordingObserver{}
	s := NewStore(nil, WithObserver(obs))

	var events []Event
	cancel := s.Subscribe(func(ev Event) { events = append(events, ev) })

	_, err := s.CreateTables("a, b")
	require.NoError(t, err)
	_, err = s.CreateTables("a")
	require.Error(t, err)
	require.NoError(t, s.Select("b"))
	s.DeleteTables("missing")

	require.Len(t, events, 2)
	assert.Equal(t, OpCreateTables, events[0].Op)
	assert.Equal(t, uint64(1), events[0].Snapshot.Version())
	assert.Equal(t, "a", events[0].Active)
	assert.Equal(t, OpSelect, events[1].Op)
	assert.Equal(t, uint64(1), events[1].Snapshot.Version(), "selection does not bump the version")
	assert.Equal(t, "b", events[1].Active)

	assert.Equal(t, []Op{OpCreateTables, OpCreateTables, OpSelect, OpDeleteTables}, obs.ops)
	assert.True(t, errors.As(obs.errs[1], new(*ValidationError)))

	cancel()
	cancel()
	s.DeleteTables("a")
	assert.Len(t, events, 2)
}

func TestNewStoreSelectsFirstTable(t *testing.T) {
	c := NewCollection()
	c.Put("x", NewTableData())
	c.Put("y", NewTableData())
	s := NewStore(c)
	assert.Equal(t, "x", s.Active())

	c.Delete("x")
	assert.True(t, s.Snapshot().Has("x"), "store keeps its own copy")
	assert.Equal(t, "", NewStore(nil).Active())
}

func TestReplace(t *testing.T) {
	s := NewStore(nil)
	_, err := s.CreateTables("a, b")
	require.NoError(t, err)
	require.NoError(t, s.Select("b"))

	incoming := NewCollection()
	incoming.Put("b", TableData{Columns: []string{"x"}, Rows: []Row{NewRow("x", "1")}})
	incoming.Put("c", NewTableData())

	require.NoError(t, s.Replace(incoming))
	assert.Equal(t, []string{"b", "c"}, s.Snapshot().Names())
	assert.Equal(t, "b", s.Active())
	assert.Equal(t, uint64(2), s.Snapshot().Version())

	incoming.Delete("b")
	assert.True(t, s.Snapshot().Has("b"), "store keeps its own copy")

	require.NoError(t, s.Replace(s.Snapshot().Collection()))
	assert.Equal(t, uint64(2), s.Snapshot().Version(), "identical collection is not a change")

	only := NewCollection()
	only.Put("z", NewTableData())
	require.NoError(t, s.Replace(only))
	assert.Equal(t, "z", s.Active())

	require.NoError(t, s.Replace(nil))
	assert.Equal(t, 0, s.Snapshot().Len())
	assert.Equal(t, "", s.Active())
}

func TestReplaceRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		table string
		data  TableData
		kind  string
	}{
		{"blank table name", "  ", NewTableData(), KindBlankName},
		{"empty table name", "", NewTableData(), KindBlankName},
		{"blank column", "t", TableData{Columns: []string{"a", " "}}, KindBlankName},
		{"duplicate column", "t", TableData{Columns: []string{"a", "b", "a"}}, KindDuplicateName},
		{
			"row outside columns", "t",
			TableData{Columns: []string{"a"}, Rows: []Row{NewRow("a", "1"), NewRow("a", "2", "b", "3")}},
			KindUnknownColumn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := usersStore(t)
			before := s.Snapshot()

			incoming := NewCollection()
			incoming.Put("ok", NewTableData())
			incoming.Put(tt.table, tt.data)

			requireKind(t, CheckCollection(incoming), tt.kind)
			requireKind(t, s.Replace(incoming), tt.kind)
			assert.Equal(t, before.Version(), s.Snapshot().Version())
			assert.Equal(t, []string{"Users", "Orders"}, s.Snapshot().Names())
			assert.Equal(t, "Users", s.Active())
		})
	}

	assert.NoError(t, CheckCollection(nil))
	assert.NoError(t, CheckCollection(usersStore(t).Snapshot().Collection()))
}

// drawStore builds a one table store with random distinct columns and rows
// holding a random non-empty subset of them.
func drawStore(t *rapid.T) (*Store, []string) {
	columns := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-h]`), 1, 8, rapid.ID[string]).Draw(t, "columns")
	s := NewStore(nil)
	_, err := s.CreateTables("t")
	require.NoError(t, err)
	_, err = s.AddColumns("t", strings.Join(columns, ","))
	require.NoError(t, err)

	n := rapid.IntRange(0, 6).Draw(t, "rows")
	for i := range n {
		keys := rapid.SliceOfNDistinct(rapid.SampledFrom(columns), 1, -1, rapid.ID[string]).Draw(t, fmt.Sprintf("keys%d", i))
		kv := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			kv = append(kv, k, rapid.StringMatching(`[a-z0-9]{1,4}`).Draw(t, "value"))
		}
		require.NoError(t, s.AddRow("t", NewRow(kv...)))
	}
	return s, columns
}

func TestRenameColumnsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s, columns := drawStore(t)
		before, _ := s.Snapshot().Table("t")
		newNames := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-j]`), len(columns), len(columns), rapid.ID[string]).Draw(t, "newNames")

		require.NoError(t, s.RenameColumns("t", newNames))
		after, _ := s.Snapshot().Table("t")
		assert.Equal(t, newNames, after.Columns)
		require.Len(t, after.Rows, len(before.Rows))

		mapping := make(map[string]string, len(columns))
		for i, old := range columns {
			mapping[old] = newNames[i]
		}
		for i, row := range before.Rows {
			got := after.Rows[i]
			assert.Equal(t, row.Len(), got.Len(), "row %d", i)
			for k, v := range row.All() {
				nv, ok := got.Lookup(mapping[k])
				assert.True(t, ok, "row %d lost field %s", i, k)
				assert.Equal(t, v, nv)
			}
			for k := range got.All() {
				assert.True(t, after.HasColumn(k), "row %d has stray field %s", i, k)
			}
		}
	})
}

func TestDeleteColumnsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s, columns := drawStore(t)
		before, _ := s.Snapshot().Table("t")
		drop := rapid.SliceOfDistinct(rapid.SampledFrom(columns), rapid.ID[string]).Draw(t, "drop")
		if rapid.Bool().Draw(t, "ghost") {
			drop = append(drop, "ghost")
		}

		require.NoError(t, s.DeleteColumns("t", drop...))
		after, _ := s.Snapshot().Table("t")

		dropped := make(map[string]bool, len(drop))
		for _, d := range drop {
			dropped[d] = true
		}
		var kept []string
		for _, col := range columns {
			if !dropped[col] {
				kept = append(kept, col)
			}
		}
		assert.Equal(t, len(kept), len(after.Columns))
		for i, col := range kept {
			assert.Equal(t, col, after.Columns[i])
		}

		require.Len(t, after.Rows, len(before.Rows))
		for i, row := range before.Rows {
			got := after.Rows[i]
			want := 0
			for k, v := range row.All() {
				if dropped[k] {
					assert.False(t, got.Has(k), "row %d still has %s", i, k)
					continue
				}
				want++
				assert.Equal(t, v, got.Get(k))
			}
			assert.Equal(t, want, got.Len(), "row %d", i)
		}
	})
}
