package studio

import (
	"github.com/Rana718/tablekeep/internal/tables"
	"github.com/Rana718/tablekeep/internal/views"
)

type Service struct {
	store *tables.Store
}

func NewService(store *tables.Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetTables() TablesData {
	snap, active := s.store.State()
	data := TablesData{
		Active:  active,
		Version: snap.Version(),
		Tables:  make([]TableInfo, 0, snap.Len()),
	}
	for name, t := range snap.All() {
		data.Tables = append(data.Tables, TableInfo{
			Name:     name,
			Columns:  t.Columns,
			Rows:     t.Rows,
			RowCount: len(t.Rows),
		})
	}
	return data
}

func (s *Service) GetTable(name string) (TableInfo, bool) {
	t, ok := s.store.Snapshot().Table(name)
	if !ok {
		return TableInfo{}, false
	}
	return TableInfo{Name: name, Columns: t.Columns, Rows: t.Rows, RowCount: len(t.Rows)}, true
}

func (s *Service) GetStats() StatsData {
	snap, active := s.store.State()
	stats := StatsData{
		Summary:      views.Summarize(snap),
		Distribution: views.RowDistribution(snap),
		Series:       views.RowSeries(snap),
	}
	if d, ok := views.Describe(snap, active); ok {
		stats.Active = &d
	}
	return stats
}
