package studio

import (
	"github.com/Rana718/tablekeep/internal/tables"
	"github.com/Rana718/tablekeep/internal/views"
)

type TableInfo struct {
	Name     string       `json:"name"`
	Columns  []string     `json:"columns"`
	Rows     []tables.Row `json:"rows"`
	RowCount int          `json:"row_count"`
}

type TablesData struct {
	Active  string      `json:"active"`
	Version uint64      `json:"version"`
	Tables  []TableInfo `json:"tables"`
}

type StatsData struct {
	Summary      views.Summary `json:"summary"`
	Distribution []views.Slice `json:"distribution"`
	Series       []views.Bar   `json:"series"`
	Active       *views.Detail `json:"active,omitempty"`
}

type NamesRequest struct {
	Names string `json:"names"`
}

type RenameTablesRequest struct {
	Names map[string]string `json:"names"`
}

type NameListRequest struct {
	Names []string `json:"names"`
}

type SelectRequest struct {
	Name string `json:"name"`
}

type RowRequest struct {
	Data tables.Row `json:"data"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
}
