package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/tablekeep/internal/tables"
)

func TestRecorder(t *testing.T) {
	rec := New()
	store := tables.NewStore(nil, tables.WithObserver(rec))

	_, err := store.CreateTables("a, b")
	require.NoError(t, err)
	_, err = store.CreateTables("a")
	require.Error(t, err)
	require.Error(t, store.DeleteRow("a", 0))
	rec.ObserveSnapshot(store.Snapshot())

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.mutations.WithLabelValues("create_tables", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.mutations.WithLabelValues("create_tables", OutcomeValidation)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.mutations.WithLabelValues("delete_row", OutcomeFault)))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.tables))

	rec.ObserveSave(5*time.Millisecond, nil)
	rec.ObserveSave(time.Millisecond, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.saves.WithLabelValues(OutcomeError)))

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "tablekeep_mutations_total"))
	assert.True(t, strings.Contains(body, "tablekeep_save_duration_seconds_bucket"))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeError, Outcome(errors.New("x")))
}
