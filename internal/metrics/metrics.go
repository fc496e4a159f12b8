package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rana718/tablekeep/internal/tables"
	"github.com/Rana718/tablekeep/internal/views"
)

const namespace = "tablekeep"

// Outcomes reported on the mutation counter.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeFault      = "fault"
	OutcomeError      = "error"
)

// Recorder collects store, saver and collection metrics on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	mutations    *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveDuration prometheus.Histogram
	tables       prometheus.Gauge
	rows         prometheus.Gauge
	columns      prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Snapshot writes by outcome.",
		}, []string{"outcome"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Time spent writing a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		tables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tables",
			Help:      "Tables in the latest snapshot.",
		}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows",
			Help:      "Rows across all tables in the latest snapshot.",
		}),
		columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "columns",
			Help:      "Columns across all tables in the latest snapshot.",
		}),
	}
	r.registry.MustRegister(
		r.mutations, r.saves, r.saveDuration, r.tables, r.rows, r.columns,
		collectors.NewGoCollector(),
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Outcome classifies an operation result for the mutation counter.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, new(*tables.ValidationError)):
		return OutcomeValidation
	case tables.IsFault(err):
		return OutcomeFault
	default:
		return OutcomeError
	}
}

func (r *Recorder) ObserveMutation(op tables.Op, err error) {
	r.mutations.WithLabelValues(string(op), Outcome(err)).Inc()
}

func (r *Recorder) ObserveSave(d time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.saves.WithLabelValues(outcome).Inc()
	r.saveDuration.Observe(d.Seconds())
}

func (r *Recorder) ObserveSnapshot(snap *tables.Snapshot) {
	sum := views.Summarize(snap)
	r.tables.Set(float64(sum.Tables))
	r.rows.Set(float64(sum.Rows))
	r.columns.Set(float64(sum.Columns))
}
