package metrics

import (
	"sync"

	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// LoadsTotal counts workbook load attempts by result ("ok" or "error").
	LoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tcsd2",
		Subsystem: "cache",
		Name:      "loads_total",
		Help:      "Total number of workbook load attempts, labeled by result.",
	}, []string{"result"})

	// LoadDurationSeconds is the time spent reading and normalising the workbook.
	LoadDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tcsd2",
		Subsystem: "cache",
		Name:      "load_duration_seconds",
		Help:      "Time to read and normalise the workbook.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// SnapshotRecords is the record count per sheet in the current snapshot.
	SnapshotRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tcsd2",
		Subsystem: "cache",
		Name:      "snapshot_records",
		Help:      "Number of records per sheet in the cached snapshot.",
	}, []string{"sheet"})

	// DashboardRequests counts /dashboard requests by whether data was available.
	DashboardRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tcsd2",
		Subsystem: "http",
		Name:      "dashboard_requests_total",
		Help:      "Total number of dashboard requests, labeled by data availability.",
	}, []string{"data"})
)

// Register registers metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			LoadsTotal,
			LoadDurationSeconds,
			SnapshotRecords,
			DashboardRequests,
		)
	})
}

// ObserveSnapshot publishes the record counts of a freshly loaded snapshot.
func ObserveSnapshot(c model.Counts) {
	SnapshotRecords.WithLabelValues("cases").Set(float64(c.Cases))
	SnapshotRecords.WithLabelValues("suspects").Set(float64(c.Suspects))
	SnapshotRecords.WithLabelValues("seizures").Set(float64(c.Seizures))
	SnapshotRecords.WithLabelValues("lookups").Set(float64(c.Flags + c.Units))
}
