package cache

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/metrics"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
)

// Loader reads the workbook at path into a complete dataset.
type Loader interface {
	Load(path string) (*model.Dataset, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*model.Dataset, error)

func (f LoaderFunc) Load(path string) (*model.Dataset, error) { return f(path) }

// Recorder persists load attempts. Failures are logged and otherwise ignored.
type Recorder interface {
	RecordLoad(ctx context.Context, ev model.LoadEvent) error
}

// Manager holds the most recent successfully loaded dataset for one
// workbook path. A failed reload never discards a previous snapshot.
type Manager struct {
	path     string
	loader   Loader
	recorder Recorder
	now      func() time.Time

	mu       sync.Mutex
	modTime  *time.Time
	data     *model.Dataset
	loadedAt *time.Time
	lastErr  *string
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder appends every load attempt to r.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithClock overrides the wall clock used for load timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates an empty cache for the workbook at path.
func New(path string, loader Loader, opts ...Option) *Manager {
	m := &Manager{path: path, loader: loader, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Path returns the workbook path.
func (m *Manager) Path() string { return m.path }

func (m *Manager) statModTime() *time.Time {
	info, err := os.Stat(m.path)
	if err != nil {
		return nil
	}
	t := info.ModTime()
	return &t
}

// EnsureFresh reloads the workbook when forced, when nothing is cached yet,
// or when the file's modification time differs from the cached one. It
// reports whether a load was attempted. Load errors are recorded, not
// returned.
func (m *Manager) EnsureFresh(ctx context.Context, force bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	mtime := m.statModTime()
	changed := mtime != nil && (m.modTime == nil || !mtime.Equal(*m.modTime))
	if !force && m.data != nil && !changed {
		return false
	}

	start := m.now()
	ds, err := m.loader.Load(m.path)
	elapsed := m.now().Sub(start)

	ev := model.LoadEvent{
		StartedAt: start.UTC(),
		ModTime:   mtime,
		Forced:    force,
		Duration:  float64(elapsed.Microseconds()) / 1000,
	}
	entry := log.WithFields(log.Fields{
		"path":   m.path,
		"forced": force,
	})

	if err != nil {
		msg := err.Error()
		m.lastErr = &msg
		ev.Error = msg
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		entry.WithError(err).Warn("cache.load.failed")
	} else {
		loadedAt := start.UTC()
		m.data = ds
		m.modTime = mtime
		m.loadedAt = &loadedAt
		m.lastErr = nil

		counts := model.CountsOf(ds)
		ev.OK = true
		ev.Cases, ev.Suspects, ev.Seizures = counts.Cases, counts.Suspects, counts.Seizures
		metrics.LoadsTotal.WithLabelValues("ok").Inc()
		metrics.ObserveSnapshot(counts)
		entry.WithFields(log.Fields{
			"cases":    counts.Cases,
			"suspects": counts.Suspects,
			"seizures": counts.Seizures,
		}).Info("cache.load.ok")
	}
	metrics.LoadDurationSeconds.Observe(elapsed.Seconds())

	if m.recorder != nil {
		if rerr := m.recorder.RecordLoad(ctx, ev); rerr != nil {
			log.WithError(rerr).Warn("cache.history.record_failed")
		}
	}
	return true
}

// Snapshot returns the cached dataset (nil before the first successful
// load) together with the cache status.
func (m *Manager) Snapshot() (*model.Dataset, model.CacheStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.statusLocked()
}

// Status returns the cache status.
func (m *Manager) Status() model.CacheStatus {
	_, st := m.Snapshot()
	return st
}

func (m *Manager) statusLocked() model.CacheStatus {
	return model.CacheStatus{
		Path:      m.path,
		ModTime:   m.modTime,
		LoadedAt:  m.loadedAt,
		LastError: m.lastErr,
		HasData:   m.data != nil,
		Counts:    model.CountsOf(m.data),
	}
}
