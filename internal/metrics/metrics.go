// Package metrics decouples pipeline instrumentation from any particular
// metrics vendor. The pipeline calls the package-level helpers; a backend is
// installed once at startup. The default backend discards everything, so
// instrumentation is always safe to call.
package metrics

import (
	"sync"
	"time"
)

// Backend is the minimal sink the pipeline needs.
type Backend interface {
	// IncCounter adds delta to a named counter.
	IncCounter(name string, delta float64, tags ...string)

	// ObserveDuration records one duration sample for a named metric.
	ObserveDuration(name string, d time.Duration, tags ...string)

	// Flush submits buffered metrics. Safe to call at any time.
	Flush() error

	// Close flushes once more and releases backend resources.
	Close() error
}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the process-wide metrics backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		backend = nopBackend{}
		return
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter adds delta to a named counter on the installed backend.
func IncCounter(name string, delta float64, tags ...string) {
	current().IncCounter(name, delta, tags...)
}

// ObserveDuration records a duration sample on the installed backend.
func ObserveDuration(name string, d time.Duration, tags ...string) {
	current().ObserveDuration(name, d, tags...)
}

// Flush submits buffered metrics on the installed backend.
func Flush() error { return current().Flush() }

// Close closes the installed backend.
func Close() error { return current().Close() }

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, ...string)           {}
func (nopBackend) ObserveDuration(string, time.Duration, ...string) {}
func (nopBackend) Flush() error                                    { return nil }
func (nopBackend) Close() error                                    { return nil }
