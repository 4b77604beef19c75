package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/store"
)

// Metrics counts dispatched actions and their latency.
type Metrics struct {
	commands      atomic.Uint64
	notifications atomic.Uint64
	other         atomic.Uint64
	failures      atomic.Uint64

	totalNs atomic.Int64
	minNs   atomic.Int64
	maxNs   atomic.Int64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Commands      uint64
	Notifications uint64
	Other         uint64
	Failures      uint64
	AvgDispatch   time.Duration
	MinDispatch   time.Duration
	MaxDispatch   time.Duration
	Uptime        time.Duration
}

// Total returns the number of dispatched actions.
func (s MetricsSnapshot) Total() uint64 {
	return s.Commands + s.Notifications + s.Other
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.minNs.Store(1<<63 - 1)
	return m
}

// Middleware records every action passing through the store. Install it
// outermost so nested notification dispatches are timed separately.
func (m *Metrics) Middleware() store.Middleware {
	return func(store.API) func(store.Dispatch) store.Dispatch {
		return func(next store.Dispatch) store.Dispatch {
			return func(a action.Action) error {
				start := time.Now()
				err := next(a)
				m.Record(a, time.Since(start), err)
				return err
			}
		}
	}
}

// Record counts one dispatch.
func (m *Metrics) Record(a action.Action, d time.Duration, err error) {
	switch {
	case action.IsNil(a):
		m.other.Add(1)
	case action.IsInternal(a.ActionType()):
		m.commands.Add(1)
	case action.IsExternal(a.ActionType()):
		m.notifications.Add(1)
	default:
		m.other.Add(1)
	}
	if err != nil {
		m.failures.Add(1)
	}

	ns := d.Nanoseconds()
	m.totalNs.Add(ns)
	for {
		old := m.minNs.Load()
		if ns >= old || m.minNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Commands:      m.commands.Load(),
		Notifications: m.notifications.Load(),
		Other:         m.other.Load(),
		Failures:      m.failures.Load(),
		MaxDispatch:   time.Duration(m.maxNs.Load()),
		Uptime:        time.Since(m.startTime),
	}
	if total := s.Total(); total > 0 {
		s.AvgDispatch = time.Duration(m.totalNs.Load() / int64(total))
		s.MinDispatch = time.Duration(m.minNs.Load())
	}
	return s
}
