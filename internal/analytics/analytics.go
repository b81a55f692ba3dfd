// Package analytics records API throttling events and aggregates them
// into per-route reports.
package analytics

import (
	"sort"
	"sync"
	"time"
)

// DefaultCapacity bounds how many events a Recorder retains.
const DefaultCapacity = 4096

// ThrottleEvent is one rejected request.
type ThrottleEvent struct {
	Route    string    `json:"route"`
	ClientIP string    `json:"client_ip"`
	Time     time.Time `json:"time"`
}

// Recorder keeps a bounded, in-memory trail of throttle events. It is
// safe for concurrent use; when full, the oldest events are dropped.
type Recorder struct {
	mu       sync.Mutex
	events   []ThrottleEvent
	capacity int
}

// NewRecorder returns a recorder retaining up to capacity events.
// A non-positive capacity selects DefaultCapacity.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{capacity: capacity}
}

// Record appends an event, evicting the oldest when at capacity.
func (r *Recorder) Record(ev ThrottleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == r.capacity {
		copy(r.events, r.events[1:])
		r.events = r.events[:len(r.events)-1]
	}
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded trail, oldest first.
func (r *Recorder) Events() []ThrottleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ThrottleEvent(nil), r.events...)
}

// RouteStats aggregates the throttle events of one route.
type RouteStats struct {
	Route         string    `json:"route"`
	Count         int       `json:"count"`
	UniqueClients int       `json:"unique_clients"`
	First         time.Time `json:"first"`
	Last          time.Time `json:"last"`
}

// Rollup groups events since a cutoff by route, sorted by descending
// count then route name. A zero cutoff includes everything.
func Rollup(events []ThrottleEvent, since time.Time) []RouteStats {
	type acc struct {
		stats   RouteStats
		clients map[string]struct{}
	}
	byRoute := make(map[string]*acc)
	for _, ev := range events {
		if !since.IsZero() && ev.Time.Before(since) {
			continue
		}
		a, ok := byRoute[ev.Route]
		if !ok {
			a = &acc{
				stats:   RouteStats{Route: ev.Route, First: ev.Time, Last: ev.Time},
				clients: make(map[string]struct{}),
			}
			byRoute[ev.Route] = a
		}
		a.stats.Count++
		a.clients[ev.ClientIP] = struct{}{}
		if ev.Time.Before(a.stats.First) {
			a.stats.First = ev.Time
		}
		if ev.Time.After(a.stats.Last) {
			a.stats.Last = ev.Time
		}
	}

	out := make([]RouteStats, 0, len(byRoute))
	for _, a := range byRoute {
		a.stats.UniqueClients = len(a.clients)
		out = append(out, a.stats)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Route < out[j].Route
	})
	return out
}
