// Package history records one deep, independent snapshot per
// simulated round: the round's messages, every user's DAG, cluster
// utilization, and metrics. Snapshots are append-only and immutable
// once recorded; an initial snapshot is taken at t=-1 before any
// simulated time passes.
package history

import (
	"sort"

	"github.com/lmeninato/dagsched/internal/cluster"
	"github.com/lmeninato/dagsched/internal/dag"
	"github.com/lmeninato/dagsched/internal/metrics"
	"github.com/lmeninato/dagsched/internal/schederr"
)

// Entry is one recorded instant: the round's log messages, every
// user's DAG as it stood at the end of the round, the cluster's
// utilization, and a metrics snapshot.
type Entry struct {
	Time        int
	Messages    []string
	DAGs        map[string]*dag.DAG
	Utilization cluster.Resources
	Metrics     *metrics.Accumulator
}

// History is the append-only, time-keyed store of Entry snapshots.
type History struct {
	times   []int
	entries map[int]Entry
}

// New returns an empty History.
func New() *History {
	return &History{entries: make(map[int]Entry)}
}

// Add takes a deep snapshot of dags and metrics and records it under
// t, along with a copy of messages and the utilization value. Callers
// must call Add with strictly increasing t after the initial t=-1.
func (h *History) Add(t int, messages []string, dags map[string]*dag.DAG, utilization cluster.Resources, m *metrics.Accumulator) {
	dagsCopy := make(map[string]*dag.DAG, len(dags))
	for user, d := range dags {
		dagsCopy[user] = d.Clone()
	}
	msgsCopy := append([]string(nil), messages...)

	if _, exists := h.entries[t]; !exists {
		h.times = append(h.times, t)
	}
	h.entries[t] = Entry{
		Time:        t,
		Messages:    msgsCopy,
		DAGs:        dagsCopy,
		Utilization: utilization,
		Metrics:     m.Clone(),
	}
}

// Get returns the entry recorded at t, or an error wrapping a
// *schederr.TimeNotFoundError if t was never recorded.
func (h *History) Get(t int) (Entry, error) {
	e, ok := h.entries[t]
	if !ok {
		return Entry{}, schederr.NewTimeNotFoundError(t)
	}
	return e, nil
}

// Times returns every recorded time in ascending order, starting with
// -1.
func (h *History) Times() []int {
	out := append([]int(nil), h.times...)
	sort.Ints(out)
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.times)
}
