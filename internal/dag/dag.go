// Package dag models one user's directed acyclic graph of tasks: the
// set of Task nodes, the arrival time at which any of them may first
// become eligible, and the dependency edges between them.
package dag

import (
	"sort"

	"github.com/lmeninato/dagsched/internal/schederr"
	"github.com/lmeninato/dagsched/internal/task"
)

// Edge is a dependency edge, pointing from a prerequisite task to its
// dependent, by label (not namespaced ID) — the shape the UI's graph
// renderer consumes.
type Edge struct {
	From string
	To   string
}

// DAG is one user's collection of tasks plus the metadata the
// scheduler needs to decide when they may first run.
type DAG struct {
	User        string
	Name        string
	ArrivalTime int

	labels []string // insertion order, for deterministic iteration
	tasks  map[string]*task.Task
}

// UserSpec is the declarative shape a DAG is built from: the owning
// user's key, display name, arrival time, and its tasks keyed by label.
type UserSpec struct {
	User        string
	Name        string
	ArrivalTime int
	Tasks       map[string]task.Spec
	// Order fixes iteration order for Tasks; if empty, the task labels
	// are taken in sorted order.
	Order []string
}

// New validates spec and builds a DAG: every dependency must name a
// task in the same spec, and the dependency graph must be acyclic.
func New(spec UserSpec) (*DAG, error) {
	d := &DAG{
		User:        spec.User,
		Name:        spec.Name,
		ArrivalTime: spec.ArrivalTime,
		tasks:       make(map[string]*task.Task, len(spec.Tasks)),
	}

	order := spec.Order
	if len(order) == 0 {
		for label := range spec.Tasks {
			order = append(order, label)
		}
		sort.Strings(order)
	}

	for _, label := range order {
		ts, ok := spec.Tasks[label]
		if !ok {
			continue
		}
		t, err := task.New(spec.User, ts)
		if err != nil {
			return nil, err
		}
		d.tasks[label] = t
		d.labels = append(d.labels, label)
	}

	for _, label := range d.labels {
		for dep := range d.tasks[label].Dependencies {
			if _, ok := d.tasks[dep]; !ok {
				return nil, schederr.NewMalformedSpecError(spec.User, label, "depends on unknown task \""+dep+"\"")
			}
		}
	}

	if cyc := d.findCycle(); cyc != "" {
		return nil, schederr.NewMalformedSpecError(spec.User, cyc, "participates in a dependency cycle")
	}

	return d, nil
}

// findCycle runs a DFS cycle check over the dependency graph, returning
// the label of a task involved in a cycle, or "" if the graph is
// acyclic.
func (d *DAG) findCycle() string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(d.labels))
	var visit func(label string) bool
	visit = func(label string) bool {
		color[label] = gray
		for dep := range d.tasks[label].Dependencies {
			switch color[dep] {
			case gray:
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		color[label] = black
		return false
	}
	for _, label := range d.labels {
		if color[label] == white {
			if visit(label) {
				return label
			}
		}
	}
	return ""
}

// Labels returns task labels in stable (construction) order.
func (d *DAG) Labels() []string {
	out := make([]string, len(d.labels))
	copy(out, d.labels)
	return out
}

// Task looks up a task by label.
func (d *DAG) Task(label string) (*task.Task, bool) {
	t, ok := d.tasks[label]
	return t, ok
}

// Tasks returns every task in stable order.
func (d *DAG) Tasks() []*task.Task {
	out := make([]*task.Task, 0, len(d.labels))
	for _, label := range d.labels {
		out = append(out, d.tasks[label])
	}
	return out
}

// AllFinished reports whether every task in the DAG is FINISHED.
func (d *DAG) AllFinished() bool {
	for _, label := range d.labels {
		if !d.tasks[label].IsTerminal() {
			return false
		}
	}
	return true
}

// Edges returns the dependency edges (prerequisite -> dependent) in
// stable order, for the UI's graph renderer.
func (d *DAG) Edges() []Edge {
	var edges []Edge
	for _, label := range d.labels {
		deps := d.tasks[label].DependencyLabels()
		sort.Strings(deps)
		for _, dep := range deps {
			edges = append(edges, Edge{From: dep, To: label})
		}
	}
	return edges
}

// Clone returns a deep, independent copy of the DAG and all its tasks,
// used by History to snapshot state the scheduler will go on to mutate.
func (d *DAG) Clone() *DAG {
	clone := &DAG{
		User:        d.User,
		Name:        d.Name,
		ArrivalTime: d.ArrivalTime,
		labels:      append([]string(nil), d.labels...),
		tasks:       make(map[string]*task.Task, len(d.tasks)),
	}
	for label, t := range d.tasks {
		clone.tasks[label] = t.Clone()
	}
	return clone
}
