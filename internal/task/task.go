// Package task defines the Task entity and its admission state
// machine. A Task is the leaf unit of work inside a DAG: it declares a
// duration and a resource demand, and moves through
// UNSET -> READY/BLOCKED -> RUNNING -> FINISHED, with an optional
// RUNNING -> PREEMPTED -> RUNNING detour under preemptive policies.
package task

import (
	"fmt"

	"github.com/lmeninato/dagsched/internal/cluster"
	"github.com/lmeninato/dagsched/internal/schederr"
)

// Status is a Task's position in the admission state machine.
type Status int

const (
	// StatusUnset is the initial state before the first eligibility sweep.
	StatusUnset Status = iota
	// StatusReady means dependencies are satisfied and arrival has passed.
	StatusReady
	// StatusBlocked means arrival has passed but a dependency has not finished.
	StatusBlocked
	// StatusRunning means the task currently holds cluster resources.
	StatusRunning
	// StatusPreempted means a running task was evicted to free capacity.
	StatusPreempted
	// StatusFinished is terminal: accumulated runtime has reached duration.
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusUnset:
		return "UNSET"
	case StatusReady:
		return "READY"
	case StatusBlocked:
		return "BLOCKED"
	case StatusRunning:
		return "RUNNING"
	case StatusPreempted:
		return "PREEMPTED"
	case StatusFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus parses String's output back into a Status, the inverse
// needed to re-hydrate a task from a recorded snapshot.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "UNSET":
		return StatusUnset, nil
	case "READY":
		return StatusReady, nil
	case "BLOCKED":
		return StatusBlocked, nil
	case "RUNNING":
		return StatusRunning, nil
	case "PREEMPTED":
		return StatusPreempted, nil
	case "FINISHED":
		return StatusFinished, nil
	default:
		return StatusUnset, fmt.Errorf("task: unknown status %q", s)
	}
}

// Spec is the declarative shape a Task is constructed from: everything
// that is known before the simulation starts.
type Spec struct {
	Label        string
	Duration     int
	CPUs         int
	RAM          int
	Priority     int
	HasPriority  bool
	Dependencies []string
}

// Task is one node of a user's DAG. Fields below Status are mutated
// only by the scheduler's round loop during Run.
type Task struct {
	ID           string
	Label        string
	Duration     int
	CPUs         int
	RAM          int
	Priority     int
	HasPriority  bool
	Dependencies map[string]struct{}

	Status    Status
	ReadyTime int
	Start     int
	HasStart  bool
	PrevStart int // the `now` at which the task was last (re-)admitted
	Runtime   int
	End       int
}

const (
	defaultCPUs = 1
	defaultRAM  = 1
)

// New validates spec and builds a Task namespaced under user. user and
// label together form the globally-unique ID "<user>,<label>".
func New(user string, spec Spec) (*Task, error) {
	if spec.Label == "" {
		return nil, schederr.NewMalformedSpecError(user, spec.Label, "task label is required")
	}
	if spec.Duration <= 0 {
		return nil, schederr.NewMalformedSpecError(user, spec.Label, "task duration must be a positive integer")
	}
	cpus := spec.CPUs
	if cpus == 0 {
		cpus = defaultCPUs
	}
	ram := spec.RAM
	if ram == 0 {
		ram = defaultRAM
	}
	deps := make(map[string]struct{}, len(spec.Dependencies))
	for _, d := range spec.Dependencies {
		deps[d] = struct{}{}
	}
	return &Task{
		ID:           ID(user, spec.Label),
		Label:        spec.Label,
		Duration:     spec.Duration,
		CPUs:         cpus,
		RAM:          ram,
		Priority:     spec.Priority,
		HasPriority:  spec.HasPriority,
		Dependencies: deps,
		Status:       StatusUnset,
	}, nil
}

// ID builds the namespaced identity "<user>,<label>" shared by a Task's
// ID field and any cross-DAG lookup key.
func ID(user, label string) string {
	return fmt.Sprintf("%s,%s", user, label)
}

// Resources returns the task's resource demand as a cluster.Resources.
func (t *Task) Resources() cluster.Resources {
	return cluster.Resources{CPUs: t.CPUs, RAM: t.RAM}
}

// IsTerminal reports whether the task is in its terminal FINISHED state.
func (t *Task) IsTerminal() bool {
	return t.Status == StatusFinished
}

// MarkReady transitions the task to READY, recording ready_time. Valid
// from UNSET, BLOCKED, or PREEMPTED.
func (t *Task) MarkReady(now int) {
	t.Status = StatusReady
	t.ReadyTime = now
}

// MarkBlocked transitions the task to BLOCKED (arrival passed, a
// dependency is unfinished).
func (t *Task) MarkBlocked() {
	t.Status = StatusBlocked
}

// Admit transitions READY/PREEMPTED -> RUNNING. It records Start on the
// very first admission only, and always resets PrevStart so the next
// completion/preemption sweep accounts runtime correctly.
func (t *Task) Admit(now int) {
	t.Status = StatusRunning
	if !t.HasStart {
		t.Start = now
		t.HasStart = true
	}
	t.PrevStart = now
}

// AccumulateRuntime adds the elapsed time since the last admission to
// Runtime. Called once per completion sweep for every RUNNING task,
// and once when a RUNNING task is preempted.
func (t *Task) AccumulateRuntime(now int) {
	t.Runtime += now - t.PrevStart
	t.PrevStart = now
}

// Finish transitions RUNNING -> FINISHED once accumulated Runtime has
// reached Duration. Callers must call AccumulateRuntime first.
func (t *Task) Finish(now int) {
	t.Status = StatusFinished
	t.End = now
}

// Preempt transitions RUNNING -> PREEMPTED. Callers must call
// AccumulateRuntime first so the partial execution is not lost.
func (t *Task) Preempt() {
	t.Status = StatusPreempted
}

// Remaining returns how much runtime is still needed to reach Duration.
func (t *Task) Remaining() int {
	return t.Duration - t.Runtime
}

// DependencyLabels returns the dependency labels, for serialization and
// display. The order is that of map iteration and is not stable; callers
// that need a fixed order sort the result.
func (t *Task) DependencyLabels() []string {
	labels := make([]string, 0, len(t.Dependencies))
	for d := range t.Dependencies {
		labels = append(labels, d)
	}
	return labels
}

// Clone returns a deep, independent copy of the task, used by History
// to snapshot state that the scheduler will go on to mutate.
func (t *Task) Clone() *Task {
	clone := *t
	clone.Dependencies = make(map[string]struct{}, len(t.Dependencies))
	for d := range t.Dependencies {
		clone.Dependencies[d] = struct{}{}
	}
	return &clone
}
