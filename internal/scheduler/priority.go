package scheduler

import (
	"github.com/lmeninato/dagsched/internal/queue"
	"github.com/lmeninato/dagsched/internal/task"
)

// priorityFunc computes the OrderedPriorityQueue key for a task. All
// four priority-based policies share the priorityPolicy implementation
// below and differ only in this function (and, for Preemptive
// Priority, the preempt flag).
type priorityFunc func(t *task.Task) int

// explicitPriority is the key used by Priority and Preemptive
// Priority: the task's own declared priority (default 0).
func explicitPriority(t *task.Task) int {
	return t.Priority
}

// ssfPriority is the key used by Smallest Service First: the negated
// service size `priority * cpus * ram`, so that a larger service size
// sorts to a lower OPQ key (scheduled later). A task with no declared
// priority is treated as priority 1, per spec.
func ssfPriority(t *task.Task) int {
	p := 1
	if t.HasPriority {
		p = t.Priority
	}
	return -(p * t.CPUs * t.RAM)
}

// sjfPriority is the key used by Shortest Job First: the negated
// duration, so a shorter job sorts to a higher OPQ key (scheduled
// sooner).
func sjfPriority(t *task.Task) int {
	return -t.Duration
}

// priorityPolicy is the shared implementation behind Priority,
// Preemptive Priority, SSF, and SJF: an OrderedPriorityQueue keyed by
// fn, optionally allowed to preempt lower-priority RUNNING tasks.
type priorityPolicy struct {
	name     string
	preempt  bool
	fn       priorityFunc
	q        *queue.OrderedPriorityQueue[Item]
	usesPrio bool
}

func newPriorityPolicy(name string, preempt, usesPrio bool, fn priorityFunc) *priorityPolicy {
	return &priorityPolicy{name: name, preempt: preempt, fn: fn, q: queue.New[Item](), usesPrio: usesPrio}
}

// NewPriority returns the non-preemptive Priority policy: explicit
// task priority, never preempts.
func NewPriority() Policy {
	return newPriorityPolicy("priority", false, true, explicitPriority)
}

// NewPreemptivePriority returns the Preemptive Priority policy:
// explicit task priority, preempts strictly-lower-priority RUNNING
// tasks to admit a head task that doesn't otherwise fit.
func NewPreemptivePriority() Policy {
	return newPriorityPolicy("preemptive-priority", true, true, explicitPriority)
}

// NewSSF returns the Smallest Service First policy: service size
// `priority*cpus*ram`, smaller services scheduled first, never
// preempts.
func NewSSF() Policy {
	return newPriorityPolicy("ssf", false, false, ssfPriority)
}

// NewSJF returns the Shortest Job First policy: shorter duration
// scheduled first, never preempts.
func NewSJF() Policy {
	return newPriorityPolicy("sjf", false, false, sjfPriority)
}

func (p *priorityPolicy) Name() string       { return p.name }
func (p *priorityPolicy) Preempts() bool     { return p.preempt }
func (p *priorityPolicy) UsesPriority() bool { return p.usesPrio }

func (p *priorityPolicy) Enqueue(core *Core, item Item) {
	t := core.taskFor(item)
	p.q.Put(item, p.fn(t))
}

func (p *priorityPolicy) Empty() bool { return p.q.Empty() }

func (p *priorityPolicy) Peek() (Item, bool) {
	it, err := p.q.Peek()
	return it, err == nil
}

func (p *priorityPolicy) Pop() (Item, bool) {
	it, err := p.q.Get()
	return it, err == nil
}

func (p *priorityPolicy) PriorityOf(core *Core, item Item) int {
	return p.fn(core.taskFor(item))
}
