package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/lmeninato/dagsched/internal/cluster"
	"github.com/lmeninato/dagsched/internal/dag"
	"github.com/lmeninato/dagsched/internal/history"
	"github.com/lmeninato/dagsched/internal/metrics"
	"github.com/lmeninato/dagsched/internal/task"
	"go.uber.org/zap"
)

// Outcome is SchedulerCore.Run's terminal report: the simulated time
// the run stopped at, and whether it stopped because every task
// finished or because no task could make further progress (deadlock /
// unsatisfiable capacity demand).
type Outcome struct {
	FinalTime    int
	Deadlocked   bool
	Deserialized bool
}

// Config builds a Core: the cluster capacity, every user's DAG, and
// the admission Policy to run them under.
type Config struct {
	Cluster *cluster.Cluster
	DAGs    map[string]*dag.DAG
	// Order fixes user iteration order for determinism. If empty, the
	// DAGs' keys are iterated in sorted order.
	Order  []string
	Policy Policy
	Logger *zap.Logger
	// Deserialized marks that DAGs were rebuilt from a recorded
	// Snapshot (the `deserialize=true` construction path) rather than
	// freshly parsed from a spec file — mirroring dagu's
	// NewExecutionGraph vs NewExecutionGraphForRetry split. Core does
	// not behave differently based on this flag; it is carried through
	// to the run log and Outcome purely for observability.
	Deserialized bool
}

// Core is the shared scheduling engine: one round loop (completion,
// eligibility, enqueue, admission, snapshot, clock advance) executed
// identically regardless of which Policy it is bound to.
type Core struct {
	cluster *cluster.Cluster
	dags    map[string]*dag.DAG
	order   []string
	policy  Policy

	metrics *metrics.Accumulator
	history *history.History
	logger  *zap.Logger

	now      int
	messages []string
	// running is every currently-RUNNING item in admission order,
	// used to break preemption-victim ties by insertion order.
	running []Item

	deserialized bool
}

// NewCore validates cfg and builds a Core ready to Run.
func NewCore(cfg Config) (*Core, error) {
	if cfg.Cluster == nil {
		return nil, errors.New("scheduler: cluster is required")
	}
	if cfg.Policy == nil {
		return nil, errors.New("scheduler: policy is required")
	}
	order := cfg.Order
	if len(order) == 0 {
		for user := range cfg.DAGs {
			order = append(order, user)
		}
		sort.Strings(order)
	}

	arrivals := make(map[string]int, len(order))
	taskLabels := make(map[string][]string, len(order))
	for _, user := range order {
		d, ok := cfg.DAGs[user]
		if !ok {
			return nil, fmt.Errorf("scheduler: order names unknown user %q", user)
		}
		arrivals[user] = d.ArrivalTime
		taskLabels[user] = d.Labels()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Core{
		cluster:      cfg.Cluster,
		dags:         cfg.DAGs,
		order:        order,
		policy:       cfg.Policy,
		metrics:      metrics.New(arrivals, taskLabels),
		history:      history.New(),
		logger:       logger,
		deserialized: cfg.Deserialized,
	}, nil
}

// History returns the recorder built up over the run, queryable by the
// UI once Run has returned.
func (c *Core) History() *history.History { return c.history }

// Metrics returns the live metrics accumulator. Callers that want an
// independent snapshot should instead read through History at a given
// time.
func (c *Core) Metrics() *metrics.Accumulator { return c.metrics }

// Now returns the current simulated clock value.
func (c *Core) Now() int { return c.now }

// RunningCount returns the number of tasks currently RUNNING, across
// all users.
func (c *Core) RunningCount() int { return len(c.running) }

// Cluster returns the cluster the core is scheduling onto.
func (c *Core) Cluster() *cluster.Cluster { return c.cluster }

// Run executes rounds until the scheduler reports finished=true,
// recording the t=-1 initial snapshot first. It checks ctx once per
// round, preserving each round's atomicity.
func (c *Core) Run(ctx context.Context) (Outcome, error) {
	c.logger.Sugar().Infow("run starting", "policy", c.policy.Name(), "deserialized", c.deserialized, "users", c.order)
	c.recordSnapshot(-1)
	for {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		if c.round() {
			break
		}
	}
	return c.outcome(), nil
}

// taskFor resolves an Item to its underlying Task.
func (c *Core) taskFor(item Item) *task.Task {
	d := c.dags[item.User]
	t, _ := d.Task(item.Label)
	return t
}

func (c *Core) addMessage(format string, args ...any) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

func (c *Core) recordSnapshot(t int) {
	c.history.Add(t, c.messages, c.dags, c.cluster.Utilization(), c.metrics)
}

// round performs one iteration of the shared loop described in
// SchedulerCore: completion sweep, eligibility sweep, enqueue,
// admission, snapshot, clock advance. It returns true once the run has
// nothing left to do, whether because every task finished or because
// the remaining work can never become schedulable (deadlock).
func (c *Core) round() bool {
	c.messages = c.messages[:0]
	now := c.now

	c.completionSweep(now)
	newlyReady := c.eligibilitySweep(now)
	for _, item := range newlyReady {
		c.policy.Enqueue(c, item)
	}
	c.admissionLoop(now)
	c.recordSnapshot(now)

	next, hasNext := c.nextEventTime(now)
	if !hasNext {
		return true
	}
	c.now = next
	return false
}

func (c *Core) completionSweep(now int) {
	for _, user := range c.order {
		d := c.dags[user]
		for _, label := range d.Labels() {
			t, _ := d.Task(label)
			if t.Status != task.StatusRunning {
				continue
			}
			t.AccumulateRuntime(now)
			if t.Runtime >= t.Duration {
				t.Finish(now)
				c.cluster.Release(t.Resources())
				c.metrics.StoreTaskFinishTime(user, label, t.Start, t.End)
				c.removeRunning(Item{User: user, Label: label})
				c.addMessage("Finished user: %s task: %s at time=%d", user, label, now)
			}
		}
	}
}

func (c *Core) eligibilitySweep(now int) []Item {
	var newlyReady []Item
	for _, user := range c.order {
		d := c.dags[user]
		if d.ArrivalTime > now {
			continue
		}
		for _, label := range d.Labels() {
			t, _ := d.Task(label)
			switch t.Status {
			case task.StatusReady, task.StatusRunning, task.StatusFinished:
				continue
			}
			if c.dependenciesSatisfied(d, t) {
				t.MarkReady(now)
				newlyReady = append(newlyReady, Item{User: user, Label: label})
				if c.policy.UsesPriority() {
					c.addMessage("Added %s task %s to ready queue with priority %d duration %d", user, label, t.Priority, t.Duration)
				} else {
					c.addMessage("Added %s task %s to ready queue duration %d", user, label, t.Duration)
				}
			} else {
				t.MarkBlocked()
			}
		}
	}
	return newlyReady
}

func (c *Core) dependenciesSatisfied(d *dag.DAG, t *task.Task) bool {
	for dep := range t.Dependencies {
		depTask, ok := d.Task(dep)
		if !ok || depTask.Status != task.StatusFinished {
			return false
		}
	}
	return true
}

// admissionLoop consumes the policy's ready structure head-first. A
// task that doesn't fit (and, for preemptive policies, cannot be made
// to fit by preempting lower-priority RUNNING tasks) stops the loop:
// strict head-of-line blocking, no out-of-order admission even when a
// smaller task further back would fit.
func (c *Core) admissionLoop(now int) {
	for !c.policy.Empty() {
		item, _ := c.policy.Peek()
		t := c.taskFor(item)
		if t.Status == task.StatusFinished {
			c.policy.Pop()
			continue
		}
		if c.cluster.Fits(t.Resources()) {
			c.policy.Pop()
			c.admit(item, t, now)
			continue
		}
		if c.policy.Preempts() && c.tryPreempt(item, t, now) {
			c.policy.Pop()
			c.admit(item, t, now)
			continue
		}
		break
	}
}

func (c *Core) admit(item Item, t *task.Task, now int) {
	c.metrics.StoreTaskQueueTime(item.User, item.Label, now, t.ReadyTime)
	c.cluster.Reserve(t.Resources())
	t.Admit(now)
	c.running = append(c.running, item)
	c.addMessage("Scheduled %s task %s with %d cpus and %d ram", item.User, item.Label, t.CPUs, t.RAM)
}

func (c *Core) removeRunning(item Item) {
	for i, it := range c.running {
		if it == item {
			c.running = append(c.running[:i], c.running[i+1:]...)
			return
		}
	}
}

// tryPreempt implements the Preemptive Priority eviction rule: walk
// RUNNING tasks in ascending priority, accumulating their resources
// into a hypothetical release pool, and commit the first prefix whose
// release plus current free capacity would fit t. Victims of equal or
// higher priority than t are never considered. Ties are broken by
// insertion (admission) order.
func (c *Core) tryPreempt(item Item, t *task.Task, now int) bool {
	p := c.policy.PriorityOf(c, item)

	type candidate struct {
		item     Item
		priority int
	}
	var candidates []candidate
	for _, it := range c.running {
		q := c.policy.PriorityOf(c, it)
		if q < p {
			candidates = append(candidates, candidate{item: it, priority: q})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority < candidates[j].priority
	})

	free := c.cluster.Total.Sub(c.cluster.Utilization())
	var released cluster.Resources
	for i, cand := range candidates {
		released = released.Add(c.taskFor(cand.item).Resources())
		if free.Add(released).Covers(t.Resources()) {
			for _, v := range candidates[:i+1] {
				vt := c.taskFor(v.item)
				vt.AccumulateRuntime(now)
				vt.Preempt()
				c.cluster.Release(vt.Resources())
				c.metrics.StorePreemption(v.item.User, v.item.Label)
				c.removeRunning(v.item)
				c.addMessage("Pre-empting user %s task %s with priority: %d", v.item.User, v.item.Label, v.priority)
			}
			return true
		}
	}
	return false
}

// nextEventTime returns the earliest of every RUNNING task's finish
// time and every not-yet-arrived DAG's arrival time. The second bool
// is false when neither exists, meaning the run has nothing left to
// advance to (done, or deadlocked).
func (c *Core) nextEventTime(now int) (int, bool) {
	next := 0
	has := false
	update := func(t int) {
		if !has || t < next {
			next = t
			has = true
		}
	}
	for _, user := range c.order {
		d := c.dags[user]
		for _, label := range d.Labels() {
			t, _ := d.Task(label)
			if t.Status == task.StatusRunning {
				update(t.PrevStart + t.Remaining())
			}
		}
		if d.ArrivalTime > now {
			update(d.ArrivalTime)
		}
	}
	return next, has
}

func (c *Core) outcome() Outcome {
	deadlocked := false
	for _, user := range c.order {
		if !c.dags[user].AllFinished() {
			deadlocked = true
			break
		}
	}
	return Outcome{FinalTime: c.now, Deadlocked: deadlocked, Deserialized: c.deserialized}
}
