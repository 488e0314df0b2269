package scheduler

import (
	"testing"

	"github.com/lmeninato/dagsched/internal/cluster"
	"github.com/lmeninato/dagsched/internal/dag"
	"github.com/lmeninato/dagsched/internal/task"
)

// testCoreWithTasks builds a single-user Core whose DAG holds exactly
// the given task specs, for tests that only need Core.taskFor to
// resolve Items to tasks (policy/priority-function unit tests).
func testCoreWithTasks(t *testing.T, specs ...task.Spec) *Core {
	t.Helper()
	tasks := make(map[string]task.Spec, len(specs))
	order := make([]string, 0, len(specs))
	for _, s := range specs {
		tasks[s.Label] = s
		order = append(order, s.Label)
	}
	d, err := dag.New(dag.UserSpec{User: "u", Tasks: tasks, Order: order})
	if err != nil {
		t.Fatalf("dag.New: %v", err)
	}
	core, err := NewCore(Config{
		Cluster: cluster.New(100, 100),
		DAGs:    map[string]*dag.DAG{"u": d},
		Order:   []string{"u"},
		Policy:  NewFCFS(),
	})
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	return core
}
