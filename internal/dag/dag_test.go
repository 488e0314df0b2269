package dag

import (
	"testing"

	"github.com/lmeninato/dagsched/internal/task"
)

func TestNewBuildsTasksInOrder(t *testing.T) {
	d, err := New(UserSpec{
		User:        "u1",
		ArrivalTime: 0,
		Tasks: map[string]task.Spec{
			"A": {Label: "A", Duration: 5},
			"B": {Label: "B", Duration: 3, Dependencies: []string{"A"}},
		},
		Order: []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := d.Labels(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("expected labels [A B], got %v", got)
	}
}

func TestNewRejectsUnknownDependency(t *testing.T) {
	_, err := New(UserSpec{
		User: "u1",
		Tasks: map[string]task.Spec{
			"A": {Label: "A", Duration: 5, Dependencies: []string{"ghost"}},
		},
	})
	if err == nil {
		t.Fatal("expected error for dependency on unknown task")
	}
}

func TestNewRejectsCycle(t *testing.T) {
	_, err := New(UserSpec{
		User: "u1",
		Tasks: map[string]task.Spec{
			"A": {Label: "A", Duration: 5, Dependencies: []string{"B"}},
			"B": {Label: "B", Duration: 5, Dependencies: []string{"A"}},
		},
	})
	if err == nil {
		t.Fatal("expected error for dependency cycle")
	}
}

func TestEdgesReflectDependencies(t *testing.T) {
	d, err := New(UserSpec{
		User: "u1",
		Tasks: map[string]task.Spec{
			"A": {Label: "A", Duration: 5},
			"B": {Label: "B", Duration: 3, Dependencies: []string{"A"}},
		},
		Order: []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	edges := d.Edges()
	if len(edges) != 1 || edges[0] != (Edge{From: "A", To: "B"}) {
		t.Fatalf("expected one edge A->B, got %v", edges)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d, _ := New(UserSpec{
		User:  "u1",
		Tasks: map[string]task.Spec{"A": {Label: "A", Duration: 5}}},
	)
	clone := d.Clone()
	tk, _ := clone.Task("A")
	tk.Status = task.StatusFinished

	orig, _ := d.Task("A")
	if orig.Status == task.StatusFinished {
		t.Fatal("mutating clone leaked into original DAG")
	}
}

func TestAllFinished(t *testing.T) {
	d, _ := New(UserSpec{
		User:  "u1",
		Tasks: map[string]task.Spec{"A": {Label: "A", Duration: 5}}},
	)
	if d.AllFinished() {
		t.Fatal("expected not all finished before any task runs")
	}
	tk, _ := d.Task("A")
	tk.Status = task.StatusFinished
	if !d.AllFinished() {
		t.Fatal("expected all finished once sole task is FINISHED")
	}
}
