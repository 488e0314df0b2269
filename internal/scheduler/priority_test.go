package scheduler

import (
	"testing"

	"github.com/lmeninato/dagsched/internal/task"
)

func mustTask(t *testing.T, spec task.Spec) *task.Task {
	t.Helper()
	tk, err := task.New("u", spec)
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	return tk
}

func TestExplicitPriority(t *testing.T) {
	tk := mustTask(t, task.Spec{Label: "a", Duration: 1, Priority: 7, HasPriority: true})
	if got := explicitPriority(tk); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestSSFPriorityDefaultsToOne(t *testing.T) {
	tk := mustTask(t, task.Spec{Label: "a", Duration: 1, CPUs: 2, RAM: 3})
	if got := ssfPriority(tk); got != -6 {
		t.Fatalf("expected -1*2*3=-6 for no declared priority, got %d", got)
	}
}

func TestSSFPriorityUsesDeclaredPriority(t *testing.T) {
	tk := mustTask(t, task.Spec{Label: "a", Duration: 1, CPUs: 2, RAM: 3, Priority: 4, HasPriority: true})
	if got := ssfPriority(tk); got != -24 {
		t.Fatalf("expected -4*2*3=-24, got %d", got)
	}
}

func TestSJFPriorityIsNegatedDuration(t *testing.T) {
	tk := mustTask(t, task.Spec{Label: "a", Duration: 9})
	if got := sjfPriority(tk); got != -9 {
		t.Fatalf("expected -9, got %d", got)
	}
}

func TestSSFPrefersSmallerServiceSize(t *testing.T) {
	core := testCoreWithTasks(t,
		task.Spec{Label: "big", Duration: 1, CPUs: 4, RAM: 1},
		task.Spec{Label: "small", Duration: 1, CPUs: 1, RAM: 1},
	)
	policy := NewSSF()
	policy.Enqueue(core, Item{User: "u", Label: "big"})
	policy.Enqueue(core, Item{User: "u", Label: "small"})

	first, ok := policy.Pop()
	if !ok || first.Label != "small" {
		t.Fatalf("expected smaller service size scheduled first, got %+v", first)
	}
}

func TestSJFPrefersShorterDuration(t *testing.T) {
	core := testCoreWithTasks(t,
		task.Spec{Label: "long", Duration: 10},
		task.Spec{Label: "short", Duration: 2},
	)
	policy := NewSJF()
	policy.Enqueue(core, Item{User: "u", Label: "long"})
	policy.Enqueue(core, Item{User: "u", Label: "short"})

	first, ok := policy.Pop()
	if !ok || first.Label != "short" {
		t.Fatalf("expected shorter job scheduled first, got %+v", first)
	}
}
