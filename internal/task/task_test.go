package task

import "testing"

func TestNewDefaultsResources(t *testing.T) {
	tk, err := New("u1", Spec{Label: "A", Duration: 5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tk.CPUs != defaultCPUs || tk.RAM != defaultRAM {
		t.Fatalf("expected default resources, got cpus=%d ram=%d", tk.CPUs, tk.RAM)
	}
	if tk.ID != "u1,A" {
		t.Fatalf("expected namespaced ID u1,A, got %s", tk.ID)
	}
}

func TestNewRejectsMissingLabel(t *testing.T) {
	if _, err := New("u1", Spec{Duration: 5}); err == nil {
		t.Fatal("expected error for missing label")
	}
}

func TestNewRejectsNonPositiveDuration(t *testing.T) {
	if _, err := New("u1", Spec{Label: "A", Duration: 0}); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestLifecycle(t *testing.T) {
	tk, err := New("u1", Spec{Label: "A", Duration: 10, CPUs: 2, RAM: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tk.MarkReady(3)
	if tk.Status != StatusReady || tk.ReadyTime != 3 {
		t.Fatalf("expected READY at readyTime=3, got %v readyTime=%d", tk.Status, tk.ReadyTime)
	}

	tk.Admit(5)
	if tk.Status != StatusRunning || !tk.HasStart || tk.Start != 5 {
		t.Fatalf("expected RUNNING with start=5, got %v start=%d hasStart=%v", tk.Status, tk.Start, tk.HasStart)
	}

	tk.AccumulateRuntime(9)
	if tk.Runtime != 4 {
		t.Fatalf("expected runtime=4, got %d", tk.Runtime)
	}
	tk.Preempt()
	if tk.Status != StatusPreempted {
		t.Fatalf("expected PREEMPTED, got %v", tk.Status)
	}

	tk.MarkReady(9)
	tk.Admit(12)
	if tk.Start != 5 {
		t.Fatalf("expected Start to remain at first admission (5), got %d", tk.Start)
	}

	tk.AccumulateRuntime(18)
	if tk.Runtime != 10 {
		t.Fatalf("expected total runtime=10 after resumed execution, got %d", tk.Runtime)
	}
	tk.Finish(18)
	if !tk.IsTerminal() || tk.End != 18 {
		t.Fatalf("expected FINISHED at end=18, got %v end=%d", tk.Status, tk.End)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tk, _ := New("u1", Spec{Label: "A", Duration: 5, Dependencies: []string{"B"}})
	clone := tk.Clone()
	clone.Status = StatusFinished
	delete(clone.Dependencies, "B")

	if tk.Status == StatusFinished {
		t.Fatal("mutating clone status leaked into original")
	}
	if _, ok := tk.Dependencies["B"]; !ok {
		t.Fatal("mutating clone dependencies leaked into original")
	}
}
