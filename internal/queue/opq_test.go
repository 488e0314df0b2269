package queue

import "testing"

func TestFIFOWithinBucket(t *testing.T) {
	q := New[string]()
	q.Put("a", 1)
	q.Put("b", 1)
	q.Put("c", 1)

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Get()
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestHigherPriorityFirst(t *testing.T) {
	q := New[string]()
	q.Put("low", 1)
	q.Put("high", 5)
	q.Put("mid", 3)

	want := []string{"high", "mid", "low"}
	for _, w := range want {
		got, err := q.Get()
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != w {
			t.Fatalf("expected %s, got %s", w, got)
		}
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := New[int]()
	q.Put(42, 0)
	if v, err := q.Peek(); err != nil || v != 42 {
		t.Fatalf("Peek: v=%d err=%v", v, err)
	}
	if q.Size() != 1 {
		t.Fatalf("expected size 1 after Peek, got %d", q.Size())
	}
}

func TestEmptyQueueErrors(t *testing.T) {
	q := New[int]()
	if !q.Empty() {
		t.Fatal("expected new queue to be empty")
	}
	if _, err := q.Get(); err == nil {
		t.Fatal("expected error on Get from empty queue")
	}
	if _, err := q.Peek(); err == nil {
		t.Fatal("expected error on Peek from empty queue")
	}
}

func TestInterleavedPriorities(t *testing.T) {
	q := New[string]()
	q.Put("a1", 1)
	q.Put("b5", 5)
	q.Put("a2", 1)
	q.Put("b6", 5)

	want := []string{"b5", "b6", "a1", "a2"}
	for _, w := range want {
		got, err := q.Get()
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != w {
			t.Fatalf("expected %s, got %s", w, got)
		}
	}
}
