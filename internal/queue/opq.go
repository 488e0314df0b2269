// Package queue implements OrderedPriorityQueue, a stable
// multilevel priority queue: Put appends to the FIFO bucket for a
// priority level, Get pops from the head of the highest present
// priority level. Items at equal priority come back out in the order
// they were put in — a bare container/heap does not guarantee that,
// which is why this is a bucketed FIFO-of-FIFOs instead.
package queue

import (
	"sort"

	"github.com/lmeninato/dagsched/internal/schederr"
)

// OrderedPriorityQueue is a mapping from priority to a FIFO of items.
// The zero value is not usable; use New.
type OrderedPriorityQueue[T any] struct {
	buckets map[int][]T
	// keys tracks priority levels with at least one item, kept sorted
	// descending so Get/Peek find the max at keys[0].
	keys []int
}

// New returns an empty OrderedPriorityQueue.
func New[T any]() *OrderedPriorityQueue[T] {
	return &OrderedPriorityQueue[T]{buckets: make(map[int][]T)}
}

// Put appends item to the tail of the FIFO for priority p.
func (q *OrderedPriorityQueue[T]) Put(item T, p int) {
	if _, ok := q.buckets[p]; !ok {
		q.insertKey(p)
	}
	q.buckets[p] = append(q.buckets[p], item)
}

// Get removes and returns the first-inserted item under the highest
// present priority. Returns schederr.ErrQueueEmpty if the queue holds
// no items.
func (q *OrderedPriorityQueue[T]) Get() (T, error) {
	var zero T
	if len(q.keys) == 0 {
		return zero, schederr.ErrQueueEmpty
	}
	top := q.keys[0]
	bucket := q.buckets[top]
	item := bucket[0]
	if len(bucket) == 1 {
		delete(q.buckets, top)
		q.keys = q.keys[1:]
	} else {
		q.buckets[top] = bucket[1:]
	}
	return item, nil
}

// Peek is the non-destructive variant of Get.
func (q *OrderedPriorityQueue[T]) Peek() (T, error) {
	var zero T
	if len(q.keys) == 0 {
		return zero, schederr.ErrQueueEmpty
	}
	top := q.keys[0]
	return q.buckets[top][0], nil
}

// Size returns the total number of items across all priority levels.
func (q *OrderedPriorityQueue[T]) Size() int {
	n := 0
	for _, b := range q.buckets {
		n += len(b)
	}
	return n
}

// Empty reports whether the queue holds no items.
func (q *OrderedPriorityQueue[T]) Empty() bool {
	return len(q.keys) == 0
}

// insertKey inserts p into keys, keeping the slice sorted descending.
func (q *OrderedPriorityQueue[T]) insertKey(p int) {
	i := sort.Search(len(q.keys), func(i int) bool { return q.keys[i] <= p })
	q.keys = append(q.keys, 0)
	copy(q.keys[i+1:], q.keys[i:])
	q.keys[i] = p
}
