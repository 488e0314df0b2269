// Package schederr defines the error kinds surfaced by the simulation
// core: malformed input, empty-queue programming errors, and unrecorded
// history lookups. Runtime unsatisfiability (deadlock) is deliberately
// not an error here — it is a terminal state reported through
// scheduler.Outcome.
package schederr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrQueueEmpty is returned by OrderedPriorityQueue.Get/Peek when the
// queue holds no items. Callers are expected to check Size first;
// seeing this error indicates a programming bug, not bad input.
var ErrQueueEmpty = errors.New("queue: no items to dequeue")

// MalformedSpecError reports a structural problem with a task or DAG
// definition discovered at construction time: a missing required field
// or a dependency that names no task in the same DAG.
type MalformedSpecError struct {
	User   string
	Task   string
	Reason string
}

func (e *MalformedSpecError) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("malformed spec for user %q: %s", e.User, e.Reason)
	}
	return fmt.Sprintf("malformed spec for user %q task %q: %s", e.User, e.Task, e.Reason)
}

// NewMalformedSpecError wraps a Reason with the user/task it was found
// in, for construction-time aborts.
func NewMalformedSpecError(user, task, reason string) error {
	return errors.WithStack(&MalformedSpecError{User: user, Task: task, Reason: reason})
}

// TimeNotFoundError reports a history lookup for a time that was never
// recorded by History.Add.
type TimeNotFoundError struct {
	Time int
}

func (e *TimeNotFoundError) Error() string {
	return fmt.Sprintf("history: no snapshot recorded at t=%d", e.Time)
}

// NewTimeNotFoundError builds a TimeNotFoundError for t.
func NewTimeNotFoundError(t int) error {
	return errors.WithStack(&TimeNotFoundError{Time: t})
}
