package scheduler

import "fmt"

// ByName resolves a policy name (as accepted on the CLI's --policy
// flag) to a fresh Policy instance. Each call returns a new instance
// since policies are stateful (they own a ready-queue).
func ByName(name string) (Policy, error) {
	switch name {
	case "fcfs":
		return NewFCFS(), nil
	case "priority":
		return NewPriority(), nil
	case "preemptive-priority":
		return NewPreemptivePriority(), nil
	case "ssf":
		return NewSSF(), nil
	case "sjf":
		return NewSJF(), nil
	default:
		return nil, fmt.Errorf("scheduler: unknown policy %q", name)
	}
}

// Names lists every registered policy name, in CLI help/usage order.
func Names() []string {
	return []string{"fcfs", "priority", "preemptive-priority", "ssf", "sjf"}
}
