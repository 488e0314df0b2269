package specfile

import (
	"os"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"

	"github.com/lmeninato/dagsched/internal/cluster"
	"github.com/lmeninato/dagsched/internal/dag"
	"github.com/lmeninato/dagsched/internal/schederr"
	"github.com/lmeninato/dagsched/internal/task"
)

// Load reads and parses a Document from the YAML file at path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "specfile: reading %s", path)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "specfile: parsing %s", path)
	}
	return &doc, nil
}

// Users returns the document's user keys in deterministic (sorted)
// order, the `users_list` a scheduler is constructed with.
func (d *Document) Users() []string {
	keys := make([]string, 0, len(d.Users))
	for k := range d.Users {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildCluster converts the document's ClusterSpec into a
// cluster.Cluster, applying spec.md's positive-capacity invariant.
func (d *Document) BuildCluster() (*cluster.Cluster, error) {
	if d.Cluster.CPUs <= 0 || d.Cluster.RAM <= 0 {
		return nil, schederr.NewMalformedSpecError("", "", "cluster cpus and ram must be positive integers")
	}
	return cluster.New(d.Cluster.CPUs, d.Cluster.RAM), nil
}

// BuildDAGs converts every user entry named in order into a dag.DAG,
// namespacing tasks by user key. Fails with a MalformedSpecError on
// the first invalid user/task definition.
func (d *Document) BuildDAGs(order []string) (map[string]*dag.DAG, error) {
	dags := make(map[string]*dag.DAG, len(order))
	for _, user := range order {
		entry, ok := d.Users[user]
		if !ok {
			return nil, schederr.NewMalformedSpecError(user, "", "no such user in document")
		}
		specTasks := make(map[string]task.Spec, len(entry.Tasks))
		taskOrder := make([]string, 0, len(entry.Tasks))
		for label := range entry.Tasks {
			taskOrder = append(taskOrder, label)
		}
		sort.Strings(taskOrder)
		for _, label := range taskOrder {
			ts := entry.Tasks[label]
			spec := task.Spec{
				Label:        firstNonEmpty(ts.Label, label),
				Duration:     ts.Duration,
				CPUs:         ts.CPUs,
				RAM:          ts.RAM,
				Dependencies: ts.Dependencies,
			}
			if ts.Priority != nil {
				spec.Priority = *ts.Priority
				spec.HasPriority = true
			}
			specTasks[label] = spec
		}

		built, err := dag.New(dag.UserSpec{
			User:        user,
			Name:        entry.Name,
			ArrivalTime: entry.ArrivalTime,
			Tasks:       specTasks,
			Order:       taskOrder,
		})
		if err != nil {
			return nil, err
		}
		dags[user] = built
	}
	return dags, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// LoadSnapshot reads and parses a SnapshotDocument from the YAML (or
// JSON, a subset of YAML) file at path — the `deserialize=true`
// construction path.
func LoadSnapshot(path string) (*SnapshotDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "specfile: reading snapshot %s", path)
	}
	var doc SnapshotDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "specfile: parsing snapshot %s", path)
	}
	return &doc, nil
}

// BuildCluster converts the snapshot document's ClusterSpec into a
// cluster.Cluster, the same validation Document.BuildCluster applies.
func (sd *SnapshotDocument) BuildCluster() (*cluster.Cluster, error) {
	if sd.Cluster.CPUs <= 0 || sd.Cluster.RAM <= 0 {
		return nil, schederr.NewMalformedSpecError("", "", "cluster cpus and ram must be positive integers")
	}
	return cluster.New(sd.Cluster.CPUs, sd.Cluster.RAM), nil
}

// Users returns every snapshotted user key, in sorted order.
func (sd *SnapshotDocument) Users() []string {
	users := make([]string, 0, len(sd.DAGs))
	for _, snap := range sd.DAGs {
		users = append(users, snap.User)
	}
	sort.Strings(users)
	return users
}

// BuildDAGs re-hydrates every snapshotted user's DAG, restoring node
// count, edge set, and task statuses exactly as recorded — the
// round-trip counterpart to Document.BuildDAGs.
func (sd *SnapshotDocument) BuildDAGs() (map[string]*dag.DAG, error) {
	dags := make(map[string]*dag.DAG, len(sd.DAGs))
	for _, snap := range sd.DAGs {
		d, err := BuildDAGFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		dags[snap.User] = d
	}
	return dags, nil
}

// BuildDAGFromSnapshot rebuilds one user's DAG from a Snapshot: tasks
// from Nodes, dependencies from Edges, then restores each task's
// recorded Status (and Start/End/HasStart, once it has first run) in
// place. dag.New cannot do this itself — Snapshot's edges are a
// separate list rather than per-node Dependencies — so the dependency
// map is assembled here before delegating to dag.New for the same
// validation (unknown dependency, cycle) a fresh spec gets.
func BuildDAGFromSnapshot(snap Snapshot) (*dag.DAG, error) {
	deps := make(map[string][]string, len(snap.Nodes))
	for _, e := range snap.Edges {
		deps[e.To] = append(deps[e.To], e.From)
	}

	specTasks := make(map[string]task.Spec, len(snap.Nodes))
	order := make([]string, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		spec := task.Spec{
			Label:        n.Label,
			Duration:     n.Duration,
			CPUs:         n.CPUs,
			RAM:          n.RAM,
			Dependencies: deps[n.Label],
		}
		if n.Priority != nil {
			spec.Priority = *n.Priority
			spec.HasPriority = true
		}
		specTasks[n.Label] = spec
		order = append(order, n.Label)
	}

	d, err := dag.New(dag.UserSpec{
		User:        snap.User,
		Name:        snap.Name,
		ArrivalTime: snap.ArrivalTime,
		Tasks:       specTasks,
		Order:       order,
	})
	if err != nil {
		return nil, err
	}

	for _, n := range snap.Nodes {
		tk, ok := d.Task(n.Label)
		if !ok {
			continue
		}
		status, err := task.ParseStatus(n.Status)
		if err != nil {
			return nil, schederr.NewMalformedSpecError(snap.User, n.Label, err.Error())
		}
		tk.Status = status
		tk.Start = n.Start
		tk.End = n.End
		tk.HasStart = n.HasStart
	}

	return d, nil
}

// SnapshotFromDAG is BuildDAGFromSnapshot's inverse: it flattens a DAG's
// tasks and dependency edges into a Snapshot capturing exactly the state
// the round-trip law requires (node count, edge set, task statuses),
// ready to be written out and later re-hydrated.
func SnapshotFromDAG(d *dag.DAG) Snapshot {
	labels := d.Labels()
	nodes := make([]SnapshotNode, 0, len(labels))
	for _, label := range labels {
		t, _ := d.Task(label)
		node := SnapshotNode{
			Label:    t.Label,
			Duration: t.Duration,
			CPUs:     t.CPUs,
			RAM:      t.RAM,
			Status:   t.Status.String(),
			Start:    t.Start,
			End:      t.End,
			HasStart: t.HasStart,
		}
		if t.HasPriority {
			p := t.Priority
			node.Priority = &p
		}
		nodes = append(nodes, node)
	}

	edges := d.Edges()
	snapEdges := make([]SnapshotEdge, 0, len(edges))
	for _, e := range edges {
		snapEdges = append(snapEdges, SnapshotEdge{From: e.From, To: e.To})
	}

	return Snapshot{
		User:        d.User,
		Name:        d.Name,
		ArrivalTime: d.ArrivalTime,
		Nodes:       nodes,
		Edges:       snapEdges,
	}
}
