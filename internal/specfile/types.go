// Package specfile parses the declarative YAML configuration document
// (cluster capacity, per-user DAGs) into the core's domain types:
// cluster.Cluster and dag.DAG.
package specfile

// Document is the top-level shape accepted by Load: a cluster's
// capacity and a map of users, each owning one DAG.
type Document struct {
	Cluster ClusterSpec          `yaml:"cluster"`
	Users   map[string]UserEntry `yaml:"users"`
}

// ClusterSpec is the input shape of the cluster's fixed capacity.
type ClusterSpec struct {
	CPUs int `yaml:"cpus"`
	RAM  int `yaml:"ram"`
}

// UserEntry is one user's DAG as declared in the document: a display
// name, an arrival time, and a map of task label to TaskSpec.
type UserEntry struct {
	Name        string              `yaml:"name"`
	ArrivalTime int                 `yaml:"arrival_time"`
	Tasks       map[string]TaskSpec `yaml:"tasks"`
}

// TaskSpec is one task's declaration. Priority is a pointer so the
// loader can tell "absent" (policy-dependent default) apart from an
// explicit 0.
type TaskSpec struct {
	Label        string   `yaml:"label"`
	Duration     int      `yaml:"duration"`
	CPUs         int      `yaml:"cpus"`
	RAM          int      `yaml:"ram"`
	Priority     *int     `yaml:"priority"`
	Dependencies []string `yaml:"dependencies"`
}

// SnapshotDocument is the re-hydration counterpart of Document: a
// cluster spec plus every user's DAG as a flat Snapshot. It is the
// `deserialize=true` construction path (mirroring dagu's
// NewExecutionGraph vs NewExecutionGraphForRetry split): built from DAG
// snapshots (see SnapshotFromDAG) instead of from an original spec
// file, and fed back through BuildDAGs to resume inspecting a prior
// run without re-parsing the spec it came from. It is not the shape of
// the CLI's --history-json output.
type SnapshotDocument struct {
	Cluster ClusterSpec `yaml:"cluster" json:"cluster"`
	DAGs    []Snapshot  `yaml:"dags" json:"dags"`
}

// Snapshot is the re-hydration shape accepted when deserializing a
// previously-recorded DAG (the `deserialize=true` construction path):
// a flat node list plus explicit edges, the shape SnapshotFromDAG
// produces.
type Snapshot struct {
	User        string         `yaml:"user" json:"user"`
	Name        string         `yaml:"name" json:"name"`
	ArrivalTime int            `yaml:"arrival_time" json:"arrival_time"`
	Nodes       []SnapshotNode `yaml:"nodes" json:"nodes"`
	Edges       []SnapshotEdge `yaml:"edges" json:"edges"`
}

// SnapshotNode is one task's fields as recorded for replay: its
// declaration plus the execution state (Status, and — once it has
// first run — Start/End/HasStart) that BuildDAGs restores exactly, so
// a round trip through Snapshot preserves node count, edge set, and
// task statuses per the round-trip law.
type SnapshotNode struct {
	Label    string `yaml:"label" json:"label"`
	Duration int    `yaml:"duration" json:"duration"`
	CPUs     int    `yaml:"cpus" json:"cpus"`
	RAM      int    `yaml:"ram" json:"ram"`
	Priority *int   `yaml:"priority" json:"priority"`
	Status   string `yaml:"status" json:"status"`
	Start    int    `yaml:"start" json:"start"`
	End      int    `yaml:"end" json:"end"`
	HasStart bool   `yaml:"has_start" json:"has_start"`
}

// SnapshotEdge is one dependency edge (prerequisite -> dependent) by
// label, matching dag.Edge.
type SnapshotEdge struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}
