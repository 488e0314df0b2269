package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lmeninato/dagsched/internal/cluster"
	"github.com/lmeninato/dagsched/internal/config"
	"github.com/lmeninato/dagsched/internal/dag"
	"github.com/lmeninato/dagsched/internal/history"
	"github.com/lmeninato/dagsched/internal/logger"
	"github.com/lmeninato/dagsched/internal/metrics"
	"github.com/lmeninato/dagsched/internal/scheduler"
	"github.com/lmeninato/dagsched/internal/specfile"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [spec-file]",
		Short: "Run a cluster scheduling simulation against a YAML spec file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v.Set("spec-file", args[0])
			return runSimulation(cmd.Context(), v)
		},
	}
	cmd.Flags().String("policy", "fcfs", fmt.Sprintf("scheduling policy: one of %s", strings.Join(scheduler.Names(), ", ")))
	cmd.Flags().String("history-json", "", "if set, write the full recorded history to this file as JSON")
	cmd.Flags().Bool("deserialize", false, "read spec-file as a recorded Snapshot document instead of an original spec file")
	bindViper(v, cmd, "policy", "history-json", "deserialize")
	return cmd
}

func runSimulation(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.New(loggerOpts(cfg)...).With(zap.String("run_id", runID))
	defer func() { _ = log.Sync() }()

	var (
		cl    *cluster.Cluster
		users []string
		dags  map[string]*dag.DAG
	)
	if cfg.Deserialize {
		sd, err := specfile.LoadSnapshot(cfg.SpecFile)
		if err != nil {
			return err
		}
		cl, err = sd.BuildCluster()
		if err != nil {
			return err
		}
		users = sd.Users()
		dags, err = sd.BuildDAGs()
		if err != nil {
			return err
		}
	} else {
		doc, err := specfile.Load(cfg.SpecFile)
		if err != nil {
			return err
		}
		cl, err = doc.BuildCluster()
		if err != nil {
			return err
		}
		users = doc.Users()
		dags, err = doc.BuildDAGs(users)
		if err != nil {
			return err
		}
	}
	policy, err := scheduler.ByName(cfg.Policy)
	if err != nil {
		return err
	}

	core, err := scheduler.NewCore(scheduler.Config{
		Cluster:      cl,
		DAGs:         dags,
		Order:        users,
		Policy:       policy,
		Logger:       log,
		Deserialized: cfg.Deserialize,
	})
	if err != nil {
		return err
	}

	outcome, err := core.Run(ctx)
	if err != nil {
		return err
	}

	log.Sugar().Infow("simulation finished",
		"policy", policy.Name(),
		"final_time", outcome.FinalTime,
		"deadlocked", outcome.Deadlocked,
		"rounds", core.History().Len(),
	)

	if cfg.HistoryJSON != "" {
		if err := writeHistoryJSON(core.History(), users, runID, cfg.HistoryJSON); err != nil {
			return err
		}
	}

	fmt.Printf("policy=%s final_time=%d deadlocked=%t rounds=%d\n",
		policy.Name(), outcome.FinalTime, outcome.Deadlocked, core.History().Len())
	for _, user := range users {
		fmt.Printf("  %s: makespan=%d\n", user, metrics.Sentinel(core.Metrics().LocalMakespan(user)))
	}
	return nil
}

func loggerOpts(cfg *config.Config) []logger.Option {
	var opts []logger.Option
	if cfg.Debug {
		opts = append(opts, logger.WithDebug())
	}
	opts = append(opts, logger.WithFormat(cfg.LogFormat))
	return opts
}

// reportEntry is the JSON-serializable projection of a history.Entry,
// the shape an external UI consumes via --history-json.
type reportEntry struct {
	Time        int            `json:"time"`
	Messages    []string       `json:"messages"`
	Utilization resourceReport       `json:"utilization"`
	Users       map[string]any `json:"users"`
}

type resourceReport struct {
	CPUs int `json:"cpus"`
	RAM  int `json:"ram"`
}

// historyReport is the JSON document written to --history-json: a
// run identifier for correlating with logs, plus one reportEntry per
// recorded round.
type historyReport struct {
	RunID   string        `json:"run_id"`
	Entries []reportEntry `json:"entries"`
}

func writeHistoryJSON(h *history.History, users []string, runID, path string) error {
	entries := make([]reportEntry, 0, h.Len())
	for _, t := range h.Times() {
		e, err := h.Get(t)
		if err != nil {
			return err
		}
		userReport := make(map[string]any, len(users))
		for _, user := range users {
			d, ok := e.DAGs[user]
			if !ok {
				continue
			}
			tasks := make(map[string]any, len(d.Labels()))
			for _, label := range d.Labels() {
				tk, _ := d.Task(label)
				tasks[label] = map[string]any{
					"status":    tk.Status.String(),
					"start":     tk.Start,
					"end":       tk.End,
					"has_start": tk.HasStart,
				}
			}
			userReport[user] = map[string]any{
				"tasks": tasks,
				"metrics": map[string]any{
					"local_makespan": metrics.Sentinel(e.Metrics.LocalMakespan(user)),
				},
			}
		}
		entries = append(entries, reportEntry{
			Time:        e.Time,
			Messages:    e.Messages,
			Utilization: resourceReport{CPUs: e.Utilization.CPUs, RAM: e.Utilization.RAM},
			Users:       userReport,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(historyReport{RunID: runID, Entries: entries})
}
