package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"pqueue/internal/preflight"
	"pqueue/internal/queue"
)

var errUnhealthy = errors.New("queue health check failed")

type healthCheckView struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

type healthView struct {
	Healthy        bool              `json:"healthy"`
	Driver         string            `json:"driver"`
	Table          string            `json:"table"`
	Queue          string            `json:"queue"`
	DatabaseOK     bool              `json:"database_ok"`
	TableExists    bool              `json:"table_exists"`
	ColumnsPresent []string          `json:"columns_present"`
	MissingColumns []string          `json:"missing_columns"`
	IntegrityCheck bool              `json:"integrity_check"`
	Rows           int               `json:"rows"`
	Length         int               `json:"length"`
	Contiguous     bool              `json:"contiguous"`
	Cached         bool              `json:"cached"`
	MirrorLength   int               `json:"mirror_length,omitempty"`
	MirrorCoherent bool              `json:"mirror_coherent,omitempty"`
	Error          string            `json:"error,omitempty"`
	Checks         []healthCheckView `json:"checks"`
}

func newHealthView(h queue.Health, checks []preflight.Result) healthView {
	view := healthView{
		Healthy:        h.Healthy() && preflight.Passed(checks),
		Driver:         h.Driver,
		Table:          h.Table,
		Queue:          h.QueueID,
		DatabaseOK:     h.DatabaseOK,
		TableExists:    h.TableExists,
		ColumnsPresent: sortedCopy(h.ColumnsPresent),
		MissingColumns: sortedCopy(h.MissingColumns),
		IntegrityCheck: h.IntegrityCheck,
		Rows:           h.Rows,
		Length:         h.Length,
		Contiguous:     h.Contiguous,
		Cached:         h.Cached,
		MirrorLength:   h.MirrorLength,
		MirrorCoherent: h.MirrorCoherent,
		Error:          h.Error,
		Checks:         make([]healthCheckView, 0, len(checks)),
	}
	for _, c := range checks {
		view.Checks = append(view.Checks, healthCheckView(c))
	}
	return view
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check queue table health (schema, integrity, index contiguity)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checks := preflight.RunAll(cfg)

			return ctx.withQueue(cmd, false, func(c context.Context, q *queue.Queue) error {
				health, _ := q.Health(c)
				view := newHealthView(health, checks)
				if ctx.JSONMode() {
					if err := writeJSON(cmd, view); err != nil {
						return err
					}
				} else {
					renderHealth(cmd, view)
				}
				if !view.Healthy {
					return errUnhealthy
				}
				return nil
			})
		},
	}
}

func renderHealth(cmd *cobra.Command, view healthView) {
	w := newStatusWriter(cmd.OutOrStdout())

	w.section("Queue")
	w.line("Queue", statusInfo, view.Queue)
	w.line("Driver", statusInfo, view.Driver)
	w.check("Database", view.DatabaseOK, statusError, "reachable: "+yesNo(view.DatabaseOK))
	w.check("Table", view.TableExists, statusError, fmt.Sprintf("%s present: %s", view.Table, yesNo(view.TableExists)))
	w.line("Columns", statusInfo, joinOrNone(view.ColumnsPresent))
	w.check("Missing columns", len(view.MissingColumns) == 0, statusError, joinOrNone(view.MissingColumns))
	w.check("Integrity check", view.IntegrityCheck, statusError, yesNo(view.IntegrityCheck))
	w.check("Indices", view.Contiguous, statusWarn, fmt.Sprintf("%d row(s), length %d", view.Rows, view.Length))
	if view.Cached {
		w.check("Mirror", view.MirrorCoherent, statusWarn, fmt.Sprintf("%d value(s)", view.MirrorLength))
	}
	if view.Error != "" {
		w.line("Error", statusError, view.Error)
	}

	if len(view.Checks) == 0 {
		return
	}
	fmt.Fprintln(w.out)
	w.section("Filesystem")
	for _, c := range view.Checks {
		w.check(c.Name, c.Passed, statusError, c.Detail)
	}
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func sortedCopy(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}
