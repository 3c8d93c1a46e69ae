// Package workflow orchestrates the statement-to-dashboard analysis run as
// a fixed sequence of stages with per-metric fan-out.
//
// A run flows through ingest, categorization, metric comparison, time
// series generation, root-cause analysis, narrative generation,
// recommendations, and dashboard assembly. Stages are pure reducers over
// an immutable State; the Runner owns sequencing, per-stage bookkeeping,
// tracing, and the error terminal. The metric-parallel stages fan out over
// the four headline metrics with bounded concurrency and fan results back
// in in canonical order, so output is deterministic regardless of task
// scheduling.
//
// Usage:
//
//	runner := workflow.NewRunner(workflow.Options{Logger: logger})
//	state, report := runner.Run(ctx, workflow.StatementSource{
//		Name:   "statement.csv",
//		Reader: file,
//	})
//	if state.ErrorMessage != "" {
//		// state.Dashboard carries only the error
//	}
package workflow
