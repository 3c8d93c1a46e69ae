package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finsight/internal/analytics"
	"finsight/internal/ingest"
	"finsight/internal/narrative"
)

// Options configures a Runner. Zero-valued collaborators fall back to the
// offline defaults: rule-based categorization and static narratives.
type Options struct {
	Engine       *analytics.Engine
	Categorizer  ingest.Categorizer
	Storyteller  narrative.Storyteller
	Advisor      narrative.Advisor
	WindowMonths int
	Concurrency  int
	Logger       *slog.Logger
}

// Runner executes the analysis workflow: ingest, categorize, the fanned-out
// metric stages, narratives, recommendations, and dashboard assembly. Any
// stage failure routes the run to the error terminal; the remaining stages
// are skipped and the dashboard carries only the error.
type Runner struct {
	stages []Stage
	logger *slog.Logger
	tracer *runTracer
}

// NewRunner builds a runner with the standard stage order.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	engine := opts.Engine
	if engine == nil {
		engine = analytics.NewEngine(analytics.DefaultCategoryRules(), logger)
	}
	categorizer := opts.Categorizer
	if categorizer == nil {
		categorizer = ingest.NewRuleCategorizer(nil)
	}
	storyteller := opts.Storyteller
	if storyteller == nil {
		storyteller = narrative.StaticStoryteller{}
	}
	advisor := opts.Advisor
	if advisor == nil {
		advisor = narrative.StaticAdvisor{}
	}

	return &Runner{
		stages: []Stage{
			IngestStage{},
			CategorizeStage{Categorizer: categorizer},
			MetricsStage{Engine: engine, Concurrency: opts.Concurrency},
			SeriesStage{Engine: engine, WindowMonths: opts.WindowMonths, Concurrency: opts.Concurrency},
			RootCauseStage{Engine: engine, Concurrency: opts.Concurrency},
			NarrativeStage{Storyteller: storyteller},
			AdviceStage{Advisor: advisor},
			AssembleStage{},
		},
		logger: logger,
		tracer: newRunTracer(),
	}
}

// Stages returns the runner's stage order.
func (r *Runner) Stages() []Stage {
	return r.stages
}

// Run executes the workflow over one statement source. It never returns an
// error: failures are recorded on the state's ErrorMessage, the report's
// stage states, and the error dashboard.
func (r *Runner) Run(ctx context.Context, src StatementSource) (State, *Report) {
	runID := uuid.NewString()
	state := State{
		RunID:     runID,
		Source:    src,
		StartedAt: time.Now().UTC(),
	}

	report := &Report{
		RunID:     runID,
		Status:    RunStatusRunning,
		StartTime: state.StartedAt,
		Stages:    make(map[string]*StageState, len(r.stages)),
	}
	for _, stage := range r.stages {
		report.Stages[stage.ID()] = NewStageState(stage.ID(), stage.Name())
		report.Order = append(report.Order, stage.ID())
	}

	ctx, runSpan := r.tracer.startRun(ctx, runID, src.Name)
	r.logger.InfoContext(ctx, "workflow run started",
		slog.String("run_id", runID),
		slog.String("source", src.Name))

	for _, stage := range r.stages {
		ss := report.Stages[stage.ID()]

		if state.ErrorMessage != "" {
			ss.Skip("previous stage failed")
			continue
		}
		if err := ctx.Err(); err != nil {
			cancelErr := NewCancellationError(stage.ID())
			ss.Fail(cancelErr)
			state.ErrorMessage = stageFailure(stage, cancelErr)
			continue
		}

		ss.Start()
		stageCtx, span := r.tracer.startStage(ctx, runID, stage.ID())
		next, err := stage.Run(stageCtx, state)
		endStage(span, err)

		if err != nil {
			ss.Fail(err)
			state.ErrorMessage = stageFailure(stage, err)
			r.logger.ErrorContext(ctx, "workflow stage failed",
				slog.String("run_id", runID),
				slog.String("stage", stage.ID()),
				slog.String("error", err.Error()))
			continue
		}

		state = next
		ss.Complete()
		r.logger.DebugContext(ctx, "workflow stage completed",
			slog.String("run_id", runID),
			slog.String("stage", stage.ID()))
	}

	failed := state.ErrorMessage != ""
	if failed {
		state.Dashboard = errorDashboard(state.ErrorMessage)
	}
	report.finish(failed)
	endRun(runSpan, failed, state.ErrorMessage)

	r.logger.InfoContext(ctx, "workflow run finished",
		slog.String("run_id", runID),
		slog.String("status", string(report.Status)),
		slog.Duration("duration", report.Duration()))

	return state, report
}

func stageFailure(stage Stage, err error) string {
	return fmt.Sprintf("%s failed: %v", stage.Name(), err)
}
