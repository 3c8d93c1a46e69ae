package workflow

import (
	"io"
	"sync"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/narrative"
)

// StatementSource is the raw input handed to the ingest stage: a statement
// stream plus its file name, which selects the CSV or XLSX reader.
type StatementSource struct {
	Name   string
	Reader io.Reader
}

// State is the immutable payload threaded through the workflow. Each stage
// is a pure reducer: it receives the state by value and returns a new one
// with its own output slots filled in; nothing is mutated in place across
// stage boundaries. Once ErrorMessage is non-empty, remaining stages are
// skipped and the run terminates in the error state.
//
// The per-metric slices are always in canonical merge order (cash flow,
// revenue, expenses, profitability), independent of task completion order.
type State struct {
	RunID     string
	Source    StatementSource
	StartedAt time.Time

	Transactions []analytics.Transaction
	Issues       []string

	Comparisons []analytics.MetricComparison
	Series      []analytics.MetricSeries
	RootCauses  []analytics.RootCauseAnalysis

	Insights        []string
	PriorityActions []string

	Narratives   narrative.Set
	OverallStory string
	Advice       narrative.Advice

	Dashboard    Dashboard
	ErrorMessage string
}

// StageStatus is the lifecycle of a single stage within a run.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
)

// StageState tracks the runtime progress of one stage. Unlike State it is
// bookkeeping, not payload: it never feeds back into the computation.
type StageState struct {
	mu        sync.RWMutex
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Status    StageStatus `json:"status"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// NewStageState creates a pending stage state.
func NewStageState(id, name string) *StageState {
	return &StageState{ID: id, Name: name, Status: StageStatusPending}
}

// Start marks the stage active.
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StageStatusActive
}

// Complete marks the stage finished successfully.
func (s *StageState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusCompleted
}

// Fail marks the stage failed with the given error.
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusFailed
	s.Message = err.Error()
}

// Skip marks the stage skipped with a reason.
func (s *StageState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StageStatusSkipped
	s.Message = reason
}

// CurrentStatus returns the stage status under the read lock.
func (s *StageState) CurrentStatus() StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// RunStatus is the overall status of a workflow run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Report is the bookkeeping record for one workflow run: per-stage states
// plus overall timing. It is returned alongside the final State so callers
// can log or expose run progress without touching the payload.
type Report struct {
	RunID     string                 `json:"run_id"`
	Status    RunStatus              `json:"status"`
	StartTime time.Time              `json:"start_time"`
	EndTime   *time.Time             `json:"end_time,omitempty"`
	Stages    map[string]*StageState `json:"stages"`
	Order     []string               `json:"stage_order"`
}

// Stage returns the state for a stage ID, or nil if unknown.
func (r *Report) Stage(id string) *StageState {
	return r.Stages[id]
}

// Duration returns how long the run took, or has been running.
func (r *Report) Duration() time.Duration {
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

func (r *Report) finish(failed bool) {
	now := time.Now()
	r.EndTime = &now
	if failed {
		r.Status = RunStatusFailed
	} else {
		r.Status = RunStatusCompleted
	}
}
