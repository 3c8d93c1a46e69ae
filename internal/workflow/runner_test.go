package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/analytics"
	"finsight/internal/narrative"
)

func statementCSV() string {
	return strings.Join([]string{
		"Date,Description,Amount,Category,Account",
		"2024-01-05,Product sales,5000,Revenue,Checking",
		"2024-01-10,Office rent,-2000,Rent,Checking",
		"2024-02-05,Product sales,8000,Revenue,Checking",
		"2024-02-10,Office rent,-2000,Rent,Checking",
		"2024-02-12,Contractor payment,-1500,Contractors,Checking",
		"2024-02-20,New laptop,-2500,Plant & Equipment,Checking",
	}, "\n")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerSuccess(t *testing.T) {
	t.Parallel()

	runner := NewRunner(Options{Logger: discardLogger()})
	state, report := runner.Run(context.Background(), StatementSource{
		Name:   "statement.csv",
		Reader: strings.NewReader(statementCSV()),
	})

	assert.Empty(t, state.ErrorMessage)
	assert.Equal(t, RunStatusCompleted, report.Status)
	require.NotNil(t, report.EndTime)

	for _, id := range report.Order {
		assert.Equal(t, StageStatusCompleted, report.Stage(id).CurrentStatus(), id)
	}

	require.Len(t, state.Transactions, 6)
	require.Len(t, state.Comparisons, 4)
	require.Len(t, state.Series, 4)
	require.Len(t, state.RootCauses, 4)

	d := state.Dashboard
	assert.Empty(t, d.Error)
	assert.Equal(t, 6, d.Summary.TotalTransactions)
	assert.Equal(t, "2024-02", d.Summary.CurrentPeriod)
	assert.Equal(t, "2024-01", d.Summary.PreviousPeriod)
	assert.Len(t, d.Tiles, 4)
	assert.Len(t, d.TimeSeries, 4)
	assert.Len(t, d.RootCause, 4)
	assert.Len(t, d.Narratives, 4)
	assert.Len(t, d.Advice, 4)
	assert.NotEmpty(t, d.Insights.OverallBusinessStory)

	rev := d.Tiles["revenue"]
	assert.InDelta(t, 8000, rev.Current, 1e-9)
	assert.InDelta(t, 5000, rev.Previous, 1e-9)
}

func TestRunnerCanonicalMergeOrder(t *testing.T) {
	t.Parallel()

	runner := NewRunner(Options{Logger: discardLogger(), Concurrency: 4})
	state, _ := runner.Run(context.Background(), StatementSource{
		Name:   "statement.csv",
		Reader: strings.NewReader(statementCSV()),
	})

	want := analytics.Metrics()
	require.Len(t, state.Comparisons, len(want))
	for i, m := range want {
		assert.Equal(t, m, state.Comparisons[i].Metric)
		assert.Equal(t, m, state.Series[i].Metric)
		assert.Equal(t, m, state.RootCauses[i].Metric)
	}
}

func TestRunnerIngestFailure(t *testing.T) {
	t.Parallel()

	runner := NewRunner(Options{Logger: discardLogger()})
	state, report := runner.Run(context.Background(), StatementSource{
		Name:   "empty.csv",
		Reader: strings.NewReader(""),
	})

	assert.Equal(t, RunStatusFailed, report.Status)
	assert.Contains(t, state.ErrorMessage, "Data ingestion failed:")

	assert.Equal(t, StageStatusFailed, report.Stage(StageIDIngest).CurrentStatus())
	for _, id := range report.Order[1:] {
		assert.Equal(t, StageStatusSkipped, report.Stage(id).CurrentStatus(), id)
	}

	assert.Equal(t, state.ErrorMessage, state.Dashboard.Error)
	assert.Empty(t, state.Dashboard.Tiles)
}

type failingStoryteller struct{}

func (failingStoryteller) Tell(context.Context, []analytics.RootCauseAnalysis, []string, []string) (narrative.Set, string, error) {
	return nil, "", fmt.Errorf("model unavailable")
}

func TestRunnerMidRunFailureSkipsRemainder(t *testing.T) {
	t.Parallel()

	runner := NewRunner(Options{Logger: discardLogger(), Storyteller: failingStoryteller{}})
	state, report := runner.Run(context.Background(), StatementSource{
		Name:   "statement.csv",
		Reader: strings.NewReader(statementCSV()),
	})

	assert.Equal(t, RunStatusFailed, report.Status)
	assert.Contains(t, state.ErrorMessage, "Narrative generation failed:")
	assert.Contains(t, state.ErrorMessage, "model unavailable")

	assert.Equal(t, StageStatusCompleted, report.Stage(StageIDRootCause).CurrentStatus())
	assert.Equal(t, StageStatusFailed, report.Stage(StageIDNarratives).CurrentStatus())
	assert.Equal(t, StageStatusSkipped, report.Stage(StageIDRecommendations).CurrentStatus())
	assert.Equal(t, StageStatusSkipped, report.Stage(StageIDDashboard).CurrentStatus())

	// Earlier results survive on the state even though the run failed.
	assert.Len(t, state.RootCauses, 4)
	assert.Equal(t, state.ErrorMessage, state.Dashboard.Error)
}

func TestRunnerCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(Options{Logger: discardLogger()})
	state, report := runner.Run(ctx, StatementSource{
		Name:   "statement.csv",
		Reader: strings.NewReader(statementCSV()),
	})

	assert.Equal(t, RunStatusFailed, report.Status)
	assert.Contains(t, state.ErrorMessage, "run cancelled")
	assert.Equal(t, StageStatusFailed, report.Stage(StageIDIngest).CurrentStatus())
	for _, id := range report.Order[1:] {
		assert.Equal(t, StageStatusSkipped, report.Stage(id).CurrentStatus(), id)
	}
}

func TestRunnerRunIDsAreUnique(t *testing.T) {
	t.Parallel()

	runner := NewRunner(Options{Logger: discardLogger()})
	_, first := runner.Run(context.Background(), StatementSource{Name: "a.csv", Reader: strings.NewReader(statementCSV())})
	_, second := runner.Run(context.Background(), StatementSource{Name: "b.csv", Reader: strings.NewReader(statementCSV())})

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
}
