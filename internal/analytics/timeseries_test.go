package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multiMonthFixture() []Transaction {
	txns := januaryFixture()
	txns = append(txns,
		txn("2024-02-10", "Product sales", 10000, "revenue/sales", "Trading"),
		txn("2024-02-12", "Office rent", -1200, "rent expenses", "Operating"),
		// March is absent: the series must skip it, not gap-fill.
		txn("2024-04-05", "Product sales", 6000, "revenue/sales", "Trading"),
		txn("2024-04-20", "Utilities", -400, "utilities", "Operating"),
	)
	return txns
}

func TestGenerateTimeSeries(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("alignment invariant", func(t *testing.T) {
		ts := engine.GenerateTimeSeries(multiMonthFixture(), DefaultWindowMonths)

		n := ts.Len()
		require.Equal(t, 3, n)
		assert.Len(t, ts.Revenue, n)
		assert.Len(t, ts.Expenses, n)
		assert.Len(t, ts.Profitability, n)
		assert.Len(t, ts.CashFlow, n)
		assert.Len(t, ts.FreeCashFlow, n)
		assert.Len(t, ts.RevenuePctChanges, n)
		assert.Len(t, ts.ExpensesPctChanges, n)
		assert.Len(t, ts.ProfitabilityPctChanges, n)
		assert.Len(t, ts.CashFlowPctChanges, n)
	})

	t.Run("chronological present months only", func(t *testing.T) {
		ts := engine.GenerateTimeSeries(multiMonthFixture(), DefaultWindowMonths)
		assert.Equal(t, []string{"2024-01", "2024-02", "2024-04"}, ts.Dates)
	})

	t.Run("percent change references preceding present month", func(t *testing.T) {
		ts := engine.GenerateTimeSeries(multiMonthFixture(), DefaultWindowMonths)

		// First month in the window has no reference.
		assert.Zero(t, ts.RevenuePctChanges[0])
		// February vs January: 10000 vs 8000.
		assert.InDelta(t, 25.0, ts.RevenuePctChanges[1], 1e-9)
		// April references February across the March gap: 6000 vs 10000.
		assert.InDelta(t, -40.0, ts.RevenuePctChanges[2], 1e-9)
	})

	t.Run("trailing window truncation", func(t *testing.T) {
		ts := engine.GenerateTimeSeries(multiMonthFixture(), 2)
		assert.Equal(t, []string{"2024-02", "2024-04"}, ts.Dates)
		// The truncated window still has no reference for its first entry.
		assert.Zero(t, ts.RevenuePctChanges[0])
	})

	t.Run("empty input yields empty aligned series", func(t *testing.T) {
		ts := engine.GenerateTimeSeries(nil, DashboardWindowMonths)
		assert.Zero(t, ts.Len())
		assert.Empty(t, ts.Revenue)
	})
}

func TestMetricSeries(t *testing.T) {
	engine := newTestEngine(t)
	ms := engine.MetricSeries(multiMonthFixture(), MetricExpenses, DefaultWindowMonths)

	assert.Equal(t, MetricExpenses, ms.Metric)
	require.Len(t, ms.Values, 3)
	assert.InDelta(t, 4000.0, ms.Values[0], 1e-9)
	assert.InDelta(t, 1200.0, ms.Values[1], 1e-9)
	assert.InDelta(t, 400.0, ms.Values[2], 1e-9)
	assert.Len(t, ms.PctChanges, len(ms.Values))
}
