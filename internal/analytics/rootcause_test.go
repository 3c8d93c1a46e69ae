package analytics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoMonthFixture has January as the previous period and February as the
// current one. Rent and utilities are identical across both months, so they
// must never surface as factors.
func twoMonthFixture() []Transaction {
	txns := januaryFixture()
	txns = append(txns,
		txn("2024-02-10", "Product sales", 12000, "revenue/sales", "Trading"),
		txn("2024-02-03", "Office rent", -1200, "rent expenses", "Operating"),
		txn("2024-02-08", "Utilities", -300, "utilities", "Operating"),
	)
	return txns
}

func TestAnalyzeRootCauseRevenue(t *testing.T) {
	engine := newTestEngine(t)

	analysis, err := engine.AnalyzeRootCause(twoMonthFixture(), MetricRevenue)
	require.NoError(t, err)

	assert.Equal(t, MetricRevenue, analysis.Metric)
	assert.InDelta(t, 12000.0, analysis.CurrentValue, 1e-9)
	assert.InDelta(t, 8000.0, analysis.PreviousValue, 1e-9)
	assert.InDelta(t, 4000.0, analysis.TotalChange, 1e-9)
	assert.Equal(t, TrendIncreasing, analysis.TrendDirection)

	// Product sales moved 7000 against a 4000 total: the description factor
	// outranks the category and account factors (100% each).
	require.NotEmpty(t, analysis.TopFactors)
	top := analysis.TopFactors[0]
	assert.Equal(t, "Product sales", top.Name)
	assert.Equal(t, "Description (Top Contributor)", top.Type)
	assert.InDelta(t, 175.0, top.ImpactScore, 1e-9)
	assert.Equal(t, 1, top.Rank)

	// Tied impacts keep encounter order: category grouping runs before the
	// account grouping.
	require.GreaterOrEqual(t, len(analysis.TopFactors), 3)
	assert.Equal(t, "Category", analysis.TopFactors[1].Type)
	assert.Equal(t, "Account", analysis.TopFactors[2].Type)

	assert.NotEmpty(t, analysis.Summary)
	assert.Contains(t, analysis.Summary, "Revenue increased")
	assert.Contains(t, analysis.Recommendations, "Focus on scaling successful revenue streams.")
}

func TestFactorRetentionLaw(t *testing.T) {
	engine := newTestEngine(t)

	for _, m := range Metrics() {
		analysis, err := engine.AnalyzeRootCause(twoMonthFixture(), m)
		require.NoError(t, err)

		for _, f := range analysis.TopFactors {
			assert.Greater(t, abs(f.Change), noiseFloor,
				"metric %s carried a sub-threshold factor %q", m, f.Name)
			assert.NotEqual(t, "rent expenses", f.Name, "metric %s", m)
			assert.NotEqual(t, "utilities", f.Name, "metric %s", m)
		}
	}
}

func TestRankingLaw(t *testing.T) {
	engine := newTestEngine(t)

	// Enough shifting expense categories to overflow the factor cap.
	txns := januaryFixture()
	categories := []string{"advertising", "insurance", "travel", "software", "repairs", "freight", "training"}
	for i, cat := range categories {
		txns = append(txns, txn("2024-02-05", cat+" spend", -float64(100*(i+1)), cat, "Operating"))
	}

	analysis, err := engine.AnalyzeRootCause(txns, MetricExpenses)
	require.NoError(t, err)

	require.Len(t, analysis.TopFactors, topFactorLimit)
	for i, f := range analysis.TopFactors {
		assert.Equal(t, i+1, f.Rank)
		if i > 0 {
			assert.LessOrEqual(t, f.ImpactScore, analysis.TopFactors[i-1].ImpactScore)
		}
	}
}

func TestRankingDegenerateTotal(t *testing.T) {
	engine := newTestEngine(t)

	// Revenue total is unchanged month over month, but the mix shifted:
	// factors come back unscored in encounter order.
	txns := []Transaction{
		txn("2024-01-05", "Product sales", 3000, "revenue/sales", "Trading"),
		txn("2024-01-09", "Service income", 2000, "revenue/sales", "Trading"),
		txn("2024-02-05", "Product sales", 5000, "revenue/sales", "Trading"),
	}

	analysis, err := engine.AnalyzeRootCause(txns, MetricRevenue)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, analysis.TotalChange, 1e-9)
	assert.Equal(t, TrendStable, analysis.TrendDirection)

	require.NotEmpty(t, analysis.TopFactors)
	for _, f := range analysis.TopFactors {
		assert.Zero(t, f.ImpactScore)
		assert.Zero(t, f.Rank)
	}
}

func TestAnalyzeRootCauseProfitability(t *testing.T) {
	engine := newTestEngine(t)

	analysis, err := engine.AnalyzeRootCause(twoMonthFixture(), MetricProfitability)
	require.NoError(t, err)

	var sawRevenueSide, sawExpenseSide bool
	for _, f := range analysis.TopFactors {
		switch f.Type {
		case "Revenue - Category":
			sawRevenueSide = true
		case "Expense - Category":
			sawExpenseSide = true
			// Capex categories disappeared in February, so the raw expense
			// change is positive and the inverted contribution negative.
			assert.Negative(t, f.Change, "expense-side factor %q must have inverted sign", f.Name)
		}
	}
	assert.True(t, sawRevenueSide)
	assert.True(t, sawExpenseSide)
	assert.Contains(t, analysis.Summary, "Profitability improved")
}

func TestAnalyzeRootCauseCashFlow(t *testing.T) {
	engine := newTestEngine(t)

	analysis, err := engine.AnalyzeRootCause(twoMonthFixture(), MetricCashFlow)
	require.NoError(t, err)

	types := make(map[string]bool)
	names := make(map[string]bool)
	for _, f := range analysis.TopFactors {
		types[f.Type] = true
		names[f.Name] = true
	}
	assert.True(t, types["Inflow - Category"])
	assert.True(t, types["Outflow - Category"])
	// The unsplit by-account grouping surfaces the capital account even
	// though its categories are expense-side.
	assert.True(t, types["Account"])
	assert.True(t, names["Capital"] || names["Trading"])
}

func TestAnalyzeRootCauseIdempotent(t *testing.T) {
	engine := newTestEngine(t)
	txns := twoMonthFixture()

	for _, m := range Metrics() {
		first, err := engine.AnalyzeRootCause(txns, m)
		require.NoError(t, err)
		second, err := engine.AnalyzeRootCause(txns, m)
		require.NoError(t, err)
		assert.Equal(t, first, second, "metric %s", m)
	}
}

func TestAnalyzeRootCauseByName(t *testing.T) {
	engine := newTestEngine(t)
	txns := twoMonthFixture()

	t.Run("accepted spellings", func(t *testing.T) {
		for _, name := range []string{"Revenue", "expenses", "PROFITABILITY", "Cash Flow", "cash_flow"} {
			_, err := engine.AnalyzeRootCauseByName(txns, name)
			assert.NoError(t, err, "name %q", name)
		}
	})

	t.Run("invalid metric is rejected", func(t *testing.T) {
		_, err := engine.AnalyzeRootCauseByName(txns, "Liquidity")
		require.Error(t, err)

		var invalidErr *InvalidMetricError
		require.True(t, errors.As(err, &invalidErr))
		assert.Equal(t, "Liquidity", invalidErr.Name)
	})
}

func TestComprehensive(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Comprehensive(twoMonthFixture())

	assert.Equal(t, MetricRevenue, result.Revenue.Metric)
	assert.Equal(t, MetricExpenses, result.Expenses.Metric)
	assert.Equal(t, MetricProfitability, result.Profitability.Metric)
	assert.Equal(t, MetricCashFlow, result.CashFlow.Metric)
	assert.NotEmpty(t, result.PriorityActions)

	analyses := result.Analyses()
	require.Len(t, analyses, 4)
	assert.Equal(t, MetricCashFlow, analyses[0].Metric, "canonical merge order starts with cash flow")
}
