package analytics

import (
	"log/slog"
	"sort"
)

// UnknownPeriod is the placeholder period label used when fewer than two
// distinct months exist and a previous-month side must still be well-defined.
const UnknownPeriod = "unknown"

// Engine computes period aggregates, comparisons, time series and
// root-cause breakdowns over an immutable transaction set. All methods are
// pure with respect to their inputs; the engine holds only configuration.
type Engine struct {
	rules  CategoryRules
	logger *slog.Logger
}

// NewEngine creates an analytics engine with the given category rules.
func NewEngine(rules CategoryRules, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: rules, logger: logger}
}

// PctChange computes the percentage change from previous to current.
// The zero handling is deliberately asymmetric: (0, 0) is 0%, a move off a
// zero base is 100%, and everything else is (current-previous)/|previous|.
// Downstream narrative consumers key off the zero-versus-nonzero signal, so
// this policy must hold exactly.
func PctChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / abs(previous) * 100
}

// monthTotals holds the raw aggregates for one month before percent changes
// are attached.
type monthTotals struct {
	revenue  float64
	expenses float64
	cashFlow float64
	capex    float64
}

func (e *Engine) totalsFor(txns []Transaction, month string) monthTotals {
	var t monthTotals
	for _, txn := range txns {
		if txn.YearMonth() != month {
			continue
		}
		t.cashFlow += txn.Amount
		if e.rules.IsRevenue(txn.Category) {
			t.revenue += txn.Amount
		} else {
			// Expense outflows are negative by convention; report the
			// magnitude so expenses compare directly against revenue.
			t.expenses -= txn.Amount
		}
		if e.rules.IsCapex(txn) {
			t.capex += -txn.Amount
		}
	}
	return t
}

func (t monthTotals) profitability() float64 { return t.revenue - t.expenses }

// operatingCashFlow is the net cash movement for the month. Capex outflows
// are already netted into it; free cash flow deducts them explicitly.
func (t monthTotals) operatingCashFlow() float64 { return t.cashFlow }

func (t monthTotals) freeCashFlow() float64 { return t.operatingCashFlow() - t.capex }

// MonthlyMetrics aggregates the target month into a PeriodMetrics. When a
// previous month is supplied and present in the data, each metric's percent
// change is computed against it; otherwise percent changes are zero. A month
// with no transactions yields a zero-valued result, never an error.
func (e *Engine) MonthlyMetrics(txns []Transaction, target, previous string) PeriodMetrics {
	cur := e.totalsFor(txns, target)

	pm := PeriodMetrics{
		Period:             target,
		Revenue:            cur.revenue,
		Expenses:           cur.expenses,
		Profitability:      cur.profitability(),
		CashFlow:           cur.cashFlow,
		OperatingCashFlow:  cur.operatingCashFlow(),
		CapitalExpenditure: cur.capex,
		FreeCashFlow:       cur.freeCashFlow(),
	}

	if previous == "" || previous == UnknownPeriod {
		return pm
	}

	prev := e.totalsFor(txns, previous)
	pm.RevenuePctChange = PctChange(cur.revenue, prev.revenue)
	pm.ExpensesPctChange = PctChange(cur.expenses, prev.expenses)
	pm.ProfitabilityPctChange = PctChange(cur.profitability(), prev.profitability())
	pm.CashFlowPctChange = PctChange(cur.cashFlow, prev.cashFlow)
	pm.FreeCashFlowPctChange = PctChange(cur.freeCashFlow(), prev.freeCashFlow())
	return pm
}

// zeroMetrics returns the placeholder previous-month metrics used when
// fewer than two distinct months are present.
func zeroMetrics() PeriodMetrics {
	return PeriodMetrics{Period: UnknownPeriod}
}

// monthsPresent returns the distinct calendar months present in the data,
// sorted ascending. No gap-filling: missing intermediate months are simply
// absent.
func monthsPresent(txns []Transaction) []string {
	seen := make(map[string]struct{})
	var months []string
	for _, t := range txns {
		ym := t.YearMonth()
		if _, ok := seen[ym]; !ok {
			seen[ym] = struct{}{}
			months = append(months, ym)
		}
	}
	sort.Strings(months)
	return months
}

// monthSubset returns the transactions belonging to the given month, in
// input order. The UnknownPeriod matches nothing.
func monthSubset(txns []Transaction, month string) []Transaction {
	if month == UnknownPeriod {
		return nil
	}
	var out []Transaction
	for _, t := range txns {
		if t.YearMonth() == month {
			out = append(out, t)
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
