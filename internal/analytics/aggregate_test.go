package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(date, description string, amount float64, category, account string) Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return Transaction{
		Date:        d,
		Description: description,
		Amount:      amount,
		Category:    category,
		Account:     account,
	}
}

// januaryFixture is the reference month: 8,000 revenue, 1,500 operating
// expenses, 2,500 capital expenditure.
func januaryFixture() []Transaction {
	return []Transaction{
		txn("2024-01-15", "Product sales", 5000, "revenue/sales", "Trading"),
		txn("2024-01-20", "Service income", 3000, "revenue/sales", "Trading"),
		txn("2024-01-10", "Office rent", -1200, "rent expenses", "Operating"),
		txn("2024-01-12", "Utilities", -300, "utilities", "Operating"),
		txn("2024-01-25", "Commercial oven", -2000, "Plant & Equipment", "Capital"),
		txn("2024-01-28", "Office desk", -500, "Office furniture and equipment", "Capital"),
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultCategoryRules(), nil)
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		expected float64
	}{
		{"both zero", 0, 0, 0},
		{"nonzero from zero base", 42, 0, 100},
		{"negative from zero base", -42, 0, 100},
		{"simple increase", 150, 100, 50},
		{"sign flip against positive base", -50, 100, -150},
		{"increase against negative base", 50, -100, 150},
		{"decrease", 80, 100, -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PctChange(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestMonthlyMetrics(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("reference month", func(t *testing.T) {
		pm := engine.MonthlyMetrics(januaryFixture(), "2024-01", "")

		assert.Equal(t, "2024-01", pm.Period)
		assert.InDelta(t, 8000.00, pm.Revenue, 1e-9)
		assert.InDelta(t, 4000.00, pm.Expenses, 1e-9)
		assert.InDelta(t, 4000.00, pm.Profitability, 1e-9)
		assert.InDelta(t, 4000.00, pm.CashFlow, 1e-9)
		assert.InDelta(t, 2500.00, pm.CapitalExpenditure, 1e-9)
		assert.InDelta(t, 4000.00, pm.OperatingCashFlow, 1e-9)
		assert.InDelta(t, 1500.00, pm.FreeCashFlow, 1e-9)
	})

	t.Run("empty month yields zero metrics", func(t *testing.T) {
		pm := engine.MonthlyMetrics(januaryFixture(), "2024-06", "")

		assert.Equal(t, "2024-06", pm.Period)
		assert.Zero(t, pm.Revenue)
		assert.Zero(t, pm.Expenses)
		assert.Zero(t, pm.CashFlow)
		assert.Zero(t, pm.FreeCashFlow)
	})

	t.Run("percent changes against previous month", func(t *testing.T) {
		txns := append(januaryFixture(),
			txn("2024-02-10", "Product sales", 12000, "revenue/sales", "Trading"),
			txn("2024-02-12", "Office rent", -1200, "rent expenses", "Operating"),
		)

		pm := engine.MonthlyMetrics(txns, "2024-02", "2024-01")
		assert.InDelta(t, 50.0, pm.RevenuePctChange, 1e-9)   // 12000 vs 8000
		assert.InDelta(t, -70.0, pm.ExpensesPctChange, 1e-9) // 1200 vs 4000
	})

	t.Run("invariants hold for every present month", func(t *testing.T) {
		txns := append(januaryFixture(),
			txn("2024-02-10", "Product sales", 7000, "revenue/sales", "Trading"),
			txn("2024-02-11", "Truck purchase", -9000, "Motor Vehicle", "Capital"),
			txn("2024-03-05", "Interest", 120, "interest income", "Savings"),
		)

		for _, month := range monthsPresent(txns) {
			pm := engine.MonthlyMetrics(txns, month, "")
			assert.InDelta(t, pm.Revenue-pm.Expenses, pm.Profitability, 1e-9, "month %s", month)
			assert.InDelta(t, pm.OperatingCashFlow-pm.CapitalExpenditure, pm.FreeCashFlow, 1e-9, "month %s", month)
		}
	})
}

func TestCapexIdentification(t *testing.T) {
	rules := DefaultCategoryRules()

	tests := []struct {
		name  string
		t     Transaction
		capex bool
	}{
		{"plant and equipment outflow", txn("2024-01-25", "Oven", -2000, "Plant & Equipment", "Capital"), true},
		{"case-insensitive category", txn("2024-01-25", "Van", -9000, "motor vehicle", "Capital"), true},
		{"inflow direction excluded", txn("2024-01-25", "Asset sale", 2000, "Plant & Equipment", "Capital"), false},
		{"operating category excluded", txn("2024-01-25", "Rent", -1200, "rent expenses", "Operating"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.capex, rules.IsCapex(tt.t))
		})
	}
}

func TestCategoryRulesOverrides(t *testing.T) {
	rules := NewCategoryRules([]string{"Subscriptions"}, []string{"Machinery"})

	assert.True(t, rules.IsRevenue("subscriptions"))
	assert.False(t, rules.IsRevenue("revenue/sales"))
	assert.True(t, rules.IsCapex(txn("2024-01-02", "Lathe", -100, "Machinery", "Capital")))

	defaults := NewCategoryRules(nil, nil)
	require.True(t, defaults.IsRevenue("Revenue/Sales"))
}
