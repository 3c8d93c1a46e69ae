package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/analytics"
)

func TestRuleCategorizerFillsMissingCategories(t *testing.T) {
	t.Parallel()

	c := NewRuleCategorizer(nil)
	in := []analytics.Transaction{
		{Description: "Monthly office rent", Amount: -2000},
		{Description: "Invoice 1042 payment received", Amount: 5000},
		{Description: "Mystery transfer", Amount: -10},
		{Description: "Already tagged", Amount: -50, Category: "Travel"},
	}

	out, err := c.Categorize(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, "Rent", out[0].Category)
	assert.Equal(t, "Revenue", out[1].Category)
	assert.Equal(t, UncategorizedCategory, out[2].Category)
	assert.Equal(t, "Travel", out[3].Category)

	// Input slice is untouched.
	assert.Empty(t, in[0].Category)
}

func TestRuleCategorizerFirstMatchWins(t *testing.T) {
	t.Parallel()

	c := NewRuleCategorizer([]KeywordRule{
		{Category: "Software", Keywords: []string{"subscription"}},
		{Category: "Bank Fees", Keywords: []string{"subscription fee"}},
	})

	out, err := c.Categorize(context.Background(), []analytics.Transaction{
		{Description: "Subscription fee for accounting SaaS"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Software", out[0].Category)
}

func TestLoadRulesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
revenue_categories:
  - Consulting Income
capex_categories:
  - Plant & Equipment
keywords:
  - category: Consulting Income
    keywords:
      - retainer
      - consulting
  - category: Hosting
    keywords:
      - aws
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := LoadRulesFile(path)
	require.NoError(t, err)
	require.Len(t, f.Keywords, 2)
	assert.Equal(t, "Consulting Income", f.Keywords[0].Category)
	assert.Equal(t, []string{"retainer", "consulting"}, f.Keywords[0].Keywords)

	rules := f.EngineRules()
	assert.True(t, rules.IsRevenue("consulting income"))
	assert.False(t, rules.IsRevenue("revenue/sales"), "override replaces the default list")

	_, err = LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRulesFileDefaults(t *testing.T) {
	t.Parallel()

	var f RulesFile
	rules := f.EngineRules()
	assert.True(t, rules.IsRevenue("Revenue/Sales"))
	assert.True(t, rules.IsCapex(analytics.Transaction{Category: "Motor Vehicle", Amount: -100}))
}
