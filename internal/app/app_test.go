package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplication(t *testing.T) {
	t.Setenv("FINSIGHT_SERVER_PORT", "9321")
	t.Setenv("FINSIGHT_LOGGING_LEVEL", "error")

	application, err := New("")
	require.NoError(t, err)

	assert.Equal(t, ":9321", application.Server.Addr)
	assert.NotNil(t, application.Server.Handler)
	assert.Equal(t, 4, application.Config.Workflow.MaxConcurrency)
}

func TestNewApplicationBadConfig(t *testing.T) {
	t.Setenv("FINSIGHT_SERVER_PORT", "-1")

	_, err := New("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestNewApplicationBadRulesFile(t *testing.T) {
	t.Setenv("FINSIGHT_WORKFLOW_CATEGORY_RULES_FILE", "/nonexistent/rules.yaml")

	_, err := New("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading category rules")
}
