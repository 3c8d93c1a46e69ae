package errors

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorRender(t *testing.T) {
	t.Parallel()

	apiErr := UnknownMetricError("liquidity")
	assert.Equal(t, `unknown metric "liquidity"`, apiErr.Error())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	require.NoError(t, render.Render(w, r, NewErrorResponse(apiErr)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error_code":"UNKNOWN_METRIC"`)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestStatementError(t *testing.T) {
	t.Parallel()

	apiErr := StatementError(fmt.Errorf("statement header has no date column"))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "STATEMENT_UNPROCESSABLE", apiErr.ErrorCode)
	assert.Equal(t, "statement header has no date column", apiErr.Details)
}
