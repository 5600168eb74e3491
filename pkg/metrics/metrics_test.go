package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveBatch("optimized", 1500*time.Millisecond)
	ModelRuns.WithLabelValues("GARCH-N", OutcomeOK).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "varlytics_batch_duration_seconds"))
	assert.True(t, strings.Contains(body, `varlytics_model_runs_total{model="GARCH-N",outcome="ok"}`))
}
