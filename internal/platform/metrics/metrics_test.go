package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAdjustment(t *testing.T) {
	before := testutil.ToFloat64(ledgerAdjustments.WithLabelValues("deposit", "committed"))
	RecordAdjustment("deposit", "committed")
	assert.Equal(t, before+1, testutil.ToFloat64(ledgerAdjustments.WithLabelValues("deposit", "committed")))
}

func TestRecordInterestRun(t *testing.T) {
	before := testutil.ToFloat64(interestAccounts.WithLabelValues("applied"))
	RecordInterestRun("completed", 2, 1, 0, 50*time.Millisecond)
	assert.Equal(t, before+2, testutil.ToFloat64(interestAccounts.WithLabelValues("applied")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordKeySetFetch(true)
	RecordHTTPRequest("get", "/api/v1/user", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "family_bank_auth_keyset_fetches_total")
	assert.Contains(t, rec.Body.String(), `route="/api/v1/user"`)
}
