package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(framesReceived.WithLabelValues("heartbeat"))
	RecordFrame("heartbeat")
	RecordAuth(AuthSent)
	RecordRetry("login", RetryScheduled)

	if got := testutil.ToFloat64(framesReceived.WithLabelValues("heartbeat")); got != before+1 {
		t.Fatalf("heartbeat counter=%v want %v", got, before+1)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	RecordAuth(AuthOK)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "screepsws_socket_auth_total") {
		t.Fatalf("metrics output missing auth counter")
	}
}
