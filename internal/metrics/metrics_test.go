package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposure(t *testing.T) {
	IncStoreRequest("postTable", "list", "ok")
	StoreUp.Set(1)
	ObserveQueueBuild("issues", time.Now().Add(-200*time.Millisecond), 3)
	AuditsStarted.Inc()
	AuditOutcomes.WithLabelValues("success").Inc()
	ActiveAudits.Set(1)
	OutreachMessages.WithLabelValues("sent").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"reelcheck_store_requests_total",
		"reelcheck_record_store_up",
		"reelcheck_queue_build_duration_seconds",
		"reelcheck_queue_items",
		"reelcheck_audits_started_total",
		"reelcheck_audit_outcomes_total",
		"reelcheck_active_audits",
		"reelcheck_outreach_messages_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
