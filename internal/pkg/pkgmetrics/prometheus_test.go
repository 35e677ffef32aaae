package pkgmetrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryServesCounters(t *testing.T) {
	reg := NewRegistry("gorecord")
	counter := reg.CounterVec("record", "events_total", "Handled events.", "kind")
	counter.WithLabelValues("batch_added").Add(2)

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `gorecord_record_events_total{kind="batch_added"} 2`) {
		t.Fatalf("counter not exposed:\n%s", body)
	}
}
