package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/metrics"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOperation(t *testing.T) {
	m := metrics.New()
	m.Operation("register", nil)
	m.Operation("register", apperr.CapacityExceeded())
	m.Operation("register", apperr.CapacityExceeded())

	out := scrape(t, m)
	if !strings.Contains(out, `edu_events_workflow_operations_total{operation="register",outcome="ok"} 1`) {
		t.Errorf("missing ok counter:\n%s", out)
	}
	if !strings.Contains(out, `edu_events_workflow_operations_total{operation="register",outcome="capacity_exceeded"} 2`) {
		t.Errorf("missing capacity counter:\n%s", out)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	m.Operation("x", nil)
	m.Inventory("reserve", "applied")
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/events/"+id, nil))
	}

	out := scrape(t, m)
	if !strings.Contains(out, `edu_events_http_requests_total{method="GET",route="/api/events/{id}",status="404"} 2`) {
		t.Errorf("expected requests grouped by pattern:\n%s", out)
	}
	if n := testutil.CollectAndCount(m.Registry(), "edu_events_http_request_duration_seconds"); n != 1 {
		t.Errorf("expected one histogram series, got %d", n)
	}
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	return rec.Body.String()
}
