package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountMutationLabelsResult(t *testing.T) {
	m := New()
	m.CountMutation("add", true)
	m.CountMutation("add", true)
	m.CountMutation("delete", false)

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("add", "ok")); got != 2 {
		t.Fatalf("expected 2 ok adds, got %v", got)
	}
	if got := testutil.ToFloat64(m.mutations.WithLabelValues("delete", "rejected")); got != 1 {
		t.Fatalf("expected 1 rejected delete, got %v", got)
	}
}

func TestObserveRebuildSetsGauges(t *testing.T) {
	m := New()
	m.ObserveRebuild(2*time.Millisecond, 7, 3)

	if got := testutil.ToFloat64(m.members); got != 7 {
		t.Fatalf("expected members gauge 7, got %v", got)
	}
	if got := testutil.ToFloat64(m.generations); got != 3 {
		t.Fatalf("expected generations gauge 3, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRebuild(time.Second, 1, 1)
	m.CountMutation("add", true)
	m.CountPersistFailure()
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.CountMutation("update", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `lineage_store_mutations_total{op="update",result="ok"} 1`) {
		t.Fatalf("expected mutation counter in exposition, got:\n%s", body)
	}
}
