package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLifecycle(t *testing.T) {
	before := testutil.ToFloat64(lifecycleOperations.WithLabelValues("create", ResultError))
	ObserveLifecycle("create", errors.New("x"), time.Millisecond)
	after := testutil.ToFloat64(lifecycleOperations.WithLabelValues("create", ResultError))
	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestHandler_ExposesCounters(t *testing.T) {
	ObservePartialFailure("rename", "metadata")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "tenanthub_lifecycle_partial_failures_total") {
		t.Error("expected partial failure counter in /metrics output")
	}
}

func TestSetPartitionDrift(t *testing.T) {
	SetPartitionDrift(2, 1)
	if got := testutil.ToFloat64(partitionDrift.WithLabelValues("orphaned_partition")); got != 2 {
		t.Errorf("orphaned_partition: got %v, want 2", got)
	}
	SetPartitionDrift(0, 0)
	if got := testutil.ToFloat64(partitionDrift.WithLabelValues("missing_partition")); got != 0 {
		t.Errorf("missing_partition: got %v, want 0", got)
	}
}
