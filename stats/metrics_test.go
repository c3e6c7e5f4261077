package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)

	m.ObserveRequest("GET", "anonymous", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "anonymous", 200, 20*time.Millisecond)
	m.ObserveRequest("PUT", "oauth", 409, time.Millisecond)

	if v := testutil.ToFloat64(m.requests.WithLabelValues("GET", "anonymous", "200")); v != 2 {
		t.Error("unexpected GET count", v)
	}
	if v := testutil.ToFloat64(m.requests.WithLabelValues("PUT", "oauth", "409")); v != 1 {
		t.Error("unexpected PUT count", v)
	}
	if n := testutil.CollectAndCount(m.durations); n != 2 {
		t.Error("unexpected number of duration series", n)
	}
}
