package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/formlane/console/internal/core/ports"
)

var _ ports.Observer = Recorder{}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecorder_Counts(t *testing.T) {
	r := Recorder{}

	before := counterValue(t, FetchResolvedTotal.WithLabelValues("plans", "fallback"))
	r.FetchResolved("plans", "fallback", 3200*time.Millisecond)
	if got := counterValue(t, FetchResolvedTotal.WithLabelValues("plans", "fallback")); got != before+1 {
		t.Fatalf("expected fetch counter to increase by one, got %v -> %v", before, got)
	}

	before = counterValue(t, GuardDecisionsTotal.WithLabelValues("redirect_landing"))
	r.GuardDecision("redirect_landing")
	if got := counterValue(t, GuardDecisionsTotal.WithLabelValues("redirect_landing")); got != before+1 {
		t.Fatalf("expected guard counter to increase by one, got %v -> %v", before, got)
	}

	r.DecryptFailure("permissions_list")
	if got := counterValue(t, SessionDecryptFailuresTotal.WithLabelValues("permissions_list")); got < 1 {
		t.Fatalf("expected decrypt failure to be counted, got %v", got)
	}

	r.RealtimeError("plans", "connect")
	if got := counterValue(t, RealtimeErrorsTotal.WithLabelValues("plans", "connect")); got < 1 {
		t.Fatalf("expected realtime error to be counted, got %v", got)
	}
}
