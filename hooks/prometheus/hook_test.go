package promhook

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestCountersFollowEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(Options{Namespace: "test", Registerer: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	h.Hit("Contact", "FindAll")
	h.Hit("Contact", "FindAll")
	h.Miss("Contact", "FindAll")
	h.ProviderError("get", "k", errors.New("down"))
	h.CorruptEntry("k", "wire")
	h.GenerationBumpError("k", errors.New("down"))
	h.ResultTooLarge("Contact", "GetAll", 5, 2)

	if got := value(t, h.requests.WithLabelValues("Contact", "FindAll", "hit")); got != 2 {
		t.Fatalf("hits=%v want 2", got)
	}
	if got := value(t, h.requests.WithLabelValues("Contact", "FindAll", "miss")); got != 1 {
		t.Fatalf("misses=%v want 1", got)
	}
	if got := value(t, h.providerErrs.WithLabelValues("get")); got != 1 {
		t.Fatalf("provider errors=%v want 1", got)
	}
	if got := value(t, h.bumpErrs); got != 1 {
		t.Fatalf("bump errors=%v want 1", got)
	}
	if got := value(t, h.tooLarge.WithLabelValues("Contact", "GetAll")); got != 1 {
		t.Fatalf("too large=%v want 1", got)
	}
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(Options{Registerer: reg}); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(Options{Registerer: reg}); err == nil {
		t.Fatalf("expected error registering the same collectors twice")
	}
}
