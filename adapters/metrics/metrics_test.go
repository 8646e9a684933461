package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/artpar/pagekit/adapters/metrics"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.PageRenders == nil || m.SavesTotal == nil || m.ConfigReloads == nil {
		t.Error("collector metrics not initialized")
	}
}

func TestObserveSave(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveSave("widget", nil, false)
	m.ObserveSave("widget", errors.New("boom"), false)
	m.ObserveSave("widget", errors.New("invalid"), true)

	if got := testutil.ToFloat64(m.SavesTotal.WithLabelValues("widget", "ok")); got != 1 {
		t.Errorf("ok saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SavesTotal.WithLabelValues("widget", "error")); got != 1 {
		t.Errorf("error saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SavesTotal.WithLabelValues("widget", "validation")); got != 1 {
		t.Errorf("validation saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ValidationFailures.WithLabelValues("widget")); got != 1 {
		t.Errorf("validation failures = %v, want 1", got)
	}
}
