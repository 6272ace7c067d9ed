package otel

import (
	"context"
	"sync"
	"testing"

	goCourt "github.com/MrEthical07/goCourt"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goCourt.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goCourt.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goCourt.MetricsSnapshot{
		Counters:   make(map[goCourt.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goCourt.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("courtdesk-test")

	src := &fakeSource{
		snapshot: goCourt.MetricsSnapshot{
			Counters: map[goCourt.MetricID]uint64{
				goCourt.MetricLoginSuccess: 3,
			},
			Histograms: map[goCourt.MetricID][]uint64{
				goCourt.MetricBackendLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("expected collected metrics, got none")
	}

	found := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) > 0 {
				found[m.Name] = sum.DataPoints[0].Value
			}
			if g, ok := m.Data.(metricdata.Gauge[int64]); ok && len(g.DataPoints) > 0 {
				found[m.Name] = g.DataPoints[0].Value
			}
		}
	}
	if found["courtdesk_login_success_total"] != 3 {
		t.Fatalf("expected login success 3, got %v", found)
	}
	if found["courtdesk_backend_latency_seconds_count"] != 8 {
		t.Fatalf("expected 8 latency samples, got %v", found)
	}
	if found["courtdesk_audit_dropped_total"] != 1 {
		t.Fatalf("expected audit dropped 1, got %v", found)
	}
}

func TestExporterRejectsNilSource(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("courtdesk-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("courtdesk-test")

	src := &fakeSource{
		snapshot: goCourt.MetricsSnapshot{
			Counters: map[goCourt.MetricID]uint64{
				goCourt.MetricLoginSuccess: 1,
			},
			Histograms: map[goCourt.MetricID][]uint64{
				goCourt.MetricBackendLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goCourt.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}

func TestExporterRejectsNilManager(t *testing.T) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	if _, err := NewOTelExporter(provider.Meter("courtdesk-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}
