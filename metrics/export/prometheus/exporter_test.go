package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	goDispatch "github.com/MrEthical07/goDispatch"
)

type fakeSource struct {
	snapshot goDispatch.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goDispatch.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                       { return f.dropped }

func populatedSource() *fakeSource {
	return &fakeSource{
		snapshot: goDispatch.MetricsSnapshot{
			Counters: map[goDispatch.MetricID]uint64{
				goDispatch.MetricDispatchSuccess: 42,
				goDispatch.MetricSessionExpired:  7,
			},
			Histograms: map[goDispatch.MetricID][]uint64{
				goDispatch.MetricDispatchLatency: {5, 3, 0, 0, 1, 0, 0, 2},
			},
		},
		dropped: 2,
	}
}

func TestRenderCounters(t *testing.T) {
	out := NewPrometheusExporterFromSource(populatedSource()).Render()

	for _, want := range []string{
		"# HELP godispatch_dispatch_success_total",
		"# TYPE godispatch_dispatch_success_total counter",
		"godispatch_dispatch_success_total 42",
		"godispatch_session_expired_total 7",
		"godispatch_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistogramCumulative(t *testing.T) {
	out := NewPrometheusExporterFromSource(populatedSource()).Render()

	// Raw buckets {5,3,0,0,1,0,0,2} render cumulatively.
	for _, want := range []string{
		"# TYPE godispatch_dispatch_latency_seconds histogram",
		`godispatch_dispatch_latency_seconds_bucket{le="0.005"} 5`,
		`godispatch_dispatch_latency_seconds_bucket{le="0.01"} 8`,
		`godispatch_dispatch_latency_seconds_bucket{le="0.1"} 9`,
		`godispatch_dispatch_latency_seconds_bucket{le="+Inf"} 11`,
		"godispatch_dispatch_latency_seconds_count 11",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	src := &fakeSource{snapshot: goDispatch.MetricsSnapshot{
		Counters:   map[goDispatch.MetricID]uint64{},
		Histograms: map[goDispatch.MetricID][]uint64{},
	}}
	if out := NewPrometheusExporterFromSource(src).Render(); out != "" {
		t.Fatalf("expected empty render, got:\n%s", out)
	}
}

func TestRenderNilExporter(t *testing.T) {
	var p *PrometheusExporter
	if out := p.Render(); out != "" {
		t.Fatalf("nil exporter must render empty, got %q", out)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	h := NewPrometheusExporterFromSource(populatedSource()).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "godispatch_dispatch_success_total 42") {
		t.Fatalf("handler body missing counters:\n%s", rec.Body.String())
	}
}
