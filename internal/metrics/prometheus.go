package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus collectors.
type PrometheusRecorder struct {
	generationDuration prom.Histogram
	generations        *prom.CounterVec
	entries            *prom.GaugeVec
	excluded           *prom.CounterVec
	syncs              *prom.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		generationDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "menusitemap",
			Name:      "generation_duration_seconds",
			Help:      "Duration of a full sitemap generation pass",
			Buckets:   prom.DefBuckets,
		}),
		generations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "menusitemap",
			Name:      "generations_total",
			Help:      "Sitemap generation passes by outcome",
		}, []string{"outcome"}),
		entries: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "menusitemap",
			Name:      "entries",
			Help:      "Entries produced by the last generation pass",
		}, []string{"source"}),
		excluded: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "menusitemap",
			Name:      "excluded_total",
			Help:      "Records left out of the sitemap by source and reason",
		}, []string{"source", "reason"}),
		syncs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "menusitemap",
			Name:      "snapshot_syncs_total",
			Help:      "Snapshot file imports by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.generationDuration, pr.generations, pr.entries, pr.excluded, pr.syncs)
	return pr
}

func (p *PrometheusRecorder) ObserveGenerationDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.generationDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGenerationOutcome(outcome Outcome) {
	if p == nil {
		return
	}
	p.generations.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetEntryCount(source string, n int) {
	if p == nil {
		return
	}
	p.entries.WithLabelValues(source).Set(float64(n))
}

func (p *PrometheusRecorder) IncExcluded(source, reason string) {
	if p == nil {
		return
	}
	p.excluded.WithLabelValues(source, reason).Inc()
}

func (p *PrometheusRecorder) IncSnapshotSync(outcome Outcome) {
	if p == nil {
		return
	}
	p.syncs.WithLabelValues(string(outcome)).Inc()
}

// Handler serves the metrics of reg in the Prometheus exposition format.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
