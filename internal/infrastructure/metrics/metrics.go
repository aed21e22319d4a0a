package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exports pipeline metrics to Prometheus
type Recorder struct {
	analyses   *prometheus.CounterVec
	candidates prometheus.Histogram
	duration   *prometheus.HistogramVec
	cartAdds   *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medilens",
			Name:      "analyses_total",
			Help:      "Prescription analyses by outcome.",
		}, []string{"outcome"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medilens",
			Name:      "analysis_candidates",
			Help:      "Medicine candidates found per completed analysis.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medilens",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of prescription analyses.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		cartAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medilens",
			Name:      "cart_additions_total",
			Help:      "Add-to-cart attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(r.analyses, r.candidates, r.duration, r.cartAdds)
	return r
}

// ObserveAnalysis records one analysis outcome
func (r *Recorder) ObserveAnalysis(outcome string, candidates int, duration time.Duration) {
	r.analyses.WithLabelValues(outcome).Inc()
	if outcome == "rejected" {
		return
	}
	r.duration.WithLabelValues(outcome).Observe(duration.Seconds())
	if !strings.HasSuffix(outcome, "_error") {
		r.candidates.Observe(float64(candidates))
	}
}

// ObserveCartAdd records one add-to-cart attempt
func (r *Recorder) ObserveCartAdd(outcome string) {
	r.cartAdds.WithLabelValues(outcome).Inc()
}
