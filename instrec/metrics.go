package instrec

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds prometheus collectors of a single InstanceTracker.
// nil *Metrics is valid and records nothing.
type Metrics struct {
	activeTracks      prometheus.Gauge
	tracksCreated     prometheus.Counter
	tracksPruned      prometheus.Counter
	detectionsMatched prometheus.Counter
	matchScore        prometheus.Histogram
}

// NewMetrics creates collectors labeled with tracker session and registers them in reg.
// Pass nil registerer to skip registration (e.g. when collectors are gathered manually).
// On registration failure none of the collectors stays registered.
func NewMetrics(reg prometheus.Registerer, sessionID uuid.UUID) (*Metrics, error) {
	labels := prometheus.Labels{"session": sessionID.String()}
	m := &Metrics{
		activeTracks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "instrec_active_tracks",
			Help:        "Number of currently active instance tracks.",
			ConstLabels: labels,
		}),
		tracksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "instrec_tracks_created_total",
			Help:        "Total number of created instance tracks.",
			ConstLabels: labels,
		}),
		tracksPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "instrec_tracks_pruned_total",
			Help:        "Total number of instance tracks pruned due to inactivity.",
			ConstLabels: labels,
		}),
		detectionsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "instrec_detections_matched_total",
			Help:        "Total number of detections appended to existing tracks.",
			ConstLabels: labels,
		}),
		matchScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "instrec_match_score",
			Help:        "Histogram of accepted match scores.",
			Buckets:     prometheus.LinearBuckets(0.1, 0.1, 10),
			ConstLabels: labels,
		}),
	}
	if reg == nil {
		return m, nil
	}
	registered := make([]prometheus.Collector, 0, len(m.collectors()))
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			// Leave registry as it was before the call
			for _, done := range registered {
				reg.Unregister(done)
			}
			return nil, errors.Wrapf(err, "can't register metrics for session %s", sessionID)
		}
		registered = append(registered, c)
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.activeTracks, m.tracksCreated, m.tracksPruned, m.detectionsMatched, m.matchScore}
}

func (m *Metrics) observeFrame(matchedScores []float64, created, pruned, active int) {
	if m == nil {
		return
	}
	for _, score := range matchedScores {
		m.matchScore.Observe(score)
	}
	m.detectionsMatched.Add(float64(len(matchedScores)))
	m.tracksCreated.Add(float64(created))
	m.tracksPruned.Add(float64(pruned))
	m.activeTracks.Set(float64(active))
}
