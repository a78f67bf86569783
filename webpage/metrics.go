//go:build !solution

package webpage

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gitlab.com/slon/pageaccess/pageaccess"
)

// Metrics exports coordinator transitions as Prometheus collectors.
type Metrics struct {
	active        *prometheus.GaugeVec
	waiting       *prometheus.GaugeVec
	admissions    *prometheus.CounterVec
	cancellations *prometheus.CounterVec
	waitSeconds   *prometheus.HistogramVec
}

var _ pageaccess.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pageaccess",
			Name:      "active",
			Help:      "Goroutines currently holding the page.",
		}, []string{"role"}),
		waiting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pageaccess",
			Name:      "waiting",
			Help:      "Goroutines blocked waiting for the page.",
		}, []string{"role"}),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pageaccess",
			Name:      "admissions_total",
			Help:      "Number of times the page was acquired.",
		}, []string{"role"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pageaccess",
			Name:      "cancellations_total",
			Help:      "Number of waits abandoned because the context ended.",
		}, []string{"role"}),
		waitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pageaccess",
			Name:      "wait_seconds",
			Help:      "Time spent waiting before the page was acquired.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"role"}),
	}

	for _, c := range []prometheus.Collector{m.active, m.waiting, m.admissions, m.cancellations, m.waitSeconds} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Observe implements pageaccess.Observer.
func (m *Metrics) Observe(e pageaccess.Event) {
	role := e.Role.String()
	for _, r := range []pageaccess.Role{pageaccess.Reader, pageaccess.Writer} {
		m.active.WithLabelValues(r.String()).Set(float64(e.Stats.Active(r)))
		m.waiting.WithLabelValues(r.String()).Set(float64(e.Stats.Waiting(r)))
	}

	switch e.Kind {
	case pageaccess.EventAdmitted:
		m.admissions.WithLabelValues(role).Inc()
		m.waitSeconds.WithLabelValues(role).Observe(e.Waited.Seconds())
	case pageaccess.EventCanceled:
		m.cancellations.WithLabelValues(role).Inc()
	}
}

// LogSummary writes the counters gathered from g to logger.
func LogSummary(logger *zap.Logger, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range metric.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}

			switch {
			case metric.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", metric.GetCounter().GetValue()))
			case metric.GetGauge() != nil:
				fields = append(fields, zap.Float64("value", metric.GetGauge().GetValue()))
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				fields = append(fields,
					zap.Uint64("count", h.GetSampleCount()),
					zap.Float64("sum", h.GetSampleSum()),
				)
			default:
				continue
			}
			logger.Info("metric", fields...)
		}
	}
	return nil
}
