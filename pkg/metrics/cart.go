package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutation throughput and subscriber fan-out cost.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	items     prometheus.Gauge
	notify    prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Committed cart mutations by operation.",
	}, []string{"op"})
	items := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_items",
		Help: "Quantity-weighted item count after the last mutation.",
	})
	notify := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_notify_duration_seconds",
		Help:    "Duration of subscriber notification fan-out.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(mutations, items, notify)
	return &CartMetrics{
		mutations: mutations,
		items:     items,
		notify:    notify,
	}
}

// IncMutation increments the counter for the named operation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// SetItemCount records the current quantity-weighted item count.
func (c *CartMetrics) SetItemCount(count int) {
	if c == nil || c.items == nil {
		return
	}
	c.items.Set(float64(count))
}

// ObserveNotify records the duration of one notification fan-out.
func (c *CartMetrics) ObserveNotify(duration time.Duration) {
	if c == nil || c.notify == nil {
		return
	}
	c.notify.Observe(duration.Seconds())
}

func normalizeLabel(op string) string {
	trimmed := strings.TrimSpace(strings.ToLower(op))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
