package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StorefrontMetrics records cart, wishlist, shipping and storage activity.
type StorefrontMetrics struct {
	cartMutations     *prometheus.CounterVec
	wishlistMutations *prometheus.CounterVec
	shippingLookups   *prometheus.CounterVec
	parseFailures     *prometheus.CounterVec
	storageDuration   *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	wishlistMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_mutations_total",
		Help: "Wishlist mutations applied, by operation.",
	}, []string{"op"})
	shippingLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipping_lookups_total",
		Help: "Shipping fee lookups, by outcome.",
	}, []string{"outcome"})
	parseFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_parse_failures_total",
		Help: "Persisted slots that could not be decoded and were reset.",
	}, []string{"slot"})
	storageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_operation_duration_seconds",
		Help:    "Duration of slot reads and writes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "op"})
	reg.MustRegister(cartMutations, wishlistMutations, shippingLookups, parseFailures, storageDuration)
	return &StorefrontMetrics{
		cartMutations:     cartMutations,
		wishlistMutations: wishlistMutations,
		shippingLookups:   shippingLookups,
		parseFailures:     parseFailures,
		storageDuration:   storageDuration,
	}
}

// IncCartMutation counts one applied cart operation.
func (m *StorefrontMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncWishlistMutation counts one applied wishlist operation.
func (m *StorefrontMetrics) IncWishlistMutation(op string) {
	if m == nil || m.wishlistMutations == nil {
		return
	}
	m.wishlistMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncShippingLookup counts a shipping resolution by outcome.
func (m *StorefrontMetrics) IncShippingLookup(outcome string) {
	if m == nil || m.shippingLookups == nil {
		return
	}
	m.shippingLookups.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncParseFailure counts a corrupted slot reset during hydrate.
func (m *StorefrontMetrics) IncParseFailure(slot string) {
	if m == nil || m.parseFailures == nil {
		return
	}
	m.parseFailures.WithLabelValues(normalizeLabel(slot)).Inc()
}

// ObserveStorage records the duration of a slot read or write.
func (m *StorefrontMetrics) ObserveStorage(backend, op string, duration time.Duration) {
	if m == nil || m.storageDuration == nil {
		return
	}
	m.storageDuration.WithLabelValues(normalizeLabel(backend), normalizeLabel(op)).Observe(duration.Seconds())
}

// Handler exposes the gatherer in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
