package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "motivation"

// storageKinds are the backend kinds reported by StorageSelected.
var storageKinds = []string{"primary", "fallback", "none"}

// Collector records collection and quote metrics in Prometheus. It
// implements ports.MotivationMetrics and is safe for concurrent use.
type Collector struct {
	quotesFetched  *prometheus.CounterVec
	collectionSize prometheus.Gauge
	storageBackend *prometheus.GaugeVec
	saveFailures   prometheus.Counter
}

// NewCollector registers the metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer, which /-/metrics serves. Registering twice
// against the same registry reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		quotesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "quotes_fetched_total",
			Help:      "Quotes shown, by source (remote or fallback).",
		}, []string{"source"}),
		collectionSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "collection_size",
			Help:      "Number of liked quotes.",
		}),
		storageBackend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "storage_backend",
			Help:      "1 for the negotiated storage kind, 0 otherwise.",
		}, []string{"kind"}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "collection_save_failures_total",
			Help:      "Writes of the collection that the storage backend refused.",
		}),
	}

	var err error
	if c.quotesFetched, err = register(reg, c.quotesFetched); err != nil {
		return nil, err
	}
	if c.collectionSize, err = register(reg, c.collectionSize); err != nil {
		return nil, err
	}
	if c.storageBackend, err = register(reg, c.storageBackend); err != nil {
		return nil, err
	}
	if c.saveFailures, err = register(reg, c.saveFailures); err != nil {
		return nil, err
	}

	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}

		return c, err
	}

	return c, nil
}

// QuoteFetched implements ports.MotivationMetrics.
func (c *Collector) QuoteFetched(source string) {
	c.quotesFetched.WithLabelValues(source).Inc()
}

// CollectionSize implements ports.MotivationMetrics.
func (c *Collector) CollectionSize(n int) {
	c.collectionSize.Set(float64(n))
}

// StorageSelected implements ports.MotivationMetrics.
func (c *Collector) StorageSelected(kind string) {
	for _, k := range storageKinds {
		if k != kind {
			c.storageBackend.WithLabelValues(k).Set(0)
		}
	}
	c.storageBackend.WithLabelValues(kind).Set(1)
}

// SaveFailed implements ports.MotivationMetrics.
func (c *Collector) SaveFailed() {
	c.saveFailures.Inc()
}
