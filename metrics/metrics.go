package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/armon/go-metrics"
	promsink "github.com/armon/go-metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/txrelayer"
)

const (
	// DefaultNamespace prefixes every metric name
	DefaultNamespace = "sgld"

	OutcomeSuccess  = "success"
	OutcomeReverted = "reverted"
	OutcomeError    = "error"
)

var _ txrelayer.Observer = (*Metrics)(nil)

// Metrics records relayed transactions on a private prometheus registry
type Metrics struct {
	registry *prometheus.Registry
	sink     *metrics.Metrics
	// float64 counter, the sink rounds to float32
	gasUsed *prometheus.CounterVec
}

func New(namespace string) (*Metrics, error) {
	registry := prometheus.NewRegistry()

	prom, err := promsink.NewPrometheusSinkFrom(promsink.PrometheusOpts{
		Name:       namespace + "_prometheus_sink",
		Expiration: 0,
		Registerer: registry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus sink: %w", err)
	}

	conf := metrics.DefaultConfig(namespace)
	conf.EnableHostname = false
	conf.EnableRuntimeMetrics = false

	sink, err := metrics.New(conf, prom)
	if err != nil {
		return nil, err
	}

	gasUsed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "txrelayer",
		Name:      "gas_used",
		Help:      "Gas used by relayed transactions",
	}, []string{"kind"})

	if err := registry.Register(gasUsed); err != nil {
		return nil, fmt.Errorf("failed to register gas counter: %w", err)
	}

	return &Metrics{registry: registry, sink: sink, gasUsed: gasUsed}, nil
}

// ObserveTransaction counts the transaction by kind and outcome, adds its gas and the receipt wait
func (m *Metrics) ObserveTransaction(kind string, receipt *ethgo.Receipt, wait time.Duration, err error) {
	outcome := OutcomeSuccess

	switch {
	case err != nil:
		outcome = OutcomeError
	case receipt != nil && receipt.Status != uint64(1):
		outcome = OutcomeReverted
	}

	kindLabel := metrics.Label{Name: "kind", Value: kind}

	m.sink.IncrCounterWithLabels([]string{"txrelayer", "transactions"}, 1,
		[]metrics.Label{kindLabel, {Name: "outcome", Value: outcome}})

	if receipt != nil {
		m.gasUsed.WithLabelValues(kind).Add(float64(receipt.GasUsed))
	}

	m.sink.AddSampleWithLabels([]string{"txrelayer", "receipt_wait_seconds"}, float32(wait.Seconds()),
		[]metrics.Label{kindLabel})
}

// Gatherer exposes the collected metrics
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Push sends the collected metrics to a prometheus pushgateway
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}

	return nil
}
