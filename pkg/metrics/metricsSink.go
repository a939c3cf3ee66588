// Package metrics fans metric writes out to every configured backend.
package metrics

import (
	"time"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/pkg/metrics/dogstatsd"
	"github.com/aixblock/rewards-engine/pkg/metrics/metricsTypes"
	"github.com/aixblock/rewards-engine/pkg/metrics/prometheus"
	"go.uber.org/zap"
)

type MetricsSinkConfig struct {
}

// MetricsSink multiplexes metric writes across the configured clients. A nil
// sink or a sink with no clients is safe to use and drops everything.
type MetricsSink struct {
	config  *MetricsSinkConfig
	clients []metricsTypes.IMetricsClient
}

func NewMetricsSink(cfg *MetricsSinkConfig, clients []metricsTypes.IMetricsClient) (*MetricsSink, error) {
	return &MetricsSink{
		config:  cfg,
		clients: clients,
	}, nil
}

// InitMetricsSinksFromConfig builds the set of metrics clients enabled in the
// global config.
func InitMetricsSinksFromConfig(cfg *config.Config, l *zap.Logger) ([]metricsTypes.IMetricsClient, error) {
	clients := make([]metricsTypes.IMetricsClient, 0)

	if cfg.PrometheusConfig.Enabled {
		pmc, err := prometheus.NewPrometheusMetricsClient(&prometheus.PrometheusMetricsConfig{
			Metrics: metricsTypes.MetricTypes,
		}, l)
		if err != nil {
			return nil, err
		}
		clients = append(clients, pmc)
	}

	if cfg.StatsdConfig.Enabled {
		dmc, err := dogstatsd.NewDogStatsdMetricsClient(cfg.StatsdConfig.Url, l)
		if err != nil {
			return nil, err
		}
		clients = append(clients, dmc)
	}

	return clients, nil
}

func (ms *MetricsSink) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	if ms == nil {
		return nil
	}
	var lastErr error
	for _, client := range ms.clients {
		if err := client.Incr(name, labels, value); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (ms *MetricsSink) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	if ms == nil {
		return nil
	}
	var lastErr error
	for _, client := range ms.clients {
		if err := client.Gauge(name, value, labels); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (ms *MetricsSink) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	if ms == nil {
		return nil
	}
	var lastErr error
	for _, client := range ms.clients {
		if err := client.Timing(name, value, labels); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (ms *MetricsSink) Flush() {
	if ms == nil {
		return
	}
	for _, client := range ms.clients {
		client.Flush()
	}
}
