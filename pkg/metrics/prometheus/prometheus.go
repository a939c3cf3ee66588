package prometheus

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aixblock/rewards-engine/pkg/metrics/metricsTypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

type PrometheusMetricsConfig struct {
	Metrics map[metricsTypes.MetricsType][]metricsTypes.MetricsTypeConfig
}

// PrometheusMetricsClient registers every configured metric up front and
// rejects labels that were not declared for a metric.
type PrometheusMetricsClient struct {
	config   *PrometheusMetricsConfig
	logger   *zap.Logger
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
	timings  map[string]*prometheus.SummaryVec
}

func NewPrometheusMetricsClient(cfg *PrometheusMetricsConfig, l *zap.Logger) (*PrometheusMetricsClient, error) {
	c := &PrometheusMetricsClient{
		config:   cfg,
		logger:   l,
		counters: make(map[string]*prometheus.CounterVec),
		gauges:   make(map[string]*prometheus.GaugeVec),
		timings:  make(map[string]*prometheus.SummaryVec),
	}

	for _, mc := range cfg.Metrics[metricsTypes.MetricsType_Incr] {
		c.counters[mc.Name] = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: sanitizeMetricName(mc.Name),
		}, mc.Labels)
	}
	for _, mc := range cfg.Metrics[metricsTypes.MetricsType_Gauge] {
		c.gauges[mc.Name] = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: sanitizeMetricName(mc.Name),
		}, mc.Labels)
	}
	for _, mc := range cfg.Metrics[metricsTypes.MetricsType_Timing] {
		c.timings[mc.Name] = promauto.NewSummaryVec(prometheus.SummaryOpts{
			Name:       sanitizeMetricName(mc.Name),
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, mc.Labels)
	}
	return c, nil
}

// sanitizeMetricName rewrites dotted metric names into a form prometheus
// accepts.
func sanitizeMetricName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func (p *PrometheusMetricsClient) metricConfig(metricsType metricsTypes.MetricsType, name string) (*metricsTypes.MetricsTypeConfig, error) {
	for _, mc := range p.config.Metrics[metricsType] {
		if mc.Name == name {
			return &mc, nil
		}
	}
	return nil, fmt.Errorf("metric '%s' of type '%s' is not registered", name, metricsType)
}

// hasUnexpectedLabels returns an error if any provided label was not declared
// for the metric. Missing labels are fine and get filled with empty values.
func (p *PrometheusMetricsClient) hasUnexpectedLabels(metricsType metricsTypes.MetricsType, name string, labels []metricsTypes.MetricsLabel) error {
	mc, err := p.metricConfig(metricsType, name)
	if err != nil {
		return err
	}
	for _, label := range labels {
		if !slices.Contains(mc.Labels, label.Name) {
			return fmt.Errorf("unexpected label '%s' for metric '%s'", label.Name, name)
		}
	}
	return nil
}

func (p *PrometheusMetricsClient) labelValues(metricsType metricsTypes.MetricsType, name string, labels []metricsTypes.MetricsLabel) (prometheus.Labels, error) {
	mc, err := p.metricConfig(metricsType, name)
	if err != nil {
		return nil, err
	}
	values := prometheus.Labels{}
	for _, expected := range mc.Labels {
		values[expected] = ""
		for _, label := range labels {
			if label.Name == expected {
				values[expected] = label.Value
			}
		}
	}
	return values, nil
}

func (p *PrometheusMetricsClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	if err := p.hasUnexpectedLabels(metricsTypes.MetricsType_Incr, name, labels); err != nil {
		return err
	}
	counter, ok := p.counters[name]
	if !ok {
		return fmt.Errorf("counter '%s' is not registered", name)
	}
	values, err := p.labelValues(metricsTypes.MetricsType_Incr, name, labels)
	if err != nil {
		return err
	}
	counter.With(values).Add(value)
	return nil
}

func (p *PrometheusMetricsClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	if err := p.hasUnexpectedLabels(metricsTypes.MetricsType_Gauge, name, labels); err != nil {
		return err
	}
	gauge, ok := p.gauges[name]
	if !ok {
		return fmt.Errorf("gauge '%s' is not registered", name)
	}
	values, err := p.labelValues(metricsTypes.MetricsType_Gauge, name, labels)
	if err != nil {
		return err
	}
	gauge.With(values).Set(value)
	return nil
}

func (p *PrometheusMetricsClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	if err := p.hasUnexpectedLabels(metricsTypes.MetricsType_Timing, name, labels); err != nil {
		return err
	}
	timing, ok := p.timings[name]
	if !ok {
		return fmt.Errorf("timing '%s' is not registered", name)
	}
	values, err := p.labelValues(metricsTypes.MetricsType_Timing, name, labels)
	if err != nil {
		return err
	}
	timing.With(values).Observe(float64(value.Milliseconds()))
	return nil
}

// Flush is a no-op; prometheus metrics are pulled by the scraper.
func (p *PrometheusMetricsClient) Flush() {}
