package dogstatsd

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/aixblock/rewards-engine/pkg/metrics/metricsTypes"
	"go.uber.org/zap"
)

// DogStatsdMetricsClient forwards metrics to a dogstatsd agent.
type DogStatsdMetricsClient struct {
	client *statsd.Client
	logger *zap.Logger
}

func NewDogStatsdMetricsClient(url string, l *zap.Logger) (*DogStatsdMetricsClient, error) {
	client, err := statsd.New(url)
	if err != nil {
		return nil, err
	}
	return &DogStatsdMetricsClient{
		client: client,
		logger: l,
	}, nil
}

func labelsToTags(labels []metricsTypes.MetricsLabel) []string {
	tags := make([]string, 0, len(labels))
	for _, label := range labels {
		tags = append(tags, fmt.Sprintf("%s:%s", label.Name, label.Value))
	}
	return tags
}

func (d *DogStatsdMetricsClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	return d.client.Count(name, int64(value), labelsToTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	return d.client.Gauge(name, value, labelsToTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	return d.client.Timing(name, value, labelsToTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Flush() {
	if err := d.client.Flush(); err != nil {
		d.logger.Sugar().Errorw("Failed to flush dogstatsd client", zap.Error(err))
	}
}
