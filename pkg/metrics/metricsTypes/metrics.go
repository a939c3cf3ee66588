package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
	Flush()
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_HttpRequest          = "rpc.http.request"
	Metric_Incr_ContributionRecorded = "contributions.recorded"
	Metric_Incr_PeriodClosed         = "periods.closed"
	Metric_Incr_TokensDistributed    = "distributions.payout"
	Metric_Incr_ReserveTransfer      = "reserve.transfer"
	Metric_Incr_ReserveDeposit       = "reserve.deposit"

	Metric_Gauge_PeriodTotalPoints = "periods.totalPoints"
	Metric_Gauge_ReserveBalance    = "reserve.balance"
	Metric_Gauge_PoolBalance       = "pool.balance"
	Metric_Gauge_CurrentPeriod     = "periods.current"

	Metric_Timing_HttpDuration         = "rpc.http.duration"
	Metric_Timing_DistributionDuration = "distributions.duration"
	Metric_Timing_ClosePeriodDuration  = "periods.close.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name: Metric_Incr_HttpRequest,
			Labels: []string{
				"method",
				"path",
				"status_code",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_ContributionRecorded,
			Labels: []string{
				"contribution_type",
			},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_PeriodClosed,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_TokensDistributed,
			Labels: []string{
				"period",
			},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ReserveTransfer,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ReserveDeposit,
			Labels: []string{},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_PeriodTotalPoints,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Gauge_ReserveBalance,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Gauge_PoolBalance,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Gauge_CurrentPeriod,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name: Metric_Timing_HttpDuration,
			Labels: []string{
				"method",
				"path",
				"status_code",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Timing_DistributionDuration,
			Labels: []string{
				"period",
			},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_ClosePeriodDuration,
			Labels: []string{},
		},
	},
}
