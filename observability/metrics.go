// Package observability exports loader lifecycle events as Prometheus
// metrics.
package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/reglet-dev/native-host-sdk/abi"
	"github.com/reglet-dev/native-host-sdk/plugin/entities"
)

const namespace = "plugin_host"

// Operation label values.
const (
	OpDiscover = "discover"
	OpBind     = "bind"
	OpLoad     = "load"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics implements ports.LoadObserver with Prometheus collectors.
type Metrics struct {
	operations   *prometheus.CounterVec
	loadStatus   *prometheus.CounterVec
	loadDuration prometheus.Histogram
	libraries    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Loader operations by outcome.",
		}, []string{"operation", "result"}),
		loadStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_status_total",
			Help:      "load_plugin results by plugin and status.",
		}, []string{"plugin", "status"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent inside load_plugin.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		libraries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovered_libraries",
			Help:      "Libraries opened by the most recent directory scan.",
		}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.loadStatus, m.loadDuration, m.libraries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Discovered implements ports.LoadObserver.
func (m *Metrics) Discovered(dir string, count int, err error) {
	m.operations.WithLabelValues(OpDiscover, result(err)).Inc()
	if err == nil {
		m.libraries.Set(float64(count))
	}
}

// Bound implements ports.LoadObserver.
func (m *Metrics) Bound(path string, err error) {
	m.operations.WithLabelValues(OpBind, result(err)).Inc()
}

// Loaded implements ports.LoadObserver.
func (m *Metrics) Loaded(id string, elapsed time.Duration, err error) {
	m.operations.WithLabelValues(OpLoad, result(err)).Inc()
	m.loadDuration.Observe(elapsed.Seconds())

	status := abi.StatusOK
	var loadErr *entities.PluginLoadError
	if errors.As(err, &loadErr) {
		status = abi.Status(loadErr.Code)
	} else if err != nil {
		status = abi.StatusFailed
	}
	m.loadStatus.WithLabelValues(id, status.String()).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
