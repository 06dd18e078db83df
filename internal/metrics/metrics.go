package metrics

import (
	"strconv"
	"time"

	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// Registry holds the xapictl metrics, it is pushed to a Pushgateway at the end of a run.
	Registry = prometheus.NewRegistry()

	DevicesFetched *prometheus.CounterVec
	DevicePages    prometheus.Counter

	CommandCounter *prometheus.CounterVec

	APIRequestDuration *prometheus.HistogramVec

	ErrPush = errors.New("error pushing metrics")
)

func init() {
	DevicesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xapictl_devices_fetched_total",
			Help: "A counter metric to measure the total count of devices listed, and of those matching the tag",
		},
		[]string{"selected"}, // selected is true/false
	)

	DevicePages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "xapictl_device_pages_total",
			Help: "A counter metric to measure the total count of device list pages fetched",
		},
	)

	CommandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xapictl_commands_total",
			Help: "A counter metric to measure the total count of device commands executed, successful and failed",
		},
		[]string{"command", "result"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xapictl_api_request_duration_seconds",
			Help:    "A histogram metric to measure the time spent in each API request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	Registry.MustRegister(DevicesFetched, DevicePages, CommandCounter, APIRequestDuration)
}

// ObserveAPIRequest records the duration of an API request, status is the HTTP status code,
// zero when no response was received.
func ObserveAPIRequest(endpoint string, status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	APIRequestDuration.With(
		prometheus.Labels{"endpoint": endpoint, "status": label},
	).Observe(time.Since(started).Seconds())
}

// CountDevices records the devices listed and the number of those selected for the command.
func CountDevices(listed, selected int) {
	DevicesFetched.With(prometheus.Labels{"selected": "true"}).Add(float64(selected))
	DevicesFetched.With(prometheus.Labels{"selected": "false"}).Add(float64(listed - selected))
}

// CountCommand records a device command result.
func CountCommand(command string, succeeded bool) {
	result := "failed"
	if succeeded {
		result = "succeeded"
	}

	CommandCounter.With(prometheus.Labels{"command": command, "result": result}).Inc()
}

// Push sends the registry contents to the Pushgateway at url, grouped by the run identifier.
func Push(url, runID string) error {
	err := push.New(url, model.AppName).
		Gatherer(Registry).
		Grouping("run", runID).
		Push()
	if err != nil {
		return errors.Wrap(ErrPush, err.Error())
	}

	return nil
}
