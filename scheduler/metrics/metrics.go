// Package metrics instruments the scheduler core's dispatch decisions and
// configuration changes with Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors the scheduler core updates on
// every dispatch decision and configuration change. A nil *Metrics is never
// handed to scheduler code directly; use NewNop for tests and callers that
// don't want metrics wired up.
type Metrics struct {
	scheduleInstalls      prometheus.Counter
	scheduleInstallErrors *prometheus.CounterVec
	bootstrapVCPUsDropped prometheus.Counter
	dispatchTimeSlice     prometheus.Histogram
	dispatchIdle          *prometheus.CounterVec
}

// IdleReason labels why a dispatch decision fell back to idle.
type IdleReason string

const (
	IdleEmptySchedule IdleReason = "empty_schedule"
	IdleNoProvider    IdleReason = "no_provider"
	IdleNotRunnable   IdleReason = "not_runnable"
	IdleTasklet       IdleReason = "tasklet"
	IdleAffinity      IdleReason = "affinity"
)

// New registers the scheduler's collectors with reg and returns a Metrics
// ready to be passed to scheduler.New. Pass nil to use the default
// registerer, or call NewNop to disable metrics entirely.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		scheduleInstalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "schedule_installs_total",
			Help:      "Number of schedules successfully installed via SetSchedule.",
		}),
		scheduleInstallErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "schedule_install_errors_total",
			Help:      "Number of SetSchedule calls rejected by validation, by cause.",
		}, []string{"reason"}),
		bootstrapVCPUsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "bootstrap_vcpus_dropped_total",
			Help:      "Number of bootstrap-domain VCPUs that could not be auto-inserted because the timetable was full.",
		}),
		dispatchTimeSlice: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Name:      "dispatch_time_slice_seconds",
			Help:      "Time slice returned by DoSchedule.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		dispatchIdle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "dispatch_idle_total",
			Help:      "Number of dispatch decisions that fell back to the idle VCPU, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.scheduleInstalls,
		m.scheduleInstallErrors,
		m.bootstrapVCPUsDropped,
		m.dispatchTimeSlice,
		m.dispatchIdle,
	)

	return m
}

// NewNop returns a Metrics backed by unregistered collectors, suitable for
// tests and for callers that don't want to wire up a Prometheus registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) ScheduleInstalled() {
	if m == nil {
		return
	}
	m.scheduleInstalls.Inc()
}

func (m *Metrics) ScheduleInstallFailed(reason string) {
	if m == nil {
		return
	}
	m.scheduleInstallErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) BootstrapVCPUDropped() {
	if m == nil {
		return
	}
	m.bootstrapVCPUsDropped.Inc()
}

func (m *Metrics) DispatchTimeSlice(seconds float64) {
	if m == nil {
		return
	}
	m.dispatchTimeSlice.Observe(seconds)
}

func (m *Metrics) DispatchIdle(reason IdleReason) {
	if m == nil {
		return
	}
	m.dispatchIdle.WithLabelValues(string(reason)).Inc()
}
