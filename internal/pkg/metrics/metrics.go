package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the bot's Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Chat commands
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Attendance state machine
	AttendanceEventsTotal *prometheus.CounterVec
	ComplianceEventsTotal *prometheus.CounterVec
	LeaveRequestsTotal    *prometheus.CounterVec

	// Delivery
	NotificationsTotal *prometheus.CounterVec

	// Background jobs
	CronRunsTotal   *prometheus.CounterVec
	CronRunDuration *prometheus.HistogramVec

	// Dashboard
	SSESubscribers prometheus.Gauge
}

// NewMetrics registers the collectors on the default registry once per
// process and returns the shared instance.
//
// Metrics:
//   - attendance_bot_commands_total{command,outcome}
//   - attendance_bot_command_duration_seconds{command}
//   - attendance_bot_attendance_events_total{action}
//   - attendance_bot_compliance_events_total{kind}
//   - attendance_bot_leave_requests_total{type,status}
//   - attendance_bot_notifications_total{target,outcome}
//   - attendance_bot_cron_runs_total{job,outcome}
//   - attendance_bot_cron_run_duration_seconds{job}
//   - attendance_bot_sse_subscribers
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			CommandsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "attendance_bot_commands_total",
					Help: "Total number of chat commands and components handled",
				},
				[]string{"command", "outcome"}, // outcome: ok, rejected, error
			),

			CommandDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "attendance_bot_command_duration_seconds",
					Help:    "Duration of chat command handling in seconds",
					Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
				},
				[]string{"command"},
			),

			AttendanceEventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "attendance_bot_attendance_events_total",
					Help: "Total number of attendance transitions",
				},
				[]string{"action"},
			),

			ComplianceEventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "attendance_bot_compliance_events_total",
					Help: "Total number of recorded policy breaches",
				},
				[]string{"kind"},
			),

			LeaveRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "attendance_bot_leave_requests_total",
					Help: "Total number of leave request transitions",
				},
				[]string{"type", "status"},
			),

			NotificationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "attendance_bot_notifications_total",
					Help: "Total number of notices by delivery outcome",
				},
				[]string{"target", "outcome"}, // target: direct, channel; outcome: sent, failed, dropped
			),

			CronRunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "attendance_bot_cron_runs_total",
					Help: "Total number of background job runs",
				},
				[]string{"job", "outcome"},
			),

			CronRunDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "attendance_bot_cron_run_duration_seconds",
					Help:    "Duration of background job runs in seconds",
					Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
				},
				[]string{"job"},
			),

			SSESubscribers: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "attendance_bot_sse_subscribers",
					Help: "Current number of connected dashboard event streams",
				},
			),
		}
	})

	return globalMetrics
}

// RecordCommand records one handled command or component interaction.
func (m *Metrics) RecordCommand(command, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordAttendance records a state transition such as clock_in or auto_clock_out.
func (m *Metrics) RecordAttendance(action string) {
	if m == nil {
		return
	}
	m.AttendanceEventsTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordCompliance(kind string) {
	if m == nil {
		return
	}
	m.ComplianceEventsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordLeave(leaveType, status string) {
	if m == nil {
		return
	}
	m.LeaveRequestsTotal.WithLabelValues(leaveType, status).Inc()
}

func (m *Metrics) RecordNotification(target, outcome string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) RecordCronRun(job string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CronRunsTotal.WithLabelValues(job, outcome).Inc()
	m.CronRunDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *Metrics) SubscriberConnected() {
	if m == nil {
		return
	}
	m.SSESubscribers.Inc()
}

func (m *Metrics) SubscriberDisconnected() {
	if m == nil {
		return
	}
	m.SSESubscribers.Dec()
}
