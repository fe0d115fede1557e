package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_Singleton(t *testing.T) {
	assert.Same(t, NewMetrics(), NewMetrics())
}

func TestRecordCommand(t *testing.T) {
	m := NewMetrics()

	before := testutil.ToFloat64(m.CommandsTotal.WithLabelValues("clock_in", "ok"))
	m.RecordCommand("clock_in", "ok", 20*time.Millisecond)
	after := testutil.ToFloat64(m.CommandsTotal.WithLabelValues("clock_in", "ok"))

	assert.Equal(t, before+1, after)
}

func TestRecordCronRun_Outcome(t *testing.T) {
	m := NewMetrics()

	m.RecordCronRun("mark_absent", errors.New("db down"), time.Second)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.CronRunsTotal.WithLabelValues("mark_absent", "error")), 1.0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordCommand("clock_in", "ok", time.Millisecond)
		m.RecordAttendance("clock_in")
		m.RecordCompliance("late")
		m.RecordLeave("sick", "pending")
		m.RecordNotification("direct", "sent")
		m.RecordCronRun("job", nil, time.Millisecond)
		m.SubscriberConnected()
		m.SubscriberDisconnected()
	})
}
