package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	started := make(chan struct{}, 1)

	s := NewScheduler(nil)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_CancelsJobContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	running := make(chan struct{})
	s := NewScheduler(nil)
	s.AddJob("blocking", time.Hour, func(ctx context.Context) error {
		close(running)
		<-ctx.Done()
		return ctx.Err()
	})

	s.Start()
	<-running
	s.Stop()
}

func TestScheduler_RunOnceKeepsGoingAfterFailure(t *testing.T) {
	var order []string

	s := NewScheduler(nil)
	s.AddJob("first", time.Minute, func(ctx context.Context) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	s.AddJob("second", time.Minute, func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Len(t, s.Jobs(), 2)
}
