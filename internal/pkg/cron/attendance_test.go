package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAttendanceService implements only what the jobs call.
type stubAttendanceService struct {
	attendance.AttendanceService

	guilds   []string
	closeErr error
}

func (s *stubAttendanceService) VerifyScreenShare(ctx context.Context, guildID string) (attendance.VerificationResult, error) {
	s.guilds = append(s.guilds, guildID)
	return attendance.VerificationResult{Checked: 2, Verified: 1, Struck: 1}, nil
}

func (s *stubAttendanceService) CloseStaleSessions(ctx context.Context, guildID string) (int, error) {
	s.guilds = append(s.guilds, guildID)
	return 0, s.closeErr
}

func (s *stubAttendanceService) MarkAbsent(ctx context.Context, guildID string) (int, error) {
	s.guilds = append(s.guilds, guildID)
	return 3, nil
}

func TestAttendanceJobs_RegisterJobs(t *testing.T) {
	svc := &stubAttendanceService{}
	scheduler := NewScheduler(nil)

	NewAttendanceJobs(svc, "100000000000000001", 5*time.Minute, true).RegisterJobs(scheduler)

	jobs := scheduler.Jobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, JobVerifyScreenShare, jobs[0].Name)
	assert.Equal(t, 5*time.Minute, jobs[0].Interval)
	assert.Equal(t, JobCloseStaleSessions, jobs[1].Name)
	assert.Equal(t, JobMarkAbsent, jobs[2].Name)
}

func TestAttendanceJobs_SkipVerificationWhenNotRequired(t *testing.T) {
	scheduler := NewScheduler(nil)

	NewAttendanceJobs(&stubAttendanceService{}, "100000000000000001", time.Minute, false).RegisterJobs(scheduler)

	for _, job := range scheduler.Jobs() {
		assert.NotEqual(t, JobVerifyScreenShare, job.Name)
	}
}

func TestAttendanceJobs_RunForConfiguredGuild(t *testing.T) {
	svc := &stubAttendanceService{}
	jobs := NewAttendanceJobs(svc, "100000000000000001", time.Minute, true)
	ctx := context.Background()

	require.NoError(t, jobs.VerifyScreenShare(ctx))
	require.NoError(t, jobs.MarkAbsent(ctx))

	svc.closeErr = errors.New("db down")
	err := jobs.CloseStaleSessions(ctx)
	assert.ErrorIs(t, err, svc.closeErr)

	assert.Equal(t, []string{"100000000000000001", "100000000000000001", "100000000000000001"}, svc.guilds)
}
