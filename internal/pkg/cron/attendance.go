package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
)

// Job names
const (
	JobVerifyScreenShare  = "verify_screen_share"
	JobCloseStaleSessions = "close_stale_sessions"
	JobMarkAbsent         = "mark_absent"
)

type AttendanceJobs struct {
	attendanceService   attendance.AttendanceService
	guildID             string
	screenShareInterval time.Duration
	requireScreenShare  bool
	maintenanceInterval time.Duration
}

func NewAttendanceJobs(
	attendanceService attendance.AttendanceService,
	guildID string,
	screenShareInterval time.Duration,
	requireScreenShare bool,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService:   attendanceService,
		guildID:             guildID,
		screenShareInterval: screenShareInterval,
		requireScreenShare:  requireScreenShare,
		maintenanceInterval: 15 * time.Minute,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	if j.requireScreenShare {
		scheduler.AddJob(JobVerifyScreenShare, j.screenShareInterval, j.VerifyScreenShare)
	}
	scheduler.AddJob(JobCloseStaleSessions, j.maintenanceInterval, j.CloseStaleSessions)
	scheduler.AddJob(JobMarkAbsent, j.maintenanceInterval, j.MarkAbsent)
}

func (j *AttendanceJobs) VerifyScreenShare(ctx context.Context) error {
	result, err := j.attendanceService.VerifyScreenShare(ctx, j.guildID)
	if err != nil {
		return fmt.Errorf("failed to verify screen share: %w", err)
	}

	if result.Checked > 0 {
		slog.Info("Cron: Screen share verified",
			"checked", result.Checked,
			"verified", result.Verified,
			"struck", result.Struck,
			"auto_clocked_out", result.AutoClockedOut,
			"failed", result.Failed,
		)
	}
	return nil
}

func (j *AttendanceJobs) CloseStaleSessions(ctx context.Context) error {
	closed, err := j.attendanceService.CloseStaleSessions(ctx, j.guildID)
	if err != nil {
		return fmt.Errorf("failed to close stale sessions: %w", err)
	}

	if closed > 0 {
		slog.Info("Cron: Auto-closed stale attendances", "count", closed)
	}
	return nil
}

func (j *AttendanceJobs) MarkAbsent(ctx context.Context) error {
	marked, err := j.attendanceService.MarkAbsent(ctx, j.guildID)
	if err != nil {
		return fmt.Errorf("failed to mark absences: %w", err)
	}

	if marked > 0 {
		slog.Info("Cron: Marked absent employees", "count", marked)
	}
	return nil
}
