package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn opens a new work segment for the actor
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes the open segment (and an open break with it)
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	StartBreak(ctx context.Context, req BreakRequest) (AttendanceResponse, error)
	EndBreak(ctx context.Context, req BreakRequest) (AttendanceResponse, error)

	// Status describes what the actor can do right now
	Status(ctx context.Context, actor employee.Actor) (StatusResponse, error)

	// History pages through the actor's (or, for managers, another member's) records
	History(ctx context.Context, filter HistoryFilter) (ListAttendanceResponse, error)

	// Today groups the guild's members by today's attendance state (manager)
	Today(ctx context.Context, actor employee.Actor) (TodayResponse, error)

	// ListAttendance retrieves attendance records with filters (dashboard)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single attendance record by ID
	GetAttendance(ctx context.Context, guildID string, id string) (AttendanceResponse, error)

	// VerifyScreenShare checks every working member's stream and applies strikes
	VerifyScreenShare(ctx context.Context, guildID string) (VerificationResult, error)

	// StreamStopped reminds a working member whose stream just ended
	StreamStopped(ctx context.Context, guildID string, userID string) error

	// CloseStaleSessions closes sessions left open on earlier work dates
	CloseStaleSessions(ctx context.Context, guildID string) (int, error)

	// MarkAbsent records absences for members with no record after the cutoff
	MarkAbsent(ctx context.Context, guildID string) (int, error)
}
