package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Lookups return ErrAttendanceNotFound when no row matches.
type AttendanceRepository interface {
	// Create creates a new attendance record
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves attendance by ID with guild isolation
	GetByID(ctx context.Context, id string, guildID string) (Attendance, error)

	// GetByEmployeeAndDate retrieves the record of one work date. With
	// forUpdate the row stays locked until the surrounding transaction ends.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time, forUpdate bool) (Attendance, error)

	// GetOpenSession returns the employee's working/on_break record of any
	// date, locked for update.
	GetOpenSession(ctx context.Context, employeeID string) (Attendance, error)

	// Update writes every mutable column of the record
	Update(ctx context.Context, attendance Attendance) error

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListOpen returns every working/on_break record in the guild
	ListOpen(ctx context.Context, guildID string) ([]Attendance, error)

	// ListStale returns open records whose work date is before the given date
	ListStale(ctx context.Context, guildID string, before time.Time) ([]Attendance, error)

	// ListByDate returns all records of one work date
	ListByDate(ctx context.Context, guildID string, workDate time.Time) ([]Attendance, error)

	// DeleteLeavePlaceholders removes on_leave rows created for a leave request
	DeleteLeavePlaceholders(ctx context.Context, leaveRequestID string) (int64, error)
}
