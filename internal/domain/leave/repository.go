package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	// GetByID returns ErrLeaveRequestNotFound when missing. With forUpdate the
	// row stays locked until the surrounding transaction ends.
	GetByID(ctx context.Context, id string, guildID string, forUpdate bool) (LeaveRequest, error)

	Update(ctx context.Context, request LeaveRequest) error
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int64, error)

	// HasOverlap checks pending/approved requests of the employee intersecting [start, end]
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error)

	// SumDays totals the days of the employee's requests of a type starting in year
	SumDays(ctx context.Context, employeeID string, leaveType Type, year int, statuses []Status) (int, error)
}
