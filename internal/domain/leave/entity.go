package leave

import (
	"time"
)

type Type string

const (
	TypeSick   Type = "sick"
	TypeCasual Type = "casual"
	TypeAnnual Type = "annual"
	TypeUnpaid Type = "unpaid"
)

// AllTypes returns every leave type in display order
func AllTypes() []Type {
	return []Type{TypeSick, TypeCasual, TypeAnnual, TypeUnpaid}
}

func (t Type) IsValid() bool {
	switch t {
	case TypeSick, TypeCasual, TypeAnnual, TypeUnpaid:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	GuildID    string
	Type       Type

	StartDate time.Time
	EndDate   time.Time
	Days      int // working days covered

	Reason string

	Status          Status
	DecidedBy       *string // user id of the reviewer
	DecidedAt       *time.Time
	RejectionReason *string
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName   *string
	EmployeeUserID *string
}

// HasStarted reports whether the leave's first day has begun at now.
func (r LeaveRequest) HasStarted(now time.Time) bool {
	return !now.UTC().Before(r.StartDate)
}
