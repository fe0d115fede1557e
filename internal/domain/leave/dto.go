package leave

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"
)

// MaxRequestSpanDays bounds the calendar range of one request so a far-off
// end date is rejected before its working days are enumerated.
const MaxRequestSpanDays = 366

type CreateLeaveRequest struct {
	Actor     employee.Actor
	Type      Type
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD, defaults to StartDate
	Reason    string
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Type.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: sick, casual, annual, unpaid",
		})
	}

	start, startValid := validator.IsValidDate(r.StartDate)
	if !startValid {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		r.EndDate = r.StartDate
	}
	end, endValid := validator.IsValidDate(r.EndDate)
	if !endValid {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startValid && endValid && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}
	if startValid && endValid && end.Sub(start) > MaxRequestSpanDays*24*time.Hour {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: fmt.Sprintf("end_date must be within %d days of start_date", MaxRequestSpanDays),
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DecisionRequest approves or rejects a pending request. Reason is required
// for rejections.
type DecisionRequest struct {
	Actor     employee.Actor
	RequestID string
	Reason    *string
}

func (r *DecisionRequest) Validate(requireReason bool) error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid leave request id",
		})
	}

	if requireReason && (r.Reason == nil || validator.IsEmpty(*r.Reason)) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CancelLeaveRequest struct {
	Actor     employee.Actor
	RequestID string
}

func (r *CancelLeaveRequest) Validate() error {
	if !validator.IsValidUUID(r.RequestID) {
		return validator.ValidationErrors{{
			Field:   "id",
			Message: "id must be a valid leave request id",
		}}
	}
	return nil
}

type LeaveFilter struct {
	Actor   employee.Actor `json:"-"`
	GuildID string         `json:"-"`

	// Mine restricts the listing to the actor's own requests
	Mine       bool    `json:"mine"`
	UserID     *string `json:"user_id,omitempty"`
	EmployeeID *string `json:"-"`
	Status     *string `json:"status,omitempty"`
	Type       *string `json:"type,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LeaveFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected, cancelled",
		})
	}

	if f.Type != nil && !Type(*f.Type).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: sick, casual, annual, unpaid",
		})
	}

	if f.UserID != nil && !validator.IsValidSnowflake(*f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid member id",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveRequestResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	UserID          string  `json:"user_id,omitempty"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	Type            string  `json:"type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CancelledAt     *string `json:"cancelled_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListLeaveResponse struct {
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
	Showing    string                 `json:"showing"`
	Requests   []LeaveRequestResponse `json:"requests"`
}

type TypeBalance struct {
	Type      string `json:"type"`
	Quota     *int   `json:"quota,omitempty"` // nil means unlimited
	Used      int    `json:"used"`
	Pending   int    `json:"pending"`
	Available *int   `json:"available,omitempty"`
}

type BalanceResponse struct {
	UserID   string        `json:"user_id"`
	Year     int           `json:"year"`
	Balances []TypeBalance `json:"balances"`
}
