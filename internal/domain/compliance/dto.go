package compliance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"
)

type RecordRequest struct {
	EmployeeID   string
	GuildID      string
	Kind         Kind
	AttendanceID *string
	Details      string
	OccurredAt   time.Time
}

// ReportRequest asks for one member's events in a calendar month.
type ReportRequest struct {
	Actor        employee.Actor
	TargetUserID *string
	Month        string // YYYY-MM, defaults to the current month
}

func (r *ReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month != "" {
		if _, ok := validator.IsValidMonth(r.Month); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		}
	}

	if r.TargetUserID != nil && !validator.IsValidSnowflake(*r.TargetUserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user",
			Message: "user must be a valid member",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SummaryRequest struct {
	Actor     employee.Actor
	StartDate string // YYYY-MM-DD inclusive
	EndDate   string // YYYY-MM-DD inclusive
}

func (r *SummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EventResponse struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	AttendanceID *string `json:"attendance_id,omitempty"`
	Details      string  `json:"details"`
	OccurredAt   string  `json:"occurred_at"`
}

type ReportResponse struct {
	UserID       string          `json:"user_id"`
	EmployeeName string          `json:"employee_name"`
	Month        string          `json:"month"`
	Totals       map[string]int  `json:"totals"`
	Events       []EventResponse `json:"events"`
}

type EmployeeSummary struct {
	UserID       string         `json:"user_id"`
	EmployeeName string         `json:"employee_name"`
	Totals       map[string]int `json:"totals"`
	Total        int            `json:"total"`
}

type SummaryResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Employees []EmployeeSummary `json:"employees"`
}
