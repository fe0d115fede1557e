package attendance

import (
	"strings"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	Actor employee.Actor
}

func (r *ClockInRequest) Validate() error {
	return validateActor(r.Actor)
}

type ClockOutRequest struct {
	Actor employee.Actor
	Note  *string
}

func (r *ClockOutRequest) Validate() error {
	if err := validateActor(r.Actor); err != nil {
		return err
	}
	if r.Note != nil && len(*r.Note) > 500 {
		return validator.ValidationErrors{{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		}}
	}
	return nil
}

type BreakRequest struct {
	Actor employee.Actor
}

func (r *BreakRequest) Validate() error {
	return validateActor(r.Actor)
}

func validateActor(actor employee.Actor) error {
	var errs validator.ValidationErrors

	if !validator.IsValidSnowflake(actor.GuildID) {
		errs = append(errs, validator.ValidationError{
			Field:   "guild_id",
			Message: "command must be used inside the server",
		})
	}

	if !validator.IsValidSnowflake(actor.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SegmentResponse struct {
	Start   string  `json:"start"`
	End     *string `json:"end,omitempty"`
	Minutes int     `json:"minutes"`
}

type AttendanceResponse struct {
	ID                 string            `json:"id"`
	EmployeeID         string            `json:"employee_id"`
	UserID             string            `json:"user_id,omitempty"`
	EmployeeName       string            `json:"employee_name,omitempty"`
	WorkDate           string            `json:"work_date"`
	Status             string            `json:"status"`
	Segments           []SegmentResponse `json:"segments"`
	Breaks             []SegmentResponse `json:"breaks"`
	FirstClockIn       *string           `json:"first_clock_in,omitempty"`
	LastClockOut       *string           `json:"last_clock_out,omitempty"`
	IsLate             bool              `json:"is_late"`
	LateMinutes        int               `json:"late_minutes"`
	WorkedMinutes      int               `json:"worked_minutes"`
	WorkingHours       float64           `json:"working_hours"`
	BreakMinutes       int               `json:"break_minutes"`
	BreakOverrun       bool              `json:"break_overrun"`
	ScreenShareStrikes int               `json:"screen_share_strikes"`
	LastVerifiedAt     *string           `json:"last_verified_at,omitempty"`
	LeaveRequestID     *string           `json:"leave_request_id,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
	CreatedAt          string            `json:"created_at"`
	UpdatedAt          string            `json:"updated_at"`
}

// ========================================
// ATTENDANCE STATUS DTOs
// ========================================

type StatusResponse struct {
	WorkDate      string              `json:"work_date"`
	IsWorkDay     bool                `json:"is_work_day"`
	Today         *AttendanceResponse `json:"today,omitempty"`
	OpenSession   *AttendanceResponse `json:"open_session,omitempty"`
	CanClockIn    bool                `json:"can_clock_in"`
	CanClockOut   bool                `json:"can_clock_out"`
	CanStartBreak bool                `json:"can_start_break"`
	CanEndBreak   bool                `json:"can_end_break"`
	LateThreshold string              `json:"late_threshold"`
	Message       string              `json:"message"`
}

type TodayEntry struct {
	UserID        string  `json:"user_id"`
	EmployeeName  string  `json:"employee_name"`
	Since         *string `json:"since,omitempty"`
	WorkedMinutes int     `json:"worked_minutes"`
	IsLate        bool    `json:"is_late"`
}

type TodayResponse struct {
	WorkDate   string       `json:"work_date"`
	Working    []TodayEntry `json:"working"`
	OnBreak    []TodayEntry `json:"on_break"`
	ClockedOut []TodayEntry `json:"clocked_out"`
	OnLeave    []TodayEntry `json:"on_leave"`
	Absent     []TodayEntry `json:"absent"`
	NotYetIn   []TodayEntry `json:"not_yet_in"`
}

type VerificationResult struct {
	Checked        int `json:"checked"`
	Verified       int `json:"verified"`
	Struck         int `json:"struck"`
	AutoClockedOut int `json:"auto_clocked_out"`
	Failed         int `json:"failed"`
}

// ========================================
// LISTING DTOs
// ========================================

// HistoryFilter pages through one member's records from chat.
type HistoryFilter struct {
	Actor        employee.Actor
	TargetUserID *string // other member, managers only
	StartDate    *string // YYYY-MM-DD
	EndDate      *string // YYYY-MM-DD
	Page         int
	Limit        int
}

func (f *HistoryFilter) Validate() error {
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

	if f.Limit < 0 || f.Limit > 25 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 25",
		})
	}
	if f.Limit == 0 {
		f.Limit = 10
	}

	if f.TargetUserID != nil && !validator.IsValidSnowflake(*f.TargetUserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user",
			Message: "user must be a valid member",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceFilter struct {
	GuildID string `json:"-"`

	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	UserID     *string `json:"user_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`
	LateOnly   bool    `json:"late_only,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // work_date, employee_name, worked_minutes, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	// Status validation
	if f.Status != nil {
		if !Status(*f.Status).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: working, on_break, clocked_out, auto_closed, absent, on_leave",
			})
		}
	}

	if f.UserID != nil && !validator.IsValidSnowflake(*f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid member id",
		})
	}

	// Date validation
	dates := []struct {
		field string
		value *string
	}{
		{"date", f.Date},
		{"start_date", f.StartDate},
		{"end_date", f.EndDate},
	}
	for _, d := range dates {
		if d.value != nil && *d.value != "" {
			if _, valid := validator.IsValidDate(*d.value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   d.field,
					Message: d.field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	// Sort validation
	if f.SortBy != "" {
		validSortFields := []string{"work_date", "employee_name", "worked_minutes", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: work_date, employee_name, worked_minutes, status",
			})
		}
	} else {
		f.SortBy = "work_date" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}
