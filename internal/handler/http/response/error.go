package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"
)

// ErrInvalidToken is returned by the auth middleware for missing, expired or
// wrongly typed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, ErrInvalidToken):
		Unauthorized(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrPermissionDenied):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrInvalidRole),
		errors.Is(err, employee.ErrCannotChangeSelf):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, attendance.ErrAlreadyOnBreak),
		errors.Is(err, attendance.ErrOnBreak),
		errors.Is(err, attendance.ErrOnLeaveToday):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotClockedIn),
		errors.Is(err, attendance.ErrNotOnBreak),
		errors.Is(err, attendance.ErrNotInVoiceChannel),
		errors.Is(err, attendance.ErrNotScreenSharing),
		errors.Is(err, attendance.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveAlreadyProcessed),
		errors.Is(err, leave.ErrOverlappingLeave),
		errors.Is(err, leave.ErrLeaveStarted):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrSelfApproval),
		errors.Is(err, leave.ErrNotRequestOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrInsufficientQuota),
		errors.Is(err, leave.ErrNoWorkingDays),
		errors.Is(err, leave.ErrTooManyDays),
		errors.Is(err, leave.ErrSickWindowNotOpen),
		errors.Is(err, leave.ErrSickWindowClosed),
		errors.Is(err, leave.ErrInsufficientNotice),
		errors.Is(err, leave.ErrReasonRequired):
		BadRequest(w, err.Error(), nil)

	// Compliance domain errors
	case errors.Is(err, compliance.ErrInvalidKind),
		errors.Is(err, compliance.ErrInvalidRange):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
