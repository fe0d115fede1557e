package discord

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"
)

const genericFailure = "Something went wrong on our side. Please try again in a moment."

// userFacing lists the domain errors whose message is shown as is.
var userFacing = []error{
	employee.ErrEmployeeNotFound,
	employee.ErrEmployeeInactive,
	employee.ErrPermissionDenied,
	employee.ErrInvalidRole,
	employee.ErrCannotChangeSelf,

	attendance.ErrAlreadyClockedIn,
	attendance.ErrOnBreak,
	attendance.ErrOnLeaveToday,
	attendance.ErrNotInVoiceChannel,
	attendance.ErrNotScreenSharing,
	attendance.ErrNotClockedIn,
	attendance.ErrNotOnBreak,
	attendance.ErrAlreadyOnBreak,
	attendance.ErrAttendanceNotFound,
	attendance.ErrInvalidStatus,

	leave.ErrLeaveRequestNotFound,
	leave.ErrLeaveAlreadyProcessed,
	leave.ErrInsufficientQuota,
	leave.ErrOverlappingLeave,
	leave.ErrNoWorkingDays,
	leave.ErrTooManyDays,
	leave.ErrSickWindowNotOpen,
	leave.ErrSickWindowClosed,
	leave.ErrInsufficientNotice,
	leave.ErrSelfApproval,
	leave.ErrNotRequestOwner,
	leave.ErrLeaveStarted,
	leave.ErrReasonRequired,

	compliance.ErrInvalidKind,
	compliance.ErrInvalidRange,
}

// errorMessage maps an error to the text shown to the member. ok is false
// for unexpected errors, which get a generic message.
func errorMessage(err error) (msg string, ok bool) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		lines := make([]string, 0, len(validationErrs))
		for _, v := range validationErrs {
			lines = append(lines, "• "+v.Message)
		}
		return strings.Join(lines, "\n"), true
	}

	for _, known := range userFacing {
		if errors.Is(err, known) {
			return capitalize(known.Error()) + ".", true
		}
	}

	return genericFailure, false
}

// replyError renders err as an ephemeral reply and classifies it for
// metrics: "rejected" for rule violations, "error" for everything else.
func replyError(err error) (*discordgo.InteractionResponse, string) {
	msg, ok := errorMessage(err)
	outcome := "rejected"
	if !ok {
		outcome = "error"
	}
	return ephemeral("⚠️ " + msg), outcome
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
