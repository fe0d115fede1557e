package attendance

import "errors"

// Attendance domain errors
var (
	// Clock-in errors
	ErrAlreadyClockedIn  = errors.New("you are already clocked in")
	ErrOnBreak           = errors.New("you are on a break, end it first")
	ErrOnLeaveToday      = errors.New("you are on approved leave today")
	ErrNotInVoiceChannel = errors.New("join a voice channel and share your screen before clocking in")
	ErrNotScreenSharing  = errors.New("start sharing your screen before clocking in")

	// Clock-out / break errors
	ErrNotClockedIn   = errors.New("you are not clocked in")
	ErrNotOnBreak     = errors.New("you are not on a break")
	ErrAlreadyOnBreak = errors.New("you are already on a break")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidStatus      = errors.New("invalid attendance status")
)
