package leave

import "errors"

var (
	ErrLeaveRequestNotFound  = errors.New("leave request not found")
	ErrLeaveAlreadyProcessed = errors.New("leave request already processed")
	ErrInsufficientQuota     = errors.New("insufficient leave quota")
	ErrOverlappingLeave      = errors.New("leave overlaps another pending or approved request")
	ErrNoWorkingDays         = errors.New("leave range contains no working days")
	ErrTooManyDays           = errors.New("leave range exceeds the maximum days per request")

	ErrSickWindowNotOpen  = errors.New("sick leave for that day cannot be requested yet")
	ErrSickWindowClosed   = errors.New("sick leave for that day can no longer be requested")
	ErrInsufficientNotice = errors.New("leave must be requested further in advance")

	ErrSelfApproval    = errors.New("you cannot review your own leave request")
	ErrNotRequestOwner = errors.New("only the requester can cancel this leave request")
	ErrLeaveStarted    = errors.New("leave has already started and cannot be cancelled")
	ErrReasonRequired  = errors.New("a reason is required")
)
