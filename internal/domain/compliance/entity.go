package compliance

import "time"

type Kind string

const (
	KindLate               Kind = "late"
	KindMissingScreenShare Kind = "missing_screen_share"
	KindAutoClockedOut     Kind = "auto_clocked_out"
	KindBreakOverrun       Kind = "break_overrun"
	KindAbsent             Kind = "absent"
	KindAutoClosed         Kind = "auto_closed"
)

// AllKinds returns every event kind in report order
func AllKinds() []Kind {
	return []Kind{
		KindLate,
		KindAbsent,
		KindBreakOverrun,
		KindMissingScreenShare,
		KindAutoClockedOut,
		KindAutoClosed,
	}
}

func (k Kind) IsValid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Event is one recorded policy breach.
type Event struct {
	ID           string
	EmployeeID   string
	GuildID      string
	Kind         Kind
	AttendanceID *string
	Details      string
	OccurredAt   time.Time
	CreatedAt    time.Time

	// DTO
	EmployeeName   *string
	EmployeeUserID *string
}

// Count is one row of an aggregated summary.
type Count struct {
	EmployeeID   string
	UserID       string
	EmployeeName string
	Kind         Kind
	Total        int
}
