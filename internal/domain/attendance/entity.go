package attendance

import (
	"time"
)

type Status string

const (
	StatusWorking    Status = "working"
	StatusOnBreak    Status = "on_break"
	StatusClockedOut Status = "clocked_out"
	StatusAutoClosed Status = "auto_closed"
	StatusAbsent     Status = "absent"
	StatusOnLeave    Status = "on_leave"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusWorking, StatusOnBreak, StatusClockedOut, StatusAutoClosed, StatusAbsent, StatusOnLeave:
		return true
	}
	return false
}

// IsOpen reports whether the record still has a running segment.
func (s Status) IsOpen() bool {
	return s == StatusWorking || s == StatusOnBreak
}

// Attendance is one employee's record for one UTC work date. Segments are
// stored as parallel arrays: ClockIns[i] pairs with ClockOuts[i], and
// BreakStarts[j] with BreakEnds[j]. A trailing unpaired entry is the open
// segment or break.
type Attendance struct {
	ID                 string
	EmployeeID         string
	GuildID            string
	WorkDate           time.Time
	ClockIns           []time.Time
	ClockOuts          []time.Time
	BreakStarts        []time.Time
	BreakEnds          []time.Time
	Status             Status
	IsLate             bool
	LateMinutes        int
	WorkedMinutes      int
	BreakMinutes       int
	ScreenShareStrikes int
	LastVerifiedAt     *time.Time
	LeaveRequestID     *string
	Notes              *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DTO
	EmployeeName   *string
	EmployeeUserID *string
}

func (a *Attendance) HasOpenSegment() bool {
	return len(a.ClockIns) > len(a.ClockOuts)
}

func (a *Attendance) HasOpenBreak() bool {
	return len(a.BreakStarts) > len(a.BreakEnds)
}

// FirstClockIn returns the earliest clock-in of the day, if any.
func (a *Attendance) FirstClockIn() *time.Time {
	if len(a.ClockIns) == 0 {
		return nil
	}
	t := a.ClockIns[0]
	return &t
}

// LastClockIn returns the clock-in of the most recent segment.
func (a *Attendance) LastClockIn() *time.Time {
	if len(a.ClockIns) == 0 {
		return nil
	}
	t := a.ClockIns[len(a.ClockIns)-1]
	return &t
}

// LastClockOut returns the clock-out of the most recent closed segment.
func (a *Attendance) LastClockOut() *time.Time {
	if len(a.ClockOuts) == 0 {
		return nil
	}
	t := a.ClockOuts[len(a.ClockOuts)-1]
	return &t
}

// BreakDuration sums every break; an open break counts up to now.
func (a *Attendance) BreakDuration(now time.Time) time.Duration {
	var total time.Duration
	for i, start := range a.BreakStarts {
		end := now
		if i < len(a.BreakEnds) {
			end = a.BreakEnds[i]
		}
		if end.After(start) {
			total += end.Sub(start)
		}
	}
	return total
}

// WorkedDuration sums every segment minus the breaks taken inside it. An open
// segment or break counts up to now.
func (a *Attendance) WorkedDuration(now time.Time) time.Duration {
	var total time.Duration
	for i, in := range a.ClockIns {
		out := now
		if i < len(a.ClockOuts) {
			out = a.ClockOuts[i]
		}
		if !out.After(in) {
			continue
		}
		total += out.Sub(in)

		for j, bs := range a.BreakStarts {
			be := now
			if j < len(a.BreakEnds) {
				be = a.BreakEnds[j]
			}
			total -= overlap(in, out, bs, be)
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// Recalculate refreshes the derived minute counters.
func (a *Attendance) Recalculate(now time.Time) {
	a.WorkedMinutes = int(a.WorkedDuration(now).Minutes())
	a.BreakMinutes = int(a.BreakDuration(now).Minutes())
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
