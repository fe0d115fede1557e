package config

import (
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
)

// AttendancePolicy converts the attendance settings into domain rules.
// Load has already validated the clock values.
func (c *Config) AttendancePolicy() attendance.Policy {
	workStart, _ := ParseClock(c.Attendance.WorkStart)
	return attendance.Policy{
		WorkStart:          workStart,
		LateGrace:          c.Attendance.LateGrace,
		BreakAllowance:     c.Attendance.BreakAllowance,
		RequireScreenShare: c.Attendance.RequireScreenShare,
		ScreenShareStrikes: c.Attendance.ScreenShareStrikes,
		StaleSessionCap:    c.Attendance.StaleSessionCap,
		AbsentAfter:        c.Attendance.AbsentAfter,
		WorkDays:           c.Attendance.WorkDays,
	}
}

// LeavePolicy converts the leave settings into domain rules. Unpaid leave
// has no quota.
func (c *Config) LeavePolicy() leave.Policy {
	anchor, _ := ParseClock(c.Leave.Anchor)
	return leave.Policy{
		Anchor:            anchor,
		SickWindowOpen:    c.Leave.SickWindowOpen,
		SickWindowClose:   c.Leave.SickWindowClose,
		CasualNotice:      c.Leave.CasualNotice,
		AnnualNotice:      c.Leave.AnnualNotice,
		MaxDaysPerRequest: c.Leave.MaxDaysPerRequest,
		Quotas: map[leave.Type]int{
			leave.TypeSick:   c.Leave.SickQuota,
			leave.TypeCasual: c.Leave.CasualQuota,
			leave.TypeAnnual: c.Leave.AnnualQuota,
		},
		WorkDays: c.Attendance.WorkDays,
	}
}
