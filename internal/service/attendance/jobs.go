package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/google/uuid"
)

type verifyOutcome int

const (
	outcomeSkipped verifyOutcome = iota
	outcomeVerified
	outcomeStruck
	outcomeAutoClockedOut
)

// VerifyScreenShare implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) VerifyScreenShare(ctx context.Context, guildID string) (attendance.VerificationResult, error) {
	var result attendance.VerificationResult
	if !a.policy.RequireScreenShare {
		return result, nil
	}

	open, err := a.AttendanceRepository.ListOpen(ctx, guildID)
	if err != nil {
		return result, fmt.Errorf("failed to list open sessions: %w", err)
	}

	for _, att := range open {
		if att.Status != attendance.StatusWorking {
			continue
		}
		result.Checked++

		userID := strPtrValue(att.EmployeeUserID)
		voice, err := a.presence.VoiceStatus(guildID, userID)
		if err != nil {
			result.Failed++
			slog.Warn("Failed to read voice state", "guild_id", guildID, "user_id", userID, "error", err)
			continue
		}

		outcome, saved, err := a.applyVerification(ctx, att.EmployeeID, att.ID, voice.Streaming)
		if err != nil {
			result.Failed++
			slog.Error("Failed to apply screen share verification", "guild_id", guildID, "user_id", userID, "error", err)
			continue
		}

		switch outcome {
		case outcomeVerified:
			result.Verified++
		case outcomeStruck:
			result.Struck++
			a.notify(ctx, notification.Notice{
				GuildID:     guildID,
				RecipientID: userID,
				Type:        notification.TypeScreenShareWarning,
				Severity:    notification.SeverityWarning,
				Title:       "Screen share not detected",
				Message: fmt.Sprintf("You are clocked in but not sharing your screen. Warning %d of %d; at %d you will be clocked out.",
					saved.ScreenShareStrikes, a.policy.ScreenShareStrikes, a.policy.ScreenShareStrikes),
			})
		case outcomeAutoClockedOut:
			result.AutoClockedOut++
			a.metrics.RecordAttendance("auto_clock_out")
			a.notify(ctx, notification.Notice{
				GuildID:     guildID,
				RecipientID: userID,
				Type:        notification.TypeAutoClockOut,
				Severity:    notification.SeverityDanger,
				Title:       "Clocked out automatically",
				Message:     "Your screen share was missing for too many checks in a row, so you were clocked out.",
				Fields: []notification.Field{
					{Name: "Worked", Value: formatMinutes(saved.WorkedMinutes), Inline: true},
				},
			})
			a.announce(ctx, notification.Notice{
				GuildID:  guildID,
				Type:     notification.TypeAutoClockOut,
				Severity: notification.SeverityDanger,
				Title:    "Automatic clock-out",
				Message:  fmt.Sprintf("<@%s> was clocked out after %d missed screen share checks.", userID, saved.ScreenShareStrikes),
			})
		}
	}

	slog.Info("Screen share verification finished",
		"guild_id", guildID,
		"checked", result.Checked,
		"verified", result.Verified,
		"struck", result.Struck,
		"auto_clocked_out", result.AutoClockedOut,
		"failed", result.Failed,
	)
	return result, nil
}

// applyVerification re-reads the session under lock so a clock-out racing the
// check is never struck.
func (a *AttendanceServiceImpl) applyVerification(ctx context.Context, employeeID, attendanceID string, streaming bool) (verifyOutcome, attendance.Attendance, error) {
	nowUTC := a.now().UTC()
	outcome := outcomeSkipped

	var saved attendance.Attendance
	err := a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		att, err := a.AttendanceRepository.GetOpenSession(ctx, employeeID)
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if att.ID != attendanceID || att.Status != attendance.StatusWorking {
			return nil
		}

		if streaming {
			att.ScreenShareStrikes = 0
			att.LastVerifiedAt = &nowUTC
			att.Recalculate(nowUTC)
			outcome = outcomeVerified
			saved = att
			return a.AttendanceRepository.Update(ctx, att)
		}

		att.ScreenShareStrikes++
		outcome = outcomeStruck
		if err := a.complianceService.Record(ctx, compliance.RecordRequest{
			EmployeeID:   att.EmployeeID,
			GuildID:      att.GuildID,
			Kind:         compliance.KindMissingScreenShare,
			AttendanceID: &att.ID,
			Details:      fmt.Sprintf("strike %d of %d", att.ScreenShareStrikes, a.policy.ScreenShareStrikes),
			OccurredAt:   nowUTC,
		}); err != nil {
			return err
		}

		if att.ScreenShareStrikes >= a.policy.ScreenShareStrikes {
			a.closeSession(&att, nowUTC, attendance.StatusClockedOut)
			outcome = outcomeAutoClockedOut
			if err := a.complianceService.Record(ctx, compliance.RecordRequest{
				EmployeeID:   att.EmployeeID,
				GuildID:      att.GuildID,
				Kind:         compliance.KindAutoClockedOut,
				AttendanceID: &att.ID,
				Details:      fmt.Sprintf("clocked out after %d missed screen share checks", att.ScreenShareStrikes),
				OccurredAt:   nowUTC,
			}); err != nil {
				return err
			}
		} else {
			att.Recalculate(nowUTC)
		}

		saved = att
		return a.AttendanceRepository.Update(ctx, att)
	})
	if err != nil {
		return outcomeSkipped, attendance.Attendance{}, err
	}
	return outcome, saved, nil
}

// StreamStopped implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StreamStopped(ctx context.Context, guildID string, userID string) error {
	if !a.policy.RequireScreenShare {
		return nil
	}

	// Voice events arrive for every member, so look the session up without
	// registering anyone.
	open, err := a.AttendanceRepository.ListOpen(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to list open sessions: %w", err)
	}

	working := false
	for _, att := range open {
		if strPtrValue(att.EmployeeUserID) == userID && att.Status == attendance.StatusWorking {
			working = true
			break
		}
	}
	if !working {
		return nil
	}

	a.notify(ctx, notification.Notice{
		GuildID:     guildID,
		RecipientID: userID,
		Type:        notification.TypeStreamStopped,
		Severity:    notification.SeverityWarning,
		Title:       "Screen share stopped",
		Message:     "You are still clocked in. Resume sharing your screen, or take a break or clock out.",
	})
	return nil
}

// CloseStaleSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CloseStaleSessions(ctx context.Context, guildID string) (int, error) {
	nowUTC := a.now().UTC()

	stale, err := a.AttendanceRepository.ListStale(ctx, guildID, attendance.WorkDate(nowUTC))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	closed := 0
	for _, att := range stale {
		var didClose bool
		err := a.db.WithinTransaction(ctx, func(ctx context.Context) error {
			locked, err := a.AttendanceRepository.GetOpenSession(ctx, att.EmployeeID)
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if locked.ID != att.ID {
				return nil
			}

			closeAt := a.policy.StaleClosure(locked)
			a.closeSession(&locked, closeAt, attendance.StatusAutoClosed)
			if err := a.AttendanceRepository.Update(ctx, locked); err != nil {
				return err
			}

			didClose = true
			return a.complianceService.Record(ctx, compliance.RecordRequest{
				EmployeeID:   locked.EmployeeID,
				GuildID:      locked.GuildID,
				Kind:         compliance.KindAutoClosed,
				AttendanceID: &locked.ID,
				Details:      fmt.Sprintf("session left open, closed at %s", closeAt.Format(time.RFC3339)),
				OccurredAt:   nowUTC,
			})
		})
		if err != nil {
			slog.Error("Failed to close stale session", "guild_id", guildID, "attendance_id", att.ID, "error", err)
			continue
		}
		if didClose {
			closed++
		}
	}

	if closed > 0 {
		slog.Info("Stale sessions closed", "guild_id", guildID, "count", closed)
	}
	return closed, nil
}

// MarkAbsent implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkAbsent(ctx context.Context, guildID string) (int, error) {
	nowUTC := a.now().UTC()
	workDate := attendance.WorkDate(nowUTC)

	if !a.policy.IsWorkDay(workDate) || nowUTC.Before(a.policy.AbsentCutoff(workDate)) {
		return 0, nil
	}

	members, err := a.employeeService.ListActive(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}

	records, err := a.AttendanceRepository.ListByDate(ctx, guildID, workDate)
	if err != nil {
		return 0, fmt.Errorf("failed to list attendances: %w", err)
	}

	hasRecord := make(map[string]bool, len(records))
	for _, att := range records {
		hasRecord[att.EmployeeID] = true
	}

	marked := 0
	for _, m := range members {
		if hasRecord[m.ID] {
			continue
		}

		var didMark bool
		err := a.db.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, m.ID, workDate, true)
			if err == nil {
				return nil
			}
			if !errors.Is(err, attendance.ErrAttendanceNotFound) {
				return err
			}

			created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
				ID:         uuid.Must(uuid.NewV7()).String(),
				EmployeeID: m.ID,
				GuildID:    guildID,
				WorkDate:   workDate,
				Status:     attendance.StatusAbsent,
			})
			if err != nil {
				return err
			}

			didMark = true
			return a.complianceService.Record(ctx, compliance.RecordRequest{
				EmployeeID:   m.ID,
				GuildID:      guildID,
				Kind:         compliance.KindAbsent,
				AttendanceID: &created.ID,
				Details:      fmt.Sprintf("no clock-in by %s", a.policy.AbsentCutoff(workDate).Format("15:04 UTC")),
				OccurredAt:   nowUTC,
			})
		})
		if err != nil {
			slog.Error("Failed to mark absence", "guild_id", guildID, "user_id", m.UserID, "error", err)
			continue
		}
		if didMark {
			marked++
		}
	}

	if marked > 0 {
		slog.Info("Absences recorded", "guild_id", guildID, "date", workDate.Format("2006-01-02"), "count", marked)
	}
	return marked, nil
}
