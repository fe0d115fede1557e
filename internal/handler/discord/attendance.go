package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
)

const historyPageSize = 10

func (h *Handler) clockIn(ctx context.Context, _ *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	att, err := h.attendanceService.ClockIn(ctx, attendance.ClockInRequest{Actor: actor})
	if err != nil {
		return nil, err
	}

	msg := chat.Message{
		Title:  "Clocked in",
		Color:  chat.ColorSuccess,
		Fields: attendanceFields(att),
	}
	if att.IsLate {
		msg.Color = chat.ColorWarning
		msg.Description = fmt.Sprintf("You are %d minutes late today.", att.LateMinutes)
	}
	return ephemeralMessage(msg), nil
}

func (h *Handler) clockOut(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	att, err := h.attendanceService.ClockOut(ctx, attendance.ClockOutRequest{
		Actor: actor,
		Note:  stringPtrOpt(opts, "note"),
	})
	if err != nil {
		return nil, err
	}

	return ephemeralMessage(chat.Message{
		Title:  "Clocked out",
		Color:  chat.ColorInfo,
		Fields: attendanceFields(att),
	}), nil
}

func (h *Handler) clockStatus(ctx context.Context, _ *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	status, err := h.attendanceService.Status(ctx, actor)
	if err != nil {
		return nil, err
	}

	msg := chat.Message{
		Title:       "Attendance status · " + status.WorkDate,
		Description: status.Message,
		Color:       chat.ColorInfo,
		Footer:      "Late after " + status.LateThreshold,
	}
	if status.OpenSession != nil {
		msg.Fields = attendanceFields(*status.OpenSession)
	} else if status.Today != nil {
		msg.Fields = attendanceFields(*status.Today)
	}
	return ephemeralMessage(msg), nil
}

func (h *Handler) breakStart(ctx context.Context, _ *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	att, err := h.attendanceService.StartBreak(ctx, attendance.BreakRequest{Actor: actor})
	if err != nil {
		return nil, err
	}
	return ephemeral(fmt.Sprintf("☕ Break started. You have used %s of break time today.", formatMinutes(att.BreakMinutes))), nil
}

func (h *Handler) breakEnd(ctx context.Context, _ *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	att, err := h.attendanceService.EndBreak(ctx, attendance.BreakRequest{Actor: actor})
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf("✅ Welcome back. Break time today: %s.", formatMinutes(att.BreakMinutes))
	if att.BreakOverrun {
		content += " You have gone over the daily break allowance."
	}
	return ephemeral(content), nil
}

func (h *Handler) attendanceHistory(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	filter := attendance.HistoryFilter{
		Actor:        actor,
		TargetUserID: targetUserID(userOpt(opts, "user"), actor),
		StartDate:    stringPtrOpt(opts, "start_date"),
		EndDate:      stringPtrOpt(opts, "end_date"),
		Page:         1,
		Limit:        historyPageSize,
	}
	msg, err := h.historyPage(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ephemeralMessage(msg), nil
}

// historyPage renders one page of attendance history with its buttons.
// Buttons carry only the target and page, so date filters apply to the
// first page.
func (h *Handler) historyPage(ctx context.Context, filter attendance.HistoryFilter) (chat.Message, error) {
	result, err := h.attendanceService.History(ctx, filter)
	if err != nil {
		return chat.Message{}, err
	}

	subject := filter.Actor.UserID
	if filter.TargetUserID != nil {
		subject = *filter.TargetUserID
	}

	msg := chat.Message{
		Title:  "Attendance history",
		Color:  chat.ColorInfo,
		Footer: fmt.Sprintf("Page %d of %d · %s", result.Page, max(result.TotalPages, 1), result.Showing),
	}

	if len(result.Attendances) == 0 {
		msg.Description = fmt.Sprintf("No attendance records for <@%s>.", subject)
		return msg, nil
	}

	lines := make([]string, 0, len(result.Attendances))
	for _, att := range result.Attendances {
		lines = append(lines, historyLine(att))
	}
	msg.Description = fmt.Sprintf("<@%s>\n%s", subject, strings.Join(lines, "\n"))
	msg.Buttons = pageButtons(viewHistory, subject, result.Page, result.TotalPages)
	return msg, nil
}

func (h *Handler) attendanceToday(ctx context.Context, _ *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	today, err := h.attendanceService.Today(ctx, actor)
	if err != nil {
		return nil, err
	}

	return ephemeralMessage(chat.Message{
		Title: "Today · " + today.WorkDate,
		Color: chat.ColorInfo,
		Fields: []chat.Field{
			{Name: fmt.Sprintf("Working (%d)", len(today.Working)), Value: todayList(today.Working, true)},
			{Name: fmt.Sprintf("On break (%d)", len(today.OnBreak)), Value: todayList(today.OnBreak, true)},
			{Name: fmt.Sprintf("Clocked out (%d)", len(today.ClockedOut)), Value: todayList(today.ClockedOut, false)},
			{Name: fmt.Sprintf("On leave (%d)", len(today.OnLeave)), Value: todayList(today.OnLeave, false)},
			{Name: fmt.Sprintf("Absent (%d)", len(today.Absent)), Value: todayList(today.Absent, false)},
			{Name: fmt.Sprintf("Not yet in (%d)", len(today.NotYetIn)), Value: todayList(today.NotYetIn, false)},
		},
		Timestamp: time.Now(),
	}), nil
}

func attendanceFields(att attendance.AttendanceResponse) []chat.Field {
	fields := []chat.Field{
		{Name: "Date", Value: att.WorkDate, Inline: true},
		{Name: "Status", Value: statusLabel(att.Status), Inline: true},
		{Name: "Worked", Value: formatMinutes(att.WorkedMinutes), Inline: true},
		{Name: "Breaks", Value: formatMinutes(att.BreakMinutes), Inline: true},
	}
	if att.FirstClockIn != nil {
		fields = append(fields, chat.Field{Name: "First clock-in", Value: discordTime(*att.FirstClockIn), Inline: true})
	}
	if att.IsLate {
		fields = append(fields, chat.Field{Name: "Late", Value: fmt.Sprintf("%d min", att.LateMinutes), Inline: true})
	}
	if att.ScreenShareStrikes > 0 {
		fields = append(fields, chat.Field{Name: "Screen share strikes", Value: fmt.Sprintf("%d", att.ScreenShareStrikes), Inline: true})
	}
	return fields
}

func historyLine(att attendance.AttendanceResponse) string {
	line := fmt.Sprintf("`%s` %s · %s", att.WorkDate, statusLabel(att.Status), formatMinutes(att.WorkedMinutes))
	if att.IsLate {
		line += fmt.Sprintf(" · late %dm", att.LateMinutes)
	}
	if att.BreakOverrun {
		line += " · break overrun"
	}
	return line
}

func todayList(entries []attendance.TodayEntry, withSince bool) string {
	if len(entries) == 0 {
		return "-"
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := "<@" + e.UserID + ">"
		if withSince && e.Since != nil {
			line += " since " + discordTime(*e.Since)
		}
		if e.IsLate {
			line += " (late)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func statusLabel(status string) string {
	switch attendance.Status(status) {
	case attendance.StatusWorking:
		return "🟢 Working"
	case attendance.StatusOnBreak:
		return "☕ On break"
	case attendance.StatusClockedOut:
		return "⚪ Clocked out"
	case attendance.StatusAutoClosed:
		return "⏹ Auto-closed"
	case attendance.StatusAbsent:
		return "🔴 Absent"
	case attendance.StatusOnLeave:
		return "🌴 On leave"
	}
	return status
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// discordTime renders an RFC3339 timestamp as a client-localised short time.
func discordTime(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("<t:%d:t>", t.Unix())
}

func discordDate(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("<t:%d:d>", t.Unix())
}
