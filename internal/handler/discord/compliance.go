package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
)

// maxReportEvents bounds the event lines in one report embed.
const maxReportEvents = 15

var kindLabels = map[compliance.Kind]string{
	compliance.KindLate:               "Late arrivals",
	compliance.KindAbsent:             "Absences",
	compliance.KindBreakOverrun:       "Break overruns",
	compliance.KindMissingScreenShare: "Missed screen shares",
	compliance.KindAutoClockedOut:     "Auto clock-outs",
	compliance.KindAutoClosed:         "Unclosed sessions",
}

func (h *Handler) complianceReport(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	report, err := h.complianceService.Report(ctx, compliance.ReportRequest{
		Actor:        actor,
		TargetUserID: targetUserID(userOpt(opts, "user"), actor),
		Month:        stringOpt(opts, "month"),
	})
	if err != nil {
		return nil, err
	}

	msg := chat.Message{
		Title: fmt.Sprintf("Compliance report · %s", report.Month),
		Color: chat.ColorInfo,
	}

	total := 0
	for _, kind := range compliance.AllKinds() {
		count := report.Totals[string(kind)]
		total += count
		msg.Fields = append(msg.Fields, chat.Field{Name: kindLabel(kind), Value: fmt.Sprintf("%d", count), Inline: true})
	}

	if total == 0 {
		msg.Color = chat.ColorSuccess
		msg.Description = fmt.Sprintf("<@%s> has a clean record this month.", report.UserID)
		return ephemeralMessage(msg), nil
	}

	msg.Color = chat.ColorWarning
	lines := []string{fmt.Sprintf("<@%s>", report.UserID)}
	for idx, ev := range report.Events {
		if idx == maxReportEvents {
			lines = append(lines, fmt.Sprintf("… and %d more", len(report.Events)-maxReportEvents))
			break
		}
		line := fmt.Sprintf("%s %s", discordDate(ev.OccurredAt), kindLabel(compliance.Kind(ev.Kind)))
		if ev.Details != "" {
			line += " · " + ev.Details
		}
		lines = append(lines, line)
	}
	msg.Description = strings.Join(lines, "\n")
	return ephemeralMessage(msg), nil
}

func kindLabel(kind compliance.Kind) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return string(kind)
}
