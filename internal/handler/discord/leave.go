package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
)

const (
	reasonInputID   = "reason"
	leavesPageSize  = 10
	maxReasonLength = 500
)

func (h *Handler) leaveRequest(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	req := leave.CreateLeaveRequest{
		Actor:     actor,
		Type:      leave.Type(stringOpt(opts, "type")),
		StartDate: stringOpt(opts, "start_date"),
		EndDate:   stringOpt(opts, "end_date"),
		Reason:    stringOpt(opts, "reason"),
	}

	result, err := h.leaveService.CreateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	return ephemeralMessage(chat.Message{
		Title:       "Leave requested",
		Description: "Your request is waiting for a manager's review.",
		Color:       chat.ColorInfo,
		Fields:      leaveFields(result),
		Footer:      "Request " + result.ID,
	}), nil
}

func (h *Handler) leaveCancel(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	result, err := h.leaveService.Cancel(ctx, leave.CancelLeaveRequest{
		Actor:     actor,
		RequestID: stringOpt(opts, "id"),
	})
	if err != nil {
		return nil, err
	}

	return ephemeral(fmt.Sprintf("🗑 Cancelled your %s leave from %s to %s.", result.Type, result.StartDate, result.EndDate)), nil
}

func (h *Handler) leaveList(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	filter := leave.LeaveFilter{
		Actor:   actor,
		GuildID: actor.GuildID,
		Status:  stringPtrOpt(opts, "status"),
		Page:    1,
		Limit:   leavesPageSize,
	}

	// Without a member the list is the invoker's own; managers pick a
	// member or see everyone through the dashboard.
	if target := targetUserID(userOpt(opts, "user"), actor); target != nil {
		filter.UserID = target
	} else {
		filter.Mine = true
	}

	msg, err := h.leavesPage(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ephemeralMessage(msg), nil
}

// leavesPage renders one page of leave requests with its buttons.
func (h *Handler) leavesPage(ctx context.Context, filter leave.LeaveFilter) (chat.Message, error) {
	if err := filter.Validate(); err != nil {
		return chat.Message{}, err
	}

	result, err := h.leaveService.ListRequests(ctx, filter)
	if err != nil {
		return chat.Message{}, err
	}

	subject := filter.Actor.UserID
	if filter.UserID != nil {
		subject = *filter.UserID
	}

	msg := chat.Message{
		Title:  "Leave requests",
		Color:  chat.ColorInfo,
		Footer: fmt.Sprintf("Page %d of %d · %s", result.Page, max(result.TotalPages, 1), result.Showing),
	}

	if len(result.Requests) == 0 {
		msg.Description = fmt.Sprintf("No leave requests for <@%s>.", subject)
		return msg, nil
	}

	lines := make([]string, 0, len(result.Requests))
	for _, r := range result.Requests {
		lines = append(lines, fmt.Sprintf("%s **%s** %s → %s (%d days)\n`%s`",
			leaveStatusIcon(r.Status), r.Type, r.StartDate, r.EndDate, r.Days, r.ID))
	}
	msg.Description = fmt.Sprintf("<@%s>\n%s", subject, strings.Join(lines, "\n"))

	// Status filters are not carried across pages.
	if filter.Status == nil {
		msg.Buttons = pageButtons(viewLeaves, subject, result.Page, result.TotalPages)
	}
	return msg, nil
}

func (h *Handler) leaveBalance(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	balance, err := h.leaveService.Balance(ctx, actor, intOpt(opts, "year"))
	if err != nil {
		return nil, err
	}

	fields := make([]chat.Field, 0, len(balance.Balances))
	for _, b := range balance.Balances {
		value := fmt.Sprintf("Used %d · Pending %d", b.Used, b.Pending)
		if b.Quota != nil && b.Available != nil {
			value = fmt.Sprintf("%d of %d left\n%s", *b.Available, *b.Quota, value)
		} else {
			value = "Unlimited\n" + value
		}
		fields = append(fields, chat.Field{Name: capitalize(b.Type), Value: value, Inline: true})
	}

	return ephemeralMessage(chat.Message{
		Title:  fmt.Sprintf("Leave balance · %d", balance.Year),
		Color:  chat.ColorInfo,
		Fields: fields,
	}), nil
}

func (h *Handler) leaveApprove(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	result, err := h.leaveService.Approve(ctx, leave.DecisionRequest{
		Actor:     actor,
		RequestID: stringOpt(opts, "id"),
	})
	if err != nil {
		return nil, err
	}
	return ephemeralMessage(reviewedMessage(result)), nil
}

func (h *Handler) leaveReject(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)
	reason := stringOpt(opts, "reason")
	result, err := h.leaveService.Reject(ctx, leave.DecisionRequest{
		Actor:     actor,
		RequestID: stringOpt(opts, "id"),
		Reason:    &reason,
	})
	if err != nil {
		return nil, err
	}
	return ephemeralMessage(reviewedMessage(result)), nil
}

// approveButton approves from the review channel and replaces the review
// message so its buttons cannot be pressed twice.
func (h *Handler) approveButton(ctx context.Context, actor employee.Actor, requestID string) (*discordgo.InteractionResponse, error) {
	result, err := h.leaveService.Approve(ctx, leave.DecisionRequest{
		Actor:     actor,
		RequestID: requestID,
	})
	if err != nil {
		return nil, err
	}
	return updateMessage(reviewedMessage(result)), nil
}

// rejectModal asks the reviewer for a rejection reason.
func rejectModal(requestID string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: leave.ActionRejectModal + requestID,
			Title:    "Reject leave request",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    reasonInputID,
							Label:       "Reason",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "Let the member know why",
							Required:    true,
							MaxLength:   maxReasonLength,
						},
					},
				},
			},
		},
	}
}

func (h *Handler) rejectModalSubmit(ctx context.Context, actor employee.Actor, requestID, reason string) (*discordgo.InteractionResponse, error) {
	result, err := h.leaveService.Reject(ctx, leave.DecisionRequest{
		Actor:     actor,
		RequestID: requestID,
		Reason:    &reason,
	})
	if err != nil {
		return nil, err
	}
	return updateMessage(reviewedMessage(result)), nil
}

// modalValue finds a text input's value in a submitted modal.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return strings.TrimSpace(input.Value)
			}
		}
	}
	return ""
}

// reviewedMessage is the review message after a decision, without buttons.
func reviewedMessage(r leave.LeaveRequestResponse) chat.Message {
	msg := chat.Message{
		Title:  "Leave request " + r.Status,
		Fields: leaveFields(r),
		Footer: "Request " + r.ID,
	}

	switch leave.Status(r.Status) {
	case leave.StatusApproved:
		msg.Color = chat.ColorSuccess
	case leave.StatusRejected:
		msg.Color = chat.ColorDanger
	default:
		msg.Color = chat.ColorMuted
	}

	if r.DecidedBy != nil {
		msg.Description = fmt.Sprintf("Reviewed by <@%s>.", *r.DecidedBy)
	}
	if r.RejectionReason != nil {
		msg.Fields = append(msg.Fields, chat.Field{Name: "Rejection reason", Value: *r.RejectionReason})
	}
	return msg
}

func leaveFields(r leave.LeaveRequestResponse) []chat.Field {
	member := r.EmployeeName
	if r.UserID != "" {
		member = "<@" + r.UserID + ">"
	}
	return []chat.Field{
		{Name: "Member", Value: member, Inline: true},
		{Name: "Type", Value: capitalize(r.Type), Inline: true},
		{Name: "Days", Value: fmt.Sprintf("%d", r.Days), Inline: true},
		{Name: "From", Value: r.StartDate, Inline: true},
		{Name: "To", Value: r.EndDate, Inline: true},
		{Name: "Reason", Value: r.Reason},
	}
}

func leaveStatusIcon(status string) string {
	switch leave.Status(status) {
	case leave.StatusPending:
		return "⏳"
	case leave.StatusApproved:
		return "✅"
	case leave.StatusRejected:
		return "❌"
	case leave.StatusCancelled:
		return "🗑"
	}
	return "•"
}
