package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
)

// handlePage re-renders a paginated view for the clicker. The services
// check that the clicker may see the member named in the button.
func (h *Handler) handlePage(ctx context.Context, actor employee.Actor, customID string) (*discordgo.InteractionResponse, error) {
	ref, ok := parsePageID(customID)
	if !ok {
		return ephemeral("This button has expired."), nil
	}

	target := &ref.UserID
	if ref.UserID == actor.UserID {
		target = nil
	}

	var (
		msg chat.Message
		err error
	)
	switch ref.View {
	case viewHistory:
		msg, err = h.historyPage(ctx, attendance.HistoryFilter{
			Actor:        actor,
			TargetUserID: target,
			Page:         ref.Page,
			Limit:        historyPageSize,
		})
	case viewLeaves:
		filter := leave.LeaveFilter{
			Actor:   actor,
			GuildID: actor.GuildID,
			UserID:  target,
			Mine:    target == nil,
			Page:    ref.Page,
			Limit:   leavesPageSize,
		}
		msg, err = h.leavesPage(ctx, filter)
	default:
		return ephemeral("This button has expired."), nil
	}
	if err != nil {
		return nil, err
	}

	return updateMessage(msg), nil
}
