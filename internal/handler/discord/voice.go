package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
)

func (h *Handler) onVoiceStateUpdate(_ *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	h.HandleVoiceState(ctx, vs)
}

// HandleVoiceState reminds a member whose screen share just ended, either
// by stopping the stream or by leaving voice.
func (h *Handler) HandleVoiceState(ctx context.Context, vs *discordgo.VoiceStateUpdate) {
	if vs == nil || vs.VoiceState == nil || vs.BeforeUpdate == nil {
		return
	}
	if h.guildID != "" && vs.GuildID != h.guildID {
		return
	}

	before := chat.StatusFromVoiceState(vs.BeforeUpdate)
	after := chat.StatusFromVoiceState(vs.VoiceState)
	if !before.Streaming || after.Streaming {
		return
	}

	if err := h.attendanceService.StreamStopped(ctx, vs.GuildID, vs.UserID); err != nil {
		slog.Warn("Failed to handle stopped stream", "guild_id", vs.GuildID, "user_id", vs.UserID, "error", err)
	}
}
