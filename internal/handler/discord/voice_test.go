package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

type streamRecorder struct {
	attendance.AttendanceService
	stopped []string
}

func (s *streamRecorder) StreamStopped(_ context.Context, guildID, userID string) error {
	s.stopped = append(s.stopped, guildID+"/"+userID)
	return nil
}

func voiceUpdate(guildID string, before, after *discordgo.VoiceState) *discordgo.VoiceStateUpdate {
	after.GuildID = guildID
	after.UserID = aliceID
	return &discordgo.VoiceStateUpdate{VoiceState: after, BeforeUpdate: before}
}

func TestHandleVoiceState(t *testing.T) {
	streaming := func() *discordgo.VoiceState {
		return &discordgo.VoiceState{ChannelID: "300", SelfStream: true}
	}

	tests := []struct {
		name string
		vs   *discordgo.VoiceStateUpdate
		want []string
	}{
		{
			name: "stream stopped",
			vs:   voiceUpdate(testGuild, streaming(), &discordgo.VoiceState{ChannelID: "300"}),
			want: []string{testGuild + "/" + aliceID},
		},
		{
			name: "left voice while streaming",
			vs:   voiceUpdate(testGuild, streaming(), &discordgo.VoiceState{}),
			want: []string{testGuild + "/" + aliceID},
		},
		{
			name: "still streaming",
			vs:   voiceUpdate(testGuild, streaming(), streaming()),
		},
		{
			name: "stream started",
			vs:   voiceUpdate(testGuild, &discordgo.VoiceState{ChannelID: "300"}, streaming()),
		},
		{
			name: "first voice state",
			vs:   voiceUpdate(testGuild, nil, &discordgo.VoiceState{ChannelID: "300"}),
		},
		{
			name: "other guild",
			vs:   voiceUpdate(otherGuild, streaming(), &discordgo.VoiceState{ChannelID: "300"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &streamRecorder{}
			h := NewHandler(rec, nil, nil, nil, testGuild, nil)

			h.HandleVoiceState(context.Background(), tt.vs)

			assert.Equal(t, tt.want, rec.stopped)
		})
	}
}
