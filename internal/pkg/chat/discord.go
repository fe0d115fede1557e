package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Intents the bot identifies with: slash commands, voice states for screen
// share checks, member lookups and direct messages.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsDirectMessages

// Messenger delivers rich messages.
type Messenger interface {
	SendDirect(ctx context.Context, userID string, msg Message) error
	SendChannel(ctx context.Context, channelID string, msg Message) error
}

// VoiceStatus is a member's voice presence as seen by the gateway.
type VoiceStatus struct {
	InVoice   bool
	ChannelID string
	Streaming bool
}

// Presence answers voice questions from the gateway state cache.
type Presence interface {
	VoiceStatus(guildID, userID string) (VoiceStatus, error)
}

// NewSession creates a bot session with the state cache tracking voice.
// The caller opens and closes it.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true
	s.State.TrackVoice = true
	s.State.TrackMembers = true
	return s, nil
}

// Discord implements Messenger and Presence on a gateway session.
type Discord struct {
	session *discordgo.Session
}

func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

func (d *Discord) SendDirect(ctx context.Context, userID string, msg Message) error {
	channel, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open direct channel with %s: %w", userID, err)
	}
	return d.SendChannel(ctx, channel.ID, msg)
}

func (d *Discord) SendChannel(ctx context.Context, channelID string, msg Message) error {
	_, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{msg.Embed()},
		Components: msg.Components(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return nil
}

func (d *Discord) VoiceStatus(guildID, userID string) (VoiceStatus, error) {
	vs, err := d.session.State.VoiceState(guildID, userID)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return VoiceStatus{}, nil
		}
		return VoiceStatus{}, fmt.Errorf("failed to read voice state: %w", err)
	}
	return StatusFromVoiceState(vs), nil
}

// StatusFromVoiceState converts a gateway voice state. A nil state or an
// empty channel means the member left voice.
func StatusFromVoiceState(vs *discordgo.VoiceState) VoiceStatus {
	if vs == nil || vs.ChannelID == "" {
		return VoiceStatus{}
	}
	return VoiceStatus{
		InVoice:   true,
		ChannelID: vs.ChannelID,
		Streaming: vs.SelfStream,
	}
}
