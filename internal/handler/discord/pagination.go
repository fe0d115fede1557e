package discord

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
)

const pagePrefix = "page:"

// Paginated views
const (
	viewHistory = "history"
	viewLeaves  = "leaves"
)

// pageRef is the state carried by a pagination button: which view, whose
// records and which page to render.
type pageRef struct {
	View   string
	UserID string
	Page   int
}

func pageID(view, userID string, page int) string {
	return pagePrefix + view + ":" + userID + ":" + strconv.Itoa(page)
}

func parsePageID(customID string) (pageRef, bool) {
	if !strings.HasPrefix(customID, pagePrefix) {
		return pageRef{}, false
	}
	parts := strings.Split(strings.TrimPrefix(customID, pagePrefix), ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return pageRef{}, false
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil || page < 1 {
		return pageRef{}, false
	}
	return pageRef{View: parts[0], UserID: parts[1], Page: page}, true
}

// pageButtons renders previous/next buttons, or none for a single page.
func pageButtons(view, userID string, page, totalPages int) []chat.Button {
	if totalPages <= 1 {
		return nil
	}
	return []chat.Button{
		{
			Label:    "◀ Previous",
			CustomID: pageID(view, userID, page-1),
			Style:    chat.StyleSecondary,
			Disabled: page <= 1,
		},
		{
			Label:    "Next ▶",
			CustomID: pageID(view, userID, page+1),
			Style:    chat.StyleSecondary,
			Disabled: page >= totalPages,
		},
	}
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func ephemeralMessage(msg chat.Message) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{msg.Embed()},
			Components: msg.Components(),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}
}

// updateMessage edits the message the clicked component belongs to.
func updateMessage(msg chat.Message) *discordgo.InteractionResponse {
	components := msg.Components()
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{msg.Embed()},
			Components: components,
		},
	}
}
