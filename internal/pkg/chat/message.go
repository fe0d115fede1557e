package chat

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Embed colours
const (
	ColorInfo    = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorDanger  = 0xED4245
	ColorMuted   = 0x99AAB5
)

// Button styles
const (
	StylePrimary   = "primary"
	StyleSuccess   = "success"
	StyleDanger    = "danger"
	StyleSecondary = "secondary"
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Button struct {
	Label    string
	CustomID string
	Style    string
	Disabled bool
}

// Message is a platform-neutral rich message: one embed plus an optional
// row of buttons.
type Message struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	Timestamp   time.Time
	Buttons     []Button
}

// Embed renders the message as a Discord embed. Discord caps embeds at 25
// fields; extra fields are dropped.
func (m Message) Embed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       m.Title,
		Description: m.Description,
		Color:       m.Color,
	}
	if !m.Timestamp.IsZero() {
		embed.Timestamp = m.Timestamp.UTC().Format(time.RFC3339)
	}
	if m.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: m.Footer}
	}
	for i, f := range m.Fields {
		if i == 25 {
			break
		}
		value := f.Value
		if value == "" {
			value = "-"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  value,
			Inline: f.Inline,
		})
	}
	return embed
}

// Components renders the buttons as a single action row (max five).
func (m Message) Components() []discordgo.MessageComponent {
	if len(m.Buttons) == 0 {
		return nil
	}

	row := discordgo.ActionsRow{}
	for i, b := range m.Buttons {
		if i == 5 {
			break
		}
		row.Components = append(row.Components, discordgo.Button{
			Label:    b.Label,
			CustomID: b.CustomID,
			Style:    buttonStyle(b.Style),
			Disabled: b.Disabled,
		})
	}
	return []discordgo.MessageComponent{row}
}

func buttonStyle(style string) discordgo.ButtonStyle {
	switch style {
	case StyleSuccess:
		return discordgo.SuccessButton
	case StyleDanger:
		return discordgo.DangerButton
	case StyleSecondary:
		return discordgo.SecondaryButton
	default:
		return discordgo.PrimaryButton
	}
}
