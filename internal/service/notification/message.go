package notification

import (
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
)

const footer = "HRIS Attendance"

// ToMessage renders a notice for the chat platform.
func ToMessage(n notification.Notice) chat.Message {
	msg := chat.Message{
		Title:       n.Title,
		Description: n.Message,
		Color:       severityColor(n.Severity),
		Footer:      footer,
		Timestamp:   n.CreatedAt,
	}

	for _, f := range n.Fields {
		msg.Fields = append(msg.Fields, chat.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	for _, a := range n.Actions {
		msg.Buttons = append(msg.Buttons, chat.Button{Label: a.Label, CustomID: a.CustomID, Style: a.Style})
	}

	return msg
}

func severityColor(s notification.Severity) int {
	switch s {
	case notification.SeveritySuccess:
		return chat.ColorSuccess
	case notification.SeverityWarning:
		return chat.ColorWarning
	case notification.SeverityDanger:
		return chat.ColorDanger
	default:
		return chat.ColorInfo
	}
}
