package notification

import "time"

// Type represents the kind of notice
type Type string

const (
	TypeClockIn            Type = "attendance_clock_in"
	TypeClockOut           Type = "attendance_clock_out"
	TypeLate               Type = "attendance_late"
	TypeScreenShareWarning Type = "screen_share_warning"
	TypeAutoClockOut       Type = "attendance_auto_clock_out"
	TypeStreamStopped      Type = "screen_share_stopped"
	TypeLeaveRequest       Type = "leave_request"
	TypeLeaveApproved      Type = "leave_approved"
	TypeLeaveRejected      Type = "leave_rejected"
	TypeLeaveCancelled     Type = "leave_cancelled"
)

// Severity drives the embed colour of a notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Field is one name/value line of a notice.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Action is a button attached to a channel notice.
type Action struct {
	Label    string `json:"label"`
	CustomID string `json:"custom_id"`
	Style    string `json:"style"` // primary, success, danger, secondary
}

// Notice is a message delivered to a member or posted to a channel.
type Notice struct {
	GuildID     string
	RecipientID string // user snowflake for direct messages
	ChannelID   string // channel snowflake for announcements
	Type        Type
	Severity    Severity
	Title       string
	Message     string
	Fields      []Field
	Actions     []Action
	CreatedAt   time.Time
}

// Event is what dashboard subscribers receive over SSE.
type Event struct {
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Fields    []Field   `json:"fields,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (n Notice) Event() Event {
	return Event{
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Fields:    n.Fields,
		UserID:    n.RecipientID,
		CreatedAt: n.CreatedAt,
	}
}
