package notification

import "context"

// Service delivers notices on a best-effort basis. Enqueue errors are
// returned so callers can log them; delivery errors are only logged.
type Service interface {
	// Notify queues a direct message to notice.RecipientID
	Notify(ctx context.Context, notice Notice) error

	// Announce queues a channel post to channelID
	Announce(ctx context.Context, channelID string, notice Notice) error

	// Subscribe streams the guild's notices to a dashboard client
	Subscribe(ctx context.Context, guildID string) (<-chan Event, func())

	// Lifecycle
	Stop()
}
