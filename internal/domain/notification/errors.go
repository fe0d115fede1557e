package notification

import "errors"

// Notification domain errors
var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrMissingRecipient = errors.New("notice has no recipient or channel")
	ErrStopped          = errors.New("notification service stopped")
)
