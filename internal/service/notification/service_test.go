package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type sent struct {
	target string
	to     string
	msg    chat.Message
}

type recordingMessenger struct {
	mu    sync.Mutex
	sent  []sent
	fail  error
	block chan struct{}
}

func (m *recordingMessenger) record(target, to string, msg chat.Message) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sent{target: target, to: to, msg: msg})
	return nil
}

func (m *recordingMessenger) SendDirect(ctx context.Context, userID string, msg chat.Message) error {
	return m.record("direct", userID, msg)
}

func (m *recordingMessenger) SendChannel(ctx context.Context, channelID string, msg chat.Message) error {
	return m.record("channel", channelID, msg)
}

func (m *recordingMessenger) Sent() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.sent...)
}

func TestNotify_DeliversDirectMessage(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{}
	svc := NewNotificationService(messenger, sse.NewHub(), nil, Config{RatePerSecond: 1000})

	err := svc.Notify(context.Background(), notification.Notice{
		GuildID:     "100000000000000001",
		RecipientID: "300000000000000001",
		Type:        notification.TypeLeaveApproved,
		Severity:    notification.SeveritySuccess,
		Title:       "Leave approved",
		Message:     "Enjoy your time off",
	})
	require.NoError(t, err)

	svc.Stop()

	delivered := messenger.Sent()
	require.Len(t, delivered, 1)
	assert.Equal(t, "direct", delivered[0].target)
	assert.Equal(t, "300000000000000001", delivered[0].to)
	assert.Equal(t, "Leave approved", delivered[0].msg.Title)
	assert.Equal(t, chat.ColorSuccess, delivered[0].msg.Color)
}

func TestAnnounce_PostsToChannelWithButtons(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{}
	svc := NewNotificationService(messenger, sse.NewHub(), nil, Config{RatePerSecond: 1000})

	err := svc.Announce(context.Background(), "500000000000000001", notification.Notice{
		Type:    notification.TypeLeaveRequest,
		Title:   "New leave request",
		Actions: []notification.Action{{Label: "Approve", CustomID: "leave:approve:x", Style: chat.StyleSuccess}},
	})
	require.NoError(t, err)

	svc.Stop()

	delivered := messenger.Sent()
	require.Len(t, delivered, 1)
	assert.Equal(t, "channel", delivered[0].target)
	require.Len(t, delivered[0].msg.Buttons, 1)
	assert.Equal(t, "leave:approve:x", delivered[0].msg.Buttons[0].CustomID)
}

func TestNotify_MissingRecipient(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := NewNotificationService(&recordingMessenger{}, sse.NewHub(), nil, Config{})
	defer svc.Stop()

	err := svc.Notify(context.Background(), notification.Notice{Title: "nobody"})
	assert.ErrorIs(t, err, notification.ErrMissingRecipient)

	err = svc.Announce(context.Background(), "", notification.Notice{Title: "nowhere"})
	assert.ErrorIs(t, err, notification.ErrMissingRecipient)
}

func TestNotify_QueueFullDrops(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{block: make(chan struct{})}
	svc := NewNotificationService(messenger, sse.NewHub(), nil, Config{
		RatePerSecond: 1000,
		WorkerCount:   1,
		QueueSize:     1,
	})

	notice := notification.Notice{RecipientID: "300000000000000001", Title: "hi"}

	var full error
	for i := 0; i < 5 && full == nil; i++ {
		full = svc.Notify(context.Background(), notice)
	}
	assert.ErrorIs(t, full, notification.ErrQueueFull)
	assert.True(t, IsBestEffort(full))

	close(messenger.block)
	svc.Stop()
}

func TestNotify_FailuresAreNotRetried(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{fail: errors.New("dm closed")}
	svc := NewNotificationService(messenger, sse.NewHub(), nil, Config{RatePerSecond: 1000})

	require.NoError(t, svc.Notify(context.Background(), notification.Notice{RecipientID: "300000000000000001"}))
	svc.Stop()

	assert.Empty(t, messenger.Sent())
}

func TestNotify_AfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := NewNotificationService(&recordingMessenger{}, sse.NewHub(), nil, Config{})
	svc.Stop()
	svc.Stop()

	err := svc.Notify(context.Background(), notification.Notice{RecipientID: "300000000000000001"})
	assert.ErrorIs(t, err, notification.ErrStopped)
}

func TestSubscribe_ReceivesGuildNotices(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := NewNotificationService(&recordingMessenger{}, sse.NewHub(), nil, Config{RatePerSecond: 1000})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, cleanup := svc.Subscribe(ctx, "100000000000000001")

	require.NoError(t, svc.Notify(ctx, notification.Notice{
		GuildID:     "100000000000000001",
		RecipientID: "300000000000000001",
		Type:        notification.TypeClockIn,
		Title:       "Clocked in",
	}))

	select {
	case ev := <-events:
		assert.Equal(t, notification.TypeClockIn, ev.Type)
		assert.Equal(t, "300000000000000001", ev.UserID)
		assert.False(t, ev.CreatedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("expected an event")
	}

	cleanup()
	for range events {
	}
}

func TestToMessage_SeverityColors(t *testing.T) {
	assert.Equal(t, chat.ColorInfo, ToMessage(notification.Notice{}).Color)
	assert.Equal(t, chat.ColorWarning, ToMessage(notification.Notice{Severity: notification.SeverityWarning}).Color)
	assert.Equal(t, chat.ColorDanger, ToMessage(notification.Notice{Severity: notification.SeverityDanger}).Color)

	msg := ToMessage(notification.Notice{Fields: []notification.Field{{Name: "Date", Value: "2025-03-03", Inline: true}}})
	require.Len(t, msg.Fields, 1)
	assert.True(t, msg.Fields[0].Inline)
}
