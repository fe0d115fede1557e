package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/sse"
	"golang.org/x/time/rate"
)

const (
	targetDirect  = "direct"
	targetChannel = "channel"
)

// Config holds notification service configuration
type Config struct {
	RatePerSecond float64       // default: 2
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 256
	SendTimeout   time.Duration // default: 10 seconds
	DrainTimeout  time.Duration // default: 5 seconds
}

type delivery struct {
	target string
	to     string
	notice notification.Notice
}

type service struct {
	messenger chat.Messenger
	hub       *sse.Hub
	metrics   *metrics.Metrics
	limiter   *rate.Limiter
	config    Config

	queue    chan delivery
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(messenger chat.Messenger, hub *sse.Hub, m *metrics.Metrics, cfg Config) notification.Service {
	// Set defaults
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	s := &service{
		messenger: messenger,
		hub:       hub,
		metrics:   m,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		config:    cfg,
		queue:     make(chan delivery, cfg.QueueSize),
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount,
		"queue_size", cfg.QueueSize,
		"rate_per_second", cfg.RatePerSecond,
	)

	return s
}

// worker delivers queued notices until Stop, then drains what is left
// within DrainTimeout.
func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case d := <-s.queue:
			s.deliver(context.Background(), id, d)
		case <-s.stopCh:
			s.drain(id)
			return
		}
	}
}

func (s *service) drain(id int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DrainTimeout)
	defer cancel()

	for {
		select {
		case d := <-s.queue:
			s.deliver(ctx, id, d)
		default:
			return
		}
	}
}

func (s *service) deliver(ctx context.Context, worker int, d delivery) {
	if err := s.limiter.Wait(ctx); err != nil {
		s.metrics.RecordNotification(d.target, "dropped")
		slog.Warn("Notification dropped", "worker", worker, "type", d.notice.Type, "to", d.to, "error", err)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
	defer cancel()

	msg := ToMessage(d.notice)

	var err error
	switch d.target {
	case targetDirect:
		err = s.messenger.SendDirect(sendCtx, d.to, msg)
	default:
		err = s.messenger.SendChannel(sendCtx, d.to, msg)
	}

	if err != nil {
		s.metrics.RecordNotification(d.target, "failed")
		slog.Error("Notification delivery failed", "worker", worker, "type", d.notice.Type, "to", d.to, "error", err)
		return
	}

	s.metrics.RecordNotification(d.target, "sent")
	slog.Debug("Notification delivered", "worker", worker, "type", d.notice.Type, "to", d.to)
}

// Notify queues a direct message for async delivery
func (s *service) Notify(ctx context.Context, notice notification.Notice) error {
	if notice.RecipientID == "" {
		return notification.ErrMissingRecipient
	}
	return s.enqueue(ctx, delivery{target: targetDirect, to: notice.RecipientID, notice: notice})
}

// Announce queues a channel post for async delivery
func (s *service) Announce(ctx context.Context, channelID string, notice notification.Notice) error {
	if channelID == "" {
		return notification.ErrMissingRecipient
	}
	notice.ChannelID = channelID
	return s.enqueue(ctx, delivery{target: targetChannel, to: channelID, notice: notice})
}

func (s *service) enqueue(ctx context.Context, d delivery) error {
	select {
	case <-s.stopCh:
		return notification.ErrStopped
	default:
	}

	if d.notice.CreatedAt.IsZero() {
		d.notice.CreatedAt = s.now().UTC()
	}

	if s.hub != nil && d.notice.GuildID != "" {
		s.hub.Publish(d.notice.GuildID, sse.Event{
			Event: string(d.notice.Type),
			Data:  d.notice.Event(),
		})
	}

	select {
	case s.queue <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.metrics.RecordNotification(d.target, "dropped")
		slog.Warn("Notification queue full, dropping notice", "type", d.notice.Type, "to", d.to)
		return notification.ErrQueueFull
	}
}

// Subscribe creates an SSE subscription for a guild
func (s *service) Subscribe(ctx context.Context, guildID string) (<-chan notification.Event, func()) {
	ch, unsubscribe := s.hub.Subscribe(guildID)
	s.metrics.SubscriberConnected()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			unsubscribe()
			s.metrics.SubscriberDisconnected()
		})
	}

	out := make(chan notification.Event, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				ev, ok := event.Data.(notification.Event)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}

// IsBestEffort reports whether err is one of the delivery errors callers may
// log and ignore.
func IsBestEffort(err error) bool {
	return errors.Is(err, notification.ErrQueueFull) ||
		errors.Is(err, notification.ErrStopped) ||
		errors.Is(err, notification.ErrMissingRecipient)
}
