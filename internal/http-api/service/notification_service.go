package service

import (
	"context"
	"log/slog"
	"time"

	"npcfinder/internal/events"
	"npcfinder/internal/http-api/models"
	"npcfinder/internal/http-api/repository"
)

type NotificationService interface {
	Unread(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	MarkAllRead(ctx context.Context, userID string) error
	// Start subscribes to the bus and persists incoming events until the
	// returned stop function is called.
	Start(bus *events.Bus) (stop func())
}

type notificationService struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Unread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetUnreadByUser(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Start drains bus events into notification rows. A failed insert is logged
// and dropped; the event stays in the bus backlog either way.
func (s *notificationService) Start(bus *events.Bus) func() {
	ch, cancel := bus.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range ch {
			ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
			n := &models.Notification{
				UserID:     e.UserID,
				Type:       e.Type,
				Kind:       string(e.Kind),
				RefID:      e.RefID,
				Title:      e.Title,
				Message:    e.Message,
				Persistent: e.Persistent,
			}
			if err := s.repo.Create(ctx, n); err != nil {
				s.logger.Error("persist notification", "type", e.Type, "user_id", e.UserID, "error", err)
			}
			ctxCancel()
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
