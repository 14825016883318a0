package notification

import (
	"context"
	"io"
	"log"

	"storefront-api/internal/domain"
	"storefront-api/internal/ws"
)

type notificationRepo interface {
	Create(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]domain.Notification, int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

type broadcaster interface {
	Publish(channel, typ string, data any)
}

type Service struct {
	repo   notificationRepo
	hub    broadcaster
	logger *log.Logger
}

func New(repo notificationRepo, hub broadcaster, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, hub: hub, logger: logger}
}

// Notify persists a notification and pushes it to the user's cart channel,
// which doubles as the per-user push channel. Failures are logged, not
// returned: a dropped notification never fails the operation that caused it.
func (s *Service) Notify(ctx context.Context, userID, typ, title, message string) {
	created, err := s.repo.Create(ctx, domain.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.Printf("notification service: create failed user_id=%s type=%s err=%v", userID, typ, err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(ws.CartChannel(userID), "notification", created)
	}
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]domain.Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, offset, limit)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
