package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type NotificationService interface {
	// Notify records a notification and, when an email sender is configured
	// and the user has an address, sends a copy by email. The email is
	// best-effort; the stored record is what the invariants cover.
	Notify(ctx context.Context, userID string, kind entity.NotificationType, message string) error
	// NotifyTx records a notification using an already-open transaction
	// context, so it commits with the operation that caused it. Callers
	// deliver the email copy with EmailUser after their commit.
	NotifyTx(ctx context.Context, userID string, kind entity.NotificationType, message string) error
	// EmailUser sends a best-effort email copy of a notification when a
	// sender is configured and the user has an address. Failures are logged
	// and swallowed.
	EmailUser(ctx context.Context, userID string, kind entity.NotificationType, message string)
	ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	store       repository.Store
	emailSender email.EmailSender
	clock       Clock
	newID       IDGenerator
	log         logger.Logger
}

func NewNotificationService(
	store repository.Store,
	emailSender email.EmailSender,
	clock Clock,
	newID IDGenerator,
	log logger.Logger,
) NotificationService {
	return &notificationService{
		store:       store,
		emailSender: emailSender,
		clock:       clock,
		newID:       newID,
		log:         log,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID string, kind entity.NotificationType, message string) error {
	if err := s.NotifyTx(ctx, userID, kind, message); err != nil {
		return err
	}
	s.EmailUser(ctx, userID, kind, message)
	return nil
}

func (s *notificationService) NotifyTx(ctx context.Context, userID string, kind entity.NotificationType, message string) error {
	notification, err := entity.NewNotification(s.newID(), userID, kind, message, s.clock.Now())
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}
	if err := s.store.Notifications().Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification for user %s: %w", userID, err)
	}
	return nil
}

func (s *notificationService) EmailUser(ctx context.Context, userID string, kind entity.NotificationType, message string) {
	if s.emailSender == nil {
		return
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warnf("NotificationService: failed to load user %s for email: %v", userID, err)
		}
		return
	}
	if user.Email == "" {
		return
	}
	subject := fmt.Sprintf("Marketplace notification: %s", kind)
	if err := s.emailSender.Send(ctx, []string{user.Email}, subject, "", message); err != nil {
		s.log.Warnf("NotificationService: failed to email user %s: %v", userID, err)
	}
}

func (s *notificationService) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	notifications, err := s.store.Notifications().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	if notificationID == "" || userID == "" {
		return fmt.Errorf("%w: notification ID and user ID are required", entity.ErrInvalidInput)
	}
	if err := s.store.Notifications().MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	if err := s.store.Notifications().MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read for user %s: %w", userID, err)
	}
	return nil
}
