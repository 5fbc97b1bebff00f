package entity

import (
	"errors"
	"time"
)

type NotificationType string

const (
	NotificationJobAccepted  NotificationType = "job_accepted"
	NotificationJobCompleted NotificationType = "job_completed"
	NotificationChatMessage  NotificationType = "chat_message"
)

// Notification is an append-only per-user record; only IsRead ever changes
// after creation.
type Notification struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"user_id" json:"user_id"`
	Type      NotificationType `bson:"type" json:"type"`
	Message   string           `bson:"message" json:"message"`
	IsRead    bool             `bson:"is_read" json:"is_read"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}

func NewNotification(id, userID string, kind NotificationType, message string, now time.Time) (*Notification, error) {
	if id == "" {
		return nil, errors.New("notification ID cannot be empty")
	}
	if userID == "" {
		return nil, errors.New("notification user ID cannot be empty")
	}
	if message == "" {
		return nil, errors.New("notification message cannot be empty")
	}
	return &Notification{
		ID:        id,
		UserID:    userID,
		Type:      kind,
		Message:   message,
		CreatedAt: now,
	}, nil
}
