package entity

import (
	"errors"
	"time"
)

// ActivityEntry is an immutable, append-only record of a state-changing
// action. Retention is capped; the oldest entries are evicted first.
type ActivityEntry struct {
	ID          string    `bson:"_id" json:"id"`
	ActorID     string    `bson:"actor_id" json:"actor_id"`
	ActionType  string    `bson:"action_type" json:"action_type"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}

func NewActivityEntry(id, actorID, actionType, description string, now time.Time) (*ActivityEntry, error) {
	if id == "" {
		return nil, errors.New("activity entry ID cannot be empty")
	}
	if actorID == "" {
		return nil, errors.New("activity actor ID cannot be empty")
	}
	if actionType == "" {
		return nil, errors.New("activity action type cannot be empty")
	}
	return &ActivityEntry{
		ID:          id,
		ActorID:     actorID,
		ActionType:  actionType,
		Description: description,
		Timestamp:   now,
	}, nil
}

// Favorite is one entry in a user's saved product list.
type Favorite struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ProductID string    `bson:"product_id" json:"product_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
