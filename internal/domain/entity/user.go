package entity

import (
	"errors"
	"time"
)

type User struct {
	ID        string          `bson:"_id" json:"id"`
	Name      string          `bson:"name" json:"name"`
	Email     string          `bson:"email,omitempty" json:"email,omitempty"`
	Rating    RatingAggregate `bson:"rating" json:"rating"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

func NewUser(id, name, email string, now time.Time) (*User, error) {
	if id == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("user name cannot be empty")
	}
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
