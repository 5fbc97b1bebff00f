package entity

import (
	"errors"
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusAccepted  JobStatus = "accepted"
	JobStatusCompleted JobStatus = "completed"
	JobStatusExpired   JobStatus = "expired"
)

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusOpen, JobStatusAccepted, JobStatusCompleted, JobStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are defined.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusExpired
}

type Job struct {
	ID                  string     `bson:"_id" json:"id"`
	Title               string     `bson:"title" json:"title"`
	Description         string     `bson:"description,omitempty" json:"description,omitempty"`
	CategoryID          string     `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Price               float64    `bson:"price,omitempty" json:"price,omitempty"`
	Status              JobStatus  `bson:"status" json:"status"`
	CreatedByID         string     `bson:"created_by_id" json:"created_by_id"`
	CreatedByName       string     `bson:"created_by_name,omitempty" json:"created_by_name,omitempty"`
	AcceptedByID        string     `bson:"accepted_by_id,omitempty" json:"accepted_by_id,omitempty"`
	AcceptedByName      string     `bson:"accepted_by_name,omitempty" json:"accepted_by_name,omitempty"`
	AcceptedAt          *time.Time `bson:"accepted_at,omitempty" json:"accepted_at,omitempty"`
	ExpiresAt           time.Time  `bson:"expires_at" json:"expires_at"`
	ImageIDs            []string   `bson:"image_ids,omitempty" json:"image_ids,omitempty"`
	CreatorHasReviewed  bool       `bson:"creator_has_reviewed" json:"creator_has_reviewed"`
	AcceptorHasReviewed bool       `bson:"acceptor_has_reviewed" json:"acceptor_has_reviewed"`
	CreatedAt           time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at" json:"updated_at"`
}

func NewJob(id, title, createdByID, createdByName string, expiresAt, now time.Time) (*Job, error) {
	if id == "" {
		return nil, errors.New("job ID cannot be empty")
	}
	if title == "" {
		return nil, errors.New("job title cannot be empty")
	}
	if createdByID == "" {
		return nil, errors.New("job creator ID cannot be empty")
	}
	if !expiresAt.After(now) {
		return nil, errors.New("job expiry must be in the future")
	}
	return &Job{
		ID:            id,
		Title:         title,
		Status:        JobStatusOpen,
		CreatedByID:   createdByID,
		CreatedByName: createdByName,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsExpiredAt reports whether an open job has passed its expiry. Accepted
// jobs never auto-expire.
func (j *Job) IsExpiredAt(now time.Time) bool {
	return j.Status == JobStatusOpen && now.After(j.ExpiresAt)
}

// TransitionTo validates and applies a lifecycle transition. Completed and
// expired are terminal.
func (j *Job) TransitionTo(next JobStatus, now time.Time) error {
	validTransitions := map[JobStatus][]JobStatus{
		JobStatusOpen:      {JobStatusAccepted, JobStatusExpired},
		JobStatusAccepted:  {JobStatusCompleted},
		JobStatusCompleted: {},
		JobStatusExpired:   {},
	}
	allowed, ok := validTransitions[j.Status]
	if !ok {
		return fmt.Errorf("cannot transition from unknown status %s", j.Status)
	}
	for _, s := range allowed {
		if s == next {
			j.Status = next
			j.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("invalid job status transition from %s to %s", j.Status, next)
}

// Accept applies the open→accepted transition and records the acceptor. The
// caller performs this as a single read-check-write step so two simultaneous
// acceptors cannot both succeed.
func (j *Job) Accept(userID, userName string, now time.Time) error {
	if userID == j.CreatedByID {
		return errors.New("creator cannot accept their own job")
	}
	if err := j.TransitionTo(JobStatusAccepted, now); err != nil {
		return err
	}
	j.AcceptedByID = userID
	j.AcceptedByName = userName
	acceptedAt := now
	j.AcceptedAt = &acceptedAt
	return nil
}
