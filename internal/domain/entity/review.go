package entity

import (
	"errors"
	"time"
)

// Review is a product review. Immutable once created except for deletion;
// every write triggers recomputation of the product's rating aggregate.
type Review struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ProductID string    `bson:"product_id" json:"product_id"`
	Rating    int32     `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func NewReview(id, userID, productID string, rating int32, comment string, now time.Time) (*Review, error) {
	if id == "" {
		return nil, errors.New("review ID cannot be empty")
	}
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	if productID == "" {
		return nil, errors.New("productID cannot be empty")
	}
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}
	return &Review{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// JobReview is submitted by one job participant about the other, once per
// job per role.
type JobReview struct {
	ID         string    `bson:"_id" json:"id"`
	JobID      string    `bson:"job_id" json:"job_id"`
	ReviewerID string    `bson:"reviewer_id" json:"reviewer_id"`
	RevieweeID string    `bson:"reviewee_id" json:"reviewee_id"`
	Rating     int32     `bson:"rating" json:"rating"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

func NewJobReview(id, jobID, reviewerID, revieweeID string, rating int32, comment string, now time.Time) (*JobReview, error) {
	if id == "" {
		return nil, errors.New("job review ID cannot be empty")
	}
	if jobID == "" {
		return nil, errors.New("jobID cannot be empty")
	}
	if reviewerID == "" || revieweeID == "" {
		return nil, errors.New("reviewer and reviewee IDs cannot be empty")
	}
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}
	return &JobReview{
		ID:         id,
		JobID:      jobID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
