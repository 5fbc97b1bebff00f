package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, reviewID string) (*entity.Review, error)
	// GetByUserAndProduct enforces the one-review-per-user-per-product rule.
	GetByUserAndProduct(ctx context.Context, userID, productID string) (*entity.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Review, error)
	Delete(ctx context.Context, reviewID string) error
	DeleteByProduct(ctx context.Context, productID string) error
}

type JobReviewRepository interface {
	Create(ctx context.Context, review *entity.JobReview) error
	GetByJobAndReviewer(ctx context.Context, jobID, reviewerID string) (*entity.JobReview, error)
	ListByJob(ctx context.Context, jobID string) ([]*entity.JobReview, error)
	DeleteByJob(ctx context.Context, jobID string) error
}
