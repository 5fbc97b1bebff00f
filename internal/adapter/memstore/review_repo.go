package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type reviewRepo struct {
	store *Store
}

func (r *reviewRepo) Create(ctx context.Context, review *entity.Review) error {
	return r.store.insert(ctx, collReviews, review.ID, review)
}

func (r *reviewRepo) GetByID(ctx context.Context, reviewID string) (*entity.Review, error) {
	var review entity.Review
	if err := r.store.get(ctx, collReviews, reviewID, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) GetByUserAndProduct(ctx context.Context, userID, productID string) (*entity.Review, error) {
	var found *entity.Review
	err := r.store.forEach(ctx, collReviews, func(_ string, raw []byte) error {
		if found != nil {
			return nil
		}
		var rv entity.Review
		if err := json.Unmarshal(raw, &rv); err != nil {
			return fmt.Errorf("failed to decode review: %w", err)
		}
		if rv.UserID == userID && rv.ProductID == productID {
			found = &rv
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Review, error) {
	var all []*entity.Review
	err := r.store.forEach(ctx, collReviews, func(_ string, raw []byte) error {
		var rv entity.Review
		if err := json.Unmarshal(raw, &rv); err != nil {
			return fmt.Errorf("failed to decode review: %w", err)
		}
		if rv.ProductID == productID {
			all = append(all, &rv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (r *reviewRepo) Delete(ctx context.Context, reviewID string) error {
	return r.store.remove(ctx, collReviews, reviewID)
}

func (r *reviewRepo) DeleteByProduct(ctx context.Context, productID string) error {
	return r.store.removeWhere(ctx, collReviews, func(raw []byte) bool {
		var rv entity.Review
		if err := json.Unmarshal(raw, &rv); err != nil {
			return false
		}
		return rv.ProductID == productID
	})
}

// RecomputeAggregate rescans every review of the product and returns the
// aggregate a full recount would produce. The engine maintains aggregates
// incrementally; tests use this as a self-healing cross-check that the
// stored aggregate never drifts from the review set.
func (r *reviewRepo) RecomputeAggregate(ctx context.Context, productID string) (entity.RatingAggregate, error) {
	reviews, err := r.ListByProduct(ctx, productID)
	if err != nil {
		return entity.RatingAggregate{}, err
	}
	agg := entity.RatingAggregate{}
	for _, rv := range reviews {
		agg = agg.WithAdded(rv.Rating)
	}
	return agg, nil
}

type jobReviewRepo struct {
	store *Store
}

func (r *jobReviewRepo) Create(ctx context.Context, review *entity.JobReview) error {
	return r.store.insert(ctx, collJobReviews, review.ID, review)
}

func (r *jobReviewRepo) GetByJobAndReviewer(ctx context.Context, jobID, reviewerID string) (*entity.JobReview, error) {
	var found *entity.JobReview
	err := r.store.forEach(ctx, collJobReviews, func(_ string, raw []byte) error {
		if found != nil {
			return nil
		}
		var rv entity.JobReview
		if err := json.Unmarshal(raw, &rv); err != nil {
			return fmt.Errorf("failed to decode job review: %w", err)
		}
		if rv.JobID == jobID && rv.ReviewerID == reviewerID {
			found = &rv
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *jobReviewRepo) ListByJob(ctx context.Context, jobID string) ([]*entity.JobReview, error) {
	var all []*entity.JobReview
	err := r.store.forEach(ctx, collJobReviews, func(_ string, raw []byte) error {
		var rv entity.JobReview
		if err := json.Unmarshal(raw, &rv); err != nil {
			return fmt.Errorf("failed to decode job review: %w", err)
		}
		if rv.JobID == jobID {
			all = append(all, &rv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (r *jobReviewRepo) DeleteByJob(ctx context.Context, jobID string) error {
	return r.store.removeWhere(ctx, collJobReviews, func(raw []byte) bool {
		var rv entity.JobReview
		if err := json.Unmarshal(raw, &rv); err != nil {
			return false
		}
		return rv.JobID == jobID
	})
}
