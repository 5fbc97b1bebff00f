package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type ReviewService interface {
	// AddReview creates the review and folds its rating into the product
	// aggregate in one atomic step. One review per user per product.
	AddReview(ctx context.Context, userID, productID string, rating int32, comment string) (*entity.Review, error)
	// DeleteReview removes the review and backs its rating out of the
	// product aggregate atomically.
	DeleteReview(ctx context.Context, reviewID, actorID string) error
	ListProductReviews(ctx context.Context, productID string) ([]*entity.Review, error)

	// AddJobReview lets one participant of a completed job review the
	// other, once per role; the reviewee's user aggregate updates in the
	// same transaction.
	AddJobReview(ctx context.Context, jobID, reviewerID string, rating int32, comment string) (*entity.JobReview, error)
	ListJobReviews(ctx context.Context, jobID string) ([]*entity.JobReview, error)
}

type reviewService struct {
	store        repository.Store
	productCache repository.ProductDetailCache
	activity     ActivityService
	clock        Clock
	newID        IDGenerator
	log          logger.Logger
}

func NewReviewService(
	store repository.Store,
	productCache repository.ProductDetailCache,
	activity ActivityService,
	clock Clock,
	newID IDGenerator,
	log logger.Logger,
) ReviewService {
	return &reviewService{
		store:        store,
		productCache: productCache,
		activity:     activity,
		clock:        clock,
		newID:        newID,
		log:          log,
	}
}

func (s *reviewService) AddReview(ctx context.Context, userID, productID string, rating int32, comment string) (*entity.Review, error) {
	if userID == "" || productID == "" {
		return nil, fmt.Errorf("%w: user ID and product ID are required", entity.ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", entity.ErrInvalidInput)
	}

	var review *entity.Review
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		product, err := s.store.Products().GetByID(txCtx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &entity.ProductNotFoundError{ProductID: productID}
			}
			return fmt.Errorf("failed to load product %s: %w", productID, err)
		}

		_, err = s.store.Reviews().GetByUserAndProduct(txCtx, userID, productID)
		if err == nil {
			return &entity.AlreadyReviewedError{SubjectID: productID, UserID: userID}
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to check existing review: %w", err)
		}

		now := s.clock.Now()
		review, err = entity.NewReview(s.newID(), userID, productID, rating, comment, now)
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		if err := s.store.Reviews().Create(txCtx, review); err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		product.Rating = product.Rating.WithAdded(rating)
		product.UpdatedAt = now
		if err := s.store.Products().Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product rating: %w", err)
		}

		desc := fmt.Sprintf("review %s added for product %s (rating %d)", review.ID, productID, rating)
		return s.activity.RecordTx(txCtx, userID, ActionReviewAdded, desc)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProduct(ctx, productID)
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, actorID string) error {
	if reviewID == "" {
		return fmt.Errorf("%w: review ID is required", entity.ErrInvalidInput)
	}

	var productID string
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		review, err := s.store.Reviews().GetByID(txCtx, reviewID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load review %s: %w", reviewID, err)
		}
		if actorID != "" && review.UserID != actorID {
			return repository.ErrNotFound
		}
		productID = review.ProductID

		if err := s.store.Reviews().Delete(txCtx, reviewID); err != nil {
			return fmt.Errorf("failed to delete review %s: %w", reviewID, err)
		}

		product, err := s.store.Products().GetByID(txCtx, review.ProductID)
		if err != nil {
			// The product may already be gone; the review deletion stands.
			if errors.Is(err, repository.ErrNotFound) {
				return s.activity.RecordTx(txCtx, review.UserID, ActionReviewDeleted, fmt.Sprintf("review %s deleted", reviewID))
			}
			return fmt.Errorf("failed to load product %s: %w", review.ProductID, err)
		}

		product.Rating = product.Rating.WithRemoved(review.Rating)
		product.UpdatedAt = s.clock.Now()
		if err := s.store.Products().Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product rating: %w", err)
		}

		desc := fmt.Sprintf("review %s deleted from product %s", reviewID, review.ProductID)
		return s.activity.RecordTx(txCtx, review.UserID, ActionReviewDeleted, desc)
	})
	if err != nil {
		return err
	}

	s.invalidateProduct(ctx, productID)
	return nil
}

func (s *reviewService) ListProductReviews(ctx context.Context, productID string) ([]*entity.Review, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product ID is required", entity.ErrInvalidInput)
	}
	reviews, err := s.store.Reviews().ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for product %s: %w", productID, err)
	}
	return reviews, nil
}

func (s *reviewService) AddJobReview(ctx context.Context, jobID, reviewerID string, rating int32, comment string) (*entity.JobReview, error) {
	if jobID == "" || reviewerID == "" {
		return nil, fmt.Errorf("%w: job ID and reviewer ID are required", entity.ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", entity.ErrInvalidInput)
	}

	var review *entity.JobReview
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		job, err := s.store.Jobs().GetByID(txCtx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load job %s: %w", jobID, err)
		}
		if job.Status != entity.JobStatusCompleted {
			return &entity.JobNotAvailableError{JobID: jobID, Status: job.Status}
		}

		var revieweeID string
		switch reviewerID {
		case job.CreatedByID:
			if job.CreatorHasReviewed {
				return &entity.AlreadyReviewedError{SubjectID: jobID, UserID: reviewerID}
			}
			job.CreatorHasReviewed = true
			revieweeID = job.AcceptedByID
		case job.AcceptedByID:
			if job.AcceptorHasReviewed {
				return &entity.AlreadyReviewedError{SubjectID: jobID, UserID: reviewerID}
			}
			job.AcceptorHasReviewed = true
			revieweeID = job.CreatedByID
		default:
			return &entity.NotAJobParticipantError{JobID: jobID, UserID: reviewerID}
		}

		now := s.clock.Now()
		review, err = entity.NewJobReview(s.newID(), jobID, reviewerID, revieweeID, rating, comment, now)
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		if err := s.store.JobReviews().Create(txCtx, review); err != nil {
			return fmt.Errorf("failed to create job review: %w", err)
		}

		job.UpdatedAt = now
		if err := s.store.Jobs().Update(txCtx, job); err != nil {
			return fmt.Errorf("failed to update job review flags: %w", err)
		}

		reviewee, err := s.store.Users().GetByID(txCtx, revieweeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Warnf("ReviewService.AddJobReview: reviewee %s of job %s no longer exists", revieweeID, jobID)
				return s.activity.RecordTx(txCtx, reviewerID, ActionReviewAdded, fmt.Sprintf("job review %s added for job %s", review.ID, jobID))
			}
			return fmt.Errorf("failed to load reviewee %s: %w", revieweeID, err)
		}
		reviewee.Rating = reviewee.Rating.WithAdded(rating)
		reviewee.UpdatedAt = now
		if err := s.store.Users().Update(txCtx, reviewee); err != nil {
			return fmt.Errorf("failed to update reviewee rating: %w", err)
		}

		desc := fmt.Sprintf("job review %s added for job %s (rating %d)", review.ID, jobID, rating)
		return s.activity.RecordTx(txCtx, reviewerID, ActionReviewAdded, desc)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListJobReviews(ctx context.Context, jobID string) ([]*entity.JobReview, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: job ID is required", entity.ErrInvalidInput)
	}
	reviews, err := s.store.JobReviews().ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for job %s: %w", jobID, err)
	}
	return reviews, nil
}

func (s *reviewService) invalidateProduct(ctx context.Context, productID string) {
	if s.productCache == nil || productID == "" {
		return
	}
	if err := s.productCache.Delete(ctx, productID); err != nil {
		s.log.Debugf("ReviewService: failed to invalidate product cache for %s: %v", productID, err)
	}
}
