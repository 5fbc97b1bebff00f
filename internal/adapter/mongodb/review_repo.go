package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepo struct {
	coll *mongo.Collection
}

func (r *reviewRepo) Create(ctx context.Context, review *entity.Review) error {
	_, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepo) GetByID(ctx context.Context, reviewID string) (*entity.Review, error) {
	var review entity.Review
	err := r.coll.FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review by ID %s: %w", reviewID, err)
	}
	return &review, nil
}

func (r *reviewRepo) GetByUserAndProduct(ctx context.Context, userID, productID string) (*entity.Review, error) {
	var review entity.Review
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "product_id": productID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review by user %s and product %s: %w", userID, productID, err)
	}
	return &review, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Review, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"product_id": productID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for product %s: %w", productID, err)
	}
	defer cursor.Close(ctx)

	var reviews []*entity.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode listed reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepo) Delete(ctx context.Context, reviewID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": reviewID})
	if err != nil {
		return fmt.Errorf("failed to delete review %s: %w", reviewID, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reviewRepo) DeleteByProduct(ctx context.Context, productID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"product_id": productID})
	if err != nil {
		return fmt.Errorf("failed to delete reviews for product %s: %w", productID, err)
	}
	return nil
}

type jobReviewRepo struct {
	coll *mongo.Collection
}

func (r *jobReviewRepo) Create(ctx context.Context, review *entity.JobReview) error {
	_, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create job review: %w", err)
	}
	return nil
}

func (r *jobReviewRepo) GetByJobAndReviewer(ctx context.Context, jobID, reviewerID string) (*entity.JobReview, error) {
	var review entity.JobReview
	err := r.coll.FindOne(ctx, bson.M{"job_id": jobID, "reviewer_id": reviewerID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job review for job %s by %s: %w", jobID, reviewerID, err)
	}
	return &review, nil
}

func (r *jobReviewRepo) ListByJob(ctx context.Context, jobID string) ([]*entity.JobReview, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"job_id": jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to list job reviews for job %s: %w", jobID, err)
	}
	defer cursor.Close(ctx)

	var reviews []*entity.JobReview
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode listed job reviews: %w", err)
	}
	return reviews, nil
}

func (r *jobReviewRepo) DeleteByJob(ctx context.Context, jobID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"job_id": jobID})
	if err != nil {
		return fmt.Errorf("failed to delete job reviews for job %s: %w", jobID, err)
	}
	return nil
}
