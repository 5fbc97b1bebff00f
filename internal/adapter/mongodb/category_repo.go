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

type categoryRepo struct {
	coll *mongo.Collection
}

func (r *categoryRepo) Create(ctx context.Context, category *entity.Category) error {
	_, err := r.coll.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, categoryID string) (*entity.Category, error) {
	var category entity.Category
	err := r.coll.FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category by ID %s: %w", categoryID, err)
	}
	return &category, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	filter := bson.M{"name": name, "parent_id": bson.M{"$in": bson.A{nil, ""}}}
	var category entity.Category
	err := r.coll.FindOne(ctx, filter).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category by name %s: %w", name, err)
	}
	return &category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *entity.Category) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		return fmt.Errorf("failed to update category %s: %w", category.ID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, categoryID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": categoryID})
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []*entity.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode listed categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepo) CountChildren(ctx context.Context, categoryID string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"parent_id": categoryID})
	if err != nil {
		return 0, fmt.Errorf("failed to count children of category %s: %w", categoryID, err)
	}
	return count, nil
}

func (r *categoryRepo) MaxDisplayOrder(ctx context.Context, parentID string) (int, error) {
	filter := bson.M{"parent_id": parentID}
	if parentID == "" {
		filter = bson.M{"parent_id": bson.M{"$in": bson.A{nil, ""}}}
	}

	findOptions := options.FindOne().SetSort(bson.D{{Key: "display_order", Value: -1}})
	var top entity.Category
	err := r.coll.FindOne(ctx, filter, findOptions).Decode(&top)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find max display order: %w", err)
	}
	return top.DisplayOrder, nil
}

type jobCategoryRepo struct {
	coll *mongo.Collection
}

func (r *jobCategoryRepo) Create(ctx context.Context, category *entity.JobCategory) error {
	_, err := r.coll.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create job category: %w", err)
	}
	return nil
}

func (r *jobCategoryRepo) GetByID(ctx context.Context, categoryID string) (*entity.JobCategory, error) {
	var category entity.JobCategory
	err := r.coll.FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job category by ID %s: %w", categoryID, err)
	}
	return &category, nil
}

func (r *jobCategoryRepo) Delete(ctx context.Context, categoryID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": categoryID})
	if err != nil {
		return fmt.Errorf("failed to delete job category %s: %w", categoryID, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *jobCategoryRepo) List(ctx context.Context) ([]*entity.JobCategory, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list job categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []*entity.JobCategory
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode listed job categories: %w", err)
	}
	return categories, nil
}
