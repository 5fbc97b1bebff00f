package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, categoryID string) (*entity.Category, error)
	// GetByName returns the first category with the given name and empty
	// parent. Used to locate the fallback category.
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, categoryID string) error
	// List returns all categories ordered by (displayOrder, id).
	List(ctx context.Context) ([]*entity.Category, error)
	CountChildren(ctx context.Context, categoryID string) (int64, error)
	// MaxDisplayOrder returns the highest display order among the children
	// of parentID (0 when there are none).
	MaxDisplayOrder(ctx context.Context, parentID string) (int, error)
}

type JobCategoryRepository interface {
	Create(ctx context.Context, category *entity.JobCategory) error
	GetByID(ctx context.Context, categoryID string) (*entity.JobCategory, error)
	Delete(ctx context.Context, categoryID string) error
	List(ctx context.Context) ([]*entity.JobCategory, error)
}
