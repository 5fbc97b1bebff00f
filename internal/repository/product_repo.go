package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ListProductsParams struct {
	CategoryID string
	Page       int
	PageSize   int
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, productID string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context, params ListProductsParams) ([]*entity.Product, int64, error)
	// ListByCategory returns every product referencing the category,
	// unpaginated. Used by category disposition.
	ListByCategory(ctx context.Context, categoryID string) ([]*entity.Product, error)
	// IncrementViews bumps the views counter; single-document atomicity is
	// enough (last-writer-wins field).
	IncrementViews(ctx context.Context, productID string) error
}
