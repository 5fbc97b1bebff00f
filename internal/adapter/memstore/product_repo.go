package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type productRepo struct {
	store *Store
}

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	return r.store.insert(ctx, collProducts, product.ID, product)
}

func (r *productRepo) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	var product entity.Product
	if err := r.store.get(ctx, collProducts, productID, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *entity.Product) error {
	return r.store.mutate(ctx, collProducts, product.ID, func([]byte) (interface{}, error) {
		return product, nil
	})
}

func (r *productRepo) Delete(ctx context.Context, productID string) error {
	return r.store.remove(ctx, collProducts, productID)
}

func (r *productRepo) List(ctx context.Context, params repository.ListProductsParams) ([]*entity.Product, int64, error) {
	var all []*entity.Product
	err := r.store.forEach(ctx, collProducts, func(_ string, raw []byte) error {
		var p entity.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("failed to decode product: %w", err)
		}
		if params.CategoryID != "" && p.CategoryID != params.CategoryID {
			return nil
		}
		all = append(all, &p)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	total := int64(len(all))
	return paginate(all, params.Page, params.PageSize), total, nil
}

func (r *productRepo) ListByCategory(ctx context.Context, categoryID string) ([]*entity.Product, error) {
	products, _, err := r.List(ctx, repository.ListProductsParams{CategoryID: categoryID})
	return products, err
}

func (r *productRepo) IncrementViews(ctx context.Context, productID string) error {
	return r.store.mutate(ctx, collProducts, productID, func(raw []byte) (interface{}, error) {
		var p entity.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		p.Views++
		return &p, nil
	})
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
