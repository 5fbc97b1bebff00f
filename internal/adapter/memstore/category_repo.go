package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type categoryRepo struct {
	store *Store
}

func (r *categoryRepo) Create(ctx context.Context, category *entity.Category) error {
	return r.store.insert(ctx, collCategories, category.ID, category)
}

func (r *categoryRepo) GetByID(ctx context.Context, categoryID string) (*entity.Category, error) {
	var category entity.Category
	if err := r.store.get(ctx, collCategories, categoryID, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	var found *entity.Category
	err := r.store.forEach(ctx, collCategories, func(_ string, raw []byte) error {
		if found != nil {
			return nil
		}
		var c entity.Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("failed to decode category: %w", err)
		}
		if c.Name == name && c.ParentID == "" {
			found = &c
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

func (r *categoryRepo) Update(ctx context.Context, category *entity.Category) error {
	return r.store.mutate(ctx, collCategories, category.ID, func([]byte) (interface{}, error) {
		return category, nil
	})
}

func (r *categoryRepo) Delete(ctx context.Context, categoryID string) error {
	return r.store.remove(ctx, collCategories, categoryID)
}

func (r *categoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	var all []*entity.Category
	err := r.store.forEach(ctx, collCategories, func(_ string, raw []byte) error {
		var c entity.Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("failed to decode category: %w", err)
		}
		all = append(all, &c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DisplayOrder != all[j].DisplayOrder {
			return all[i].DisplayOrder < all[j].DisplayOrder
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (r *categoryRepo) CountChildren(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.store.forEach(ctx, collCategories, func(_ string, raw []byte) error {
		var c entity.Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("failed to decode category: %w", err)
		}
		if c.ParentID == categoryID {
			count++
		}
		return nil
	})
	return count, err
}

func (r *categoryRepo) MaxDisplayOrder(ctx context.Context, parentID string) (int, error) {
	max := 0
	err := r.store.forEach(ctx, collCategories, func(_ string, raw []byte) error {
		var c entity.Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("failed to decode category: %w", err)
		}
		if c.ParentID == parentID && c.DisplayOrder > max {
			max = c.DisplayOrder
		}
		return nil
	})
	return max, err
}

type jobCategoryRepo struct {
	store *Store
}

func (r *jobCategoryRepo) Create(ctx context.Context, category *entity.JobCategory) error {
	return r.store.insert(ctx, collJobCategories, category.ID, category)
}

func (r *jobCategoryRepo) GetByID(ctx context.Context, categoryID string) (*entity.JobCategory, error) {
	var category entity.JobCategory
	if err := r.store.get(ctx, collJobCategories, categoryID, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *jobCategoryRepo) Delete(ctx context.Context, categoryID string) error {
	return r.store.remove(ctx, collJobCategories, categoryID)
}

func (r *jobCategoryRepo) List(ctx context.Context) ([]*entity.JobCategory, error) {
	var all []*entity.JobCategory
	err := r.store.forEach(ctx, collJobCategories, func(_ string, raw []byte) error {
		var c entity.JobCategory
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("failed to decode job category: %w", err)
		}
		all = append(all, &c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DisplayOrder != all[j].DisplayOrder {
			return all[i].DisplayOrder < all[j].DisplayOrder
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}
