package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  string
}

type UpdateProductInput struct {
	ProductID   string
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  string
}

type CatalogService interface {
	CreateProduct(ctx context.Context, actorID string, input CreateProductInput) (*entity.Product, error)
	// GetProduct reads through the detail cache when one is configured.
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
	UpdateProduct(ctx context.Context, actorID string, input UpdateProductInput) (*entity.Product, error)
	// DeleteProduct removes the product and its reviews atomically; image
	// blobs are released only after the commit.
	DeleteProduct(ctx context.Context, actorID, productID string) error
	ListProducts(ctx context.Context, categoryID string, page, pageSize int) ([]*entity.Product, int64, error)
	// RecordProductView bumps the product's views counter. Last-writer-wins
	// is acceptable for this field; no transaction needed.
	RecordProductView(ctx context.Context, productID string) error
	// AddProductImage uploads the blob first, then attaches its key to the
	// product. The first image becomes primary.
	AddProductImage(ctx context.Context, productID, fileName string, data []byte) (string, error)

	CreateCategory(ctx context.Context, actorID, name, parentID string) (*entity.Category, error)
	UpdateCategory(ctx context.Context, actorID string, category *entity.Category) error
	// DeleteCategory refuses while children exist. Products referencing the
	// category follow the chosen disposition: reassignment to the fallback
	// category, or deletion together with their reviews.
	DeleteCategory(ctx context.Context, actorID, categoryID string, disposition entity.ProductDisposition) error
	ListCategories(ctx context.Context) ([]*entity.Category, error)

	CreateJobCategory(ctx context.Context, actorID, name string) (*entity.JobCategory, error)
	DeleteJobCategory(ctx context.Context, actorID, categoryID string) error
	ListJobCategories(ctx context.Context) ([]*entity.JobCategory, error)
}

type catalogService struct {
	store            repository.Store
	productCache     repository.ProductDetailCache
	blobStorage      BlobStorage
	activity         ActivityService
	fallbackCategory string
	cacheTTL         time.Duration
	clock            Clock
	newID            IDGenerator
	log              logger.Logger
}

type CatalogServiceConfig struct {
	FallbackCategoryName string
	ProductCacheTTL      time.Duration
}

func NewCatalogService(
	store repository.Store,
	productCache repository.ProductDetailCache,
	blobStorage BlobStorage,
	activity ActivityService,
	cfg CatalogServiceConfig,
	clock Clock,
	newID IDGenerator,
	log logger.Logger,
) CatalogService {
	fallback := cfg.FallbackCategoryName
	if fallback == "" {
		fallback = "Unassigned"
	}
	return &catalogService{
		store:            store,
		productCache:     productCache,
		blobStorage:      blobStorage,
		activity:         activity,
		fallbackCategory: fallback,
		cacheTTL:         cfg.ProductCacheTTL,
		clock:            clock,
		newID:            newID,
		log:              log,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, actorID string, input CreateProductInput) (*entity.Product, error) {
	var product *entity.Product
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.store.Categories().GetByID(txCtx, input.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: category %s does not exist", entity.ErrInvalidInput, input.CategoryID)
			}
			return fmt.Errorf("failed to load category %s: %w", input.CategoryID, err)
		}

		var err error
		product, err = entity.NewProduct(s.newID(), input.Name, input.Price, input.Stock, input.CategoryID, s.clock.Now())
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		product.Description = input.Description
		if err := s.store.Products().Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		return s.activity.RecordTx(txCtx, actorID, ActionProductCreated, fmt.Sprintf("product %s (%s) created", product.ID, product.Name))
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product ID is required", entity.ErrInvalidInput)
	}

	if s.productCache != nil {
		if cached, err := s.productCache.Get(ctx, productID); err == nil {
			return cached, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.log.Debugf("CatalogService.GetProduct: cache read failed for %s: %v", productID, err)
		}
	}

	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &entity.ProductNotFoundError{ProductID: productID}
		}
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}

	if s.productCache != nil {
		if err := s.productCache.Set(ctx, product, s.cacheTTL); err != nil {
			s.log.Debugf("CatalogService.GetProduct: cache write failed for %s: %v", productID, err)
		}
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actorID string, input UpdateProductInput) (*entity.Product, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: product ID is required", entity.ErrInvalidInput)
	}
	if input.Price <= 0 || input.Stock < 0 {
		return nil, fmt.Errorf("%w: price must be positive and stock non-negative", entity.ErrInvalidInput)
	}

	var product *entity.Product
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		product, err = s.store.Products().GetByID(txCtx, input.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &entity.ProductNotFoundError{ProductID: input.ProductID}
			}
			return fmt.Errorf("failed to load product %s: %w", input.ProductID, err)
		}

		if input.CategoryID != "" && input.CategoryID != product.CategoryID {
			if _, err := s.store.Categories().GetByID(txCtx, input.CategoryID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: category %s does not exist", entity.ErrInvalidInput, input.CategoryID)
				}
				return fmt.Errorf("failed to load category %s: %w", input.CategoryID, err)
			}
			product.CategoryID = input.CategoryID
		}
		if input.Name != "" {
			product.Name = input.Name
		}
		product.Description = input.Description
		product.Price = input.Price
		product.Stock = input.Stock
		product.UpdatedAt = s.clock.Now()

		if err := s.store.Products().Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product %s: %w", input.ProductID, err)
		}
		return s.activity.RecordTx(txCtx, actorID, ActionProductUpdated, fmt.Sprintf("product %s updated", product.ID))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProduct(ctx, product.ID)
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, actorID, productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product ID is required", entity.ErrInvalidInput)
	}

	var blobKeys []string
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		blobKeys = blobKeys[:0]

		product, err := s.store.Products().GetByID(txCtx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &entity.ProductNotFoundError{ProductID: productID}
			}
			return fmt.Errorf("failed to load product %s: %w", productID, err)
		}
		blobKeys = append(blobKeys, product.ImageIDs...)

		if err := s.store.Reviews().DeleteByProduct(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete reviews of product %s: %w", productID, err)
		}
		if err := s.store.Products().Delete(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete product %s: %w", productID, err)
		}
		return s.activity.RecordTx(txCtx, actorID, ActionProductDeleted, fmt.Sprintf("product %s (%s) deleted", product.ID, product.Name))
	})
	if err != nil {
		return err
	}

	s.releaseBlobs(ctx, blobKeys)
	s.invalidateProduct(ctx, productID)
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, categoryID string, page, pageSize int) ([]*entity.Product, int64, error) {
	products, total, err := s.store.Products().List(ctx, repository.ListProductsParams{
		CategoryID: categoryID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *catalogService) RecordProductView(ctx context.Context, productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product ID is required", entity.ErrInvalidInput)
	}
	if err := s.store.Products().IncrementViews(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &entity.ProductNotFoundError{ProductID: productID}
		}
		return fmt.Errorf("failed to record view for product %s: %w", productID, err)
	}
	return nil
}

func (s *catalogService) AddProductImage(ctx context.Context, productID, fileName string, data []byte) (string, error) {
	if productID == "" || len(data) == 0 {
		return "", fmt.Errorf("%w: product ID and image data are required", entity.ErrInvalidInput)
	}
	if s.blobStorage == nil {
		return "", fmt.Errorf("blob storage is not configured")
	}

	objectKey, err := s.blobStorage.Upload(ctx, fileName, data)
	if err != nil {
		return "", fmt.Errorf("failed to upload image for product %s: %w", productID, err)
	}

	err = s.store.WithinTx(ctx, func(txCtx context.Context) error {
		product, err := s.store.Products().GetByID(txCtx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &entity.ProductNotFoundError{ProductID: productID}
			}
			return fmt.Errorf("failed to load product %s: %w", productID, err)
		}
		product.ImageIDs = append(product.ImageIDs, objectKey)
		if product.PrimaryImageID == "" {
			product.PrimaryImageID = objectKey
		}
		product.UpdatedAt = s.clock.Now()
		if err := s.store.Products().Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to attach image to product %s: %w", productID, err)
		}
		return nil
	})
	if err != nil {
		// The blob was uploaded but never referenced; release it.
		if delErr := s.blobStorage.Delete(ctx, objectKey); delErr != nil {
			s.log.Warnf("CatalogService.AddProductImage: failed to release orphaned blob %s: %v", objectKey, delErr)
		}
		return "", err
	}

	s.invalidateProduct(ctx, productID)
	return objectKey, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, actorID, name, parentID string) (*entity.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", entity.ErrInvalidInput)
	}

	var category *entity.Category
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		if parentID != "" {
			if _, err := s.store.Categories().GetByID(txCtx, parentID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: parent category %s does not exist", entity.ErrInvalidInput, parentID)
				}
				return fmt.Errorf("failed to load parent category %s: %w", parentID, err)
			}
		}

		maxOrder, err := s.store.Categories().MaxDisplayOrder(txCtx, parentID)
		if err != nil {
			return fmt.Errorf("failed to compute display order: %w", err)
		}

		category, err = entity.NewCategory(s.newID(), name, parentID, maxOrder+1, s.clock.Now())
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		if err := s.store.Categories().Create(txCtx, category); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		return s.activity.RecordTx(txCtx, actorID, ActionCategoryCreated, fmt.Sprintf("category %s (%s) created", category.ID, category.Name))
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, actorID string, category *entity.Category) error {
	if category == nil || category.ID == "" {
		return fmt.Errorf("%w: category ID is required", entity.ErrInvalidInput)
	}
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", entity.ErrInvalidInput)
	}

	return s.store.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.store.Categories().GetByID(txCtx, category.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load category %s: %w", category.ID, err)
		}
		if category.ParentID != current.ParentID && category.ParentID != "" {
			if err := s.checkReparent(txCtx, category.ID, category.ParentID); err != nil {
				return err
			}
		}

		category.CreatedAt = current.CreatedAt
		category.UpdatedAt = s.clock.Now()
		if err := s.store.Categories().Update(txCtx, category); err != nil {
			return fmt.Errorf("failed to update category %s: %w", category.ID, err)
		}
		return s.activity.RecordTx(txCtx, actorID, ActionCategoryUpdated, fmt.Sprintf("category %s updated", category.ID))
	})
}

// checkReparent verifies the proposed parent exists and is neither the
// category itself nor one of its descendants, so the hierarchy stays a tree.
// Walks the ancestor chain inside the caller's transaction.
func (s *catalogService) checkReparent(ctx context.Context, categoryID, parentID string) error {
	seen := make(map[string]struct{})
	ancestorID := parentID
	for ancestorID != "" {
		if ancestorID == categoryID {
			return fmt.Errorf("%w: moving category %s under %s would create a cycle", entity.ErrInvalidInput, categoryID, parentID)
		}
		if _, ok := seen[ancestorID]; ok {
			return nil
		}
		seen[ancestorID] = struct{}{}

		ancestor, err := s.store.Categories().GetByID(ctx, ancestorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				if ancestorID == parentID {
					return fmt.Errorf("%w: parent category %s does not exist", entity.ErrInvalidInput, parentID)
				}
				return nil
			}
			return fmt.Errorf("failed to load category %s: %w", ancestorID, err)
		}
		ancestorID = ancestor.ParentID
	}
	return nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, actorID, categoryID string, disposition entity.ProductDisposition) error {
	if categoryID == "" {
		return fmt.Errorf("%w: category ID is required", entity.ErrInvalidInput)
	}
	if !disposition.IsValid() {
		return fmt.Errorf("%w: unknown product disposition %q", entity.ErrInvalidInput, disposition)
	}

	var blobKeys []string
	var touchedProducts []string
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		blobKeys = blobKeys[:0]
		touchedProducts = touchedProducts[:0]

		category, err := s.store.Categories().GetByID(txCtx, categoryID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load category %s: %w", categoryID, err)
		}

		children, err := s.store.Categories().CountChildren(txCtx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to count children of category %s: %w", categoryID, err)
		}
		if children > 0 {
			return &entity.HasChildCategoriesError{CategoryID: categoryID, Count: int(children)}
		}

		products, err := s.store.Products().ListByCategory(txCtx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to list products of category %s: %w", categoryID, err)
		}

		now := s.clock.Now()
		switch disposition {
		case entity.DispositionReassign:
			fallbackID, err := s.ensureFallbackCategory(txCtx, now)
			if err != nil {
				return err
			}
			for _, product := range products {
				product.CategoryID = fallbackID
				product.UpdatedAt = now
				if err := s.store.Products().Update(txCtx, product); err != nil {
					return fmt.Errorf("failed to reassign product %s: %w", product.ID, err)
				}
				touchedProducts = append(touchedProducts, product.ID)
			}
		case entity.DispositionDelete:
			for _, product := range products {
				if err := s.store.Reviews().DeleteByProduct(txCtx, product.ID); err != nil {
					return fmt.Errorf("failed to delete reviews of product %s: %w", product.ID, err)
				}
				if err := s.store.Products().Delete(txCtx, product.ID); err != nil {
					return fmt.Errorf("failed to delete product %s: %w", product.ID, err)
				}
				blobKeys = append(blobKeys, product.ImageIDs...)
				touchedProducts = append(touchedProducts, product.ID)
			}
		}

		if category.ImageID != "" {
			blobKeys = append(blobKeys, category.ImageID)
		}
		if err := s.store.Categories().Delete(txCtx, categoryID); err != nil {
			return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
		}

		desc := fmt.Sprintf("category %s (%s) deleted, disposition %s for %d products", category.ID, category.Name, disposition, len(products))
		return s.activity.RecordTx(txCtx, actorID, ActionCategoryDeleted, desc)
	})
	if err != nil {
		return err
	}

	s.releaseBlobs(ctx, blobKeys)
	for _, productID := range touchedProducts {
		s.invalidateProduct(ctx, productID)
	}
	return nil
}

// ensureFallbackCategory returns the root fallback category's ID, creating
// it inside the running transaction when it does not exist yet.
func (s *catalogService) ensureFallbackCategory(ctx context.Context, now time.Time) (string, error) {
	fallback, err := s.store.Categories().GetByName(ctx, s.fallbackCategory)
	if err == nil {
		return fallback.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("failed to look up fallback category: %w", err)
	}

	maxOrder, err := s.store.Categories().MaxDisplayOrder(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to compute display order for fallback category: %w", err)
	}
	fallback, err = entity.NewCategory(s.newID(), s.fallbackCategory, "", maxOrder+1, now)
	if err != nil {
		return "", fmt.Errorf("failed to build fallback category: %w", err)
	}
	if err := s.store.Categories().Create(ctx, fallback); err != nil {
		return "", fmt.Errorf("failed to create fallback category: %w", err)
	}
	s.log.Warnf("CatalogService: fallback category %q did not exist, created it as %s", s.fallbackCategory, fallback.ID)
	return fallback.ID, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) CreateJobCategory(ctx context.Context, actorID, name string) (*entity.JobCategory, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: job category name is required", entity.ErrInvalidInput)
	}

	var category *entity.JobCategory
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.store.JobCategories().List(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list job categories: %w", err)
		}
		maxOrder := 0
		for _, c := range existing {
			if c.DisplayOrder > maxOrder {
				maxOrder = c.DisplayOrder
			}
		}

		category, err = entity.NewJobCategory(s.newID(), name, maxOrder+1, s.clock.Now())
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		if err := s.store.JobCategories().Create(txCtx, category); err != nil {
			return fmt.Errorf("failed to create job category: %w", err)
		}
		return s.activity.RecordTx(txCtx, actorID, ActionCategoryCreated, fmt.Sprintf("job category %s (%s) created", category.ID, category.Name))
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) DeleteJobCategory(ctx context.Context, actorID, categoryID string) error {
	if categoryID == "" {
		return fmt.Errorf("%w: job category ID is required", entity.ErrInvalidInput)
	}
	return s.store.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.store.JobCategories().Delete(txCtx, categoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to delete job category %s: %w", categoryID, err)
		}
		return s.activity.RecordTx(txCtx, actorID, ActionCategoryDeleted, fmt.Sprintf("job category %s deleted", categoryID))
	})
}

func (s *catalogService) ListJobCategories(ctx context.Context) ([]*entity.JobCategory, error) {
	categories, err := s.store.JobCategories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list job categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) invalidateProduct(ctx context.Context, productID string) {
	if s.productCache == nil || productID == "" {
		return
	}
	if err := s.productCache.Delete(ctx, productID); err != nil {
		s.log.Debugf("CatalogService: failed to invalidate product cache for %s: %v", productID, err)
	}
}

func (s *catalogService) releaseBlobs(ctx context.Context, keys []string) {
	if s.blobStorage == nil {
		return
	}
	for _, key := range keys {
		if err := s.blobStorage.Delete(ctx, key); err != nil {
			s.log.Warnf("CatalogService: failed to release blob %s: %v", key, err)
		}
	}
}
