package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory_AssignsNextDisplayOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.catalog.CreateCategory(ctx, "admin", "Electronics", "")
	require.NoError(t, err)
	second, err := env.catalog.CreateCategory(ctx, "admin", "Books", "")
	require.NoError(t, err)

	assert.Equal(t, 1, first.DisplayOrder)
	assert.Equal(t, 2, second.DisplayOrder)

	// Child ordering is scoped to the parent.
	child, err := env.catalog.CreateCategory(ctx, "admin", "Laptops", first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, child.DisplayOrder)
}

func TestDeleteCategory_RefusedWhileChildrenExist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := env.mustCreateCategory(t, "Electronics")
	_, err := env.catalog.CreateCategory(ctx, "admin", "Laptops", parent.ID)
	require.NoError(t, err)

	err = env.catalog.DeleteCategory(ctx, "admin", parent.ID, entity.DispositionReassign)
	var hasChildren *entity.HasChildCategoriesError
	require.ErrorAs(t, err, &hasChildren)
	assert.Equal(t, 1, hasChildren.Count)

	// Untouched.
	_, err = env.store.Categories().GetByID(ctx, parent.ID)
	require.NoError(t, err)
}

func TestDeleteCategory_ReassignLeavesNoDanglingReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doomed := env.mustCreateCategory(t, "Clearance")
	p1 := env.mustCreateProduct(t, "Lamp", 12, 3, doomed.ID)
	p2 := env.mustCreateProduct(t, "Rug", 30, 1, doomed.ID)

	err := env.catalog.DeleteCategory(ctx, "admin", doomed.ID, entity.DispositionReassign)
	require.NoError(t, err)

	_, err = env.store.Categories().GetByID(ctx, doomed.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	// The fallback category was auto-created and owns both products now.
	fallback, err := env.store.Categories().GetByName(ctx, "Unassigned")
	require.NoError(t, err)

	for _, productID := range []string{p1.ID, p2.ID} {
		product, err := env.store.Products().GetByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, fallback.ID, product.CategoryID)
	}
}

func TestDeleteCategory_ReassignReusesExistingFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fallback := env.mustCreateCategory(t, "Unassigned")
	doomed := env.mustCreateCategory(t, "Seasonal")
	product := env.mustCreateProduct(t, "Snow globe", 8, 5, doomed.ID)

	require.NoError(t, env.catalog.DeleteCategory(ctx, "admin", doomed.ID, entity.DispositionReassign))

	got, err := env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, got.CategoryID)

	categories, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	names := make(map[string]int)
	for _, c := range categories {
		names[c.Name]++
	}
	assert.Equal(t, 1, names["Unassigned"], "no duplicate fallback category")
}

func TestDeleteCategory_DeletePolicyCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doomed := env.mustCreateCategory(t, "Discontinued")
	product := env.mustCreateProduct(t, "VHS player", 20, 2, doomed.ID)
	user := env.mustCreateUser(t, "alice")
	_, err := env.reviews.AddReview(ctx, user.ID, product.ID, 3, "")
	require.NoError(t, err)

	require.NoError(t, env.catalog.DeleteCategory(ctx, "admin", doomed.ID, entity.DispositionDelete))

	_, err = env.store.Products().GetByID(ctx, product.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	reviews, err := env.store.Reviews().ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestUpdateCategory_RejectsSelfParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Outdoor")

	updated := *category
	updated.ParentID = category.ID
	err := env.catalog.UpdateCategory(ctx, "admin", &updated)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInvalidInput))

	// The category must still be deletable.
	require.NoError(t, env.catalog.DeleteCategory(ctx, "admin", category.ID, entity.DispositionReassign))
}

func TestUpdateCategory_RejectsDescendantAsParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreateCategory(t, "Electronics")
	child, err := env.catalog.CreateCategory(ctx, "admin", "Audio", root.ID)
	require.NoError(t, err)
	grandchild, err := env.catalog.CreateCategory(ctx, "admin", "Headphones", child.ID)
	require.NoError(t, err)

	// Direct child and deeper descendant both close a cycle.
	for _, parentID := range []string{child.ID, grandchild.ID} {
		updated := *root
		updated.ParentID = parentID
		err := env.catalog.UpdateCategory(ctx, "admin", &updated)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entity.ErrInvalidInput))
	}

	stored, err := env.store.Categories().GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ParentID)
}

func TestUpdateCategory_LegitimateReparent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oldParent := env.mustCreateCategory(t, "Electronics")
	newParent := env.mustCreateCategory(t, "Accessories")
	child, err := env.catalog.CreateCategory(ctx, "admin", "Cables", oldParent.ID)
	require.NoError(t, err)

	updated := *child
	updated.ParentID = newParent.ID
	require.NoError(t, env.catalog.UpdateCategory(ctx, "admin", &updated))

	stored, err := env.store.Categories().GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, newParent.ID, stored.ParentID)
}

func TestDeleteCategory_InvalidDisposition(t *testing.T) {
	env := newTestEnv(t)
	category := env.mustCreateCategory(t, "Misc")

	err := env.catalog.DeleteCategory(context.Background(), "admin", category.ID, "scatter")
	assert.True(t, errors.Is(err, entity.ErrInvalidInput))
}

func TestCreateProduct_RequiresExistingCategory(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateProduct(context.Background(), "admin", CreateProductInput{
		Name:       "Orphan",
		Price:      10,
		Stock:      1,
		CategoryID: "nope",
	})
	assert.True(t, errors.Is(err, entity.ErrInvalidInput))
}

func TestRecordProductView_Increments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Electronics")
	product := env.mustCreateProduct(t, "Router", 45, 9, category.ID)

	require.NoError(t, env.catalog.RecordProductView(ctx, product.ID))
	require.NoError(t, env.catalog.RecordProductView(ctx, product.ID))

	got, err := env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)

	err = env.catalog.RecordProductView(ctx, "missing")
	var notFound *entity.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteProduct_ReleasesBlobsAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	blobs := new(MockBlobStorage)
	catalog := NewCatalogService(env.store, nil, blobs, env.activity, CatalogServiceConfig{}, env.clock, sequentialIDs(), logger.NewNop())

	category := env.mustCreateCategory(t, "Photo")
	product := env.mustCreateProduct(t, "Tripod", 25, 4, category.ID)

	blobs.On("Upload", mock.Anything, "tripod.jpg", mock.Anything).Return("images/key-1.jpg", nil)
	key, err := catalog.AddProductImage(ctx, product.ID, "tripod.jpg", []byte{0x1})
	require.NoError(t, err)
	assert.Equal(t, "images/key-1.jpg", key)

	blobs.On("Delete", mock.Anything, "images/key-1.jpg").Return(nil)
	require.NoError(t, catalog.DeleteProduct(ctx, "admin", product.ID))

	blobs.AssertCalled(t, "Delete", mock.Anything, "images/key-1.jpg")

	_, err = env.store.Products().GetByID(ctx, product.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
