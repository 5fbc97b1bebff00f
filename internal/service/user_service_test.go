package service

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFavorite_DuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Books")
	product := env.mustCreateProduct(t, "Go brain teasers", 20, 3, category.ID)
	user := env.mustCreateUser(t, "alice")

	require.NoError(t, env.users.AddFavorite(ctx, user.ID, product.ID))

	err := env.users.AddFavorite(ctx, user.ID, product.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	favorites, err := env.users.ListFavorites(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, product.ID, favorites[0].ProductID)
}

func TestAddFavorite_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustCreateUser(t, "bob")

	err := env.users.AddFavorite(context.Background(), user.ID, "missing")

	var notFound *entity.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ProductID)
}

func TestRemoveFavorite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Garden")
	product := env.mustCreateProduct(t, "Watering can", 9, 4, category.ID)
	user := env.mustCreateUser(t, "carol")

	require.NoError(t, env.users.AddFavorite(ctx, user.ID, product.ID))
	require.NoError(t, env.users.RemoveFavorite(ctx, user.ID, product.ID))

	err := env.users.RemoveFavorite(ctx, user.ID, product.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	favorites, err := env.users.ListFavorites(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}
