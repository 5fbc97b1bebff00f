package service

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_ValidatesStockAndDenormalizesDisplayData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Kitchen")
	product := env.mustCreateProduct(t, "Kettle", 35, 4, category.ID)
	user := env.mustCreateUser(t, "alice")

	cart, err := env.carts.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Kettle", cart.Items[0].Name)
	assert.Equal(t, 35.0, cart.Items[0].PricePerUnit)

	// Merging beyond stock fails; 2 in cart + 3 more > 4 available.
	_, err = env.carts.AddItem(ctx, user.ID, product.ID, 3)
	var stockErr *entity.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)

	// Adding to the cart never reserves stock.
	assert.Equal(t, 4, env.productStock(t, product.ID))
}

func TestCartMutualExclusionBetweenActiveAndSaved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Kitchen")
	product := env.mustCreateProduct(t, "Blender", 70, 10, category.ID)
	user := env.mustCreateUser(t, "bob")

	_, err := env.carts.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	cart, err := env.carts.MoveToSavedForLater(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	require.Len(t, cart.SavedForLaterItems, 1)
	assert.Equal(t, 2, cart.SavedForLaterItems[0].Quantity)

	// Adding while saved folds the saved line into the active one.
	cart, err = env.carts.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.SavedForLaterItems)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestMoveToCartFromSaved_FalseOnInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Kitchen")
	product := env.mustCreateProduct(t, "Mixer", 90, 5, category.ID)
	user := env.mustCreateUser(t, "carol")

	_, err := env.carts.AddItem(ctx, user.ID, product.ID, 3)
	require.NoError(t, err)
	_, err = env.carts.MoveToSavedForLater(ctx, user.ID, product.ID)
	require.NoError(t, err)

	// Stock drains while the line sits saved.
	admin := env.mustCreateUser(t, "admin")
	_, err = env.orders.PlaceOrder(ctx, admin.ID, []OrderLine{{ProductID: product.ID, Quantity: 4}}, entity.Address{})
	require.NoError(t, err)

	cart, moved, err := env.carts.MoveToCartFromSaved(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, moved)

	// The saved line is exactly where it was.
	require.Len(t, cart.SavedForLaterItems, 1)
	assert.Equal(t, 3, cart.SavedForLaterItems[0].Quantity)
	assert.Empty(t, cart.Items)
}

func TestMoveToCartFromSaved_MergesQuantities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Kitchen")
	product := env.mustCreateProduct(t, "Toaster", 25, 10, category.ID)
	user := env.mustCreateUser(t, "dave")

	_, err := env.carts.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	_, err = env.carts.MoveToSavedForLater(ctx, user.ID, product.ID)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = env.carts.MoveToSavedForLater(ctx, user.ID, product.ID)
	require.NoError(t, err)

	cart, moved, err := env.carts.MoveToCartFromSaved(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, moved)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Empty(t, cart.SavedForLaterItems)
}

func TestUpdateItemQuantity_ZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Kitchen")
	product := env.mustCreateProduct(t, "Pan", 18, 6, category.ID)
	user := env.mustCreateUser(t, "erin")

	_, err := env.carts.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	cart, err := env.carts.UpdateItemQuantity(ctx, user.ID, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestGetCart_EmptyForNewUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustCreateUser(t, "frank")

	cart, err := env.carts.GetCart(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Empty(t, cart.SavedForLaterItems)
}
