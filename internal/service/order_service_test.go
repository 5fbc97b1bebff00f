package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_DecrementsStockAndSnapshotsPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Electronics")
	product := env.mustCreateProduct(t, "Keyboard", 49.99, 10, category.ID)
	user := env.mustCreateUser(t, "alice")

	order, err := env.orders.PlaceOrder(ctx, user.ID, []OrderLine{{ProductID: product.ID, Quantity: 3}}, entity.Address{City: "Almaty"})
	require.NoError(t, err)

	assert.Equal(t, 7, env.productStock(t, product.ID))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Keyboard", order.Items[0].Name)
	assert.Equal(t, 49.99, order.Items[0].PricePerUnit)
	assert.InDelta(t, 149.97, order.TotalAmount, 1e-9)

	// Later price edits must not leak into the snapshot.
	_, err = env.catalog.UpdateProduct(ctx, "admin", UpdateProductInput{
		ProductID: product.ID,
		Price:     99.99,
		Stock:     7,
	})
	require.NoError(t, err)

	stored, err := env.orders.GetOrderByID(ctx, order.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 49.99, stored.Items[0].PricePerUnit)

	purchases, err := env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), purchases.Purchases)
}

func TestPlaceOrder_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Electronics")
	inStock := env.mustCreateProduct(t, "Mouse", 10, 5, category.ID)
	scarce := env.mustCreateProduct(t, "Monitor", 200, 1, category.ID)
	user := env.mustCreateUser(t, "bob")

	_, err := env.orders.PlaceOrder(ctx, user.ID, []OrderLine{
		{ProductID: inStock.ID, Quantity: 2},
		{ProductID: scarce.ID, Quantity: 3},
	}, entity.Address{})

	var stockErr *entity.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, scarce.ID, stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	// All-or-nothing: the valid line must not have been applied.
	assert.Equal(t, 5, env.productStock(t, inStock.ID))
	assert.Equal(t, 1, env.productStock(t, scarce.ID))

	orders, total, err := env.orders.ListUserOrders(ctx, user.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestPlaceOrder_DuplicateLinesAreMergedAndStockConserved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Electronics")
	product := env.mustCreateProduct(t, "Headset", 60, 3, category.ID)
	user := env.mustCreateUser(t, "grace")

	// Two lines for the same product ask for 4 units total; only 3 exist.
	_, err := env.orders.PlaceOrder(ctx, user.ID, []OrderLine{
		{ProductID: product.ID, Quantity: 2},
		{ProductID: product.ID, Quantity: 2},
	}, entity.Address{})

	var stockErr *entity.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, product.ID, stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, env.productStock(t, product.ID))

	// A repeated product that fits in stock sells exactly once, as one line.
	order, err := env.orders.PlaceOrder(ctx, user.ID, []OrderLine{
		{ProductID: product.ID, Quantity: 1},
		{ProductID: product.ID, Quantity: 2},
	}, entity.Address{})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 0, env.productStock(t, product.ID))

	sold, err := env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sold.Purchases, "stock plus units sold must be conserved")
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustCreateUser(t, "carol")

	_, err := env.orders.PlaceOrder(context.Background(), user.ID, []OrderLine{{ProductID: "missing", Quantity: 1}}, entity.Address{})

	var notFound *entity.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ProductID)
}

func TestPlaceOrder_ConcurrentBuyersNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Electronics")
	product := env.mustCreateProduct(t, "Webcam", 30, 3, category.ID)
	alice := env.mustCreateUser(t, "alice")
	bob := env.mustCreateUser(t, "bob")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, userID := range []string{alice.ID, bob.ID} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, results[i] = env.orders.PlaceOrder(ctx, userID, []OrderLine{{ProductID: product.ID, Quantity: 2}}, entity.Address{})
		}(i, userID)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			var stockErr *entity.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			failed++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one buyer must win the last units")
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, env.productStock(t, product.ID))
}

func TestPlaceOrderFromCart_PrunesPurchasedLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Books")
	product := env.mustCreateProduct(t, "Go in Practice", 40, 10, category.ID)
	user := env.mustCreateUser(t, "dave")

	_, err := env.carts.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	order, err := env.orders.PlaceOrderFromCart(ctx, user.ID, entity.Address{})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestPlaceOrderFromCart_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustCreateUser(t, "erin")

	_, err := env.orders.PlaceOrderFromCart(context.Background(), user.ID, entity.Address{})
	assert.True(t, errors.Is(err, entity.ErrInvalidInput))
}

func TestPlaceOrder_RecordsActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Garden")
	product := env.mustCreateProduct(t, "Shovel", 15, 4, category.ID)
	user := env.mustCreateUser(t, "frank")

	_, err := env.orders.PlaceOrder(ctx, user.ID, []OrderLine{{ProductID: product.ID, Quantity: 1}}, entity.Address{})
	require.NoError(t, err)

	entries, err := env.activity.List(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, ActionOrderPlaced, entries[0].ActionType)
	assert.Equal(t, user.ID, entries[0].ActorID)
}
