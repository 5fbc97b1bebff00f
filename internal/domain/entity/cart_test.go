package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddItemMergesQuantities(t *testing.T) {
	cart := NewCart("u1", time.Now())

	require.NoError(t, cart.AddItem("p1", 2))
	require.NoError(t, cart.AddItem("p1", 3))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCart_ProductNeverInBothLists(t *testing.T) {
	cart := NewCart("u1", time.Now())
	require.NoError(t, cart.AddItem("p1", 2))

	require.NoError(t, cart.MoveToSavedForLater("p1"))
	assert.Nil(t, cart.Item("p1"))
	require.NotNil(t, cart.SavedItem("p1"))

	// Adding while saved folds the saved quantity into the active line.
	require.NoError(t, cart.AddItem("p1", 1))
	assert.Nil(t, cart.SavedItem("p1"))
	require.NotNil(t, cart.Item("p1"))
	assert.Equal(t, 3, cart.Item("p1").Quantity)
}

func TestCart_MoveToSavedMergesExistingSavedLine(t *testing.T) {
	cart := NewCart("u1", time.Now())
	require.NoError(t, cart.AddItem("p1", 2))
	require.NoError(t, cart.MoveToSavedForLater("p1"))
	require.NoError(t, cart.AddItem("p1", 1))

	// p1 is active with 3 now; park it again next to nothing saved.
	require.NoError(t, cart.MoveToSavedForLater("p1"))
	assert.Equal(t, 3, cart.SavedItem("p1").Quantity)
}

func TestCart_UpdateQuantityZeroRemoves(t *testing.T) {
	cart := NewCart("u1", time.Now())
	require.NoError(t, cart.AddItem("p1", 2))

	require.NoError(t, cart.UpdateItemQuantity("p1", 0))
	assert.Empty(t, cart.Items)

	assert.Error(t, cart.UpdateItemQuantity("p1", 1))
}

func TestCart_ClearKeepsSavedForLater(t *testing.T) {
	cart := NewCart("u1", time.Now())
	require.NoError(t, cart.AddItem("p1", 1))
	require.NoError(t, cart.AddItem("p2", 1))
	require.NoError(t, cart.MoveToSavedForLater("p2"))

	cart.Clear()
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.SavedItem("p2"))
}
