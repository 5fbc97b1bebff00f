package entity

import (
	"errors"
	"time"
)

// CartLine is a line item in either the active cart or the saved-for-later
// list. Name, PricePerUnit and PrimaryImageID are denormalized display data
// refreshed from the product record on every cart write.
type CartLine struct {
	ProductID      string  `bson:"product_id" json:"product_id"`
	Quantity       int     `bson:"quantity" json:"quantity"`
	Name           string  `bson:"name,omitempty" json:"name,omitempty"`
	PricePerUnit   float64 `bson:"price_per_unit,omitempty" json:"price_per_unit,omitempty"`
	PrimaryImageID string  `bson:"primary_image_id,omitempty" json:"primary_image_id,omitempty"`
}

// Cart holds a user's active line items and the saved-for-later list. A
// product appears in at most one of the two lists at a time.
type Cart struct {
	UserID             string     `bson:"_id" json:"user_id"`
	Items              []CartLine `bson:"items" json:"items"`
	SavedForLaterItems []CartLine `bson:"saved_for_later_items" json:"saved_for_later_items"`
	UpdatedAt          time.Time  `bson:"updated_at" json:"updated_at"`
}

func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:             userID,
		Items:              make([]CartLine, 0),
		SavedForLaterItems: make([]CartLine, 0),
		UpdatedAt:          now,
	}
}

func lineIndex(lines []CartLine, productID string) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Item returns the active line for the product, or nil.
func (c *Cart) Item(productID string) *CartLine {
	if i := lineIndex(c.Items, productID); i >= 0 {
		return &c.Items[i]
	}
	return nil
}

// SavedItem returns the saved-for-later line for the product, or nil.
func (c *Cart) SavedItem(productID string) *CartLine {
	if i := lineIndex(c.SavedForLaterItems, productID); i >= 0 {
		return &c.SavedForLaterItems[i]
	}
	return nil
}

// AddItem merges quantity into the active list. If the product currently
// sits in saved-for-later, that line is folded in as well so the product
// never appears in both lists.
func (c *Cart) AddItem(productID string, quantity int) error {
	if productID == "" {
		return errors.New("product ID cannot be empty for cart item")
	}
	if quantity <= 0 {
		return errors.New("cart item quantity must be positive")
	}
	if i := lineIndex(c.SavedForLaterItems, productID); i >= 0 {
		quantity += c.SavedForLaterItems[i].Quantity
		c.SavedForLaterItems = append(c.SavedForLaterItems[:i], c.SavedForLaterItems[i+1:]...)
	}
	if i := lineIndex(c.Items, productID); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartLine{ProductID: productID, Quantity: quantity})
	}
	return nil
}

func (c *Cart) UpdateItemQuantity(productID string, newQuantity int) error {
	i := lineIndex(c.Items, productID)
	if i < 0 {
		return errors.New("item not found in cart")
	}
	if newQuantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = newQuantity
	}
	return nil
}

func (c *Cart) RemoveItem(productID string) error {
	i := lineIndex(c.Items, productID)
	if i < 0 {
		return errors.New("item not found in cart to remove")
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

// MoveToSavedForLater removes the active line and merges it into the
// saved-for-later list, summing quantities when the product is already there.
func (c *Cart) MoveToSavedForLater(productID string) error {
	i := lineIndex(c.Items, productID)
	if i < 0 {
		return errors.New("item not found in cart")
	}
	line := c.Items[i]
	c.Items = append(c.Items[:i], c.Items[i+1:]...)

	if j := lineIndex(c.SavedForLaterItems, productID); j >= 0 {
		c.SavedForLaterItems[j].Quantity += line.Quantity
	} else {
		c.SavedForLaterItems = append(c.SavedForLaterItems, line)
	}
	return nil
}

// MoveToCart removes the saved line and merges it into the active list. The
// caller validates stock against the merged quantity before committing.
func (c *Cart) MoveToCart(productID string) error {
	i := lineIndex(c.SavedForLaterItems, productID)
	if i < 0 {
		return errors.New("item not found in saved-for-later list")
	}
	line := c.SavedForLaterItems[i]
	c.SavedForLaterItems = append(c.SavedForLaterItems[:i], c.SavedForLaterItems[i+1:]...)

	if j := lineIndex(c.Items, productID); j >= 0 {
		c.Items[j].Quantity += line.Quantity
	} else {
		c.Items = append(c.Items, line)
	}
	return nil
}

func (c *Cart) Clear() {
	c.Items = make([]CartLine, 0)
}
