package entity

import (
	"errors"
	"time"
)

type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// OrderItem is a point-in-time snapshot of the product at purchase. Later
// product edits never touch it (price-at-purchase semantics).
type OrderItem struct {
	ProductID    string  `bson:"product_id" json:"product_id"`
	Name         string  `bson:"name" json:"name"`
	Quantity     int     `bson:"quantity" json:"quantity"`
	PricePerUnit float64 `bson:"price_per_unit" json:"price_per_unit"`
	TotalPrice   float64 `bson:"total_price" json:"total_price"`
	ImageID      string  `bson:"image_id,omitempty" json:"image_id,omitempty"`
}

func NewOrderItem(productID, name string, quantity int, pricePerUnit float64, imageID string) (*OrderItem, error) {
	if productID == "" {
		return nil, errors.New("product ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if pricePerUnit < 0 {
		return nil, errors.New("price per unit cannot be negative")
	}
	return &OrderItem{
		ProductID:    productID,
		Name:         name,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		TotalPrice:   float64(quantity) * pricePerUnit,
		ImageID:      imageID,
	}, nil
}

// Order is immutable once created; it is only ever written by the atomic
// order-placement operation.
type Order struct {
	ID              string      `bson:"_id" json:"id"`
	UserID          string      `bson:"user_id" json:"user_id"`
	Items           []OrderItem `bson:"items" json:"items"`
	TotalAmount     float64     `bson:"total_amount" json:"total_amount"`
	ShippingAddress Address     `bson:"shipping_address,omitempty" json:"shipping_address,omitempty"`
	CreatedAt       time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `bson:"updated_at" json:"updated_at"`
}

func NewOrder(id, userID string, items []OrderItem, shippingAddr Address, now time.Time) (*Order, error) {
	if id == "" {
		return nil, errors.New("order ID cannot be empty")
	}
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	order := &Order{
		ID:              id,
		UserID:          userID,
		Items:           items,
		ShippingAddress: shippingAddr,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, item := range items {
		order.TotalAmount += item.TotalPrice
	}
	return order, nil
}
