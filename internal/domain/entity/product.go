package entity

import (
	"errors"
	"time"
)

type Product struct {
	ID             string          `bson:"_id" json:"id"`
	Name           string          `bson:"name" json:"name"`
	Description    string          `bson:"description,omitempty" json:"description,omitempty"`
	Price          float64         `bson:"price" json:"price"`
	Stock          int             `bson:"stock" json:"stock"`
	CategoryID     string          `bson:"category_id" json:"category_id"`
	ImageIDs       []string        `bson:"image_ids,omitempty" json:"image_ids,omitempty"`
	PrimaryImageID string          `bson:"primary_image_id,omitempty" json:"primary_image_id,omitempty"`
	Rating         RatingAggregate `bson:"rating" json:"rating"`
	Views          int64           `bson:"views" json:"views"`
	Purchases      int64           `bson:"purchases" json:"purchases"`
	CreatedAt      time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updated_at"`
}

func NewProduct(id, name string, price float64, stock int, categoryID string, now time.Time) (*Product, error) {
	if id == "" {
		return nil, errors.New("product ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("product name cannot be empty")
	}
	if price <= 0 {
		return nil, errors.New("product price must be positive")
	}
	if stock < 0 {
		return nil, errors.New("product stock cannot be negative")
	}
	if categoryID == "" {
		return nil, errors.New("product category ID cannot be empty")
	}
	return &Product{
		ID:         id,
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
