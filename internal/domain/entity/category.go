package entity

import (
	"errors"
	"time"
)

// Category is a node in the product category tree. ParentID is empty for
// root categories. A category with children cannot be deleted.
type Category struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	ParentID     string    `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	DisplayOrder int       `bson:"display_order" json:"display_order"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	ImageID      string    `bson:"image_id,omitempty" json:"image_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

func NewCategory(id, name, parentID string, displayOrder int, now time.Time) (*Category, error) {
	if id == "" {
		return nil, errors.New("category ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("category name cannot be empty")
	}
	return &Category{
		ID:           id,
		Name:         name,
		ParentID:     parentID,
		DisplayOrder: displayOrder,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ProductDisposition selects what happens to a deleted category's products.
type ProductDisposition string

const (
	DispositionReassign ProductDisposition = "reassign"
	DispositionDelete   ProductDisposition = "delete"
)

func (d ProductDisposition) IsValid() bool {
	return d == DispositionReassign || d == DispositionDelete
}

// JobCategory is a flat classifier for jobs; it does not participate in the
// product category hierarchy.
type JobCategory struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	DisplayOrder int       `bson:"display_order" json:"display_order"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

func NewJobCategory(id, name string, displayOrder int, now time.Time) (*JobCategory, error) {
	if id == "" {
		return nil, errors.New("job category ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("job category name cannot be empty")
	}
	return &JobCategory{
		ID:           id,
		Name:         name,
		DisplayOrder: displayOrder,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
