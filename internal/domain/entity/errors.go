package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks validation failures rejected before any read.
var ErrInvalidInput = errors.New("invalid input data")

// InsufficientStockError is returned by order placement and cart operations
// when a product cannot cover the requested quantity. No writes happen.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// HasChildCategoriesError rejects deletion of a category that still has
// children; the tree is left unchanged.
type HasChildCategoriesError struct {
	CategoryID string
	Count      int
}

func (e *HasChildCategoriesError) Error() string {
	return fmt.Sprintf("category %s has %d child categories", e.CategoryID, e.Count)
}

// JobNotAvailableError is returned when a job cannot be accepted: it is
// missing, already accepted, completed or expired.
type JobNotAvailableError struct {
	JobID  string
	Status JobStatus
}

func (e *JobNotAvailableError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("job %s is not available", e.JobID)
	}
	return fmt.Sprintf("job %s is not available (status %s)", e.JobID, e.Status)
}

type NotAJobParticipantError struct {
	JobID  string
	UserID string
}

func (e *NotAJobParticipantError) Error() string {
	return fmt.Sprintf("user %s is not a participant of job %s", e.UserID, e.JobID)
}

type AlreadyReviewedError struct {
	SubjectID string
	UserID    string
}

func (e *AlreadyReviewedError) Error() string {
	return fmt.Sprintf("user %s has already reviewed %s", e.UserID, e.SubjectID)
}
