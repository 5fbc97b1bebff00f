package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ListJobsParams struct {
	Status      entity.JobStatus
	CreatedByID string
	Page        int
	PageSize    int
}

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	GetByID(ctx context.Context, jobID string) (*entity.Job, error)
	Update(ctx context.Context, job *entity.Job) error
	Delete(ctx context.Context, jobID string) error
	List(ctx context.Context, params ListJobsParams) ([]*entity.Job, error)
	// ListOpenExpiredBefore returns open jobs whose expiry has passed.
	ListOpenExpiredBefore(ctx context.Context, cutoff time.Time) ([]*entity.Job, error)
}
