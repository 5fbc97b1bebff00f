package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type jobRepo struct {
	store *Store
}

func (r *jobRepo) Create(ctx context.Context, job *entity.Job) error {
	return r.store.insert(ctx, collJobs, job.ID, job)
}

func (r *jobRepo) GetByID(ctx context.Context, jobID string) (*entity.Job, error) {
	var job entity.Job
	if err := r.store.get(ctx, collJobs, jobID, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) Update(ctx context.Context, job *entity.Job) error {
	return r.store.mutate(ctx, collJobs, job.ID, func([]byte) (interface{}, error) {
		return job, nil
	})
}

func (r *jobRepo) Delete(ctx context.Context, jobID string) error {
	return r.store.remove(ctx, collJobs, jobID)
}

func (r *jobRepo) list(ctx context.Context, keep func(*entity.Job) bool) ([]*entity.Job, error) {
	var all []*entity.Job
	err := r.store.forEach(ctx, collJobs, func(_ string, raw []byte) error {
		var j entity.Job
		if err := json.Unmarshal(raw, &j); err != nil {
			return fmt.Errorf("failed to decode job: %w", err)
		}
		if keep(&j) {
			all = append(all, &j)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (r *jobRepo) List(ctx context.Context, params repository.ListJobsParams) ([]*entity.Job, error) {
	all, err := r.list(ctx, func(j *entity.Job) bool {
		if params.Status != "" && j.Status != params.Status {
			return false
		}
		if params.CreatedByID != "" && j.CreatedByID != params.CreatedByID {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return paginate(all, params.Page, params.PageSize), nil
}

func (r *jobRepo) ListOpenExpiredBefore(ctx context.Context, cutoff time.Time) ([]*entity.Job, error) {
	return r.list(ctx, func(j *entity.Job) bool {
		return j.Status == entity.JobStatusOpen && cutoff.After(j.ExpiresAt)
	})
}
