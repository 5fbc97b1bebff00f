package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type CreateJobInput struct {
	Title       string
	Description string
	CategoryID  string
	Price       float64
	CreatedByID string
	ExpiresAt   time.Time
}

// JobEvent is published when a job changes state.
type JobEvent struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	ActorID    string `json:"actor_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type JobService interface {
	CreateJob(ctx context.Context, input CreateJobInput) (*entity.Job, error)
	// GetJob applies lazy expiry: an open job read past its expiry is
	// transitioned to expired and persisted before being returned.
	GetJob(ctx context.Context, jobID string) (*entity.Job, error)
	ListJobs(ctx context.Context, params repository.ListJobsParams) ([]*entity.Job, error)
	// AcceptJob is read-check-write in one atomic step: of any number of
	// simultaneous acceptors exactly one succeeds, the rest observe the job
	// as unavailable.
	AcceptJob(ctx context.Context, jobID, userID string) (*entity.Job, error)
	// CompleteJob marks an accepted job completed; only the creator may do
	// so, and completed is terminal.
	CompleteJob(ctx context.Context, jobID, actorID string) (*entity.Job, error)
	// DeleteJob removes the job and its reviews; only the creator may
	// delete. Image blobs are released after commit.
	DeleteJob(ctx context.Context, jobID, actorID string) error
	AddJobImage(ctx context.Context, jobID, actorID, fileName string, data []byte) (string, error)
	// ExpireDueJobs sweeps open jobs past expiry; the lazy read path covers
	// jobs the sweep has not reached yet.
	ExpireDueJobs(ctx context.Context) (int, error)
}

type jobService struct {
	store         repository.Store
	blobStorage   BlobStorage
	msgPublisher  nats.MessagePublisher
	notifications NotificationService
	activity      ActivityService
	clock         Clock
	newID         IDGenerator
	log           logger.Logger
}

func NewJobService(
	store repository.Store,
	blobStorage BlobStorage,
	msgPublisher nats.MessagePublisher,
	notifications NotificationService,
	activity ActivityService,
	clock Clock,
	newID IDGenerator,
	log logger.Logger,
) JobService {
	return &jobService{
		store:         store,
		blobStorage:   blobStorage,
		msgPublisher:  msgPublisher,
		notifications: notifications,
		activity:      activity,
		clock:         clock,
		newID:         newID,
		log:           log,
	}
}

func (s *jobService) CreateJob(ctx context.Context, input CreateJobInput) (*entity.Job, error) {
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: job price cannot be negative", entity.ErrInvalidInput)
	}

	var job *entity.Job
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		creator, err := s.store.Users().GetByID(txCtx, input.CreatedByID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: creator %s does not exist", entity.ErrInvalidInput, input.CreatedByID)
			}
			return fmt.Errorf("failed to load creator %s: %w", input.CreatedByID, err)
		}
		if input.CategoryID != "" {
			if _, err := s.store.JobCategories().GetByID(txCtx, input.CategoryID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: job category %s does not exist", entity.ErrInvalidInput, input.CategoryID)
				}
				return fmt.Errorf("failed to load job category %s: %w", input.CategoryID, err)
			}
		}

		job, err = entity.NewJob(s.newID(), input.Title, creator.ID, creator.Name, input.ExpiresAt, s.clock.Now())
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		job.Description = input.Description
		job.CategoryID = input.CategoryID
		job.Price = input.Price

		if err := s.store.Jobs().Create(txCtx, job); err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		return s.activity.RecordTx(txCtx, creator.ID, ActionJobCreated, fmt.Sprintf("job %s (%s) created", job.ID, job.Title))
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) GetJob(ctx context.Context, jobID string) (*entity.Job, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: job ID is required", entity.ErrInvalidInput)
	}

	var job *entity.Job
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		job, err = s.store.Jobs().GetByID(txCtx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load job %s: %w", jobID, err)
		}
		return s.expireIfDue(txCtx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) ListJobs(ctx context.Context, params repository.ListJobsParams) ([]*entity.Job, error) {
	var jobs []*entity.Job
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		jobs, err = s.store.Jobs().List(txCtx, params)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		for _, job := range jobs {
			if err := s.expireIfDue(txCtx, job); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Listing by status=open may have just expired some entries; drop them.
	if params.Status == entity.JobStatusOpen {
		kept := jobs[:0]
		for _, job := range jobs {
			if job.Status == entity.JobStatusOpen {
				kept = append(kept, job)
			}
		}
		jobs = kept
	}
	return jobs, nil
}

// expireIfDue rewrites an open job that has passed its expiry. Runs inside
// the caller's transaction so the read and the rewrite are one step.
func (s *jobService) expireIfDue(ctx context.Context, job *entity.Job) error {
	now := s.clock.Now()
	if !job.IsExpiredAt(now) {
		return nil
	}
	if err := job.TransitionTo(entity.JobStatusExpired, now); err != nil {
		return fmt.Errorf("failed to expire job %s: %w", job.ID, err)
	}
	if err := s.store.Jobs().Update(ctx, job); err != nil {
		return fmt.Errorf("failed to persist expiry of job %s: %w", job.ID, err)
	}
	return nil
}

func (s *jobService) AcceptJob(ctx context.Context, jobID, userID string) (*entity.Job, error) {
	if jobID == "" || userID == "" {
		return nil, fmt.Errorf("%w: job ID and user ID are required", entity.ErrInvalidInput)
	}

	var job *entity.Job
	var acceptedMsg string
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		job, err = s.store.Jobs().GetByID(txCtx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &entity.JobNotAvailableError{JobID: jobID}
			}
			return fmt.Errorf("failed to load job %s: %w", jobID, err)
		}

		if err := s.expireIfDue(txCtx, job); err != nil {
			return err
		}
		if job.Status != entity.JobStatusOpen {
			return &entity.JobNotAvailableError{JobID: jobID, Status: job.Status}
		}
		if job.CreatedByID == userID {
			return &entity.JobNotAvailableError{JobID: jobID, Status: job.Status}
		}

		acceptor, err := s.store.Users().GetByID(txCtx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: user %s does not exist", entity.ErrInvalidInput, userID)
			}
			return fmt.Errorf("failed to load user %s: %w", userID, err)
		}

		if err := job.Accept(acceptor.ID, acceptor.Name, s.clock.Now()); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		if err := s.store.Jobs().Update(txCtx, job); err != nil {
			return fmt.Errorf("failed to persist acceptance of job %s: %w", jobID, err)
		}

		acceptedMsg = fmt.Sprintf("Your job %q was accepted by %s", job.Title, acceptor.Name)
		if err := s.notifications.NotifyTx(txCtx, job.CreatedByID, entity.NotificationJobAccepted, acceptedMsg); err != nil {
			return err
		}
		return s.activity.RecordTx(txCtx, userID, ActionJobAccepted, fmt.Sprintf("job %s accepted by %s", job.ID, userID))
	})
	if err != nil {
		return nil, err
	}

	s.notifications.EmailUser(ctx, job.CreatedByID, entity.NotificationJobAccepted, acceptedMsg)
	s.publishJobEvent(ctx, nats.SubjectJobAccepted, job, userID)
	return job, nil
}

func (s *jobService) CompleteJob(ctx context.Context, jobID, actorID string) (*entity.Job, error) {
	if jobID == "" || actorID == "" {
		return nil, fmt.Errorf("%w: job ID and actor ID are required", entity.ErrInvalidInput)
	}

	var job *entity.Job
	var completedMsg string
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		job, err = s.store.Jobs().GetByID(txCtx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load job %s: %w", jobID, err)
		}
		if job.CreatedByID != actorID {
			return &entity.NotAJobParticipantError{JobID: jobID, UserID: actorID}
		}
		if err := job.TransitionTo(entity.JobStatusCompleted, s.clock.Now()); err != nil {
			return &entity.JobNotAvailableError{JobID: jobID, Status: job.Status}
		}
		if err := s.store.Jobs().Update(txCtx, job); err != nil {
			return fmt.Errorf("failed to persist completion of job %s: %w", jobID, err)
		}

		if job.AcceptedByID != "" {
			completedMsg = fmt.Sprintf("Job %q was marked completed", job.Title)
			if err := s.notifications.NotifyTx(txCtx, job.AcceptedByID, entity.NotificationJobCompleted, completedMsg); err != nil {
				return err
			}
		}
		return s.activity.RecordTx(txCtx, actorID, ActionJobCompleted, fmt.Sprintf("job %s completed", job.ID))
	})
	if err != nil {
		return nil, err
	}

	if job.AcceptedByID != "" {
		s.notifications.EmailUser(ctx, job.AcceptedByID, entity.NotificationJobCompleted, completedMsg)
	}
	s.publishJobEvent(ctx, nats.SubjectJobCompleted, job, actorID)
	return job, nil
}

func (s *jobService) DeleteJob(ctx context.Context, jobID, actorID string) error {
	if jobID == "" || actorID == "" {
		return fmt.Errorf("%w: job ID and actor ID are required", entity.ErrInvalidInput)
	}

	var blobKeys []string
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		blobKeys = blobKeys[:0]

		job, err := s.store.Jobs().GetByID(txCtx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load job %s: %w", jobID, err)
		}
		if job.CreatedByID != actorID {
			return &entity.NotAJobParticipantError{JobID: jobID, UserID: actorID}
		}
		blobKeys = append(blobKeys, job.ImageIDs...)

		if err := s.store.JobReviews().DeleteByJob(txCtx, jobID); err != nil {
			return fmt.Errorf("failed to delete reviews of job %s: %w", jobID, err)
		}
		if err := s.store.Jobs().Delete(txCtx, jobID); err != nil {
			return fmt.Errorf("failed to delete job %s: %w", jobID, err)
		}
		return s.activity.RecordTx(txCtx, actorID, ActionJobDeleted, fmt.Sprintf("job %s deleted", jobID))
	})
	if err != nil {
		return err
	}

	if s.blobStorage != nil {
		for _, key := range blobKeys {
			if err := s.blobStorage.Delete(ctx, key); err != nil {
				s.log.Warnf("JobService: failed to release blob %s: %v", key, err)
			}
		}
	}
	return nil
}

func (s *jobService) AddJobImage(ctx context.Context, jobID, actorID, fileName string, data []byte) (string, error) {
	if jobID == "" || len(data) == 0 {
		return "", fmt.Errorf("%w: job ID and image data are required", entity.ErrInvalidInput)
	}
	if s.blobStorage == nil {
		return "", fmt.Errorf("blob storage is not configured")
	}

	objectKey, err := s.blobStorage.Upload(ctx, fileName, data)
	if err != nil {
		return "", fmt.Errorf("failed to upload image for job %s: %w", jobID, err)
	}

	err = s.store.WithinTx(ctx, func(txCtx context.Context) error {
		job, err := s.store.Jobs().GetByID(txCtx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load job %s: %w", jobID, err)
		}
		if job.CreatedByID != actorID {
			return &entity.NotAJobParticipantError{JobID: jobID, UserID: actorID}
		}
		job.ImageIDs = append(job.ImageIDs, objectKey)
		job.UpdatedAt = s.clock.Now()
		if err := s.store.Jobs().Update(txCtx, job); err != nil {
			return fmt.Errorf("failed to attach image to job %s: %w", jobID, err)
		}
		return nil
	})
	if err != nil {
		if delErr := s.blobStorage.Delete(ctx, objectKey); delErr != nil {
			s.log.Warnf("JobService.AddJobImage: failed to release orphaned blob %s: %v", objectKey, delErr)
		}
		return "", err
	}
	return objectKey, nil
}

func (s *jobService) ExpireDueJobs(ctx context.Context) (int, error) {
	due, err := s.store.Jobs().ListOpenExpiredBefore(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list due jobs: %w", err)
	}

	expired := 0
	for _, job := range due {
		err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
			// Re-read inside the transaction; the job may have been
			// accepted or already expired since the listing.
			current, err := s.store.Jobs().GetByID(txCtx, job.ID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil
				}
				return err
			}
			if !current.IsExpiredAt(s.clock.Now()) {
				return nil
			}
			*job = *current
			return s.expireIfDue(txCtx, job)
		})
		if err != nil {
			s.log.Warnf("JobService.ExpireDueJobs: failed to expire job %s: %v", job.ID, err)
			continue
		}
		if job.Status == entity.JobStatusExpired {
			expired++
			s.publishJobEvent(ctx, nats.SubjectJobExpired, job, "")
		}
	}
	return expired, nil
}

func (s *jobService) publishJobEvent(ctx context.Context, subject string, job *entity.Job, actorID string) {
	if s.msgPublisher == nil {
		return
	}
	event := JobEvent{
		JobID:      job.ID,
		Status:     string(job.Status),
		ActorID:    actorID,
		OccurredAt: job.UpdatedAt.Format(time.RFC3339),
	}
	if err := s.msgPublisher.Publish(ctx, subject, event); err != nil {
		s.log.Warnf("JobService: failed to publish %s for job %s: %v", subject, job.ID, err)
	}
}
