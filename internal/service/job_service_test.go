package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAcceptJob_ExactlyOneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	job, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Move a piano",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	const contenders = 8
	workers := make([]*entity.User, contenders)
	for i := range workers {
		workers[i] = env.mustCreateUser(t, "worker")
	}

	var wg sync.WaitGroup
	results := make([]error, contenders)
	for i, worker := range workers {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, results[i] = env.jobs.AcceptJob(ctx, job.ID, userID)
		}(i, worker.ID)
	}
	wg.Wait()

	var winners int
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			var notAvailable *entity.JobNotAvailableError
			require.ErrorAs(t, err, &notAvailable)
			assert.Equal(t, entity.JobStatusAccepted, notAvailable.Status)
		}
	}
	assert.Equal(t, 1, winners)

	got, err := env.jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusAccepted, got.Status)
	assert.NotEmpty(t, got.AcceptedByID)
	assert.NotNil(t, got.AcceptedAt)
}

func TestAcceptJob_CreatorCannotSelfAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	job, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Walk the dog",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = env.jobs.AcceptJob(ctx, job.ID, creator.ID)
	var notAvailable *entity.JobNotAvailableError
	require.ErrorAs(t, err, &notAvailable)
	assert.Equal(t, job.ID, notAvailable.JobID)

	got, err := env.jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusOpen, got.Status)
}

func TestAcceptJob_NotifiesCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	worker := env.mustCreateUser(t, "worker")
	job, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Assemble wardrobe",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = env.jobs.AcceptJob(ctx, job.ID, worker.ID)
	require.NoError(t, err)

	notifications, err := env.notifications.ListByUser(ctx, creator.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, entity.NotificationJobAccepted, notifications[0].Type)
	assert.False(t, notifications[0].IsRead)
}

func TestJobTransitions_EmailTheCounterparty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sender := new(MockEmailSender)
	notifications := NewNotificationService(env.store, sender, env.clock, sequentialIDs(), logger.NewNop())
	jobs := NewJobService(env.store, nil, nil, notifications, env.activity, env.clock, sequentialIDs(), logger.NewNop())

	creator := env.mustCreateUser(t, "creator")
	worker := env.mustCreateUser(t, "worker")
	job, err := jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Paint the fence",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	// Acceptance emails the creator, completion emails the worker; both go
	// out after the transaction commits.
	sender.On("Send", mock.Anything, []string{creator.Email}, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	_, err = jobs.AcceptJob(ctx, job.ID, worker.ID)
	require.NoError(t, err)

	sender.On("Send", mock.Anything, []string{worker.Email}, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	_, err = jobs.CompleteJob(ctx, job.ID, creator.ID)
	require.NoError(t, err)

	sender.AssertExpectations(t)

	// The stored notifications exist regardless of email delivery.
	stored, err := notifications.ListByUser(ctx, creator.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, entity.NotificationJobAccepted, stored[0].Type)
}

func TestGetJob_LazyExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	job, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Rake leaves",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)

	got, err := env.jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusExpired, got.Status)

	// The expiry was persisted, not just presented.
	stored, err := env.store.Jobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusExpired, stored.Status)

	// Expired is terminal.
	worker := env.mustCreateUser(t, "worker")
	_, err = env.jobs.AcceptJob(ctx, job.ID, worker.ID)
	var notAvailable *entity.JobNotAvailableError
	require.ErrorAs(t, err, &notAvailable)
	assert.Equal(t, entity.JobStatusExpired, notAvailable.Status)
}

func TestAcceptedJobDoesNotExpire(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	worker := env.mustCreateUser(t, "worker")
	job, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Repair bike",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = env.jobs.AcceptJob(ctx, job.ID, worker.ID)
	require.NoError(t, err)

	env.clock.Advance(48 * time.Hour)

	got, err := env.jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusAccepted, got.Status)

	expired, err := env.jobs.ExpireDueJobs(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestExpireDueJobs_SweepsOnlyOverdueOpenJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	overdue, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Old job",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	fresh, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Fresh job",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)

	expired, err := env.jobs.ExpireDueJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	gotOverdue, err := env.store.Jobs().GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusExpired, gotOverdue.Status)

	gotFresh, err := env.store.Jobs().GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusOpen, gotFresh.Status)
}

func TestCompleteJob_CreatorOnlyAndTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	worker := env.mustCreateUser(t, "worker")
	job, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Clean gutters",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = env.jobs.AcceptJob(ctx, job.ID, worker.ID)
	require.NoError(t, err)

	_, err = env.jobs.CompleteJob(ctx, job.ID, worker.ID)
	var notParticipant *entity.NotAJobParticipantError
	require.ErrorAs(t, err, &notParticipant)

	done, err := env.jobs.CompleteJob(ctx, job.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, done.Status)

	_, err = env.jobs.CompleteJob(ctx, job.ID, creator.ID)
	var notAvailable *entity.JobNotAvailableError
	require.ErrorAs(t, err, &notAvailable)

	// The worker was told.
	notifications, err := env.notifications.ListByUser(ctx, worker.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, entity.NotificationJobCompleted, notifications[0].Type)
}

func TestDeleteJob_CascadesReviews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	worker := env.mustCreateUser(t, "worker")
	job := env.mustCompletedJob(t, creator.ID, worker.ID)

	_, err := env.reviews.AddJobReview(ctx, job.ID, creator.ID, 5, "")
	require.NoError(t, err)

	require.NoError(t, env.jobs.DeleteJob(ctx, job.ID, creator.ID))

	_, err = env.store.Jobs().GetByID(ctx, job.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	reviews, err := env.reviews.ListJobReviews(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
