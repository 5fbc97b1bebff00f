package service

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReview_UpdatesAggregateIncrementally(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Audio")
	product := env.mustCreateProduct(t, "Headphones", 80, 10, category.ID)
	alice := env.mustCreateUser(t, "alice")
	bob := env.mustCreateUser(t, "bob")

	_, err := env.reviews.AddReview(ctx, alice.ID, product.ID, 5, "great")
	require.NoError(t, err)

	got, err := env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Rating.Count)
	assert.InDelta(t, 5.0, got.Rating.Average, 1e-9)

	_, err = env.reviews.AddReview(ctx, bob.ID, product.ID, 2, "meh")
	require.NoError(t, err)

	got, err = env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rating.Count)
	assert.InDelta(t, 3.5, got.Rating.Average, 1e-9)
}

func TestAddReview_OnePerUserPerProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Audio")
	product := env.mustCreateProduct(t, "Speaker", 60, 5, category.ID)
	user := env.mustCreateUser(t, "alice")

	_, err := env.reviews.AddReview(ctx, user.ID, product.ID, 4, "")
	require.NoError(t, err)

	_, err = env.reviews.AddReview(ctx, user.ID, product.ID, 5, "changed my mind")
	var already *entity.AlreadyReviewedError
	require.ErrorAs(t, err, &already)

	// The rejected review must not have touched the aggregate.
	got, err := env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Rating.Count)
	assert.InDelta(t, 4.0, got.Rating.Average, 1e-9)
}

func TestDeleteReview_BacksRatingOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Audio")
	product := env.mustCreateProduct(t, "Amp", 300, 2, category.ID)
	alice := env.mustCreateUser(t, "alice")
	bob := env.mustCreateUser(t, "bob")

	r1, err := env.reviews.AddReview(ctx, alice.ID, product.ID, 5, "")
	require.NoError(t, err)
	_, err = env.reviews.AddReview(ctx, bob.ID, product.ID, 1, "")
	require.NoError(t, err)

	require.NoError(t, env.reviews.DeleteReview(ctx, r1.ID, alice.ID))

	got, err := env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Rating.Count)
	assert.InDelta(t, 1.0, got.Rating.Average, 1e-9)
}

func TestDeleteReview_LastReviewResetsAggregate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category := env.mustCreateCategory(t, "Audio")
	product := env.mustCreateProduct(t, "Cable", 5, 100, category.ID)
	user := env.mustCreateUser(t, "alice")

	review, err := env.reviews.AddReview(ctx, user.ID, product.ID, 3, "")
	require.NoError(t, err)
	require.NoError(t, env.reviews.DeleteReview(ctx, review.ID, user.ID))

	got, err := env.store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Rating.Count)
	assert.Zero(t, got.Rating.Average)

	// The user may review again after deleting.
	_, err = env.reviews.AddReview(ctx, user.ID, product.ID, 4, "second take")
	require.NoError(t, err)
}

func TestAddJobReview_ParticipantsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	worker := env.mustCreateUser(t, "worker")
	outsider := env.mustCreateUser(t, "outsider")
	job := env.mustCompletedJob(t, creator.ID, worker.ID)

	_, err := env.reviews.AddJobReview(ctx, job.ID, outsider.ID, 5, "")
	var notParticipant *entity.NotAJobParticipantError
	require.ErrorAs(t, err, &notParticipant)

	// Creator reviews the worker; the worker's user aggregate moves.
	_, err = env.reviews.AddJobReview(ctx, job.ID, creator.ID, 4, "solid work")
	require.NoError(t, err)

	ratedWorker, err := env.store.Users().GetByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ratedWorker.Rating.Count)
	assert.InDelta(t, 4.0, ratedWorker.Rating.Average, 1e-9)

	// Once per role.
	_, err = env.reviews.AddJobReview(ctx, job.ID, creator.ID, 5, "")
	var already *entity.AlreadyReviewedError
	require.ErrorAs(t, err, &already)

	// The other participant still has their slot.
	_, err = env.reviews.AddJobReview(ctx, job.ID, worker.ID, 5, "good client")
	require.NoError(t, err)

	ratedCreator, err := env.store.Users().GetByID(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ratedCreator.Rating.Count)
}

func TestAddJobReview_RequiresCompletedJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.mustCreateUser(t, "creator")
	worker := env.mustCreateUser(t, "worker")

	job, err := env.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Fix the fence",
		CreatedByID: creator.ID,
		ExpiresAt:   env.clock.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = env.jobs.AcceptJob(ctx, job.ID, worker.ID)
	require.NoError(t, err)

	_, err = env.reviews.AddJobReview(ctx, job.ID, creator.ID, 5, "")
	var notAvailable *entity.JobNotAvailableError
	require.ErrorAs(t, err, &notAvailable)
	assert.Equal(t, entity.JobStatusAccepted, notAvailable.Status)
}

// mustCompletedJob drives a job through open, accepted and completed.
func (e *testEnv) mustCompletedJob(t *testing.T, creatorID, workerID string) *entity.Job {
	t.Helper()
	ctx := context.Background()

	job, err := e.jobs.CreateJob(ctx, CreateJobInput{
		Title:       "Paint the shed",
		CreatedByID: creatorID,
		ExpiresAt:   e.clock.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = e.jobs.AcceptJob(ctx, job.ID, workerID)
	require.NoError(t, err)

	job, err = e.jobs.CompleteJob(ctx, job.ID, creatorID)
	require.NoError(t, err)
	return job
}
