package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newOpenJob(t *testing.T) *Job {
	t.Helper()
	job, err := NewJob("j1", "Mow the lawn", "u1", "alice", jobNow.Add(time.Hour), jobNow)
	require.NoError(t, err)
	return job
}

func TestNewJob_RejectsPastExpiry(t *testing.T) {
	_, err := NewJob("j1", "Too late", "u1", "alice", jobNow.Add(-time.Minute), jobNow)
	assert.Error(t, err)

	_, err = NewJob("j1", "Right now", "u1", "alice", jobNow, jobNow)
	assert.Error(t, err)
}

func TestJob_AcceptRejectsCreator(t *testing.T) {
	job := newOpenJob(t)

	err := job.Accept("u1", "alice", jobNow)
	require.Error(t, err)
	assert.Equal(t, JobStatusOpen, job.Status)
}

func TestJob_AcceptRecordsAcceptor(t *testing.T) {
	job := newOpenJob(t)

	require.NoError(t, job.Accept("u2", "bob", jobNow.Add(time.Minute)))
	assert.Equal(t, JobStatusAccepted, job.Status)
	assert.Equal(t, "u2", job.AcceptedByID)
	require.NotNil(t, job.AcceptedAt)
	assert.True(t, job.AcceptedAt.Equal(jobNow.Add(time.Minute)))

	// A second acceptance is an invalid transition.
	err := job.Accept("u3", "carol", jobNow.Add(2*time.Minute))
	assert.Error(t, err)
	assert.Equal(t, "u2", job.AcceptedByID)
}

func TestJob_TransitionMatrix(t *testing.T) {
	cases := []struct {
		from JobStatus
		to   JobStatus
		ok   bool
	}{
		{JobStatusOpen, JobStatusAccepted, true},
		{JobStatusOpen, JobStatusExpired, true},
		{JobStatusOpen, JobStatusCompleted, false},
		{JobStatusAccepted, JobStatusCompleted, true},
		{JobStatusAccepted, JobStatusExpired, false},
		{JobStatusAccepted, JobStatusOpen, false},
		{JobStatusCompleted, JobStatusOpen, false},
		{JobStatusExpired, JobStatusAccepted, false},
	}

	for _, tc := range cases {
		job := newOpenJob(t)
		job.Status = tc.from
		err := job.TransitionTo(tc.to, jobNow)
		if tc.ok {
			assert.NoErrorf(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, job.Status)
		} else {
			assert.Errorf(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, job.Status)
		}
	}
}

func TestJob_IsExpiredAtOnlyForOpenJobs(t *testing.T) {
	job := newOpenJob(t)
	late := job.ExpiresAt.Add(time.Minute)

	assert.True(t, job.IsExpiredAt(late))
	assert.False(t, job.IsExpiredAt(jobNow))

	require.NoError(t, job.Accept("u2", "bob", jobNow))
	assert.False(t, job.IsExpiredAt(late), "accepted jobs never auto-expire")
}
