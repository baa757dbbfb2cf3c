package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/shared/errors"
)

func newFailure(username, batchID string, at time.Time) *provisioning.ProcessingFailure {
	next := at.AddDate(0, 0, 1)
	return provisioning.NewProcessingFailure(provisioning.FailureContext{
		ServiceInstanceID: 10,
		Username:          username,
		PlanID:            "P-1",
		PlanName:          "Home 100",
		BatchID:           batchID,
		NextCycleStart:    &next,
	}, "not_found", "NO_QUOTA_DETAILS_FOUND", "trace", at)
}

func TestProcessingFailureRepository_CreateAndGet(t *testing.T) {
	repo := NewProcessingFailureRepository(setupTestDB(t))
	ctx := context.Background()
	at := localDay(2024, 3, 1)

	f := newFailure("alice", "batch-1", at)
	require.NoError(t, repo.Create(ctx, f))
	require.NotZero(t, f.ID())

	got, err := repo.GetByID(ctx, f.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username())
	assert.Equal(t, provisioning.StatusFailed, got.Status())
	assert.Equal(t, "NO_QUOTA_DETAILS_FOUND", got.ErrorMessage())
	assert.True(t, at.Equal(got.FailureDate()))
	assert.Equal(t, float64(10), got.AdditionalInfo()["service_id"])
	assert.Equal(t, "2024-03-02 00:00:00", got.AdditionalInfo()["next_cycle_start"])

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProcessingFailureRepository_Update(t *testing.T) {
	repo := NewProcessingFailureRepository(setupTestDB(t))
	ctx := context.Background()
	at := localDay(2024, 3, 1)

	f := newFailure("alice", "batch-1", at)
	require.NoError(t, repo.Create(ctx, f))
	require.NoError(t, f.MarkPendingRetry(at.Add(time.Hour)))
	require.NoError(t, repo.Update(ctx, f))

	got, err := repo.GetByID(ctx, f.ID())
	require.NoError(t, err)
	assert.Equal(t, provisioning.StatusPendingRetry, got.Status())
	assert.Equal(t, 1, got.RetryCount())
	require.NotNil(t, got.LastRetryDate())

	ghost := newFailure("bob", "batch-1", at)
	ghost.SetID(999)
	assert.True(t, errors.IsNotFoundError(repo.Update(ctx, ghost)))
}

func TestProcessingFailureRepository_ListAndRetryable(t *testing.T) {
	repo := NewProcessingFailureRepository(setupTestDB(t))
	ctx := context.Background()
	at := localDay(2024, 3, 1)

	a := newFailure("alice", "batch-1", at)
	b := newFailure("bob", "batch-1", at.Add(time.Hour))
	c := newFailure("alice", "batch-2", at.Add(2*time.Hour))
	for _, f := range []*provisioning.ProcessingFailure{a, b, c} {
		require.NoError(t, repo.Create(ctx, f))
	}
	c.MarkResolved(at.Add(3 * time.Hour))
	require.NoError(t, repo.Update(ctx, c))

	t.Run("filters by username", func(t *testing.T) {
		list, total, err := repo.List(ctx, provisioning.FailureFilter{Username: "alice"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, list, 2)
		assert.Equal(t, c.ID(), list[0].ID(), "newest first")
	})

	t.Run("filters by batch and status", func(t *testing.T) {
		list, total, err := repo.List(ctx, provisioning.FailureFilter{BatchID: "batch-1", Status: provisioning.StatusFailed})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("pages", func(t *testing.T) {
		list, total, err := repo.List(ctx, provisioning.FailureFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID(), list[0].ID())
	})

	t.Run("date range", func(t *testing.T) {
		from := at.Add(30 * time.Minute)
		list, _, err := repo.List(ctx, provisioning.FailureFilter{From: &from})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("retryable excludes resolved", func(t *testing.T) {
		list, err := repo.FindRetryable(ctx, 3)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, a.ID(), list[0].ID())
		assert.Equal(t, b.ID(), list[1].ID())
	})
}
