package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/repository"
)

func newTestRepo(t *testing.T) (repository.SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return NewSessionRepositoryWithClient(client), mr
}

func TestSessionRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	bc := &model.BookingContext{
		SessionID: uuid.New(),
		Facility:  "City Clinic",
		Stage:     model.StageDetailsEntry,
		Slot:      &model.SelectedSlot{Date: "2025-03-11", Time: "10:00 AM", DateFormatted: "11-03-2025"},
		Payment:   model.PaymentProgress{State: model.PaymentNotStarted},
	}
	require.NoError(t, repo.Save(ctx, bc, time.Minute))

	got, err := repo.Get(ctx, bc.SessionID)
	require.NoError(t, err)
	assert.Equal(t, bc.SessionID, got.SessionID)
	assert.Equal(t, model.StageDetailsEntry, got.Stage)
	require.NotNil(t, got.Slot)
	assert.Equal(t, "11-03-2025", got.Slot.DateFormatted)
}

func TestSessionExpiry(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	bc := &model.BookingContext{SessionID: uuid.New(), Stage: model.StageSlotSelection}
	require.NoError(t, repo.Save(ctx, bc, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, bc.SessionID)
	assert.ErrorIs(t, err, repository.ErrSessionExpired)
}

func TestGetUnknownSession(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrSessionExpired)
}

func TestTryLockIsExclusive(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	id := uuid.New()

	ok, err := repo.TryLock(ctx, id, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TryLock(ctx, id, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Unlock(ctx, id))
	ok, err = repo.TryLock(ctx, id, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// a crashed holder releases through the TTL
	mr.FastForward(2 * time.Minute)
	ok, err = repo.TryLock(ctx, id, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDueVerifications(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	now := time.Now()
	overdue := uuid.New()
	pending := uuid.New()

	require.NoError(t, repo.MarkVerifying(ctx, overdue, now.Add(-time.Minute)))
	require.NoError(t, repo.MarkVerifying(ctx, pending, now.Add(time.Hour)))

	due, err := repo.DueVerifications(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{overdue}, due)

	require.NoError(t, repo.ClearVerifying(ctx, overdue))
	due, err = repo.DueVerifications(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDeleteClearsDeadlineIndex(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	bc := &model.BookingContext{SessionID: uuid.New(), Stage: model.StagePaymentVerifying}
	require.NoError(t, repo.Save(ctx, bc, time.Minute))
	require.NoError(t, repo.MarkVerifying(ctx, bc.SessionID, time.Now().Add(-time.Minute)))

	require.NoError(t, repo.Delete(ctx, bc.SessionID))

	_, err := repo.Get(ctx, bc.SessionID)
	assert.ErrorIs(t, err, repository.ErrSessionExpired)

	due, err := repo.DueVerifications(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
}
