package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-portal/models"
	"event-portal/utils"
)

func newTestSnapshotCache(t *testing.T) (*SnapshotCache, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	cache := &SnapshotCache{
		redis:   db,
		breaker: utils.NewCircuitBreaker("test"),
		ttl:     5 * time.Minute,
	}
	return cache, mock
}

func sampleDetail() *models.UserWithDetails {
	return &models.UserWithDetails{
		User: models.User{
			ID:    "user-1",
			Name:  "Jane Doe",
			Email: "jane@x.com",
			Role:  models.RoleUser,
		},
		Payment: &models.Payment{
			ID:     "payment-1",
			UserID: "user-1",
			Status: models.PaymentPending,
		},
	}
}

func TestSnapshotCache_SetAndGet(t *testing.T) {
	cache, mock := newTestSnapshotCache(t)
	ctx := context.Background()
	detail := sampleDetail()

	data, err := json.Marshal(detail)
	require.NoError(t, err)

	mock.ExpectSet("portal:snapshot:user-1", data, 5*time.Minute).SetVal("OK")
	cache.Set(ctx, detail)

	mock.ExpectGet("portal:snapshot:user-1").SetVal(string(data))
	got, ok := cache.Get(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, detail.ID, got.ID)
	require.NotNil(t, got.Payment)
	assert.Equal(t, models.PaymentPending, got.Payment.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotCache_GetMiss(t *testing.T) {
	cache, mock := newTestSnapshotCache(t)

	mock.ExpectGet("portal:snapshot:user-1").RedisNil()

	_, ok := cache.Get(context.Background(), "user-1")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotCache_GetBackendFailure(t *testing.T) {
	cache, mock := newTestSnapshotCache(t)

	mock.ExpectGet("portal:snapshot:user-1").SetErr(errors.New("connection refused"))

	_, ok := cache.Get(context.Background(), "user-1")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotCache_GetCorruptEntryInvalidates(t *testing.T) {
	cache, mock := newTestSnapshotCache(t)

	mock.ExpectGet("portal:snapshot:user-1").SetVal("{not json")
	mock.ExpectDel("portal:snapshot:user-1").SetVal(1)

	_, ok := cache.Get(context.Background(), "user-1")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	cache, mock := newTestSnapshotCache(t)

	mock.ExpectDel("portal:snapshot:user-1").SetVal(1)
	cache.Invalidate(context.Background(), "user-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotCache_BreakerShortCircuitsAfterFailures(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := &SnapshotCache{
		redis:   db,
		breaker: utils.NewCircuitBreakerWithConfig("test", 2, time.Hour),
		ttl:     time.Minute,
	}
	ctx := context.Background()

	mock.ExpectGet("portal:snapshot:user-1").SetErr(errors.New("down"))
	mock.ExpectGet("portal:snapshot:user-1").SetErr(errors.New("down"))

	cache.Get(ctx, "user-1")
	cache.Get(ctx, "user-1")

	// breaker is open now; no further redis calls are made
	_, ok := cache.Get(ctx, "user-1")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
