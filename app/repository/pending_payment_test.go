package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	if v, ok := value.(uint64); ok {
		f.values[key] = strconv.FormatUint(v, 10)
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) GetDel(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(f.values, key)
	return redis.NewStringResult(v, nil)
}

func TestRedisPendingPaymentRepository_PutAndTakeOnce(t *testing.T) {
	client := newFakeRedis()
	repo := NewRedisPendingPaymentRepository(client)

	require.NoError(t, repo.Put(context.Background(), "tok-1", 42, time.Hour))
	assert.Equal(t, time.Hour, client.ttls[pendingPaymentPrefix+"tok-1"])

	orderID, ok, err := repo.Take(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), orderID)

	_, ok, err = repo.Take(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPendingPaymentRepository_EmptyTokenAndErrors(t *testing.T) {
	client := newFakeRedis()
	repo := NewRedisPendingPaymentRepository(client)

	assert.Error(t, repo.Put(context.Background(), " ", 1, time.Minute))

	_, ok, err := repo.Take(context.Background(), "")
	assert.NoError(t, err)
	assert.False(t, ok)

	client.err = errors.New("connection refused")
	_, _, err = repo.Take(context.Background(), "tok-2")
	assert.Error(t, err)
}

func TestMemoryPendingPaymentRepository_SingleUseAndExpiry(t *testing.T) {
	repo := NewMemoryPendingPaymentRepository()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Put(context.Background(), "tok-1", 7, time.Minute))
	require.NoError(t, repo.Put(context.Background(), "tok-2", 8, time.Minute))

	orderID, ok, err := repo.Take(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), orderID)

	_, ok, _ = repo.Take(context.Background(), "tok-1")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = repo.Take(context.Background(), "tok-2")
	assert.False(t, ok)
}
