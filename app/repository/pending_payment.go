package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingPaymentPrefix = "idpay:pending:"

type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// RedisPendingPaymentRepository maps single-use correlation tokens to order ids.
// Take uses GETDEL so a token can be consumed exactly once.
type RedisPendingPaymentRepository struct {
	client redisClient
}

func NewRedisPendingPaymentRepository(client redisClient) *RedisPendingPaymentRepository {
	return &RedisPendingPaymentRepository{client: client}
}

func (r *RedisPendingPaymentRepository) Put(ctx context.Context, token string, orderID uint64, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("pending payment token is empty")
	}
	if err := r.client.Set(ctx, pendingPaymentPrefix+token, orderID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending payment: %w", err)
	}
	return nil
}

func (r *RedisPendingPaymentRepository) Take(ctx context.Context, token string) (uint64, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false, nil
	}

	raw, err := r.client.GetDel(ctx, pendingPaymentPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to consume pending payment: %w", err)
	}

	orderID, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || orderID == 0 {
		return 0, false, nil
	}
	return orderID, true, nil
}

type pendingEntry struct {
	orderID   uint64
	expiresAt time.Time
}

// MemoryPendingPaymentRepository is used when no Redis address is configured.
// References do not survive a restart.
type MemoryPendingPaymentRepository struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	now     func() time.Time
}

func NewMemoryPendingPaymentRepository() *MemoryPendingPaymentRepository {
	return &MemoryPendingPaymentRepository{
		entries: map[string]pendingEntry{},
		now:     time.Now,
	}
}

func (r *MemoryPendingPaymentRepository) Put(_ context.Context, token string, orderID uint64, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("pending payment token is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for key, entry := range r.entries {
		if !entry.expiresAt.After(now) {
			delete(r.entries, key)
		}
	}
	r.entries[token] = pendingEntry{orderID: orderID, expiresAt: now.Add(ttl)}
	return nil
}

func (r *MemoryPendingPaymentRepository) Take(_ context.Context, token string) (uint64, bool, error) {
	token = strings.TrimSpace(token)

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[token]
	if !ok {
		return 0, false, nil
	}
	delete(r.entries, token)

	if !entry.expiresAt.After(r.now()) {
		return 0, false, nil
	}
	return entry.orderID, true, nil
}
