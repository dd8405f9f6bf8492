package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/repository"
)

const (
	sessionKeyPrefix = "booking:session:"
	lockKeyPrefix    = "booking:lock:"
	verifyingZSet    = "booking:verifying"
)

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(url string) (repository.SessionRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &sessionRepository{client: client}, nil
}

// NewSessionRepositoryWithClient wires an existing client; tests use this
// with miniredis.
func NewSessionRepositoryWithClient(client *redis.Client) repository.SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) Save(ctx context.Context, bc *model.BookingContext, ttl time.Duration) error {
	bc.UpdatedAt = time.Now()

	data, err := json.Marshal(bc)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+bc.SessionID.String(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id uuid.UUID) (*model.BookingContext, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}

	var bc model.BookingContext
	if err := json.Unmarshal([]byte(data), &bc); err != nil {
		return nil, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return &bc, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	r.client.ZRem(ctx, verifyingZSet, id.String())
	return nil
}

func (r *sessionRepository) TryLock(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKeyPrefix+id.String(), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	return ok, nil
}

func (r *sessionRepository) Unlock(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, lockKeyPrefix+id.String()).Err()
}

func (r *sessionRepository) MarkVerifying(ctx context.Context, id uuid.UUID, deadline time.Time) error {
	err := r.client.ZAdd(ctx, verifyingZSet, redis.Z{
		Score:  float64(deadline.Unix()),
		Member: id.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to index verifying session: %w", err)
	}
	return nil
}

func (r *sessionRepository) ClearVerifying(ctx context.Context, id uuid.UUID) error {
	return r.client.ZRem(ctx, verifyingZSet, id.String()).Err()
}

func (r *sessionRepository) DueVerifications(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	members, err := r.client.ZRangeByScore(ctx, verifyingZSet, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan verifying sessions: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			// stale junk in the index; drop it rather than loop forever
			r.client.ZRem(ctx, verifyingZSet, m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
