package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"brandPulse/domain"
)

// maxUpdateRetries bounds the optimistic-concurrency loop. Contention
// on a single tenant's state is low; a handful of retries is plenty.
const maxUpdateRetries = 16

type BanditStateRepository struct {
	client *redis.Client
}

func NewBanditStateRepository(client *redis.Client) *BanditStateRepository {
	return &BanditStateRepository{
		client: client,
	}
}

func stateKey(key string) string {
	return fmt.Sprintf("bandit:state:%s", key)
}

func (r *BanditStateRepository) Get(ctx context.Context, key string) (*domain.BanditState, error) {
	val, err := r.client.Get(ctx, stateKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bandit state from Redis: %w", err)
	}

	var state domain.BanditState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bandit state: %w", err)
	}

	return &state, nil
}

// Update runs fn under WATCH-based optimistic concurrency: the key is
// watched, fn computes the replacement, and the write only commits when
// nobody else touched the key in between. A lost race retries with the
// fresh value, so concurrent updates never overwrite each other.
func (r *BanditStateRepository) Update(
	ctx context.Context,
	key string,
	fn func(current *domain.BanditState) (domain.BanditState, error),
) (domain.BanditState, error) {

	redisKey := stateKey(key)
	var result domain.BanditState

	txn := func(tx *redis.Tx) error {
		var current *domain.BanditState

		val, err := tx.Get(ctx, redisKey).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to get bandit state from Redis: %w", err)
		}
		if err == nil {
			var state domain.BanditState
			if err := json.Unmarshal([]byte(val), &state); err != nil {
				return fmt.Errorf("failed to unmarshal bandit state: %w", err)
			}
			current = &state
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal bandit state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, raw, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result = next
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txn, redisKey)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.BanditState{}, err
	}

	return domain.BanditState{}, fmt.Errorf("bandit state update for %q kept losing races", key)
}
