package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisCache wraps the Redis client for prediction caching and fold
// bookkeeping.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// ConnectRedis establishes a connection to Redis.
func ConnectRedis(config *RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", config.Host, config.Port),
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ctx: ctx}, nil
}

func predictionKey(dataset string, sentenceIndex int) string {
	return fmt.Sprintf("oos:%s:%d", dataset, sentenceIndex)
}

func foldDoneKey(dataset string) string {
	return fmt.Sprintf("folds_done:%s", dataset)
}

// CachePrediction stores a sentence's out-of-sample word probability matrix.
func (r *RedisCache) CachePrediction(dataset string, sentenceIndex int, probs [][]float64) error {
	data, err := json.Marshal(probs)
	if err != nil {
		return fmt.Errorf("failed to encode prediction: %w", err)
	}

	if err := r.client.Set(r.ctx, predictionKey(dataset, sentenceIndex), data, 0).Err(); err != nil {
		return fmt.Errorf("error caching prediction: %w", err)
	}
	return nil
}

// CachedPrediction looks a sentence's matrix up. The second return value is
// false on a cache miss.
func (r *RedisCache) CachedPrediction(dataset string, sentenceIndex int) ([][]float64, bool, error) {
	data, err := r.client.Get(r.ctx, predictionKey(dataset, sentenceIndex)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading cached prediction: %w", err)
	}

	var probs [][]float64
	if err := json.Unmarshal(data, &probs); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached prediction: %w", err)
	}
	return probs, true, nil
}

// MarkFoldDone records that a fold's heldout sentences are fully predicted,
// so reruns can skip it.
func (r *RedisCache) MarkFoldDone(dataset string, fold int) error {
	if err := r.client.SAdd(r.ctx, foldDoneKey(dataset), fold).Err(); err != nil {
		return fmt.Errorf("error marking fold done: %w", err)
	}
	return nil
}

// FoldDone checks whether a fold was already completed.
func (r *RedisCache) FoldDone(dataset string, fold int) (bool, error) {
	done, err := r.client.SIsMember(r.ctx, foldDoneKey(dataset), fold).Result()
	if err != nil {
		return false, fmt.Errorf("error checking fold state: %w", err)
	}
	return done, nil
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
