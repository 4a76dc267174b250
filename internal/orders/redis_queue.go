package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resumeats/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a list-based queue: producers LPUSH and consumers BRPOP
type RedisQueue struct {
	client      *redis.Client
	name        string
	pollTimeout time.Duration
}

// NewRedisQueue connects to Redis and verifies the connection
func NewRedisQueue(ctx context.Context, cfg config.QueueConfig) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisQueue{client: client, name: cfg.Name, pollTimeout: pollTimeout}, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Job, error) {
	for {
		result, err := q.client.BRPop(ctx, q.pollTimeout, q.name).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			return Job{}, fmt.Errorf("failed to dequeue job: %w", err)
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			return Job{}, fmt.Errorf("failed to decode job: %w", err)
		}
		return job, nil
	}
}

// Len returns the number of waiting jobs
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
