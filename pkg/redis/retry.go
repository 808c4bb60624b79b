package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/UmarSidiki/taxibooking/pkg/resilience"
)

// RetryableOperation executes a Redis operation with retry logic for
// transient failures.
func RetryableOperation[T any](ctx context.Context, operation func(context.Context) (T, error), operationName string) (T, error) {
	config := resilience.DefaultRetryConfig()
	config.MaxAttempts = 3
	config.InitialBackoff = 50 * time.Millisecond
	config.MaxBackoff = 1 * time.Second
	config.RetryableChecker = isRedisRetryable

	result, err := resilience.RetryWithName(ctx, config, func(ctx context.Context) (interface{}, error) {
		return operation(ctx)
	}, operationName)

	if err != nil {
		return *new(T), err
	}

	return result.(T), nil
}

// RetryableSet sets a key with retry logic.
func (c *Client) RetryableSet(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	_, err := RetryableOperation(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.Set(ctx, key, value, expiration).Err()
	}, "redis.set")
	return err
}

// RetryableGet gets a value by key with retry logic.
func (c *Client) RetryableGet(ctx context.Context, key string) (string, error) {
	return RetryableOperation(ctx, func(ctx context.Context) (string, error) {
		return c.Get(ctx, key).Result()
	}, "redis.get")
}

// RetryableHSet sets a hash field with retry logic.
func (c *Client) RetryableHSet(ctx context.Context, key, field string, value interface{}) error {
	_, err := RetryableOperation(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.HSet(ctx, key, field, value).Err()
	}, "redis.hset")
	return err
}

// RetryableHDel deletes hash fields with retry logic.
func (c *Client) RetryableHDel(ctx context.Context, key string, fields ...string) error {
	_, err := RetryableOperation(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.HDel(ctx, key, fields...).Err()
	}, "redis.hdel")
	return err
}

// RetryableHGetAll reads a whole hash with retry logic.
func (c *Client) RetryableHGetAll(ctx context.Context, key string) (map[string]string, error) {
	return RetryableOperation(ctx, func(ctx context.Context) (map[string]string, error) {
		return c.HGetAll(ctx, key).Result()
	}, "redis.hgetall")
}

// RetryableExpire sets an expiration with retry logic.
func (c *Client) RetryableExpire(ctx context.Context, key string, expiration time.Duration) error {
	_, err := RetryableOperation(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.Expire(ctx, key, expiration).Err()
	}, "redis.expire")
	return err
}

// isRedisRetryable reports whether a Redis error is transient.
func isRedisRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// A missing key is a result, not a failure.
	if errors.Is(err, redis.Nil) {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	retryableMessages := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"timeout",
		"server closed",
		"unexpected eof",
		"pool timeout",
		"loading",
		"busy",
		"readonly",
		"tryagain",
		"clusterdown",
	}
	for _, msg := range retryableMessages {
		if strings.Contains(errMsg, msg) {
			return true
		}
	}

	return false
}
