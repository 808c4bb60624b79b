package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"go.uber.org/zap"
)

const (
	maxAttempts    = 3
	initialBackoff = 100 * time.Millisecond
)

// RetryableExec executes a statement, retrying transient PostgreSQL
// failures with exponential backoff. Constraint violations are never
// retried: they are the signal the atomic commit/accept contracts rely on.
func RetryableExec(ctx context.Context, pool interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
}, query string, args ...interface{}) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	var err error

	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		tag, err = pool.Exec(ctx, query, args...)
		if err == nil || !isRetryable(err) {
			return tag, err
		}

		logger.Warn("retrying database exec",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return tag, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return tag, err
}

// isRetryable reports whether a PostgreSQL error is transient.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"53300", // too_many_connections
			"57P03", // cannot_connect_now
			"08000", "08003", "08006": // connection_exception
			return true
		}
		// Integrity violations, data and syntax errors are deterministic.
		if strings.HasPrefix(pgErr.Code, "23") ||
			strings.HasPrefix(pgErr.Code, "22") ||
			strings.HasPrefix(pgErr.Code, "42") {
			return false
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"server closed",
		"unexpected eof",
		"timeout",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}
