package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/simaogato/savings-splitter/internal/domain"
)

const (
	DefaultTxTimeout  = 5 * time.Second
	DefaultMaxRetries = 5

	retryBaseDelay = 20 * time.Millisecond
)

// querier is what the repositories need from *sql.DB or *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements domain.Store on PostgreSQL.
// Units of work for one user are serialized by a transaction-scoped advisory lock.
type Store struct {
	db         *DB
	logger     *slog.Logger
	txTimeout  time.Duration
	maxRetries uint64
}

var _ domain.Store = (*Store)(nil)

// StoreOption configures a Store
type StoreOption func(*Store)

// WithTxTimeout bounds each unit of work, retries included
func WithTxTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

// WithMaxRetries sets how many times a unit aborted by a serialization
// failure or deadlock is retried
func WithMaxRetries(n uint64) StoreOption {
	return func(s *Store) { s.maxRetries = n }
}

// WithLogger sets the logger used for retry warnings
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a new Store over db
func NewStore(db *DB, opts ...StoreOption) *Store {
	s := &Store{
		db:         db,
		logger:     slog.Default(),
		txTimeout:  DefaultTxTimeout,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunInTx implements domain.Store
func (s *Store) RunInTx(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos domain.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(retryBaseDelay))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := s.runOnce(ctx, userID, fn)
		if isRetryable(err) {
			s.logger.WarnContext(ctx, "retrying aborted transaction",
				"user_id", userID, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("transaction aborted: %w: %w", ctx.Err(), err)
	}
	return err
}

func (s *Store) runOnce(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos domain.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Held until commit or rollback
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID.String()); err != nil {
		return fmt.Errorf("failed to lock user %s: %w", userID, err)
	}

	if err := fn(ctx, &repositories{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// View implements domain.Store
func (s *Store) View(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos domain.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, &repositories{q: tx, readOnly: true}); err != nil {
		return err
	}
	return tx.Commit()
}
