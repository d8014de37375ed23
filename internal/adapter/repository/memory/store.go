// Package memory implements domain.Store in process memory.
//
// Each user's records live in their own partition. A unit of work takes the
// user's lock, runs against a private copy of the partition and swaps the copy
// in only on success, so a failed unit leaves nothing behind. Readers get a
// copy taken under the read lock and never block writers of other users.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/savings-splitter/internal/domain"
)

// DefaultTxTimeout bounds a unit of work when NewStore is given a non-positive timeout.
const DefaultTxTimeout = 5 * time.Second

// Store is an in-memory domain.Store
type Store struct {
	mu         sync.RWMutex
	partitions map[uuid.UUID]*partition

	locks     *userLocks
	txTimeout time.Duration
}

var _ domain.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore(txTimeout time.Duration) *Store {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &Store{
		partitions: make(map[uuid.UUID]*partition),
		locks:      newUserLocks(),
		txTimeout:  txTimeout,
	}
}

// RunInTx implements domain.Store
func (s *Store) RunInTx(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos domain.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock user %s: %w", userID, err)
	}
	defer release()

	work := s.snapshot(userID)
	if err := fn(ctx, &repositories{userID: userID, p: work}); err != nil {
		return err
	}

	// A unit that outlived its deadline is not committed
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	s.partitions[userID] = work
	s.mu.Unlock()

	return nil
}

// View implements domain.Store
func (s *Store) View(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return fn(ctx, &repositories{userID: userID, p: s.snapshot(userID), readOnly: true})
}

// snapshot returns a deep copy of the committed partition of userID
func (s *Store) snapshot(userID uuid.UUID) *partition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partitions[userID]
	if !ok {
		return newPartition()
	}
	return p.clone()
}

// userLocks hands out one context-aware lock per user
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]chan struct{}
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]chan struct{})}
}

// acquire blocks until the user's lock is free or ctx is done
func (l *userLocks) acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[userID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[userID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
