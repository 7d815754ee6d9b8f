// Package store persists user accounts and user-generated content in Badger.
//
// Every mutating operation runs inside a single badger Update transaction, so
// the duplicate-prevention check and the write it guards are atomic. Concurrent
// conflicting writers are serialized by the transaction layer, never interleaved.
package store

import (
	"github.com/go-json-experiment/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Sequence keys. Badger leases id ranges in banks, so ids are monotone but may
// skip after a restart. They are never reused.
const (
	userSeqKey   = "seq:users"
	reviewSeqKey = "seq:reviews"

	seqBandwidth = 64
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	userSeq   *badger.Sequence
	reviewSeq *badger.Sequence
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	userSeq, err := db.GetSequence([]byte(userSeqKey), seqBandwidth)
	if err != nil {
		_ = db.Close() //nolint:errcheck // Already failing, report the sequence error
		return nil, fmt.Errorf("open user id sequence: %w", err)
	}

	reviewSeq, err := db.GetSequence([]byte(reviewSeqKey), seqBandwidth)
	if err != nil {
		_ = userSeq.Release() //nolint:errcheck // Already failing
		_ = db.Close()        //nolint:errcheck // Already failing
		return nil, fmt.Errorf("open review id sequence: %w", err)
	}

	store := &Store{
		db:        db,
		logger:    logger,
		userSeq:   userSeq,
		reviewSeq: reviewSeq,
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close releases the id sequences and closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}

	// Releasing returns unused leased ids to the sequence.
	if err := s.userSeq.Release(); err != nil && s.logger != nil {
		s.logger.Warn("Failed to release user id sequence", "error", err)
	}
	if err := s.reviewSeq.Release(); err != nil && s.logger != nil {
		s.logger.Warn("Failed to release review id sequence", "error", err)
	}

	return s.db.Close()
}

// nextUserID allocates the next user id. Ids start at 1.
func (s *Store) nextUserID() (int64, error) {
	n, err := s.userSeq.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate user id: %w", err)
	}
	//nolint:gosec // Sequence values stay far below int64 range
	return int64(n) + 1, nil
}

// nextReviewNumber allocates the next user-review number. Numbers start at 1.
func (s *Store) nextReviewNumber() (uint64, error) {
	n, err := s.reviewSeq.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate review number: %w", err)
	}
	return n + 1, nil
}

// Helper methods for database operations.

// update runs fn in an Update transaction, retrying on optimistic commit
// conflicts. The retry re-runs the invariant checks against the winning
// writer's state, so a losing duplicate submission surfaces as a duplicate
// error rather than a transient conflict.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	for {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
}

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// setInTxn marshals value and writes it under key inside an open transaction.
func setInTxn(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return txn.Set(key, data)
}
