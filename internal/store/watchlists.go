package store

import (
	"context"
	"github.com/go-json-experiment/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

const watchlistPrefix = "watchlist:" // watchlist:<userID> -> ordered entry list

// ErrAlreadyInWatchlist is returned when the movie is already on the user's list.
var ErrAlreadyInWatchlist = errors.New("movie already in watchlist")

func watchlistKey(userID int64) []byte {
	return []byte(watchlistPrefix + strconv.FormatInt(userID, 10))
}

// loadWatchlistInTxn reads a user's watchlist inside an open transaction.
// A missing document is an empty list; a malformed one degrades to empty
// with a log line rather than failing the operation.
func (s *Store) loadWatchlistInTxn(txn *badger.Txn, userID int64) ([]domain.WatchlistEntry, error) {
	item, err := txn.Get(watchlistKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get watchlist: %w", err)
	}

	var entries []domain.WatchlistEntry
	err = item.Value(func(val []byte) error {
		if unmarshalErr := json.Unmarshal(val, &entries); unmarshalErr != nil {
			if s.logger != nil {
				s.logger.Warn("Malformed watchlist document, treating as empty", "user_id", userID)
			}
			entries = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// AddToWatchlist appends an entry to the user's watchlist. Fails with
// ErrAlreadyInWatchlist if the movie is already present; the membership check
// and the rewrite share one transaction.
func (s *Store) AddToWatchlist(_ context.Context, userID int64, entry domain.WatchlistEntry) error {
	return s.update(func(txn *badger.Txn) error {
		entries, err := s.loadWatchlistInTxn(txn, userID)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if e.MovieID == entry.MovieID {
				return ErrAlreadyInWatchlist
			}
		}

		entries = append(entries, entry)
		return setInTxn(txn, watchlistKey(userID), entries)
	})
}

// RemoveFromWatchlist filters a movie out of the user's watchlist. Removing a
// movie that is not on the list is a no-op, not an error.
func (s *Store) RemoveFromWatchlist(_ context.Context, userID int64, movieID string) error {
	return s.update(func(txn *badger.Txn) error {
		entries, err := s.loadWatchlistInTxn(txn, userID)
		if err != nil {
			return err
		}

		kept := entries[:0]
		for _, e := range entries {
			if e.MovieID != movieID {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(entries) {
			return nil
		}

		return setInTxn(txn, watchlistKey(userID), kept)
	})
}

// GetWatchlist returns the user's watchlist entries in insertion order.
func (s *Store) GetWatchlist(_ context.Context, userID int64) ([]domain.WatchlistEntry, error) {
	var entries []domain.WatchlistEntry
	err := s.db.View(func(txn *badger.Txn) error {
		var loadErr error
		entries, loadErr = s.loadWatchlistInTxn(txn, userID)
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
