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

const reportPrefix = "report:" // report:<userID>:<reviewID>

// ErrDuplicateReport is returned when the user already reported the review.
var ErrDuplicateReport = errors.New("report already filed for this user and review")

func reportKey(userID int64, reviewID string) []byte {
	return []byte(reportPrefix + strconv.FormatInt(userID, 10) + ":" + reviewID)
}

// CreateReport persists a review report. Fails with ErrDuplicateReport if the
// user already reported the review. The target review is deliberately not
// checked for existence; reports on vanished or dataset reviews are accepted.
func (s *Store) CreateReport(_ context.Context, report *domain.Report) error {
	key := reportKey(report.UserID, report.ReviewID)

	return s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrDuplicateReport
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check report exists: %w", err)
		}

		return setInTxn(txn, key, report)
	})
}

// ListReports returns all filed reports.
func (s *Store) ListReports(_ context.Context) ([]*domain.Report, error) {
	prefix := []byte(reportPrefix)
	var reports []*domain.Report

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var report domain.Report
				if unmarshalErr := json.Unmarshal(val, &report); unmarshalErr != nil {
					if s.logger != nil {
						s.logger.Warn("Skipping malformed report record", "key", string(item.Key()))
					}
					return nil
				}
				reports = append(reports, &report)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	return reports, nil
}
