package store

import (
	"context"
	"github.com/go-json-experiment/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

const votePrefix = "vote:" // vote:<userID>:<reviewID>

// ErrDuplicateVote is returned when the user already voted on the review.
var ErrDuplicateVote = errors.New("vote already recorded for this user and review")

func voteKey(userID int64, reviewID string) []byte {
	return []byte(votePrefix + strconv.FormatInt(userID, 10) + ":" + reviewID)
}

// RecordVote records a helpfulness vote on a user-submitted review and returns
// the review after the update. The vote key is written even when helpful is
// false, so the user cannot vote again; the counter only moves for helpful
// votes. Both writes share one transaction with the duplicate check.
func (s *Store) RecordVote(_ context.Context, userID int64, reviewID string, helpful bool) (*domain.Review, error) {
	key := voteKey(userID, reviewID)
	var review domain.Review

	err := s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrDuplicateVote
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check vote exists: %w", err)
		}

		item, err := txn.Get(reviewKey(reviewID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("get review: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &review)
		}); err != nil {
			return err
		}

		if helpful {
			review.HelpfulVotes++
			if err := setInTxn(txn, reviewKey(reviewID), &review); err != nil {
				return fmt.Errorf("save review: %w", err)
			}
		}

		vote := domain.VoteRecord{
			UserID:   userID,
			ReviewID: reviewID,
			Helpful:  helpful,
			VotedAt:  time.Now(),
		}
		return setInTxn(txn, key, &vote)
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}
