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

const (
	reviewPrefix            = "review:"
	reviewByUserMoviePrefix = "idx:reviews:usermovie:" // One review per (user, movie)
	reviewByMoviePrefix     = "idx:reviews:movie:"     // For merging into catalog reads
	reviewByAuthorPrefix    = "idx:reviews:author:"    // For per-user stats
)

var (
	// ErrDuplicateReview is returned when the user already reviewed the movie.
	ErrDuplicateReview = errors.New("review already exists for this user and movie")
	// ErrReviewNotFound is returned when a review id matches no user-submitted review.
	ErrReviewNotFound = errors.New("review not found")
)

// reviewNumberWidth zero-pads sequence numbers in index keys so lexicographic
// iteration returns reviews in submission order.
const reviewNumberWidth = 12

func reviewKey(reviewID string) []byte {
	return []byte(reviewPrefix + reviewID)
}

func paddedNumber(n uint64) string {
	return fmt.Sprintf("%0*d", reviewNumberWidth, n)
}

// CreateReview persists a user-submitted review, assigning its id from the
// review sequence. Fails with ErrDuplicateReview if the author already has a
// review for the movie; the check and the write share one transaction.
func (s *Store) CreateReview(_ context.Context, review *domain.Review) error {
	n, err := s.nextReviewNumber()
	if err != nil {
		return err
	}
	review.ID = "user_review_" + strconv.FormatUint(n, 10)

	userMovieKey := []byte(reviewByUserMoviePrefix + strconv.FormatInt(review.UserID, 10) + ":" + review.MovieID)
	movieIdxKey := []byte(reviewByMoviePrefix + review.MovieID + ":" + paddedNumber(n))
	authorIdxKey := []byte(reviewByAuthorPrefix + strconv.FormatInt(review.UserID, 10) + ":" + paddedNumber(n))

	return s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userMovieKey); err == nil {
			return ErrDuplicateReview
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check review exists: %w", err)
		}

		if err := setInTxn(txn, reviewKey(review.ID), review); err != nil {
			return fmt.Errorf("save review: %w", err)
		}
		if err := txn.Set(userMovieKey, []byte(review.ID)); err != nil {
			return err
		}
		if err := txn.Set(movieIdxKey, []byte(review.ID)); err != nil {
			return err
		}
		return txn.Set(authorIdxKey, []byte(review.ID))
	})
}

// GetReview retrieves a user-submitted review by id.
func (s *Store) GetReview(_ context.Context, reviewID string) (*domain.Review, error) {
	var review domain.Review
	if err := s.get(reviewKey(reviewID), &review); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// ListReviewsByMovie returns all user-submitted reviews for a movie in
// submission order.
func (s *Store) ListReviewsByMovie(ctx context.Context, movieID string) ([]*domain.Review, error) {
	return s.listReviewsByIndex(ctx, reviewByMoviePrefix+movieID+":")
}

// ListReviewsByAuthor returns all reviews a user has submitted in
// submission order.
func (s *Store) ListReviewsByAuthor(ctx context.Context, userID int64) ([]*domain.Review, error) {
	return s.listReviewsByIndex(ctx, reviewByAuthorPrefix+strconv.FormatInt(userID, 10)+":")
}

// listReviewsByIndex walks an index prefix whose values are review ids and
// resolves each to its review record.
func (s *Store) listReviewsByIndex(_ context.Context, indexPrefix string) ([]*domain.Review, error) {
	prefix := []byte(indexPrefix)
	var reviews []*domain.Review

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			reviewID, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			item, err := txn.Get(reviewKey(string(reviewID)))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					if s.logger != nil {
						s.logger.Warn("Review index points at missing record", "review_id", string(reviewID))
					}
					continue
				}
				return err
			}

			err = item.Value(func(val []byte) error {
				var review domain.Review
				if unmarshalErr := json.Unmarshal(val, &review); unmarshalErr != nil {
					if s.logger != nil {
						s.logger.Warn("Skipping malformed review record", "review_id", string(reviewID))
					}
					return nil
				}
				reviews = append(reviews, &review)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}
