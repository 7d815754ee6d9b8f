package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinelogapp/cinelog-server/internal/catalog"
	"github.com/cinelogapp/cinelog-server/internal/domain"
	domainerrors "github.com/cinelogapp/cinelog-server/internal/errors"
	"github.com/cinelogapp/cinelog-server/internal/id"
	"github.com/cinelogapp/cinelog-server/internal/store"
	"github.com/cinelogapp/cinelog-server/internal/validation"
)

// reviewDateFormat matches the date style of the dataset reviews, so merged
// listings look uniform.
const reviewDateFormat = "02 January 2006"

// ContentService handles user-generated content: reviews, votes, watchlists,
// and reports.
type ContentService struct {
	store     *store.Store
	catalog   *catalog.Catalog
	validator *validation.Validator
	logger    *slog.Logger
}

// NewContentService creates a new content service.
func NewContentService(
	st *store.Store,
	cat *catalog.Catalog,
	validator *validation.Validator,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		store:     st,
		catalog:   cat,
		validator: validator,
		logger:    logger,
	}
}

// SubmitReviewRequest contains a new review's user-supplied fields.
type SubmitReviewRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=10"`
	Title  string `json:"review_title" validate:"required,max=200"`
	Text   string `json:"review_text" validate:"required"`
}

// SubmitReview records a new review by user for the given movie.
func (s *ContentService) SubmitReview(ctx context.Context, user *domain.User, movieID string, req SubmitReviewRequest) (*domain.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, ok := s.catalog.Get(movieID); !ok {
		return nil, domainerrors.NotFound("movie not found")
	}

	now := time.Now()
	review := &domain.Review{
		MovieID:      movieID,
		UserID:       user.ID,
		Username:     user.Username,
		DateOfReview: now.Format(reviewDateFormat),
		Rating:       req.Rating,
		Title:        req.Title,
		Text:         req.Text,
		CreatedAt:    now,
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrDuplicateReview) {
			return nil, domainerrors.Conflict("you have already reviewed this movie")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Review submitted", "review_id", review.ID, "movie_id", movieID, "user_id", user.ID)
	}

	return review, nil
}

// VoteOnReview records a helpfulness vote by user on a user-submitted review.
// Dataset reviews are not vote targets; their ids never exist in the store,
// so they surface as not found.
func (s *ContentService) VoteOnReview(ctx context.Context, user *domain.User, reviewID string, helpful bool) (*domain.Review, error) {
	review, err := s.store.RecordVote(ctx, user.ID, reviewID, helpful)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateVote):
			return nil, domainerrors.Conflict("you have already voted on this review")
		case errors.Is(err, store.ErrReviewNotFound):
			return nil, domainerrors.NotFound("review not found")
		}
		return nil, fmt.Errorf("record vote: %w", err)
	}

	return review, nil
}

// AddToWatchlist puts a movie on the user's watchlist, snapshotting its
// current title.
func (s *ContentService) AddToWatchlist(ctx context.Context, user *domain.User, movieID string) error {
	movie, ok := s.catalog.Get(movieID)
	if !ok {
		return domainerrors.NotFound("movie not found")
	}

	entry := domain.WatchlistEntry{
		MovieID:    movieID,
		MovieTitle: movie.Title,
		AddedAt:    time.Now(),
	}

	if err := s.store.AddToWatchlist(ctx, user.ID, entry); err != nil {
		if errors.Is(err, store.ErrAlreadyInWatchlist) {
			return domainerrors.Conflict("movie already in watchlist")
		}
		return fmt.Errorf("add to watchlist: %w", err)
	}

	return nil
}

// RemoveFromWatchlist drops a movie from the user's watchlist. Removing a
// movie that is not listed is a no-op.
func (s *ContentService) RemoveFromWatchlist(ctx context.Context, user *domain.User, movieID string) error {
	if err := s.store.RemoveFromWatchlist(ctx, user.ID, movieID); err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}
	return nil
}

// ReportReviewRequest contains the reporter's stated reason.
type ReportReviewRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ReportReview files a report against a review. The review id is not checked
// for existence: a report against a since-removed review still reaches the
// moderators.
func (s *ContentService) ReportReview(ctx context.Context, user *domain.User, reviewID string, req ReportReviewRequest) (*domain.Report, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reportID, err := id.Generate("report")
	if err != nil {
		return nil, fmt.Errorf("generate report id: %w", err)
	}

	report := &domain.Report{
		ID:         reportID,
		ReviewID:   reviewID,
		UserID:     user.ID,
		Username:   user.Username,
		Reason:     req.Reason,
		ReportedAt: time.Now(),
		Status:     domain.ReportStatusPending,
	}

	if err := s.store.CreateReport(ctx, report); err != nil {
		if errors.Is(err, store.ErrDuplicateReport) {
			return nil, domainerrors.Conflict("you have already reported this review")
		}
		return nil, fmt.Errorf("create report: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Review reported", "report_id", report.ID, "review_id", reviewID, "user_id", user.ID)
	}

	return report, nil
}

// ListReports returns every filed report, for moderator review.
func (s *ContentService) ListReports(ctx context.Context) ([]*domain.Report, error) {
	return s.store.ListReports(ctx)
}
