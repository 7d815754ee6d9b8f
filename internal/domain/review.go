package domain

import "time"

// Review is a single movie review. Reviews come from two provenances:
//
//   - Dataset reviews are loaded from the read-only catalog (one CSV per
//     movie). They carry synthetic IDs of the form "<movieID>_review_<i>"
//     and are never vote or report targets.
//   - User reviews are submitted through the API, carry IDs of the form
//     "user_review_<n>", and live in the content store.
//
// The two are merged at read time when listing a movie's reviews,
// dataset reviews first.
type Review struct {
	ID              string    `json:"id"`
	MovieID         string    `json:"movie_id"`
	UserID          int64     `json:"user_id,omitempty"` // zero for dataset reviews
	Username        string    `json:"username"`
	DateOfReview    string    `json:"date_of_review"`
	UsefulnessVote  int       `json:"usefulness_vote"`
	TotalVotes      int       `json:"total_votes"`
	Rating          int       `json:"rating"`
	Title           string    `json:"review_title"`
	Text            string    `json:"review_text"`
	HelpfulVotes    int       `json:"helpful_votes"`
	IsDatasetReview bool      `json:"is_dataset_review"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
}

// Votable reports whether the review can receive helpfulness votes.
// Only user-submitted reviews are individually tracked vote targets.
func (r *Review) Votable() bool {
	return !r.IsDatasetReview
}

// VoteRecord marks that a user has voted on a review. The record is kept
// even for helpful=false votes so a user can never vote twice.
type VoteRecord struct {
	UserID   int64     `json:"user_id"`
	ReviewID string    `json:"review_id"`
	Helpful  bool      `json:"helpful"`
	VotedAt  time.Time `json:"voted_at"`
}
