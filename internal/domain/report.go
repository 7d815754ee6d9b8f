package domain

import "time"

// ReportStatus is the moderation state of a report.
type ReportStatus string

// ReportStatusPending is the only status a report ever holds here;
// the moderation workflow that would resolve reports lives elsewhere.
const ReportStatusPending ReportStatus = "pending"

// Report flags a review for moderator attention. At most one report per
// (user, review) pair. The review ID is deliberately not validated against
// either review collection: a report against a since-removed review is
// still useful to moderators.
type Report struct {
	ID         string       `json:"id"`
	ReviewID   string       `json:"review_id"`
	UserID     int64        `json:"user_id"`
	Username   string       `json:"username"`
	Reason     string       `json:"reason"`
	ReportedAt time.Time    `json:"reported_at"`
	Status     ReportStatus `json:"status"`
}
