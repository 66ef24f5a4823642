package store

import "studyguide/pkg/domain"

// Store defines persistence operations for reviews, shared summaries, and
// contact submissions. All backends (Postgres, SQLite, memory) implement it.
type Store interface {
	// reviews
	CreateReview(review domain.Review) (int64, error)
	ListReviews(approved bool) ([]domain.Review, error)
	SetReviewApproval(id int64, approved bool) (bool, error)
	DeleteReview(id int64) (bool, error)

	// shared summaries
	SaveSummary(id, content string) error
	GetSummary(id string) (domain.SharedSummary, bool, error)

	// contact submissions
	CreateContact(submission domain.ContactSubmission) error
	ListContacts(resolved bool) ([]domain.ContactSubmission, error)
	ResolveContact(id string) (bool, error)
	DeleteContact(id string) (bool, error)
}
