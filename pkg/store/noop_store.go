package store

import "studyguide/pkg/domain"

// NoopStore is used when no database URL is configured. Every operation is a
// no-op or returns an empty result so the rest of the service stays available.
type NoopStore struct{}

// NewNoopStore returns the degraded store.
func NewNoopStore() *NoopStore { return &NoopStore{} }

func (*NoopStore) CreateReview(domain.Review) (int64, error)       { return 0, nil }
func (*NoopStore) ListReviews(bool) ([]domain.Review, error)       { return []domain.Review{}, nil }
func (*NoopStore) SetReviewApproval(int64, bool) (bool, error)     { return false, nil }
func (*NoopStore) DeleteReview(int64) (bool, error)                { return false, nil }
func (*NoopStore) SaveSummary(string, string) error                { return nil }
func (*NoopStore) GetSummary(string) (domain.SharedSummary, bool, error) {
	return domain.SharedSummary{}, false, nil
}
func (*NoopStore) CreateContact(domain.ContactSubmission) error { return nil }
func (*NoopStore) ListContacts(bool) ([]domain.ContactSubmission, error) {
	return []domain.ContactSubmission{}, nil
}
func (*NoopStore) ResolveContact(string) (bool, error) { return false, nil }
func (*NoopStore) DeleteContact(string) (bool, error)  { return false, nil }
