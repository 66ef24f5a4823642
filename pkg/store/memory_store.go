package store

import (
	"sort"
	"sync"
	"time"

	"studyguide/pkg/domain"
)

// MemoryStore keeps everything in-process. Used by tests and dev mode.
type MemoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	reviews   map[int64]domain.Review
	summaries map[string]domain.SharedSummary
	contacts  map[string]domain.ContactSubmission
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:    1,
		reviews:   make(map[int64]domain.Review),
		summaries: make(map[string]domain.SharedSummary),
		contacts:  make(map[string]domain.ContactSubmission),
	}
}

// CreateReview stores a review unapproved and assigns the next sequential ID.
func (m *MemoryStore) CreateReview(review domain.Review) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	review.ID = m.nextID
	m.nextID++
	review.IsApproved = false
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	m.reviews[review.ID] = review
	return review.ID, nil
}

// ListReviews returns reviews filtered by approval flag, newest first.
func (m *MemoryStore) ListReviews(approved bool) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Review, 0, len(m.reviews))
	for _, r := range m.reviews {
		if r.IsApproved == approved {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// SetReviewApproval flips the approval flag.
func (m *MemoryStore) SetReviewApproval(id int64, approved bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	review, ok := m.reviews[id]
	if !ok {
		return false, nil
	}
	review.IsApproved = approved
	m.reviews[id] = review
	return true, nil
}

// DeleteReview removes a review.
func (m *MemoryStore) DeleteReview(id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return false, nil
	}
	delete(m.reviews, id)
	return true, nil
}

// SaveSummary stores a shared summary under the given token.
func (m *MemoryStore) SaveSummary(id, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[id] = domain.SharedSummary{ID: id, Content: content, CreatedAt: time.Now().UTC()}
	return nil
}

// GetSummary looks up a shared summary by token.
func (m *MemoryStore) GetSummary(id string) (domain.SharedSummary, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary, ok := m.summaries[id]
	return summary, ok, nil
}

// CreateContact stores a contact submission.
func (m *MemoryStore) CreateContact(submission domain.ContactSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if submission.Timestamp.IsZero() {
		submission.Timestamp = time.Now().UTC()
	}
	m.contacts[submission.ID] = submission
	return nil
}

// ListContacts returns submissions filtered by resolution state, newest first.
func (m *MemoryStore) ListContacts(resolved bool) ([]domain.ContactSubmission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := 0
	if resolved {
		status = 1
	}
	res := make([]domain.ContactSubmission, 0, len(m.contacts))
	for _, c := range m.contacts {
		if c.IssueResolved == status {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Timestamp.After(res[j].Timestamp)
	})
	return res, nil
}

// ResolveContact marks a submission resolved.
func (m *MemoryStore) ResolveContact(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	submission, ok := m.contacts[id]
	if !ok {
		return false, nil
	}
	submission.IssueResolved = 1
	m.contacts[id] = submission
	return true, nil
}

// DeleteContact removes a submission.
func (m *MemoryStore) DeleteContact(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return false, nil
	}
	delete(m.contacts, id)
	return true, nil
}
