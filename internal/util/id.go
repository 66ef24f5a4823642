package util

import "github.com/google/uuid"

// NewID returns an opaque token for share links, contact submissions, and
// document contexts.
func NewID() string {
	return uuid.NewString()
}
