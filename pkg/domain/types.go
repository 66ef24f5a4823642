package domain

import "time"

// Review is a user testimonial. Reviews are created unapproved and only
// become publicly listable once an operator approves them.
type Review struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// SharedSummary is an immutable content blob addressable by an opaque token.
type SharedSummary struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactSubmission is a contact-form entry managed by the operator console.
type ContactSubmission struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Subject       string    `json:"subject"`
	Description   string    `json:"description"`
	Timestamp     time.Time `json:"timestamp"`
	IssueResolved int       `json:"issue_resolved"`
}

// ChatMessage is one prior turn of a chat conversation as sent by the client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QuizQuestion is a single multiple-choice question produced by the model.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

// UploadResult is the outcome of the upload pipeline.
type UploadResult struct {
	Filename   string `json:"filename"`
	DocID      string `json:"doc_id"`
	StudyGuide string `json:"study_guide"`
}
