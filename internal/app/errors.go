package app

import "errors"

var (
	// ErrAINotConfigured indicates the Gemini API key is missing.
	ErrAINotConfigured = errors.New("gemini api key not configured")
	// ErrEmptyDocument indicates extraction produced no usable text.
	ErrEmptyDocument = errors.New("could not extract text; document may be scanned or empty")
	// ErrDocumentNotFound indicates an unknown or expired document context.
	ErrDocumentNotFound = errors.New("document context not found")
	// ErrQuizSourceRequired indicates the quiz request carried neither a
	// document id nor inline text.
	ErrQuizSourceRequired = errors.New("either doc_id or text must be provided")
)
