// Package app wires storage, extraction, and the AI gateway into the
// upload → extract → generate pipeline and its secondary operations.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"studyguide/internal/docstore"
	"studyguide/internal/extract"
	"studyguide/internal/util"
	"studyguide/pkg/ai"
	"studyguide/pkg/domain"
	"studyguide/pkg/store"
)

// chatApology is returned with a 200 when chat generation fails after
// retries. Chat stays conversational instead of surfacing a 500; every other
// AI path propagates its error.
const chatApology = "I'm sorry, I encountered an error while processing your question via AI."

// Models sometimes indent markdown headings, which breaks rendering. Strip
// leading spaces and tabs in front of heading markers on every line.
var indentedHeading = regexp.MustCompile(`(?m)^[ \t]+(#+)`)

// Config holds runtime dependencies for the core application.
type Config struct {
	Store store.Store
	Docs  *docstore.Store
	// Generator is nil when no API key is configured; AI operations then
	// fail with ErrAINotConfigured while CRUD keeps working.
	Generator ai.TextGenerator
	Retryer   ai.Retryer
	// MaxConcurrentExtractions bounds CPU-bound document parsing.
	MaxConcurrentExtractions int64
}

// App is the core application service.
type App struct {
	store      store.Store
	docs       *docstore.Store
	gen        ai.TextGenerator
	retry      ai.Retryer
	extractSem *semaphore.Weighted
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	retry := cfg.Retryer
	if retry.Attempts <= 0 {
		retry = ai.NewRetryer()
	}
	maxExtract := cfg.MaxConcurrentExtractions
	if maxExtract <= 0 {
		maxExtract = 4
	}
	return &App{
		store:      cfg.Store,
		docs:       cfg.Docs,
		gen:        cfg.Generator,
		retry:      retry,
		extractSem: semaphore.NewWeighted(maxExtract),
	}, nil
}

// Upload runs the pipeline: extract text, retain it under a new document id,
// and generate a study guide.
func (a *App) Upload(ctx context.Context, filename string, data []byte) (domain.UploadResult, error) {
	text, err := a.extractText(ctx, filename, data)
	if err != nil {
		return domain.UploadResult{}, err
	}
	slog.Info("text extraction complete", "filename", filename, "chars", len(text))
	if strings.TrimSpace(text) == "" {
		slog.Warn("extraction produced no text", "filename", filename)
		return domain.UploadResult{}, ErrEmptyDocument
	}
	docID := a.docs.Put(text)
	slog.Info("stored document context", "doc_id", docID)
	guide, err := a.GenerateStudyGuide(ctx, text)
	if err != nil {
		return domain.UploadResult{}, err
	}
	return domain.UploadResult{Filename: filename, DocID: docID, StudyGuide: guide}, nil
}

// extractText runs extraction under the concurrency bound. The permit is
// released on every exit path, including a parser panic on malformed input,
// which is converted into an error.
func (a *App) extractText(ctx context.Context, filename string, data []byte) (text string, err error) {
	if err := a.extractSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer a.extractSem.Release(1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract text: %v", r)
		}
	}()
	return extract.Text(filename, data)
}

// GenerateStudyGuide produces the markdown study guide for text.
func (a *App) GenerateStudyGuide(ctx context.Context, text string) (string, error) {
	if a.gen == nil {
		return "", ErrAINotConfigured
	}
	userPrompt := studyGuideUserPrompt(text)
	response, err := a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.gen.GenerateText(ctx, studyGuideSystemPrompt, userPrompt)
	})
	if err != nil {
		return "", fmt.Errorf("generate study guide: %w", err)
	}
	return indentedHeading.ReplaceAllString(response, "$1"), nil
}

// Translate renders text in targetLanguage, preserving markdown structure.
func (a *App) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if a.gen == nil {
		return "", ErrAINotConfigured
	}
	userPrompt := translationUserPrompt(text, targetLanguage)
	response, err := a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.gen.GenerateText(ctx, "", userPrompt)
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return response, nil
}

// Chat answers a question against a stored document context. Generation
// failures after retries yield the apology string, never an error.
func (a *App) Chat(ctx context.Context, docID string, messages []domain.ChatMessage, question string) (string, error) {
	docText, ok := a.docs.Get(docID)
	if !ok {
		return "", ErrDocumentNotFound
	}
	if a.gen == nil {
		return "", ErrAINotConfigured
	}
	userPrompt := chatUserPrompt(docText, messages, question)
	response, err := a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.gen.GenerateText(ctx, chatSystemPrompt, userPrompt)
	})
	if err != nil {
		slog.Error("chat generation failed", "doc_id", docID, "err", err)
		return chatApology, nil
	}
	return response, nil
}

// GenerateQuiz builds 10 multiple-choice questions from a stored document
// (docID takes precedence) or inline text.
func (a *App) GenerateQuiz(ctx context.Context, docID, text string) ([]domain.QuizQuestion, error) {
	docText := ""
	if docID != "" {
		if stored, ok := a.docs.Get(docID); ok {
			docText = stored
		}
	}
	if docText == "" {
		docText = text
	}
	if docText == "" {
		return nil, ErrQuizSourceRequired
	}
	if a.gen == nil {
		return nil, ErrAINotConfigured
	}
	userPrompt := quizUserPrompt(docText)
	response, err := a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.gen.GenerateJSON(ctx, "", userPrompt)
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	var quiz []domain.QuizQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &quiz); err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}
	return quiz, nil
}

// SubmitReview stores a review; it starts unapproved regardless of input.
func (a *App) SubmitReview(name, role, content string, rating int) error {
	_, err := a.store.CreateReview(domain.Review{
		Name:      name,
		Role:      role,
		Content:   content,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

// ListApprovedReviews returns publicly listable reviews, newest first.
func (a *App) ListApprovedReviews() ([]domain.Review, error) {
	return a.store.ListReviews(true)
}

// ShareSummary persists content under a fresh opaque token and returns it.
func (a *App) ShareSummary(content string) (string, error) {
	id := util.NewID()
	if err := a.store.SaveSummary(id, content); err != nil {
		return "", err
	}
	return id, nil
}

// GetSharedSummary resolves a share token to its content.
func (a *App) GetSharedSummary(id string) (string, bool, error) {
	summary, ok, err := a.store.GetSummary(id)
	if err != nil || !ok {
		return "", ok, err
	}
	return summary.Content, true, nil
}

// SubmitContact stores a contact-form submission with a server timestamp.
func (a *App) SubmitContact(name, email, subject, description string) error {
	return a.store.CreateContact(domain.ContactSubmission{
		ID:          util.NewID(),
		Name:        name,
		Email:       email,
		Subject:     subject,
		Description: description,
		Timestamp:   time.Now().UTC(),
	})
}
