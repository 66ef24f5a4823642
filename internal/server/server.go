// Package server exposes the HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"studyguide/internal/app"
	"studyguide/internal/extract"
	"studyguide/internal/ratelimit"
	"studyguide/internal/util"
	"studyguide/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                       *app.App
	RedisAddr                 string
	RedisPassword             string
	ReviewRateLimitPerMinute  int
	ContactRateLimitPerMinute int
	MaxUploadBytes            int64
}

// Server exposes HTTP endpoints for the study-guide service.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	maxUploadBytes int64
	reviewLimiter  *ratelimit.FixedWindowLimiter
	contactLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app required")
	}
	reviewLimit := cfg.ReviewRateLimitPerMinute
	if reviewLimit <= 0 {
		reviewLimit = 10
	}
	contactLimit := cfg.ContactRateLimitPerMinute
	if contactLimit <= 0 {
		contactLimit = 5
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		if cfg.RedisAddr != "" {
			prefix := "studyguide:ratelimit:" + name
			limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
			if err != nil {
				return nil, fmt.Errorf("init %s limiter: %w", name, err)
			}
			return limiter, nil
		}
		return ratelimit.NewMemoryFixedWindowLimiter(limit, rateWindow)
	}
	reviewLimiter, err := newLimiter("review", reviewLimit)
	if err != nil {
		return nil, err
	}
	contactLimiter, err := newLimiter("contact", contactLimit)
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		maxUploadBytes: normalizeMaxBytes(cfg.MaxUploadBytes),
		reviewLimiter:  reviewLimiter,
		contactLimiter: contactLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithCORS(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/reviews", s.handleReviews)
	s.mux.HandleFunc("/share", s.handleShare)
	s.mux.HandleFunc("/share/", s.handleShareByID)
	s.mux.HandleFunc("/contact", s.handleContact)
	s.mux.HandleFunc("/translate", s.handleTranslate)
	s.mux.HandleFunc("/upload", s.handleUpload)
	s.mux.HandleFunc("/chat", s.handleChat)
	s.mux.HandleFunc("/quiz", s.handleQuiz)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Study Guide API is running"})
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		reviews, err := s.app.ListApprovedReviews()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list reviews")
			return
		}
		writeJSON(w, http.StatusOK, reviews)
	case http.MethodPost:
		if !s.allowRate(w, r, s.reviewLimiter, "too many review submissions") {
			return
		}
		var req reviewRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Content) == "" {
			writeError(w, http.StatusBadRequest, "name and content are required")
			return
		}
		if err := s.app.SubmitReview(req.Name, req.Role, req.Content, req.Rating); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save review")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Review added successfully"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req shareRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 10<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	shareID, err := s.app.ShareSummary(req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"share_id": shareID})
}

func (s *Server) handleShareByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/share/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	content, ok, err := s.app.GetSharedSummary(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Summary not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.contactLimiter, "too many contact submissions") {
		return
	}
	var req contactRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if err := s.app.SubmitContact(req.Name, req.Email, req.Subject, req.Description); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "We will get in touch soon.",
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req translationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 10<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" || strings.TrimSpace(req.TargetLanguage) == "" {
		writeError(w, http.StatusBadRequest, "text and target_language are required")
		return
	}
	translated, err := s.app.Translate(r.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"translated_text": translated})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	if !isSupportedExtension(header.Filename) {
		writeError(w, http.StatusBadRequest, "File must be a PDF or Word (.docx) document")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	result, err := s.app.Upload(r.Context(), header.Filename, data)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 10<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	answer, err := s.app.Chat(r.Context(), req.DocID, req.Messages, req.Question)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req quizRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 10<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	quiz, err := s.app.GenerateQuiz(r.Context(), req.DocID, req.Text)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// writeAppError maps pipeline errors onto status codes: validation failures
// are 4xx with detail text, configuration and upstream errors are 500.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "File must be a PDF or Word (.docx) document")
	case errors.Is(err, app.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, "Could not extract text. It might be scanned or empty.")
	case errors.Is(err, app.ErrQuizSourceRequired):
		writeError(w, http.StatusBadRequest, "Either doc_id or text must be provided")
	case errors.Is(err, app.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "Document context not found. Please re-upload.")
	case errors.Is(err, app.ErrAINotConfigured):
		writeError(w, http.StatusInternalServerError, "Gemini API Key not configured.")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func isSupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
		return true
	default:
		return false
	}
}

type reviewRequest struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

type shareRequest struct {
	Content string `json:"content"`
}

type contactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type translationRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

type chatRequest struct {
	DocID    string               `json:"doc_id"`
	Messages []domain.ChatMessage `json:"messages"`
	Question string               `json:"question"`
}

type quizRequest struct {
	DocID string `json:"doc_id"`
	Text  string `json:"text"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func normalizeMaxBytes(value int64) int64 {
	if value <= 0 {
		return 50 * 1024 * 1024
	}
	return value
}
