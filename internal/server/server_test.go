package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studyguide/internal/app"
	"studyguide/internal/docstore"
	"studyguide/pkg/ai"
	"studyguide/pkg/domain"
	"studyguide/pkg/store"
)

type fakeGenerator struct {
	textFn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	jsonFn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (f *fakeGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.textFn == nil {
		return "generated text", nil
	}
	return f.textFn(ctx, systemPrompt, userPrompt)
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.jsonFn == nil {
		return "[]", nil
	}
	return f.jsonFn(ctx, systemPrompt, userPrompt)
}

type testEnv struct {
	srv   *httptest.Server
	store *store.MemoryStore
	docs  *docstore.Store
}

func newTestEnv(t *testing.T, gen ai.TextGenerator, mutate func(*Config)) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	docs := docstore.New(time.Hour)
	a, err := app.New(app.Config{
		Store:     st,
		Docs:      docs,
		Generator: gen,
		Retryer: ai.Retryer{
			Attempts:  3,
			BaseDelay: time.Millisecond,
			Sleep:     func(context.Context, time.Duration) error { return nil },
		},
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	cfg := Config{App: a}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: st, docs: docs}
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(e.srv.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create docx entry: %v", err)
	}
	if _, err := f.Write([]byte(doc.String())); err != nil {
		t.Fatalf("write docx entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close docx: %v", err)
	}
	return buf.Bytes()
}

func uploadFile(t *testing.T, url, filename string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	resp, err := http.Post(url+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /upload: %v", err)
	}
	return resp
}

func TestRootReportsRunning(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	resp, err := http.Get(env.srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["message"] != "Study Guide API is running" {
		t.Fatalf("message = %q", body["message"])
	}
}

func TestListReviewsReturnsOnlyApproved(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	approvedID, err := env.store.CreateReview(domain.Review{Name: "Ana", Content: "great", Rating: 5, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}
	if _, err := env.store.CreateReview(domain.Review{Name: "Ben", Content: "pending", Rating: 3, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("seed review: %v", err)
	}
	if _, err := env.store.SetReviewApproval(approvedID, true); err != nil {
		t.Fatalf("approve review: %v", err)
	}

	resp, err := http.Get(env.srv.URL + "/reviews")
	if err != nil {
		t.Fatalf("GET /reviews: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	reviews := decodeJSON[[]domain.Review](t, resp)
	if len(reviews) != 1 || reviews[0].Name != "Ana" {
		t.Fatalf("reviews = %+v, want only Ana", reviews)
	}
}

func TestSubmitReviewValidatesAndStoresUnapproved(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.postJSON(t, "/reviews", map[string]any{"name": "", "content": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing fields", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.postJSON(t, "/reviews", map[string]any{"name": "Ana", "role": "Student", "content": "helped a lot", "rating": 5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["message"] != "Review added successfully" {
		t.Fatalf("message = %q", body["message"])
	}
	pending, err := env.store.ListReviews(false)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %+v err=%v, want one unapproved review", pending, err)
	}
}

func TestReviewSubmissionRateLimited(t *testing.T) {
	env := newTestEnv(t, nil, func(cfg *Config) {
		cfg.ReviewRateLimitPerMinute = 2
	})
	payload := map[string]any{"name": "Ana", "content": "ok", "rating": 4}
	for i := 0; i < 2; i++ {
		resp := env.postJSON(t, "/reviews", payload)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, resp.StatusCode)
		}
		resp.Body.Close()
	}
	resp := env.postJSON(t, "/reviews", payload)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want 60", resp.Header.Get("Retry-After"))
	}
	resp.Body.Close()
}

func TestShareRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	resp := env.postJSON(t, "/share", map[string]string{"content": "# My Guide"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	shareID := body["share_id"]
	if shareID == "" {
		t.Fatal("share_id is empty")
	}

	getResp, err := http.Get(env.srv.URL + "/share/" + shareID)
	if err != nil {
		t.Fatalf("GET /share/%s: %v", shareID, err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", getResp.StatusCode)
	}
	shared := decodeJSON[map[string]string](t, getResp)
	if shared["content"] != "# My Guide" {
		t.Fatalf("content = %q", shared["content"])
	}
}

func TestShareUnknownTokenIs404(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	resp, err := http.Get(env.srv.URL + "/share/unknown-token")
	if err != nil {
		t.Fatalf("GET /share: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["error"] != "Summary not found" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestContactSubmission(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	resp := env.postJSON(t, "/contact", map[string]string{
		"name":        "Ana",
		"email":       "ana@example.com",
		"subject":     "Bug",
		"description": "Quiz options overlap",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["status"] != "success" || body["message"] != "We will get in touch soon." {
		t.Fatalf("body = %+v", body)
	}
	submissions, err := env.store.ListContacts(false)
	if err != nil || len(submissions) != 1 {
		t.Fatalf("contacts = %+v err=%v, want one unresolved entry", submissions, err)
	}
}

func TestTranslate(t *testing.T) {
	gen := &fakeGenerator{
		textFn: func(_ context.Context, _ string, userPrompt string) (string, error) {
			if !strings.Contains(userPrompt, "French") {
				t.Errorf("prompt missing target language:\n%s", userPrompt)
			}
			return "Bonjour", nil
		},
	}
	env := newTestEnv(t, gen, nil)
	resp := env.postJSON(t, "/translate", map[string]string{"text": "Hello", "target_language": "French"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["translated_text"] != "Bonjour" {
		t.Fatalf("translated_text = %q", body["translated_text"])
	}
}

func TestTranslateWithoutAPIKeyIs500(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	resp := env.postJSON(t, "/translate", map[string]string{"text": "Hello", "target_language": "French"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["error"] != "Gemini API Key not configured." {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	resp := uploadFile(t, env.srv.URL, "notes.txt", []byte("plain text"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["error"] != "File must be a PDF or Word (.docx) document" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestUploadEmptyDocumentLeavesNoContext(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	resp := uploadFile(t, env.srv.URL, "empty.docx", buildDocx(t))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["error"] != "Could not extract text. It might be scanned or empty." {
		t.Fatalf("error = %q", body["error"])
	}
	if env.docs.Len() != 0 {
		t.Fatalf("docstore has %d entries after failed upload, want 0", env.docs.Len())
	}
}

func TestUploadGeneratesStudyGuide(t *testing.T) {
	gen := &fakeGenerator{
		textFn: func(_ context.Context, _ string, userPrompt string) (string, error) {
			if !strings.Contains(userPrompt, "Photosynthesis basics.") {
				t.Errorf("prompt missing document text:\n%s", userPrompt)
			}
			return "  # Study Guide\ncontent", nil
		},
	}
	env := newTestEnv(t, gen, nil)
	resp := uploadFile(t, env.srv.URL, "bio.docx", buildDocx(t, "Photosynthesis basics."))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	result := decodeJSON[domain.UploadResult](t, resp)
	if result.Filename != "bio.docx" {
		t.Fatalf("filename = %q", result.Filename)
	}
	if result.DocID == "" {
		t.Fatal("doc_id is empty")
	}
	if result.StudyGuide != "# Study Guide\ncontent" {
		t.Fatalf("study_guide = %q, want un-indented heading", result.StudyGuide)
	}
	if _, ok := env.docs.Get(result.DocID); !ok {
		t.Fatal("document context not retained")
	}
}

func TestChatAgainstStoredDocument(t *testing.T) {
	gen := &fakeGenerator{
		textFn: func(context.Context, string, string) (string, error) {
			return "It converts light into sugar.", nil
		},
	}
	env := newTestEnv(t, gen, nil)
	docID := env.docs.Put("photosynthesis text")
	resp := env.postJSON(t, "/chat", map[string]any{
		"doc_id":   docID,
		"messages": []domain.ChatMessage{{Role: "user", Content: "hi"}},
		"question": "how does it work?",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["answer"] != "It converts light into sugar." {
		t.Fatalf("answer = %q", body["answer"])
	}
}

func TestChatUnknownDocumentIs404(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	resp := env.postJSON(t, "/chat", map[string]any{"doc_id": "missing", "question": "why?"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["error"] != "Document context not found. Please re-upload." {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestChatFailureYieldsApologyWith200(t *testing.T) {
	gen := &fakeGenerator{
		textFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	env := newTestEnv(t, gen, nil)
	docID := env.docs.Put("doc text")
	resp := env.postJSON(t, "/chat", map[string]any{"doc_id": docID, "question": "why?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 with apology", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if !strings.Contains(body["answer"], "I'm sorry") {
		t.Fatalf("answer = %q, want apology", body["answer"])
	}
}

func TestQuizRequiresSource(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	resp := env.postJSON(t, "/quiz", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeJSON[map[string]string](t, resp)
	if body["error"] != "Either doc_id or text must be provided" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestQuizFromInlineText(t *testing.T) {
	gen := &fakeGenerator{
		jsonFn: func(context.Context, string, string) (string, error) {
			return `[{"question":"What is chlorophyll?","options":["a","b","c","d"],"correct_answer":1}]`, nil
		},
	}
	env := newTestEnv(t, gen, nil)
	resp := env.postJSON(t, "/quiz", map[string]string{"text": "chlorophyll absorbs light"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	quiz := decodeJSON[[]domain.QuizQuestion](t, resp)
	if len(quiz) != 1 || quiz[0].CorrectAnswer != 1 || len(quiz[0].Options) != 4 {
		t.Fatalf("quiz = %+v", quiz)
	}
}
