package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"intervue/internal/middleware"
	"intervue/internal/models"
	"intervue/internal/session"
)

// mirrors the production route table without importing the routers package
func registerSessionRoutesForTest(router *chi.Mux, h *SessionHandler) {
	router.Route("/api/v1/session", func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))

		r.Get("/", h.GetSessionHandler)
		r.Post("/resume", h.UploadResumeHandler)
		r.With(middleware.ValidateRequest[*models.DetailsRequest]()).Post("/details", h.ConfirmDetailsHandler)
		r.Post("/start", h.StartHandler)
		r.With(middleware.ValidateRequest[*models.DraftRequest]()).Post("/draft", h.DraftHandler)
		r.With(middleware.ValidateRequest[*models.AnswerRequest]()).Post("/answer", h.SubmitAnswerHandler)
		r.With(middleware.ValidateRequest[*models.ResumeDecisionRequest]()).Post("/decision", h.ResumeDecisionHandler)
		r.Post("/reset", h.ResetHandler)
	})
}

const testSecret = "test-secret"

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*models.Session)}
}

func (s *memorySessionStore) Save(_ context.Context, candidateID string, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[candidateID] = sess.Clone()
	return nil
}

func (s *memorySessionStore) Load(_ context.Context, candidateID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[candidateID]
	if !ok {
		return nil, nil
	}
	return sess.Clone(), nil
}

func (s *memorySessionStore) Reset(_ context.Context, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, candidateID)
	return nil
}

type memoryRecordStore struct {
	mu      sync.Mutex
	records []*models.InterviewRecord
}

func (s *memoryRecordStore) Commit(_ context.Context, record *models.InterviewRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

type fixedEvaluator struct{}

func (fixedEvaluator) GenerateQuestions(context.Context) ([]models.Question, bool) {
	qs := make([]models.Question, models.QuestionsPerSession)
	difficulties := []models.Difficulty{
		models.DifficultyEasy, models.DifficultyEasy,
		models.DifficultyMedium, models.DifficultyMedium,
		models.DifficultyHard, models.DifficultyHard,
	}
	for i, d := range difficulties {
		qs[i] = models.Question{
			Question:         fmt.Sprintf("question %d", i+1),
			Difficulty:       d,
			TimeLimitSeconds: models.TimeLimitForDifficulty(d),
		}
	}
	return qs, false
}

func (fixedEvaluator) EvaluateAnswer(context.Context, string, string) (models.Evaluation, bool) {
	return models.Evaluation{Score: 70, Feedback: "good"}, false
}

func (fixedEvaluator) GenerateSummary(context.Context, *models.Session) (string, bool) {
	return "final summary", false
}

type fixedUploader struct{}

func (fixedUploader) Store(_ context.Context, candidateID, filename string, _ []byte) (string, error) {
	return "file:///uploads/" + candidateID + "/" + filename, nil
}

type fixedExtractor struct{}

func (fixedExtractor) Extract([]byte, string) (models.CandidateDetails, error) {
	return models.CandidateDetails{Name: "Jane Doe", Email: "jane@example.com"}, nil
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	hub := session.NewHub(session.Deps{
		Store:     newMemorySessionStore(),
		Records:   &memoryRecordStore{},
		Evaluator: fixedEvaluator{},
		Uploader:  fixedUploader{},
		Extractor: fixedExtractor{},
		Logger:    zap.NewNop(),
	})
	handler := NewSessionHandler(hub, zap.NewNop())

	router := chi.NewRouter()
	// mirror the production route table
	registerSessionRoutesForTest(router, handler)
	return router
}

func bearerToken(t *testing.T, candidateID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": candidateID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + signed
}

func doJSON(t *testing.T, router *chi.Mux, method, path, auth string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func uploadResume(t *testing.T, router *chi.Mux, auth, filename, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("file contents"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/resume", &buf)
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) *models.SessionResponse {
	t.Helper()
	var resp models.SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	return &resp
}

func TestSessionFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	auth := bearerToken(t, "candidate-1")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/session/", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session: %d %s", rec.Code, rec.Body.String())
	}
	if got := decodeSession(t, rec).Session.Status; got != models.StatusIdle {
		t.Fatalf("fresh session should be idle, got %s", got)
	}

	rec = uploadResume(t, router, auth, "resume.pdf", "application/pdf")
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	resp := decodeSession(t, rec)
	if resp.Session.Status != models.StatusConfirmingDetails {
		t.Fatalf("expected confirming-details, got %s", resp.Session.Status)
	}
	if resp.Session.Details.Name != "Jane Doe" {
		t.Fatalf("extracted details missing: %+v", resp.Session.Details)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/session/details", auth,
		models.DetailsRequest{Name: "Jane Doe", Email: "jane@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("details: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/session/start", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rec.Code, rec.Body.String())
	}
	resp = decodeSession(t, rec)
	if resp.Session.Status != models.StatusInProgress {
		t.Fatalf("expected in-progress, got %s", resp.Session.Status)
	}
	if resp.RemainingSeconds != models.TimeLimitEasy {
		t.Fatalf("expected the easy time limit, got %d", resp.RemainingSeconds)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/session/draft", auth,
		models.DraftRequest{Text: "typing..."})
	if rec.Code != http.StatusOK {
		t.Fatalf("draft: %d %s", rec.Code, rec.Body.String())
	}

	for i := 0; i < models.QuestionsPerSession; i++ {
		rec = doJSON(t, router, http.MethodPost, "/api/v1/session/answer", auth,
			models.AnswerRequest{Answer: fmt.Sprintf("answer %d", i+1)})
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}

	resp = decodeSession(t, rec)
	if resp.Session.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", resp.Session.Status)
	}
	if resp.Session.FinalScore != 70 {
		t.Fatalf("expected final score 70, got %d", resp.Session.FinalScore)
	}
	if resp.Session.Summary != "final summary" {
		t.Fatalf("summary missing: %q", resp.Session.Summary)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/session/reset", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: %d %s", rec.Code, rec.Body.String())
	}
	if got := decodeSession(t, rec).Session.Status; got != models.StatusIdle {
		t.Fatalf("expected idle after reset, got %s", got)
	}
}

func TestUploadRejectsWrongType(t *testing.T) {
	router := newTestRouter(t)
	auth := bearerToken(t, "candidate-1")

	rec := uploadResume(t, router, auth, "resume.txt", "text/plain")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a text file, got %d", rec.Code)
	}
	var errResp models.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&errResp)
	if errResp.Code != "invalid_file_type" {
		t.Fatalf("expected invalid_file_type, got %s", errResp.Code)
	}
}

func TestAnswerWithoutQuestionConflicts(t *testing.T) {
	router := newTestRouter(t)
	auth := bearerToken(t, "candidate-1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/session/answer", auth,
		models.AnswerRequest{Answer: "premature"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestStartWithoutResumeIsBadRequest(t *testing.T) {
	router := newTestRouter(t)
	auth := bearerToken(t, "candidate-1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/session/start", auth, nil)
	if rec.Code != http.StatusConflict && rec.Code != http.StatusBadRequest {
		t.Fatalf("expected a client error, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestInvalidDecisionRejectedByValidation(t *testing.T) {
	router := newTestRouter(t)
	auth := bearerToken(t, "candidate-1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/session/decision", auth,
		models.ResumeDecisionRequest{Decision: "maybe"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var errResp models.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&errResp)
	if errResp.Code != "invalid_decision" {
		t.Fatalf("expected invalid_decision, got %s", errResp.Code)
	}
}

func TestDecisionWithoutPendingSessionConflicts(t *testing.T) {
	router := newTestRouter(t)
	auth := bearerToken(t, "candidate-1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/session/decision", auth,
		models.ResumeDecisionRequest{Decision: "resume"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSessionIsolationPerCandidate(t *testing.T) {
	router := newTestRouter(t)
	authA := bearerToken(t, "candidate-a")
	authB := bearerToken(t, "candidate-b")

	rec := uploadResume(t, router, authA, "resume.pdf", "application/pdf")
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/session/", authB, nil)
	if got := decodeSession(t, rec).Session.Status; got != models.StatusIdle {
		t.Fatalf("candidate-b should have a fresh session, got %s", got)
	}
}
