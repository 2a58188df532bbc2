package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"intervue/internal/metrics"
	"intervue/internal/models"
)

var (
	ErrEvaluationInFlight    = errors.New("an evaluation is already in flight for the current question")
	ErrResumeDecisionPending = errors.New("a resume-or-discard decision is pending")
	ErrNoResumeDecision      = errors.New("no resume decision is pending")
	ErrUnsupportedFileType   = errors.New("only PDF and DOCX resumes are accepted")
	ErrResumeRequired        = errors.New("a resume upload is required before starting")
	ErrResumeUnreadable      = errors.New("could not read the resume")
)

// SessionStore persists the session aggregate across reloads.
type SessionStore interface {
	Save(ctx context.Context, candidateID string, s *models.Session) error
	// Load returns nil, nil when no session is persisted.
	Load(ctx context.Context, candidateID string) (*models.Session, error)
	Reset(ctx context.Context, candidateID string) error
}

// RecordStore commits completed sessions to the transcript store.
type RecordStore interface {
	Commit(ctx context.Context, record *models.InterviewRecord) error
}

// Evaluator is the gateway contract: every operation is total, the bool
// reports whether a fallback was substituted.
type Evaluator interface {
	GenerateQuestions(ctx context.Context) ([]models.Question, bool)
	EvaluateAnswer(ctx context.Context, question, answer string) (models.Evaluation, bool)
	GenerateSummary(ctx context.Context, snap *models.Session) (string, bool)
}

// Uploader stores the raw resume file and returns an opaque reference.
type Uploader interface {
	Store(ctx context.Context, candidateID, filename string, data []byte) (string, error)
}

// Extractor pulls candidate details out of a resume file. It tolerates
// missing fields but errors when the file itself is unreadable.
type Extractor interface {
	Extract(data []byte, contentType string) (models.CandidateDetails, error)
}

type pendingFile struct {
	name        string
	contentType string
	data        []byte
}

// Manager owns one candidate's interview session. Every transition is
// serialized through its mutex, so there is exactly one writer. The timer
// and the evaluator are the only asynchronous completion sources and both
// re-enter through the same submission path.
type Manager struct {
	candidateID string
	store       SessionStore
	records     RecordStore
	eval        Evaluator
	uploader    Uploader
	extractor   Extractor
	logger      *zap.Logger

	mu             sync.Mutex
	sess           *models.Session
	draft          string
	evaluating     bool
	awaitingResume bool
	file           *pendingFile
	countdown      *Countdown
	// epoch invalidates async completions that started before a reset.
	epoch int
	// timerTick is a second in production; tests compress it.
	timerTick time.Duration
}

// Deps bundles the collaborators a Manager needs.
type Deps struct {
	Store     SessionStore
	Records   RecordStore
	Evaluator Evaluator
	Uploader  Uploader
	Extractor Extractor
	Logger    *zap.Logger
}

func NewManager(candidateID string, deps Deps) *Manager {
	return &Manager{
		candidateID: candidateID,
		store:       deps.Store,
		records:     deps.Records,
		eval:        deps.Evaluator,
		uploader:    deps.Uploader,
		extractor:   deps.Extractor,
		logger:      deps.Logger,
		sess:        models.NewSession(),
		timerTick:   time.Second,
	}
}

// rehydrate adopts a persisted session. A session found mid-interview gates
// all further transitions behind a resume-or-discard decision.
func (m *Manager) rehydrate(ctx context.Context, sess *models.Session) {
	m.mu.Lock()
	m.sess = sess
	if sess.Status == models.StatusInProgress && len(sess.Questions) > 0 {
		m.awaitingResume = true
	}
	resumeSummarizing := sess.Status == models.StatusSummarizing
	m.mu.Unlock()

	// A crash between summarizing and completed leaves a finished answer set
	// with no verdict; the gateway is total, so finish it now.
	if resumeSummarizing {
		m.logger.Info("resuming interrupted completion", zap.String("candidate", m.candidateID))
		m.mu.Lock()
		snap := m.sess.Clone()
		epoch := m.epoch
		m.mu.Unlock()
		m.complete(ctx, snap, epoch)
	}
}

// Snapshot returns the current session state plus timer and gating info.
func (m *Manager) Snapshot() *models.SessionResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.responseLocked("")
}

func (m *Manager) responseLocked(notice string) *models.SessionResponse {
	remaining := 0
	if m.countdown != nil && m.sess.Status == models.StatusInProgress {
		remaining = m.countdown.Remaining()
	}
	if m.sess.ArchivePending && notice == "" {
		notice = "Interview archived locally; transcript store commit is still pending."
	}
	return &models.SessionResponse{
		Session:          m.sess.Clone(),
		RemainingSeconds: remaining,
		ResumePending:    m.awaitingResume,
		Notice:           notice,
	}
}

// AcceptResumeFile runs the idle -> parsing -> parsing-complete ->
// confirming-details leg. Wrong file types are rejected with no state
// change; unreadable files return the session to idle.
func (m *Manager) AcceptResumeFile(ctx context.Context, filename, contentType string, data []byte) (*models.SessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.awaitingResume {
		return nil, ErrResumeDecisionPending
	}
	if !models.SupportedResumeTypes[contentType] {
		return nil, ErrUnsupportedFileType
	}
	if err := m.sess.Transition(models.StatusParsing); err != nil {
		return nil, err
	}

	details, err := m.extractor.Extract(data, contentType)
	if err != nil {
		m.logger.Warn("resume extraction failed", zap.String("candidate", m.candidateID), zap.Error(err))
		if terr := m.sess.Transition(models.StatusIdle); terr != nil {
			return nil, terr
		}
		m.persistLocked(ctx)
		return nil, ErrResumeUnreadable
	}

	m.file = &pendingFile{name: filename, contentType: contentType, data: data}
	m.sess.Details = details

	if err := m.sess.Transition(models.StatusParsingComplete); err != nil {
		return nil, err
	}
	// parsing-complete auto-advances; the user lands on the details form.
	if err := m.sess.Transition(models.StatusConfirmingDetails); err != nil {
		return nil, err
	}
	m.persistLocked(ctx)
	return m.responseLocked(""), nil
}

// ConfirmDetails freezes the candidate details for this attempt.
func (m *Manager) ConfirmDetails(ctx context.Context, details models.CandidateDetails) (*models.SessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.awaitingResume {
		return nil, ErrResumeDecisionPending
	}
	if err := m.sess.Transition(models.StatusReady); err != nil {
		return nil, err
	}
	m.sess.Details = details
	m.persistLocked(ctx)
	return m.responseLocked(""), nil
}

// Start runs ready -> uploading -> loading-questions -> in-progress. It is
// blocked, with a forced reset to idle, when no resume was ever provided.
func (m *Manager) Start(ctx context.Context) (*models.SessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.awaitingResume {
		return nil, ErrResumeDecisionPending
	}
	if m.file == nil && m.sess.ResumeReference == "" {
		if err := m.sess.Transition(models.StatusIdle); err == nil {
			m.persistLocked(ctx)
		}
		return nil, ErrResumeRequired
	}
	if err := m.sess.Transition(models.StatusUploading); err != nil {
		return nil, err
	}

	if m.file != nil {
		reference, err := m.uploader.Store(ctx, m.candidateID, m.file.name, m.file.data)
		if err != nil {
			m.logger.Error("resume upload failed", zap.String("candidate", m.candidateID), zap.Error(err))
			if terr := m.sess.Transition(models.StatusReady); terr != nil {
				return nil, terr
			}
			m.persistLocked(ctx)
			return nil, err
		}
		m.sess.ResumeReference = reference
		m.file = nil
	}

	if err := m.sess.Transition(models.StatusLoadingQuestions); err != nil {
		return nil, err
	}

	questions, fromFallback := m.eval.GenerateQuestions(ctx)
	notice := ""
	if fromFallback {
		notice = "Question generation is running in fallback mode; a standard question set was substituted."
	}

	if err := m.sess.AssignQuestions(questions); err != nil {
		return nil, err
	}
	if err := m.sess.Transition(models.StatusInProgress); err != nil {
		return nil, err
	}
	m.startTimerLocked()
	m.persistLocked(ctx)
	return m.responseLocked(notice), nil
}

// UpdateDraft stores the in-progress answer text the timer submits on expiry.
func (m *Manager) UpdateDraft(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.awaitingResume {
		return ErrResumeDecisionPending
	}
	if m.sess.Status != models.StatusInProgress {
		return models.ErrNoCurrentQuestion
	}
	m.draft = text
	return nil
}

// SubmitAnswer records the answer for the current question, scoring it
// through the gateway, and advances the session. A second submission while
// an evaluation is outstanding is rejected so the manual and timer-forced
// paths cannot double-record.
func (m *Manager) SubmitAnswer(ctx context.Context, answer string) (*models.SessionResponse, error) {
	m.mu.Lock()

	if m.awaitingResume {
		m.mu.Unlock()
		return nil, ErrResumeDecisionPending
	}
	if m.evaluating {
		m.mu.Unlock()
		return nil, ErrEvaluationInFlight
	}
	question, err := m.sess.CurrentQuestion()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	index := m.sess.CurrentIndex
	epoch := m.epoch
	m.evaluating = true
	m.stopTimerLocked()
	m.mu.Unlock()

	evaluation, fromFallback := m.evaluateSafe(ctx, question.Question, answer)

	m.mu.Lock()
	if m.epoch != epoch {
		// Session was reset while the evaluation was outstanding; drop it.
		m.mu.Unlock()
		return nil, models.ErrNoCurrentQuestion
	}
	m.evaluating = false
	if err := m.sess.RecordAnswer(index, answer, evaluation); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.draft = ""

	notice := ""
	if fromFallback {
		notice = "The answer was scored by the fallback evaluator."
	}

	if !m.sess.AllAnswered() {
		if err := m.sess.Transition(models.StatusInProgress); err != nil {
			m.mu.Unlock()
			return nil, err
		}
		m.startTimerLocked()
		m.persistLocked(ctx)
		resp := m.responseLocked(notice)
		m.mu.Unlock()
		return resp, nil
	}

	// Last answer recorded: summarize from an immutable snapshot.
	if err := m.sess.Transition(models.StatusSummarizing); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.persistLocked(ctx)
	snap := m.sess.Clone()
	m.mu.Unlock()

	return m.complete(ctx, snap, epoch)
}

// evaluateSafe wraps the gateway call so a panic in the evaluation path can
// never leave the session stuck mid-question.
func (m *Manager) evaluateSafe(ctx context.Context, question, answer string) (eval models.Evaluation, fromFallback bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("evaluation panicked, recording error evaluation",
				zap.String("candidate", m.candidateID), zap.Any("panic", r))
			eval = models.Evaluation{Score: 50, Feedback: "Evaluation system error. Answer recorded for review."}
			fromFallback = true
		}
	}()
	return m.eval.EvaluateAnswer(ctx, question, answer)
}

// complete aggregates the final score, produces the summary from the
// snapshot, freezes the session, and commits the transcript record. Archival
// failure is reported but never rolls back the completed state.
func (m *Manager) complete(ctx context.Context, snap *models.Session, epoch int) (*models.SessionResponse, error) {
	finalScore := FinalScore(snap.Evaluations)
	snap.FinalScore = finalScore

	summary, fromFallback := m.eval.GenerateSummary(ctx, snap)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return nil, models.ErrNoCurrentQuestion
	}

	if err := m.sess.Complete(finalScore, summary); err != nil {
		return nil, err
	}
	m.sess.RecordID = uuid.New().String()
	metrics.SessionsCompleted.Inc()

	notice := ""
	if fromFallback {
		notice = "The final summary was produced by the fallback reporter."
	}

	record := m.buildRecordLocked()
	if err := m.records.Commit(ctx, record); err != nil {
		m.logger.Error("transcript record commit failed",
			zap.String("candidate", m.candidateID),
			zap.String("record", m.sess.RecordID),
			zap.Error(err))
		metrics.ArchiveFailures.Inc()
		m.sess.ArchivePending = true
		if notice != "" {
			notice += " "
		}
		notice += "Your result is saved, but archival to the review store failed and will be retried."
	}

	m.persistLocked(ctx)
	return m.responseLocked(notice), nil
}

func (m *Manager) buildRecordLocked() *models.InterviewRecord {
	transcript := models.BuildTranscript(m.sess)
	return &models.InterviewRecord{
		RecordID:        m.sess.RecordID,
		CandidateID:     m.candidateID,
		CandidateName:   m.sess.Details.Name,
		Email:           m.sess.Details.Email,
		Phone:           m.sess.Details.Phone,
		ResumeReference: m.sess.ResumeReference,
		Transcript:      models.EncodeTranscript(transcript),
		FinalSummary:    m.sess.Summary,
		FinalScore:      m.sess.FinalScore,
		CompletedAt:     time.Now().UTC(),
	}
}

// RetryArchive re-commits the transcript record after a failed archival.
// Used by the reconciliation job; a no-op when nothing is pending.
func (m *Manager) RetryArchive(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.sess.ArchivePending || m.sess.Status != models.StatusCompleted {
		return nil
	}
	if err := m.records.Commit(ctx, m.buildRecordLocked()); err != nil {
		return err
	}
	m.sess.ArchivePending = false
	m.persistLocked(ctx)
	return nil
}

// ResumeDecision resolves the resume-or-discard gate after rehydration.
func (m *Manager) ResumeDecision(ctx context.Context, decision string) (*models.SessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.awaitingResume {
		return nil, ErrNoResumeDecision
	}

	switch strings.ToLower(strings.TrimSpace(decision)) {
	case models.DecisionResume:
		m.awaitingResume = false
		if m.sess.Status == models.StatusInProgress {
			m.startTimerLocked()
		}
		return m.responseLocked(""), nil
	case models.DecisionDiscard:
		m.awaitingResume = false
		m.resetLocked(ctx)
		return m.responseLocked(""), nil
	}
	return nil, ErrNoResumeDecision
}

// Reset discards the attempt and returns to the idle default. Idempotent.
func (m *Manager) Reset(ctx context.Context) (*models.SessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.awaitingResume = false
	m.resetLocked(ctx)
	return m.responseLocked(""), nil
}

func (m *Manager) resetLocked(ctx context.Context) {
	m.stopTimerLocked()
	m.epoch++
	m.evaluating = false
	m.sess = models.NewSession()
	m.draft = ""
	m.file = nil
	if err := m.store.Reset(ctx, m.candidateID); err != nil {
		m.logger.Warn("failed to clear persisted session", zap.String("candidate", m.candidateID), zap.Error(err))
	}
}

// startTimerLocked replaces any previous countdown with a fresh one seeded
// from the active question's own time limit.
func (m *Manager) startTimerLocked() {
	m.stopTimerLocked()
	question, err := m.sess.CurrentQuestion()
	if err != nil {
		return
	}
	m.countdown = newCountdown(question.TimeLimitSeconds, m.timerTick, m.forceSubmit)
}

func (m *Manager) stopTimerLocked() {
	if m.countdown != nil {
		m.countdown.Stop()
		m.countdown = nil
	}
}

// forceSubmit is the timer expiry path: it submits whatever draft text is
// held, possibly empty, through the same path as a manual submission.
func (m *Manager) forceSubmit() {
	m.mu.Lock()
	draft := m.draft
	m.mu.Unlock()

	if _, err := m.SubmitAnswer(context.Background(), draft); err != nil {
		// A manual submission won the race; nothing to do.
		m.logger.Debug("timer-forced submission skipped", zap.String("candidate", m.candidateID), zap.Error(err))
	}
}

func (m *Manager) persistLocked(ctx context.Context) {
	if err := m.store.Save(ctx, m.candidateID, m.sess); err != nil {
		m.logger.Error("failed to persist session", zap.String("candidate", m.candidateID), zap.Error(err))
	}
}
