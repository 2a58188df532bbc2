package models

import (
	"errors"
	"fmt"
	"time"
)

// SessionStatus is the explicit state of one interview attempt.
type SessionStatus string

const (
	StatusIdle              SessionStatus = "idle"
	StatusParsing           SessionStatus = "parsing"
	StatusParsingComplete   SessionStatus = "parsing-complete"
	StatusConfirmingDetails SessionStatus = "confirming-details"
	StatusReady             SessionStatus = "ready"
	StatusUploading         SessionStatus = "uploading"
	StatusLoadingQuestions  SessionStatus = "loading-questions"
	StatusInProgress        SessionStatus = "in-progress"
	StatusSummarizing       SessionStatus = "summarizing"
	StatusCompleted         SessionStatus = "completed"
)

// transitions is the exhaustive table of allowed status moves. Anything not
// listed here is rejected by Transition.
var transitions = map[SessionStatus][]SessionStatus{
	StatusIdle:              {StatusParsing},
	StatusParsing:           {StatusParsingComplete, StatusIdle},
	StatusParsingComplete:   {StatusConfirmingDetails},
	StatusConfirmingDetails: {StatusReady},
	StatusReady:             {StatusUploading, StatusIdle},
	StatusUploading:         {StatusLoadingQuestions, StatusReady},
	StatusLoadingQuestions:  {StatusInProgress},
	StatusInProgress:        {StatusInProgress, StatusSummarizing, StatusIdle},
	StatusSummarizing:       {StatusCompleted},
	StatusCompleted:         {StatusIdle},
}

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrQuestionsAssigned = errors.New("question set already assigned")
	ErrAnswerOutOfRange  = errors.New("answer index out of range")
	ErrAlreadyCompleted  = errors.New("session already completed")
	ErrNoCurrentQuestion = errors.New("no current question")
)

// Session is the aggregate root for one candidate's interview attempt.
type Session struct {
	Status          SessionStatus    `json:"status"`
	Details         CandidateDetails `json:"details"`
	ResumeReference string           `json:"resumeReference,omitempty"`
	Questions       []Question       `json:"questions"`
	CurrentIndex    int              `json:"currentIndex"`
	Answers         []string         `json:"answers"`
	Evaluations     []*Evaluation    `json:"evaluations"`
	FinalScore      int              `json:"finalScore"`
	Summary         string           `json:"summary"`

	// ArchivePending is set when the completed record could not be written
	// to the transcript store; the archival retry job picks it up.
	ArchivePending bool   `json:"archivePending,omitempty"`
	RecordID       string `json:"recordId,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession returns the idle default a reset also lands on.
func NewSession() *Session {
	return &Session{
		Status:      StatusIdle,
		Questions:   []Question{},
		Answers:     []string{},
		Evaluations: []*Evaluation{},
		UpdatedAt:   time.Now().UTC(),
	}
}

// CanTransition reports whether the table allows moving to the given status.
func (s *Session) CanTransition(to SessionStatus) bool {
	for _, allowed := range transitions[s.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the session to the given status, rejecting anything the
// table does not model.
func (s *Session) Transition(to SessionStatus) error {
	if !s.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
	}
	s.Status = to
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// AssignQuestions sets the question list exactly once, pre-filling aligned
// answer and evaluation slots.
func (s *Session) AssignQuestions(questions []Question) error {
	if len(s.Questions) > 0 {
		return ErrQuestionsAssigned
	}
	s.Questions = questions
	s.Answers = make([]string, len(questions))
	s.Evaluations = make([]*Evaluation, len(questions))
	s.CurrentIndex = 0
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordAnswer stores the answer and its evaluation for the current question
// and advances the index by exactly one.
func (s *Session) RecordAnswer(index int, answer string, eval Evaluation) error {
	if index != s.CurrentIndex || index >= len(s.Questions) {
		return ErrAnswerOutOfRange
	}
	s.Answers[index] = answer
	e := eval
	s.Evaluations[index] = &e
	s.CurrentIndex++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete freezes the final score and summary. They are set exactly once.
func (s *Session) Complete(finalScore int, summary string) error {
	if s.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	if err := s.Transition(StatusCompleted); err != nil {
		return err
	}
	s.FinalScore = finalScore
	s.Summary = summary
	return nil
}

// CurrentQuestion returns the active question, if any.
func (s *Session) CurrentQuestion() (Question, error) {
	if s.Status != StatusInProgress || s.CurrentIndex >= len(s.Questions) {
		return Question{}, ErrNoCurrentQuestion
	}
	return s.Questions[s.CurrentIndex], nil
}

// AllAnswered reports whether every question has a recorded answer.
func (s *Session) AllAnswered() bool {
	return len(s.Questions) > 0 && s.CurrentIndex >= len(s.Questions)
}

// Clone returns a deep copy. The completion path works on a clone so an
// in-flight summary call never observes later mutations.
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = append([]Question(nil), s.Questions...)
	c.Answers = append([]string(nil), s.Answers...)
	c.Evaluations = make([]*Evaluation, len(s.Evaluations))
	for i, e := range s.Evaluations {
		if e != nil {
			copied := *e
			c.Evaluations[i] = &copied
		}
	}
	return &c
}
