package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// InterviewRecord is the immutable transcript of a completed session, visible
// to interviewers. It is written once on completion and never mutated.
type InterviewRecord struct {
	gorm.Model
	RecordID        string `gorm:"uniqueIndex;not null" json:"recordId"`
	CandidateID     string `gorm:"not null;index" json:"candidateId"`
	CandidateName   string `gorm:"index" json:"candidateName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ResumeReference string `json:"resumeReference"`
	// Transcript holds the JSON-encoded []TranscriptEntry.
	Transcript   string    `gorm:"type:text" json:"-"`
	FinalSummary string    `gorm:"type:text" json:"finalSummary"`
	FinalScore   int       `json:"finalScore"`
	CompletedAt  time.Time `json:"completedAt"`
}

// TranscriptEntry pairs one question with the answer and evaluation it got.
type TranscriptEntry struct {
	Question   string     `json:"question"`
	Difficulty Difficulty `json:"difficulty"`
	Answer     string     `json:"answer"`
	Evaluation Evaluation `json:"evaluation"`
}

// BuildTranscript flattens a completed session into transcript entries,
// substituting placeholders for questions that were never reached.
func BuildTranscript(s *Session) []TranscriptEntry {
	entries := make([]TranscriptEntry, len(s.Questions))
	for i, q := range s.Questions {
		answer := s.Answers[i]
		if answer == "" {
			answer = "No answer provided"
		}
		eval := Evaluation{Score: 0, Feedback: "Not evaluated"}
		if s.Evaluations[i] != nil {
			eval = *s.Evaluations[i]
		}
		entries[i] = TranscriptEntry{
			Question:   q.Question,
			Difficulty: q.Difficulty,
			Answer:     answer,
			Evaluation: eval,
		}
	}
	return entries
}

// EncodeTranscript serializes entries for the record's text column.
func EncodeTranscript(entries []TranscriptEntry) string {
	data, err := json.Marshal(entries)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeTranscript restores entries from a stored record.
func DecodeTranscript(raw string) ([]TranscriptEntry, error) {
	if raw == "" {
		return []TranscriptEntry{}, nil
	}
	var entries []TranscriptEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
