package models

import "strings"

// Difficulty tiers for interview questions.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Seconds allowed per answer, by difficulty.
const (
	TimeLimitEasy   = 120
	TimeLimitMedium = 180
	TimeLimitHard   = 240
)

// QuestionsPerSession is fixed: two questions per difficulty tier.
const QuestionsPerSession = 6

// TimeLimitForDifficulty maps a difficulty tier to its answer time limit in
// seconds. Unknown tiers get the medium limit.
func TimeLimitForDifficulty(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return TimeLimitEasy
	case DifficultyHard:
		return TimeLimitHard
	default:
		return TimeLimitMedium
	}
}

// ParseDifficulty normalizes free-form difficulty text into a tier.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return "", false
}

// Question is one timed interview question. TimeLimitSeconds is derived from
// Difficulty when the question set is assigned and never changes afterwards.
type Question struct {
	Question         string     `json:"question"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"timeLimitSeconds"`
}

// Evaluation is the scored result for one answer.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// CandidateDetails holds the fields extracted from a resume. Mutable until
// the session reaches ready, frozen for the attempt afterwards.
type CandidateDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
