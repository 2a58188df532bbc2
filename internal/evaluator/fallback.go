package evaluator

import (
	"fmt"
	"strings"

	"intervue/internal/models"
)

// fallbackQuestions is the hardcoded question set used whenever the external
// capability cannot produce a valid one. Two questions per difficulty tier,
// time limits matching the difficulty mapping.
func fallbackQuestions() []models.Question {
	specs := []struct {
		difficulty models.Difficulty
		question   string
	}{
		{models.DifficultyEasy, "What is React and what are its main advantages over vanilla JavaScript?"},
		{models.DifficultyEasy, "Explain the difference between let, const, and var in JavaScript with examples."},
		{models.DifficultyMedium, "How do React hooks work? Explain useState and useEffect with practical examples."},
		{models.DifficultyMedium, "What is a REST API and how would you handle errors in API calls in a React application?"},
		{models.DifficultyHard, "What strategies would you use to optimize the performance of a large React application?"},
		{models.DifficultyHard, "Explain JWT authentication and discuss security best practices for web applications."},
	}

	questions := make([]models.Question, len(specs))
	for i, s := range specs {
		questions[i] = models.Question{
			Question:         s.question,
			Difficulty:       s.difficulty,
			TimeLimitSeconds: models.TimeLimitForDifficulty(s.difficulty),
		}
	}
	return questions
}

// hasRun reports whether s contains a run of the same character of at least
// the given length.
func hasRun(s string, length int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= length {
			return true
		}
	}
	return false
}

// countWords counts whitespace-separated tokens longer than one character.
func countWords(s string) int {
	count := 0
	for _, w := range strings.Fields(s) {
		if len(w) > 1 {
			count++
		}
	}
	return count
}

// countSubstantiveWords counts words that are not a single repeated character,
// used to tell placeholder junk from real content.
func countSubstantiveWords(s string) int {
	count := 0
	for _, w := range strings.Fields(s) {
		if len(w) <= 1 {
			continue
		}
		distinct := map[rune]bool{}
		for _, r := range w {
			distinct[r] = true
		}
		if len(distinct) > 1 {
			count++
		}
	}
	return count
}

// expectsExplanation reports whether the question text implies a longer,
// explanatory answer.
func expectsExplanation(question string) bool {
	q := strings.ToLower(question)
	return strings.Contains(q, "explain") ||
		strings.Contains(q, "how would") ||
		strings.Contains(q, "optimize")
}

// fallbackEvaluation is the deterministic heuristic used when the external
// scorer is unavailable. Scores are integers clamped to [0,100].
func fallbackEvaluation(question, answer string) models.Evaluation {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return models.Evaluation{
			Score:    0,
			Feedback: "No answer provided. Please try to answer the question to receive a proper evaluation.",
		}
	}

	// Placeholder junk: a long repeated-character run with no real words.
	if hasRun(trimmed, 6) && countSubstantiveWords(trimmed) == 0 {
		return models.Evaluation{
			Score:    5,
			Feedback: "The answer appears to be placeholder text. Please provide a meaningful response to demonstrate your knowledge.",
		}
	}

	wordCount := countWords(trimmed)

	var score int
	var feedback string
	switch {
	case wordCount > 100:
		score = 75
		feedback = "Detailed answer provided. The length suggests good understanding, but technical accuracy requires AI evaluation."
	case wordCount > 50:
		score = 60
		feedback = "Substantial answer with good content length. Manual review recommended for technical assessment."
	case wordCount > 20:
		score = 40
		feedback = "Brief answer provided. Consider expanding with more details and examples for better evaluation."
	case wordCount > 5:
		score = 25
		feedback = "Very short answer. Please provide more detailed explanations to demonstrate your knowledge."
	default:
		score = 10
		feedback = "Minimal response. Try to write complete sentences with specific examples."
	}

	// Explanatory questions expect longer answers.
	if expectsExplanation(question) && wordCount < 30 {
		score -= 15
		if score < 0 {
			score = 0
		}
	}

	return models.Evaluation{Score: clampScore(score), Feedback: feedback}
}

// fallbackSummary renders a deterministic report from a completed-session
// snapshot when the external summarizer is unavailable.
func fallbackSummary(snap *models.Session) string {
	name := snap.Details.Name
	if name == "" {
		name = "The candidate"
	}

	answered := 0
	total := 0
	scoreSum := 0
	scored := 0
	for i := range snap.Questions {
		if len(strings.TrimSpace(snap.Answers[i])) > 10 {
			answered++
		}
		if snap.Evaluations[i] != nil {
			scoreSum += snap.Evaluations[i].Score
			scored++
		}
	}

	mean := 0.0
	if scored > 0 {
		mean = float64(scoreSum) / float64(scored)
	}

	performance := "insufficient data"
	assessment := "The candidate would benefit from further study and practice in technical concepts."
	recommendation := "Recommend further training and re-assessment"
	if scored > 0 {
		switch {
		case mean >= 70:
			performance = "strong"
			assessment = "The candidate demonstrated good technical knowledge across various topics."
			recommendation = "Consider for next interview round"
		case mean >= 50:
			performance = "moderate"
			assessment = "The candidate showed basic understanding but would benefit from additional experience."
			recommendation = "Review with additional technical screening"
		default:
			performance = "needs improvement"
		}
	}

	total = len(snap.Questions)

	return fmt.Sprintf(`INTERVIEW SUMMARY: %s

Overall Score: %d/100
Questions Answered: %d/%d
Average Question Score: %.1f/100
Performance Level: %s

EVALUATION:
%s

RECOMMENDATION:
%s

Note: This evaluation uses fallback scoring due to AI system unavailability. For detailed technical assessment, please review individual question responses.`,
		name, snap.FinalScore, answered, total, mean, performance, assessment, recommendation)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
