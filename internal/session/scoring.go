package session

import (
	"math"

	"intervue/internal/models"
)

// FinalScore aggregates per-answer evaluation scores into the session score:
// the arithmetic mean of recorded scores rounded to the nearest integer, and
// 0 when nothing was recorded. Difficulty carries no weight.
func FinalScore(evaluations []*models.Evaluation) int {
	sum := 0
	count := 0
	for _, e := range evaluations {
		if e == nil {
			continue
		}
		sum += e.Score
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}
