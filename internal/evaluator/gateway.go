package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"intervue/internal/llm"
	"intervue/internal/metrics"
	"intervue/internal/models"
	"intervue/internal/prompts"
)

// Gateway wraps the external question-generation, answer-scoring, and
// summarization capability. Every operation is total: on any provider
// failure or malformed response it degrades to a deterministic fallback,
// so callers are never blocked. The second return value reports whether
// the fallback was substituted.
type Gateway struct {
	provider llm.Provider // nil means fallback-only mode
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func NewGateway(provider llm.Provider, promptManager prompts.PromptProvider, logger *zap.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		prompts:  promptManager,
		logger:   logger,
	}
}

type questionsPayload struct {
	Questions []struct {
		Difficulty string `json:"difficulty"`
		Question   string `json:"question"`
	} `json:"questions"`
}

// GenerateQuestions returns exactly six questions, two per difficulty tier,
// with time limits derived from difficulty.
func (g *Gateway) GenerateQuestions(ctx context.Context) ([]models.Question, bool) {
	if g.provider == nil {
		metrics.FallbackSubstitutions.WithLabelValues("questions").Inc()
		return fallbackQuestions(), true
	}

	questions, err := g.generateQuestions(ctx)
	if err != nil {
		g.logger.Warn("question generation failed, using fallback set", zap.Error(err))
		metrics.FallbackSubstitutions.WithLabelValues("questions").Inc()
		return fallbackQuestions(), true
	}
	return questions, false
}

func (g *Gateway) generateQuestions(ctx context.Context) ([]models.Question, error) {
	prompt, err := g.prompts.BuildPrompt("questions", nil)
	if err != nil {
		return nil, err
	}

	raw, err := g.provider.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var payload questionsPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("malformed questions response: %w", err)
	}
	if len(payload.Questions) != models.QuestionsPerSession {
		return nil, fmt.Errorf("expected %d questions, got %d", models.QuestionsPerSession, len(payload.Questions))
	}

	perTier := map[models.Difficulty]int{}
	questions := make([]models.Question, len(payload.Questions))
	for i, q := range payload.Questions {
		difficulty, ok := models.ParseDifficulty(q.Difficulty)
		if !ok {
			return nil, fmt.Errorf("unknown difficulty %q", q.Difficulty)
		}
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("empty question at index %d", i)
		}
		perTier[difficulty]++
		questions[i] = models.Question{
			Question:         q.Question,
			Difficulty:       difficulty,
			TimeLimitSeconds: models.TimeLimitForDifficulty(difficulty),
		}
	}
	for _, tier := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		if perTier[tier] != 2 {
			return nil, fmt.Errorf("expected 2 %s questions, got %d", tier, perTier[tier])
		}
	}

	return questions, nil
}

type evaluationPayload struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

// EvaluateAnswer scores a single answer. The score is always an integer in
// [0,100].
func (g *Gateway) EvaluateAnswer(ctx context.Context, question, answer string) (models.Evaluation, bool) {
	if g.provider == nil {
		metrics.FallbackSubstitutions.WithLabelValues("evaluate").Inc()
		return fallbackEvaluation(question, answer), true
	}

	eval, err := g.evaluateAnswer(ctx, question, answer)
	if err != nil {
		g.logger.Warn("answer evaluation failed, using fallback heuristic", zap.Error(err))
		metrics.FallbackSubstitutions.WithLabelValues("evaluate").Inc()
		return fallbackEvaluation(question, answer), true
	}
	return eval, false
}

func (g *Gateway) evaluateAnswer(ctx context.Context, question, answer string) (models.Evaluation, error) {
	promptAnswer := answer
	if strings.TrimSpace(promptAnswer) == "" {
		promptAnswer = "No answer"
	}

	prompt, err := g.prompts.BuildPrompt("evaluate", map[string]string{
		"Question": question,
		"Answer":   promptAnswer,
	})
	if err != nil {
		return models.Evaluation{}, err
	}

	raw, err := g.provider.GenerateContent(ctx, prompt)
	if err != nil {
		return models.Evaluation{}, err
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return models.Evaluation{}, fmt.Errorf("malformed evaluation response: %w", err)
	}
	if payload.Score == nil || strings.TrimSpace(payload.Feedback) == "" {
		return models.Evaluation{}, fmt.Errorf("incomplete evaluation response")
	}

	return models.Evaluation{
		Score:    clampScore(int(math.Round(*payload.Score))),
		Feedback: payload.Feedback,
	}, nil
}

// GenerateSummary produces the final written evaluation from an immutable
// session snapshot.
func (g *Gateway) GenerateSummary(ctx context.Context, snap *models.Session) (string, bool) {
	if g.provider == nil {
		metrics.FallbackSubstitutions.WithLabelValues("summary").Inc()
		return fallbackSummary(snap), true
	}

	summary, err := g.generateSummary(ctx, snap)
	if err != nil {
		g.logger.Warn("summary generation failed, using fallback report", zap.Error(err))
		metrics.FallbackSubstitutions.WithLabelValues("summary").Inc()
		return fallbackSummary(snap), true
	}
	return summary, false
}

func (g *Gateway) generateSummary(ctx context.Context, snap *models.Session) (string, error) {
	name := snap.Details.Name
	if name == "" {
		name = "The candidate"
	}

	var transcript strings.Builder
	for i, q := range snap.Questions {
		answer := snap.Answers[i]
		if strings.TrimSpace(answer) == "" {
			answer = "No answer"
		}
		score := 0
		if snap.Evaluations[i] != nil {
			score = snap.Evaluations[i].Score
		}
		fmt.Fprintf(&transcript, "Q%d (%s): %s\nAnswer: %s\nScore: %d/100\n\n",
			i+1, q.Difficulty, q.Question, answer, score)
	}

	prompt, err := g.prompts.BuildPrompt("summary", map[string]string{
		"CandidateName": name,
		"FinalScore":    fmt.Sprintf("%d", snap.FinalScore),
		"Transcript":    transcript.String(),
	})
	if err != nil {
		return "", err
	}

	summary, err := g.provider.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(summary) == "" {
		return "", fmt.Errorf("empty summary response")
	}
	return summary, nil
}

// stripCodeFence removes a surrounding markdown code fence, which models
// sometimes wrap JSON responses in despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
