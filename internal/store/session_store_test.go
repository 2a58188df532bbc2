package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intervue/internal/models"
)

// setupTestRedis creates a miniredis instance and a redis client for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestSessionStoreRoundTrip(t *testing.T) {
	_, rdb := setupTestRedis(t)
	s := NewRedisSessionStore(rdb)
	ctx := context.Background()

	sess := models.NewSession()
	require.NoError(t, sess.Transition(models.StatusParsing))
	require.NoError(t, sess.Transition(models.StatusParsingComplete))
	require.NoError(t, sess.Transition(models.StatusConfirmingDetails))
	sess.Details = models.CandidateDetails{Name: "Jane Doe", Email: "jane@example.com"}

	require.NoError(t, s.Save(ctx, "c1", sess))

	loaded, err := s.Load(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.StatusConfirmingDetails, loaded.Status)
	assert.Equal(t, "Jane Doe", loaded.Details.Name)
}

func TestSessionStoreMidInterviewRoundTrip(t *testing.T) {
	_, rdb := setupTestRedis(t)
	s := NewRedisSessionStore(rdb)
	ctx := context.Background()

	sess := models.NewSession()
	questions := []models.Question{
		{Question: "q1", Difficulty: models.DifficultyEasy, TimeLimitSeconds: models.TimeLimitEasy},
		{Question: "q2", Difficulty: models.DifficultyHard, TimeLimitSeconds: models.TimeLimitHard},
	}
	require.NoError(t, sess.AssignQuestions(questions))
	sess.Status = models.StatusInProgress
	require.NoError(t, sess.RecordAnswer(0, "my answer", models.Evaluation{Score: 70, Feedback: "solid"}))

	require.NoError(t, s.Save(ctx, "c1", sess))

	loaded, err := s.Load(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.CurrentIndex)
	assert.Equal(t, "my answer", loaded.Answers[0])
	require.NotNil(t, loaded.Evaluations[0])
	assert.Equal(t, 70, loaded.Evaluations[0].Score)
	assert.Nil(t, loaded.Evaluations[1])
	assert.Equal(t, models.TimeLimitHard, loaded.Questions[1].TimeLimitSeconds)
}

func TestSessionStoreLoadMissing(t *testing.T) {
	_, rdb := setupTestRedis(t)
	s := NewRedisSessionStore(rdb)

	loaded, err := s.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionStoreReset(t *testing.T) {
	_, rdb := setupTestRedis(t)
	s := NewRedisSessionStore(rdb)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "c1", models.NewSession()))
	require.NoError(t, s.Reset(ctx, "c1"))

	loaded, err := s.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// resetting an absent session is fine
	require.NoError(t, s.Reset(ctx, "c1"))
}

func TestSessionStoreOverwrite(t *testing.T) {
	_, rdb := setupTestRedis(t)
	s := NewRedisSessionStore(rdb)
	ctx := context.Background()

	first := models.NewSession()
	require.NoError(t, s.Save(ctx, "c1", first))

	second := models.NewSession()
	second.Status = models.StatusReady
	require.NoError(t, s.Save(ctx, "c1", second))

	loaded, err := s.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, loaded.Status)
}
