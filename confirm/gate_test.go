package confirm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/qamatch/ai"
	"github.com/poiesic/qamatch/ai/mock"
	"github.com/poiesic/qamatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(n int) []core.SearchResult {
	out := make([]core.SearchResult, n)
	for i := range out {
		out[i] = core.SearchResult{
			Rank:       i + 1,
			Row:        i,
			Similarity: 1 / float64(i+2),
			Distance:   float64(i + 1),
			Question:   fmt.Sprintf("question %d", i),
			Answer:     fmt.Sprintf("answer %d", i),
		}
	}
	return out
}

func TestNewGate(t *testing.T) {
	_, err := NewGate(nil)
	assert.ErrorIs(t, err, ErrOracleRequired)

	g, err := NewGate(mock.NewMockOracle())
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxCandidates, g.MaxCandidates())
	assert.Equal(t, DefaultThreshold, g.Threshold())

	g, err = NewGate(mock.NewMockOracle(), WithMaxCandidates(3), WithThreshold(90))
	require.NoError(t, err)
	assert.Equal(t, 3, g.MaxCandidates())
	assert.Equal(t, 90, g.Threshold())

	g, err = NewGate(mock.NewMockOracle(), WithMaxCandidates(0), WithThreshold(101))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxCandidates, g.MaxCandidates())
	assert.Equal(t, DefaultThreshold, g.Threshold())
}

func TestGate_ClosureScenario(t *testing.T) {
	oracle := mock.NewMockOracle().WithReply("SIMILAR|A function bundled with its lexical scope.")
	g, err := NewGate(oracle)
	require.NoError(t, err)

	cands := []core.SearchResult{{
		Rank:       1,
		Row:        0,
		Similarity: 0.5,
		Distance:   1,
		Question:   "What is a closure?",
		Answer:     "A function bundled with its lexical scope.",
	}}
	decision, err := g.Decide(context.Background(), "closure", cands)
	require.NoError(t, err)
	assert.Equal(t, Decision{Verdict: Confirmed, Answer: "A function bundled with its lexical scope."}, decision)
	assert.Equal(t, 1, oracle.CallCount())
}

func TestGate_NotSimilarIgnoresScores(t *testing.T) {
	oracle := mock.NewMockOracle().WithReply("NOT_SIMILAR")
	g, err := NewGate(oracle)
	require.NoError(t, err)

	cands := candidates(3)
	cands[0].Similarity = 1
	cands[0].Distance = 0
	decision, err := g.Decide(context.Background(), "question 0", cands)
	require.NoError(t, err)
	assert.Equal(t, Reject, decision)
}

func TestGate_NoCandidatesSkipsOracle(t *testing.T) {
	oracle := mock.NewMockOracle().WithReply("SIMILAR|x")
	g, err := NewGate(oracle)
	require.NoError(t, err)

	decision, err := g.Decide(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, Reject, decision)
	assert.Zero(t, oracle.CallCount())
}

func TestGate_OracleFailure(t *testing.T) {
	cause := errors.New("connection refused")
	oracle := mock.NewMockOracle()
	oracle.CompleteFunc = func(context.Context, []ai.Message) (string, error) {
		return "", cause
	}
	g, err := NewGate(oracle)
	require.NoError(t, err)

	decision, err := g.Decide(context.Background(), "q", candidates(1))
	assert.ErrorIs(t, err, ErrOracleFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Reject, decision)
}

func TestGate_MalformedRepliesReject(t *testing.T) {
	replies := []string{"", "SIMILAR|a NOT_SIMILAR", "maybe", "SIMILAR|"}
	for _, reply := range replies {
		t.Run(fmt.Sprintf("%q", reply), func(t *testing.T) {
			g, err := NewGate(mock.NewMockOracle().WithReply(reply))
			require.NoError(t, err)
			decision, err := g.Decide(context.Background(), "q", candidates(2))
			require.NoError(t, err)
			assert.Equal(t, Rejected, decision.Verdict)
		})
	}
}

func TestGate_Prompt(t *testing.T) {
	oracle := mock.NewMockOracle()
	g, err := NewGate(oracle, WithMaxCandidates(2), WithThreshold(75), WithSystemPrompt("judge"))
	require.NoError(t, err)

	_, err = g.Decide(context.Background(), "what is a goroutine", candidates(4))
	require.NoError(t, err)

	msgs := oracle.LastMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Equal(t, "judge", msgs[0].Content)
	assert.Equal(t, ai.RoleUser, msgs[1].Role)

	user := msgs[1].Content
	assert.Contains(t, user, "User question: what is a goroutine")
	assert.Contains(t, user, "75%")
	assert.Contains(t, user, "1. Question: question 0\n   Answer: answer 0\n   Similarity: 0.5000")
	assert.Contains(t, user, "2. Question: question 1")
	assert.NotContains(t, user, "question 2")
	assert.Contains(t, user, MarkerSimilar)
	assert.Contains(t, user, MarkerNotSimilar)
	assert.Equal(t, 1, strings.Count(user, "Similarity: "+"0.3333"))
}

func TestGate_DefaultPromptShowsFive(t *testing.T) {
	g, err := NewGate(mock.NewMockOracle())
	require.NoError(t, err)

	msgs := g.Messages("q", candidates(7))
	assert.Equal(t, DefaultSystemPrompt, msgs[0].Content)
	assert.Contains(t, msgs[1].Content, "5. Question: question 4")
	assert.NotContains(t, msgs[1].Content, "6. Question")
}
