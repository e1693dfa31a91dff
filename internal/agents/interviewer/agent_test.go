package interviewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/llm/llmtest"
)

func testConfig() models.InterviewConfig {
	return models.InterviewConfig{
		JobRole:    "Backend Engineer",
		Company:    "Acme",
		Style:      models.StyleTechnical,
		Difficulty: models.DifficultyHard,
	}
}

func historyWithQuestions(n int) []models.Message {
	var h []models.Message
	for i := 1; i <= n; i++ {
		h = append(h,
			models.Message{Role: models.RoleInterviewer, Content: "question", ResponseType: models.ResponseQuestion, QuestionIndex: i},
			models.Message{Role: models.RoleCandidate, Content: "answer"},
		)
	}
	return h
}

func minutes(v float64) *float64 { return &v }

func TestNextTurn_Question(t *testing.T) {
	p := llmtest.Returning(`{"content":"How would you shard this table?","response_type":"question","rationale":"check scaling"}`)
	a := New(p, nil, nil)

	resp := a.NextTurn(context.Background(), historyWithQuestions(2), testConfig(), nil)

	assert.Equal(t, models.ResponseQuestion, resp.ResponseType)
	assert.Equal(t, "How would you shard this table?", resp.Content)
	assert.Equal(t, 3, resp.Metadata.QuestionIndex)
	assert.Equal(t, "check scaling", resp.Metadata.Rationale)
	assert.False(t, resp.Metadata.Degraded)

	prompts := p.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Technical deep dive")
	assert.Contains(t, prompts[0], "senior-level")
	assert.Contains(t, prompts[0], "Questions asked so far: 2 of at most 8")
}

func TestNextTurn_TimeBudgetForcesClosing(t *testing.T) {
	p := llmtest.Returning(`{"content":"One more: tell me about caching.","response_type":"question"}`)
	a := New(p, nil, nil)

	resp := a.NextTurn(context.Background(), historyWithQuestions(1), testConfig(), minutes(-0.5))

	assert.Equal(t, models.ResponseClosingStatement, resp.ResponseType)
	assert.Equal(t, ReasonTimeBudget, resp.Metadata.ClosingReason)
	assert.Equal(t, 1, resp.Metadata.QuestionIndex)
	// model answered with a question, so the bank's closing line is used
	assert.Contains(t, resp.Content, "end of our scheduled time")
	assert.Contains(t, p.Prompts()[0], "time budget is used up")
}

func TestNextTurn_ZeroRemainingIsExpired(t *testing.T) {
	p := llmtest.Returning(`{"content":"Thanks for your time today.","response_type":"closing_statement"}`)
	a := New(p, nil, nil)

	resp := a.NextTurn(context.Background(), historyWithQuestions(1), testConfig(), minutes(0))

	assert.Equal(t, models.ResponseClosingStatement, resp.ResponseType)
	assert.Equal(t, "Thanks for your time today.", resp.Content)
}

func TestNextTurn_QuestionCapForcesClosing(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQuestions = 2
	a := New(llmtest.Returning(`{"content":"Thanks, we're done.","response_type":"closing_statement"}`), nil, nil)

	resp := a.NextTurn(context.Background(), historyWithQuestions(2), cfg, nil)

	assert.Equal(t, models.ResponseClosingStatement, resp.ResponseType)
	assert.Equal(t, ReasonQuestionCap, resp.Metadata.ClosingReason)
	assert.Equal(t, "Thanks, we're done.", resp.Content)
}

func TestNextTurn_AgentDecidesToClose(t *testing.T) {
	a := New(llmtest.Returning(`{"content":"I have what I need. Thank you.","response_type":"closing_statement"}`), nil, nil)

	resp := a.NextTurn(context.Background(), historyWithQuestions(3), testConfig(), minutes(10))

	assert.True(t, resp.IsClosing())
	assert.Equal(t, ReasonAgent, resp.Metadata.ClosingReason)
}

func TestNextTurn_LLMFailureDegradesToBankQuestion(t *testing.T) {
	a := New(llmtest.Failing(errors.New("quota exceeded")), nil, nil)

	resp := a.NextTurn(context.Background(), historyWithQuestions(1), testConfig(), nil)

	assert.Equal(t, models.ResponseQuestion, resp.ResponseType)
	assert.True(t, resp.Metadata.Degraded)
	assert.Equal(t, 2, resp.Metadata.QuestionIndex)
	assert.Equal(t, MustDefaultBank().Question(testConfig(), 2), resp.Content)
}

func TestNextTurn_LLMFailureWhileExpiredDegradesToClosing(t *testing.T) {
	a := New(llmtest.Failing(errors.New("boom")), nil, nil)

	resp := a.NextTurn(context.Background(), historyWithQuestions(4), testConfig(), minutes(-3))

	assert.Equal(t, models.ResponseClosingStatement, resp.ResponseType)
	assert.True(t, resp.Metadata.Degraded)
	assert.Equal(t, ReasonTimeBudget, resp.Metadata.ClosingReason)
}

func TestNextTurn_GarbageOutputDegrades(t *testing.T) {
	for _, out := range []string{"I am not JSON", `{"content":"   ","response_type":"question"}`} {
		a := New(llmtest.Returning(out), nil, nil)
		resp := a.NextTurn(context.Background(), nil, testConfig(), nil)

		assert.True(t, resp.Metadata.Degraded, out)
		assert.Equal(t, 1, resp.Metadata.QuestionIndex)
		assert.NotEmpty(t, resp.Content)
	}
}

func TestNextTurn_TimeoutDegrades(t *testing.T) {
	a := New(llmtest.Blocking(), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	resp := a.NextTurn(ctx, nil, testConfig(), nil)
	assert.True(t, resp.Metadata.Degraded)
	assert.Equal(t, models.ResponseQuestion, resp.ResponseType)
}

func TestNextTurn_QuestionIndexIsMonotonic(t *testing.T) {
	a := New(llmtest.Failing(errors.New("down")), nil, nil)

	var history []models.Message
	for want := 1; want <= 4; want++ {
		resp := a.NextTurn(context.Background(), history, testConfig(), nil)
		require.Equal(t, want, resp.Metadata.QuestionIndex)
		history = append(history,
			models.Message{Role: models.RoleInterviewer, Content: resp.Content, ResponseType: resp.ResponseType, QuestionIndex: resp.Metadata.QuestionIndex},
			models.Message{Role: models.RoleCandidate, Content: "answer"},
		)
	}
}

func TestBuildTurnPrompt_OmitsCoachMessages(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleInterviewer, Content: "Tell me about yourself", ResponseType: models.ResponseQuestion},
		{Role: models.RoleCandidate, Content: "I build APIs"},
		{Role: models.RoleCoach, Content: "SECRET COACH NOTE"},
	}
	prompt := buildTurnPrompt(history, testConfig().WithDefaults(), minutes(4.3), 1, "")

	assert.NotContains(t, prompt, "SECRET COACH NOTE")
	assert.Contains(t, prompt, "Candidate: I build APIs")
	assert.Contains(t, prompt, "Time remaining: 4.3 minutes")
}

func TestBank_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
questions:
  FORMAL:
    - "Why {role} at {company}?"
closing:
  default: "Bye."
`), 0o600))

	bank, err := LoadBank(path)
	require.NoError(t, err)

	cfg := models.InterviewConfig{JobRole: "SRE", Style: models.StyleCasual}
	assert.Equal(t, "Why SRE at our company?", bank.Question(cfg, 7))
	assert.Equal(t, "Bye.", bank.Closing(cfg, ReasonTimeBudget))
}

func TestBank_RejectsIncompleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions: {}\n"), 0o600))

	_, err := LoadBank(path)
	assert.Error(t, err)

	_, err = LoadBank(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultBank_CoversEveryStyle(t *testing.T) {
	bank := MustDefaultBank()
	for _, style := range []models.InterviewStyle{models.StyleFormal, models.StyleCasual, models.StyleAggressive, models.StyleTechnical} {
		q := bank.Question(models.InterviewConfig{JobRole: "PM", Style: style}, 1)
		assert.NotEmpty(t, q, style)
		assert.False(t, strings.Contains(q, "{role}"), style)
	}
}

func TestFallback_MatchesDegradedTurn(t *testing.T) {
	a := New(llmtest.Returning(`{"content":"unused","response_type":"question"}`), nil, nil)

	q := a.Fallback(historyWithQuestions(2), testConfig(), nil)
	assert.Equal(t, models.ResponseQuestion, q.ResponseType)
	assert.True(t, q.Metadata.Degraded)
	assert.Equal(t, 3, q.Metadata.QuestionIndex)
	assert.Equal(t, MustDefaultBank().Question(testConfig(), 3), q.Content)

	closing := a.Fallback(historyWithQuestions(2), testConfig(), minutes(-1))
	assert.True(t, closing.IsClosing())
	assert.Equal(t, ReasonTimeBudget, closing.Metadata.ClosingReason)
	assert.Equal(t, 2, closing.Metadata.QuestionIndex)

	cfg := testConfig()
	cfg.MaxQuestions = 2
	capped := a.Fallback(historyWithQuestions(2), cfg, nil)
	assert.Equal(t, ReasonQuestionCap, capped.Metadata.ClosingReason)
}
