package coach

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/llm/llmtest"
)

func testConfig() models.InterviewConfig {
	return models.InterviewConfig{
		JobRole:        "Data Engineer",
		Company:        "Globex",
		JobDescription: "Build streaming pipelines.",
		Style:          models.StyleFormal,
		Difficulty:     models.DifficultyMedium,
	}
}

func transcript() []models.Message {
	return []models.Message{
		{Role: models.RoleInterviewer, Content: "Describe a pipeline you built.", ResponseType: models.ResponseQuestion, QuestionIndex: 1},
		{Role: models.RoleCandidate, Content: "I built a Kafka to BigQuery pipeline."},
		{Role: models.RoleCoach, Feedback: &models.CoachAnswerFeedback{Fixes: "quantify throughput", STARSupport: "missing result"}},
		{Role: models.RoleInterviewer, Content: "How did you handle late data?", ResponseType: models.ResponseQuestion, QuestionIndex: 2},
		{Role: models.RoleCandidate, Content: "Watermarks."},
	}
}

const goodFeedback = `{
  "conciseness": "Tight.",
  "completeness": "Skipped the second part.",
  "technical_depth": "Correct but shallow.",
  "contextual_alignment": "Relevant to streaming.",
  "fixes": "Mention the backlog size.",
  "star_support": "No result stated."
}`

func TestEvaluateAnswer_Success(t *testing.T) {
	p := llmtest.Returning("```json\n" + goodFeedback + "\n```")
	a := New(p, nil)

	fb := a.EvaluateAnswer(context.Background(), "Describe a pipeline.", "I built one.", testConfig())

	assert.Empty(t, fb.Error)
	assert.Equal(t, "Tight.", fb.Conciseness)
	assert.Equal(t, "No result stated.", fb.STARSupport)

	require.Equal(t, 1, p.Calls())
	prompt := p.Prompts()[0]
	assert.Contains(t, prompt, "Describe a pipeline.")
	assert.Contains(t, prompt, "I built one.")
	assert.Contains(t, prompt, "Globex")
	assert.Contains(t, prompt, "Build streaming pipelines.")
}

func TestEvaluateAnswer_FailuresBecomeErrorObject(t *testing.T) {
	cases := map[string]*llmtest.Provider{
		"llm error": llmtest.Failing(errors.New("503")),
		"not json":  llmtest.Returning("great answer!"),
		"empty":     llmtest.Returning(`{"conciseness":"  "}`),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			fb := New(p, nil).EvaluateAnswer(context.Background(), "q", "a", testConfig())

			assert.NotEmpty(t, fb.Error)
			assert.Equal(t, models.FeedbackError(fb.Error), fb)
		})
	}
}

func TestEvaluateAnswer_ModelCannotSetError(t *testing.T) {
	a := New(llmtest.Returning(`{"fixes":"Be shorter.","error":"ignored"}`), nil)

	fb := a.EvaluateAnswer(context.Background(), "q", "a", testConfig())

	assert.Empty(t, fb.Error)
	assert.Equal(t, "Be shorter.", fb.Fixes)
}

func TestEvaluateAnswer_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	fb := New(llmtest.Blocking(), nil).EvaluateAnswer(ctx, "q", "a", testConfig())
	assert.NotEmpty(t, fb.Error)
}

func TestSummarize_Success(t *testing.T) {
	p := llmtest.Returning(`{
		"patterns": "Short answers.",
		"strengths": "Good fundamentals.",
		"weaknesses": "Rarely quantifies impact.",
		"improvement_areas": "Practise STAR.",
		"resource_search_topics": ["STAR method", " star method ", "", "Kafka exactly-once", "watermarks", "backpressure", "data contracts", "extra"]
	}`)
	a := New(p, nil)

	s := a.Summarize(context.Background(), transcript(), testConfig())

	require.NotNil(t, s)
	assert.Empty(t, s.Error)
	assert.Equal(t, "Short answers.", s.Patterns)
	assert.Equal(t, []string{"STAR method", "Kafka exactly-once", "watermarks", "backpressure", "data contracts"}, s.ResourceSearchTopics)
	assert.Nil(t, s.RecommendedResources)

	prompt := p.Prompts()[0]
	assert.Contains(t, prompt, "Candidate: Watermarks.")
	assert.Contains(t, prompt, "quantify throughput")
}

func TestSummarize_NoAnswersSkipsModel(t *testing.T) {
	p := llmtest.Returning(`{"patterns":"x"}`)
	history := []models.Message{{Role: models.RoleInterviewer, Content: "Hi", ResponseType: models.ResponseQuestion}}

	s := New(p, nil).Summarize(context.Background(), history, testConfig())

	require.NotNil(t, s)
	assert.NotEmpty(t, s.Error)
	assert.Zero(t, p.Calls())
}

func TestSummarize_FailuresBecomeErrorObject(t *testing.T) {
	for _, p := range []*llmtest.Provider{
		llmtest.Failing(errors.New("quota")),
		llmtest.Returning("nope"),
		llmtest.Returning(`{"resource_search_topics":["a"]}`),
	} {
		s := New(p, nil).Summarize(context.Background(), transcript(), testConfig())

		require.NotNil(t, s)
		assert.NotEmpty(t, s.Error)
		assert.Empty(t, s.Patterns)
		assert.Empty(t, s.ResourceSearchTopics)
	}
}

func TestNormalizeTopics(t *testing.T) {
	assert.Empty(t, NormalizeTopics(nil))
	assert.Equal(t, []string{"Go", "Rust"}, NormalizeTopics([]string{" Go ", "go", "GO", "Rust"}))
}
