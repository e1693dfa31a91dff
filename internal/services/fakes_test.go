package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/repositories"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeInterviewer struct {
	NextTurnFunc func(ctx context.Context, history []models.Message, cfg models.InterviewConfig, remaining *float64) models.InterviewerResponse
}

func (f *fakeInterviewer) Fallback(history []models.Message, _ models.InterviewConfig, _ *float64) models.InterviewerResponse {
	return models.InterviewerResponse{
		Content:      "Fallback question",
		ResponseType: models.ResponseQuestion,
		Metadata:     models.InterviewerMetadata{QuestionIndex: models.QuestionsAsked(history) + 1, Degraded: true},
	}
}

func (f *fakeInterviewer) NextTurn(ctx context.Context, history []models.Message, cfg models.InterviewConfig, remaining *float64) models.InterviewerResponse {
	if f.NextTurnFunc != nil {
		return f.NextTurnFunc(ctx, history, cfg, remaining)
	}
	return models.InterviewerResponse{
		Content:      "Next question?",
		ResponseType: models.ResponseQuestion,
		Metadata:     models.InterviewerMetadata{QuestionIndex: models.QuestionsAsked(history) + 1},
	}
}

type fakeCoach struct {
	EvaluateFunc  func(ctx context.Context, question, answer string, cfg models.InterviewConfig) models.CoachAnswerFeedback
	SummarizeFunc func(ctx context.Context, history []models.Message, cfg models.InterviewConfig) *models.FinalCoachingSummary

	mu         sync.Mutex
	evaluated  []string
	summarized int
}

func (f *fakeCoach) EvaluateAnswer(ctx context.Context, question, answer string, cfg models.InterviewConfig) models.CoachAnswerFeedback {
	f.mu.Lock()
	f.evaluated = append(f.evaluated, question)
	f.mu.Unlock()
	if f.EvaluateFunc != nil {
		return f.EvaluateFunc(ctx, question, answer, cfg)
	}
	return models.CoachAnswerFeedback{Conciseness: "ok", Completeness: "ok", TechnicalDepth: "ok", ContextualAlignment: "ok", Fixes: "none", STARSupport: "ok"}
}

func (f *fakeCoach) Summarize(ctx context.Context, history []models.Message, cfg models.InterviewConfig) *models.FinalCoachingSummary {
	f.mu.Lock()
	f.summarized++
	f.mu.Unlock()
	if f.SummarizeFunc != nil {
		return f.SummarizeFunc(ctx, history, cfg)
	}
	return &models.FinalCoachingSummary{
		Patterns:             "Answers drift.",
		Strengths:            "Clear voice.",
		Weaknesses:           "Few numbers.",
		ImprovementAreas:     "Quantify impact.",
		ResourceSearchTopics: []string{"STAR method"},
	}
}

func (f *fakeCoach) Evaluated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.evaluated...)
}

func (f *fakeCoach) Summarized() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summarized
}

type fakeResumes struct {
	cv  string
	err error
}

func (f fakeResumes) ResumeFor(context.Context, string) (string, error) { return f.cv, f.err }

type fakePublisher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakePublisher) PublishEnded(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, sessionID)
	return f.err
}

func (f *fakePublisher) Published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

// failingTurnStore rejects every turn that would change state.
type failingTurnStore struct {
	repositories.SessionRepository
}

func (f failingTurnStore) AppendTurn(ctx context.Context, sessionID string, at time.Time, from, to models.SessionState, msgs ...models.Message) error {
	if from != to {
		return errors.New("write conflict")
	}
	return f.SessionRepository.AppendTurn(ctx, sessionID, at, from, to, msgs...)
}
