// Package coach grades individual answers and writes the end-of-interview
// coaching summary. Neither operation returns an error: failures come back
// as data in the Error field.
package coach

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/llm"
)

const (
	MaxSearchTopics = 5

	msgFeedbackUnavailable = "Sorry, feedback for this answer could not be generated."
	msgSummaryUnavailable  = "Sorry, the coaching summary could not be generated."
	msgNothingToSummarize  = "The interview ended before any answers were given."
)

var feedbackSchema = &llm.Schema{
	Name: "AnswerFeedback",
	Fields: []llm.Field{
		{Name: "conciseness", Required: true, Description: "is the answer focused, or does it ramble"},
		{Name: "completeness", Required: true, Description: "did it answer every part of the question"},
		{Name: "technical_depth", Required: true, Description: "accuracy and depth of technical content"},
		{Name: "contextual_alignment", Required: true, Description: "fit with the role, company and job description"},
		{Name: "fixes", Required: true, Description: "concrete improvements, ideally a better phrasing"},
		{Name: "star_support", Required: true, Description: "how well it follows Situation, Task, Action, Result"},
	},
}

var summarySchema = &llm.Schema{
	Name: "CoachingSummary",
	Fields: []llm.Field{
		{Name: "patterns", Required: true, Description: "recurring tendencies across answers"},
		{Name: "strengths", Required: true},
		{Name: "weaknesses", Required: true},
		{Name: "improvement_areas", Required: true, Description: "what to practise next, most important first"},
		{Name: "resource_search_topics", Type: llm.TypeStringArray, Required: true, Description: "up to 5 short web search queries for learning material"},
	},
}

type summaryOutput struct {
	Patterns             string   `json:"patterns"`
	Strengths            string   `json:"strengths"`
	Weaknesses           string   `json:"weaknesses"`
	ImprovementAreas     string   `json:"improvement_areas"`
	ResourceSearchTopics []string `json:"resource_search_topics"`
}

type Agent struct {
	llm    llm.Provider
	logger *logrus.Logger
}

func New(p llm.Provider, l *logrus.Logger) *Agent {
	if l == nil {
		l = logger.Discard()
	}
	return &Agent{llm: p, logger: l}
}

// EvaluateAnswer grades answer against question. On failure the result has
// Error set and every dimension empty.
func (a *Agent) EvaluateAnswer(ctx context.Context, question, answer string, cfg models.InterviewConfig) models.CoachAnswerFeedback {
	log := a.logger.WithField("agent", "coach")
	start := time.Now()

	raw, err := a.llm.Generate(ctx, buildFeedbackPrompt(question, answer, cfg.WithDefaults()), feedbackSchema)
	if err != nil {
		log.WithError(err).WithField("elapsed_ms", time.Since(start).Milliseconds()).Warn("coach feedback llm call failed")
		return models.FeedbackError(msgFeedbackUnavailable)
	}

	var fb models.CoachAnswerFeedback
	if err := llm.DecodeJSON(raw, &fb); err != nil {
		log.WithError(err).Warn("coach feedback output unusable")
		return models.FeedbackError(msgFeedbackUnavailable)
	}
	fb = trimFeedback(fb)
	if isEmptyFeedback(fb) {
		log.Warn("coach feedback output empty")
		return models.FeedbackError(msgFeedbackUnavailable)
	}
	fb.Error = ""

	log.WithField("elapsed_ms", time.Since(start).Milliseconds()).Debug("coach feedback generated")
	return fb
}

// Summarize aggregates the whole conversation. It always returns a summary;
// on failure only Error is set.
func (a *Agent) Summarize(ctx context.Context, history []models.Message, cfg models.InterviewConfig) *models.FinalCoachingSummary {
	log := a.logger.WithField("agent", "coach")

	answers := 0
	for _, m := range history {
		if m.Role == models.RoleCandidate {
			answers++
		}
	}
	if answers == 0 {
		return models.SummaryError(msgNothingToSummarize)
	}

	start := time.Now()
	raw, err := a.llm.Generate(ctx, buildSummaryPrompt(history, cfg.WithDefaults()), summarySchema)
	if err != nil {
		log.WithError(err).WithField("elapsed_ms", time.Since(start).Milliseconds()).Warn("coach summary llm call failed")
		return models.SummaryError(msgSummaryUnavailable)
	}

	var out summaryOutput
	if err := llm.DecodeJSON(raw, &out); err != nil {
		log.WithError(err).Warn("coach summary output unusable")
		return models.SummaryError(msgSummaryUnavailable)
	}

	s := &models.FinalCoachingSummary{
		Patterns:             strings.TrimSpace(out.Patterns),
		Strengths:            strings.TrimSpace(out.Strengths),
		Weaknesses:           strings.TrimSpace(out.Weaknesses),
		ImprovementAreas:     strings.TrimSpace(out.ImprovementAreas),
		ResourceSearchTopics: NormalizeTopics(out.ResourceSearchTopics),
	}
	if s.Patterns == "" && s.Strengths == "" && s.Weaknesses == "" && s.ImprovementAreas == "" {
		log.Warn("coach summary output empty")
		return models.SummaryError(msgSummaryUnavailable)
	}

	log.WithFields(logrus.Fields{
		"topics":     len(s.ResourceSearchTopics),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("coach summary generated")
	return s
}

// NormalizeTopics trims, drops blanks and case-insensitive duplicates, and
// caps the list at MaxSearchTopics.
func NormalizeTopics(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == MaxSearchTopics {
			break
		}
	}
	return out
}

func trimFeedback(fb models.CoachAnswerFeedback) models.CoachAnswerFeedback {
	fb.Conciseness = strings.TrimSpace(fb.Conciseness)
	fb.Completeness = strings.TrimSpace(fb.Completeness)
	fb.TechnicalDepth = strings.TrimSpace(fb.TechnicalDepth)
	fb.ContextualAlignment = strings.TrimSpace(fb.ContextualAlignment)
	fb.Fixes = strings.TrimSpace(fb.Fixes)
	fb.STARSupport = strings.TrimSpace(fb.STARSupport)
	return fb
}

func isEmptyFeedback(fb models.CoachAnswerFeedback) bool {
	return fb.Conciseness == "" && fb.Completeness == "" && fb.TechnicalDepth == "" &&
		fb.ContextualAlignment == "" && fb.Fixes == "" && fb.STARSupport == ""
}
