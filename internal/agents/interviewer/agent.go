// Package interviewer produces the interviewer's next turn from explicit
// context. The agent holds no session state.
package interviewer

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/llm"
	"github.com/yoockh/yoointerview/internal/timing"
)

const (
	ReasonTimeBudget  = "time_budget"
	ReasonQuestionCap = "question_cap"
	ReasonAgent       = "agent"
)

var turnSchema = &llm.Schema{
	Name: "InterviewerTurn",
	Fields: []llm.Field{
		{Name: "content", Type: llm.TypeString, Required: true, Description: "exactly what the interviewer says next"},
		{Name: "response_type", Type: llm.TypeString, Required: true, Enum: []string{string(models.ResponseQuestion), string(models.ResponseClosingStatement)}},
		{Name: "rationale", Type: llm.TypeString, Description: "one sentence on why this question, not shown to the candidate"},
	},
}

type turnOutput struct {
	Content      string `json:"content"`
	ResponseType string `json:"response_type"`
	Rationale    string `json:"rationale"`
}

type Agent struct {
	llm    llm.Provider
	bank   *Bank
	logger *logrus.Logger
}

func New(p llm.Provider, bank *Bank, l *logrus.Logger) *Agent {
	if bank == nil {
		bank = MustDefaultBank()
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Agent{llm: p, bank: bank, logger: l}
}

// NextTurn never fails. When the model errors, times out or returns garbage
// the turn comes from the question bank and Metadata.Degraded is set.
func (a *Agent) NextTurn(ctx context.Context, history []models.Message, cfg models.InterviewConfig, remaining *float64) models.InterviewerResponse {
	cfg = cfg.WithDefaults()
	asked, forced := progress(history, cfg, remaining)

	log := a.logger.WithFields(logrus.Fields{
		"agent":          "interviewer",
		"questions_done": asked,
		"forced_close":   forced,
	})

	start := time.Now()
	raw, err := a.llm.Generate(ctx, buildTurnPrompt(history, cfg, remaining, asked, forced), turnSchema)
	if err != nil {
		log.WithError(err).WithField("elapsed_ms", time.Since(start).Milliseconds()).Warn("interviewer llm call failed, using fallback")
		return a.fallback(cfg, asked, forced)
	}

	var out turnOutput
	if err := llm.DecodeJSON(raw, &out); err != nil || strings.TrimSpace(out.Content) == "" {
		log.WithError(err).Warn("interviewer llm output unusable, using fallback")
		return a.fallback(cfg, asked, forced)
	}

	resp := models.InterviewerResponse{
		Content:      strings.TrimSpace(out.Content),
		ResponseType: models.ResponseQuestion,
		Metadata: models.InterviewerMetadata{
			Rationale: strings.TrimSpace(out.Rationale),
		},
	}

	switch {
	case forced != "":
		resp.ResponseType = models.ResponseClosingStatement
		resp.Metadata.ClosingReason = forced
		if models.ResponseType(out.ResponseType) != models.ResponseClosingStatement {
			// the model ignored the instruction; a question cannot close the interview
			resp.Content = a.bank.Closing(cfg, forced)
		}
	case models.ResponseType(out.ResponseType) == models.ResponseClosingStatement:
		resp.ResponseType = models.ResponseClosingStatement
		resp.Metadata.ClosingReason = ReasonAgent
	}

	if resp.IsClosing() {
		resp.Metadata.QuestionIndex = asked
	} else {
		resp.Metadata.QuestionIndex = asked + 1
	}

	log.WithFields(logrus.Fields{
		"response_type": resp.ResponseType,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	}).Debug("interviewer turn generated")
	return resp
}

// Fallback is the degraded turn NextTurn would return if the model failed. It
// does no I/O.
func (a *Agent) Fallback(history []models.Message, cfg models.InterviewConfig, remaining *float64) models.InterviewerResponse {
	cfg = cfg.WithDefaults()
	asked, forced := progress(history, cfg, remaining)
	return a.fallback(cfg, asked, forced)
}

// progress counts the questions asked and names the reason the next turn
// must close, if any.
func progress(history []models.Message, cfg models.InterviewConfig, remaining *float64) (int, string) {
	asked := models.QuestionsAsked(history)
	switch {
	case timing.Expired(remaining):
		return asked, ReasonTimeBudget
	case asked >= cfg.MaxQuestions:
		return asked, ReasonQuestionCap
	}
	return asked, ""
}

func (a *Agent) fallback(cfg models.InterviewConfig, asked int, forced string) models.InterviewerResponse {
	if forced != "" {
		return models.InterviewerResponse{
			Content:      a.bank.Closing(cfg, forced),
			ResponseType: models.ResponseClosingStatement,
			Metadata: models.InterviewerMetadata{
				QuestionIndex: asked,
				Degraded:      true,
				ClosingReason: forced,
			},
		}
	}
	return models.InterviewerResponse{
		Content:      a.bank.Question(cfg, asked+1),
		ResponseType: models.ResponseQuestion,
		Metadata: models.InterviewerMetadata{
			QuestionIndex: asked + 1,
			Degraded:      true,
		},
	}
}
