package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yoockh/yoointerview/internal/lock"
	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/search"
	"github.com/yoockh/yoointerview/internal/repositories"
	"github.com/yoockh/yoointerview/internal/timing"
	"github.com/yoockh/yoointerview/internal/utils"
)

const (
	DefaultAgentTimeout   = 15 * time.Second
	DefaultSummaryTimeout = 45 * time.Second
	DefaultEnrichTimeout  = 10 * time.Second

	msgFeedbackTimedOut = "Sorry, feedback for this answer took too long and was skipped."
	msgSummaryTimedOut  = "Sorry, the coaching summary took too long to generate."
)

// SessionService is the only component that mutates sessions.
type SessionService interface {
	Start(ctx context.Context, cfg models.InterviewConfig) (*models.Session, error)
	ProcessMessage(ctx context.Context, sessionID, text string) (*models.TurnResult, error)
	End(ctx context.Context, sessionID string) (*models.EndResult, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
}

// InterviewerAgent produces the next turn. Fallback builds the degraded turn
// used when NextTurn does not return within the agent timeout.
type InterviewerAgent interface {
	NextTurn(ctx context.Context, history []models.Message, cfg models.InterviewConfig, remaining *float64) models.InterviewerResponse
	Fallback(history []models.Message, cfg models.InterviewConfig, remaining *float64) models.InterviewerResponse
}

type CoachAgent interface {
	EvaluateAnswer(ctx context.Context, question, answer string, cfg models.InterviewConfig) models.CoachAnswerFeedback
	Summarize(ctx context.Context, history []models.Message, cfg models.InterviewConfig) *models.FinalCoachingSummary
}

// ResumeSource supplies stored CV text when a session starts without one.
type ResumeSource interface {
	ResumeFor(ctx context.Context, userID string) (string, error)
}

// ReportPublisher is told about every session that reached ENDED with a summary.
type ReportPublisher interface {
	PublishEnded(ctx context.Context, sessionID string) error
}

type SessionConfig struct {
	AgentTimeout   time.Duration
	SummaryTimeout time.Duration
	EnrichTimeout  time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.AgentTimeout <= 0 {
		c.AgentTimeout = DefaultAgentTimeout
	}
	if c.SummaryTimeout <= 0 {
		c.SummaryTimeout = DefaultSummaryTimeout
	}
	if c.EnrichTimeout <= 0 {
		c.EnrichTimeout = DefaultEnrichTimeout
	}
	return c
}

// SessionDeps wires a SessionService. Resources, Resumes and Reports are optional.
type SessionDeps struct {
	Sessions    repositories.SessionRepository
	Locker      lock.Locker
	Interviewer InterviewerAgent
	Coach       CoachAgent

	Resources search.Enricher
	Resumes   ResumeSource
	Reports   ReportPublisher

	Clock  timing.Clock
	Logger *logrus.Logger
	Config SessionConfig
}

type sessionService struct {
	sessions    repositories.SessionRepository
	locker      lock.Locker
	interviewer InterviewerAgent
	coach       CoachAgent
	resources   search.Enricher
	resumes     ResumeSource
	reports     ReportPublisher

	clock    timing.Clock
	logger   *logrus.Logger
	cfg      SessionConfig
	validate *validator.Validate
}

func NewSessionService(d SessionDeps) SessionService {
	if d.Locker == nil {
		d.Locker = lock.NewMemory()
	}
	if d.Clock == nil {
		d.Clock = timing.SystemClock
	}
	if d.Logger == nil {
		d.Logger = logger.Discard()
	}
	return &sessionService{
		sessions:    d.Sessions,
		locker:      d.Locker,
		interviewer: d.Interviewer,
		coach:       d.Coach,
		resources:   d.Resources,
		resumes:     d.Resumes,
		reports:     d.Reports,
		clock:       d.Clock,
		logger:      d.Logger,
		cfg:         d.Config.withDefaults(),
		validate:    newValidator(),
	}
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *sessionService) Start(ctx context.Context, cfg models.InterviewConfig) (*models.Session, error) {
	const op = "SessionService.Start"

	cfg.JobRole = strings.TrimSpace(cfg.JobRole)
	if cfg.JobRole == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job_role is required", utils.ErrConfiguration)
	}
	if err := s.validate.Struct(cfg); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, describeValidation(err), errors.Join(utils.ErrConfiguration, err))
	}
	cfg = cfg.WithDefaults()

	if cfg.Resume == "" && cfg.UserID != "" && s.resumes != nil {
		cv, err := s.resumes.ResumeFor(ctx, cfg.UserID)
		switch {
		case err == nil:
			cfg.Resume = cv
		case !errors.Is(err, utils.ErrNotFound):
			s.logger.WithError(err).WithField("user_id", cfg.UserID).Warn("resume lookup failed, starting without one")
		}
	}

	now := s.clock().UTC()
	sess := &models.Session{
		SessionID:      uuid.NewString(),
		Config:         cfg,
		Messages:       []models.Message{},
		State:          models.StateCreated,
		StartedAt:      now,
		LastActivityAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	if err := s.sessions.TransitionState(ctx, sess.SessionID, models.StateCreated, models.StateActive, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to activate session", err)
	}
	sess.State = models.StateActive

	s.logger.WithFields(logrus.Fields{
		"session_id": sess.SessionID,
		"job_role":   cfg.JobRole,
		"style":      cfg.Style,
		"time_based": cfg.UseTimeBasedInterview,
	}).Info("session started")
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	const op = "SessionService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	return s.load(ctx, op, sessionID)
}

func (s *sessionService) ProcessMessage(ctx context.Context, sessionID, text string) (*models.TurnResult, error) {
	const op = "SessionService.ProcessMessage"

	text = strings.TrimSpace(text)
	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "message text is required", nil)
	}

	sess, err := s.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != models.StateActive {
		return nil, notActive(op, sess.State)
	}

	release, err := s.acquire(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	// state may have moved while we were acquiring
	sess, err = s.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != models.StateActive {
		return nil, notActive(op, sess.State)
	}

	log := s.logger.WithField("session_id", sessionID)
	now := s.clock().UTC()

	history := sess.InterviewerHistory()
	question := models.LastInterviewerQuestion(history)

	candidate := models.Message{Role: models.RoleCandidate, Content: text, Timestamp: now}
	if err := s.sessions.AppendTurn(ctx, sessionID, now, models.StateActive, models.StateActive, candidate); err != nil {
		if errors.Is(err, utils.ErrStateConflict) {
			return nil, utils.E(utils.CodeFailedPrecondition, op, "session is no longer active", utils.ErrSessionNotActive)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to append candidate message", err)
	}
	history = append(history, candidate)
	remaining := timing.RemainingMinutes(sess.Config, sess.StartedAt, now)

	var (
		turn     models.InterviewerResponse
		feedback *models.CoachAnswerFeedback
	)

	// Each task absorbs its own failure and enforces its own deadline, so the
	// group never returns an error and one slow agent never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		actx, cancel := context.WithTimeout(ctx, s.cfg.AgentTimeout)
		defer cancel()
		var ok bool
		turn, ok = within(actx, func(c context.Context) models.InterviewerResponse {
			return s.interviewer.NextTurn(c, history, sess.Config, remaining)
		})
		if !ok {
			log.WithField("timeout", s.cfg.AgentTimeout).Warn("interviewer did not return in time, using fallback")
			turn = s.interviewer.Fallback(history, sess.Config, remaining)
		}
		return nil
	})
	if question != nil {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(ctx, s.cfg.AgentTimeout)
			defer cancel()
			fb, ok := within(actx, func(c context.Context) models.CoachAnswerFeedback {
				return s.coach.EvaluateAnswer(c, question.Content, text, sess.Config)
			})
			if !ok {
				log.WithField("timeout", s.cfg.AgentTimeout).Warn("coach did not return in time")
				fb = models.FeedbackError(msgFeedbackTimedOut)
			}
			feedback = &fb
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.WithError(err).Info("turn abandoned by caller")
		return nil, contextError(op, err)
	}

	at := s.clock().UTC()
	var out []models.Message
	if feedback != nil {
		out = append(out, models.Message{Role: models.RoleCoach, Timestamp: at, Feedback: feedback})
	}
	out = append(out, models.Message{
		Role:          models.RoleInterviewer,
		Content:       turn.Content,
		Timestamp:     at,
		ResponseType:  turn.ResponseType,
		QuestionIndex: turn.Metadata.QuestionIndex,
	})
	state := models.StateActive
	if turn.IsClosing() {
		state = models.StateEnding
	}
	// messages and the ENDING transition land in one write
	if err := s.sessions.AppendTurn(ctx, sessionID, at, models.StateActive, state, out...); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store turn", err)
	}

	fields := logrus.Fields{
		"response_type":  turn.ResponseType,
		"question_index": turn.Metadata.QuestionIndex,
		"degraded":       turn.Metadata.Degraded,
		"state":          state,
		"elapsed_ms":     at.Sub(now).Milliseconds(),
	}
	if feedback != nil && feedback.Error != "" {
		fields["coach_error"] = feedback.Error
	}
	log.WithFields(fields).Info("turn processed")

	return &models.TurnResult{
		SessionID:           sessionID,
		InterviewerResponse: turn,
		CoachFeedback:       feedback,
		State:               state,
	}, nil
}

func (s *sessionService) End(ctx context.Context, sessionID string) (*models.EndResult, error) {
	const op = "SessionService.End"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	sess, err := s.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State == models.StateCreated {
		return nil, notActive(op, sess.State)
	}
	if sess.State == models.StateEnded && sess.CoachingSummary != nil {
		return endResult(sess), nil
	}

	release, err := s.acquire(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err = s.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithField("session_id", sessionID)

	switch sess.State {
	case models.StateEnded:
		if sess.CoachingSummary != nil {
			return endResult(sess), nil
		}
		log.Warn("session ended without summary, computing it now")
	case models.StateActive, models.StateEnding:
		now := s.clock().UTC()
		if err := s.sessions.TransitionState(ctx, sessionID, sess.State, models.StateEnded, now); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to end session", err)
		}
		sess.State = models.StateEnded
		sess.EndedAt = &now
	default:
		return nil, notActive(op, sess.State)
	}

	summary := s.summarize(ctx, sess)
	if err := ctx.Err(); err != nil {
		// leave the summary unset; the next End computes it
		return nil, contextError(op, err)
	}

	if err := s.sessions.SetCoachingSummary(ctx, sessionID, summary); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store coaching summary", err)
	}
	sess.CoachingSummary = summary

	if s.reports != nil {
		if err := s.reports.PublishEnded(ctx, sessionID); err != nil {
			log.WithError(err).Warn("report publish failed")
		}
	}

	log.WithFields(logrus.Fields{
		"summary_error": summary.Error,
		"resources":     len(summary.RecommendedResources),
	}).Info("session ended")
	return endResult(sess), nil
}

// summarize never fails. Enrichment only runs on a successful summary with
// topics, and its failure leaves RecommendedResources nil.
func (s *sessionService) summarize(ctx context.Context, sess *models.Session) *models.FinalCoachingSummary {
	log := s.logger.WithField("session_id", sess.SessionID)

	sctx, cancel := context.WithTimeout(ctx, s.cfg.SummaryTimeout)
	summary, ok := within(sctx, func(c context.Context) *models.FinalCoachingSummary {
		return s.coach.Summarize(c, sess.Messages, sess.Config)
	})
	cancel()
	if !ok {
		log.WithField("timeout", s.cfg.SummaryTimeout).Warn("coach summary did not return in time")
		summary = models.SummaryError(msgSummaryTimedOut)
	}
	if summary == nil {
		summary = models.SummaryError("Sorry, the coaching summary could not be generated.")
	}

	if summary.Error != "" || len(summary.ResourceSearchTopics) == 0 || s.resources == nil {
		return summary
	}

	ectx, cancel := context.WithTimeout(ctx, s.cfg.EnrichTimeout)
	defer cancel()
	type enriched struct {
		res []models.Resource
		err error
	}
	out, ok := within(ectx, func(c context.Context) enriched {
		res, err := s.resources.Enrich(c, summary.ResourceSearchTopics)
		return enriched{res, err}
	})
	if !ok {
		out.err = ectx.Err()
	}
	res, err := out.res, out.err
	switch {
	case err != nil:
		log.WithError(err).Warn("resource enrichment failed")
	case len(res) == 0:
		log.Info("resource enrichment returned nothing")
	default:
		summary.RecommendedResources = res
	}
	return summary
}

// within runs fn in its own goroutine and stops waiting once ctx is done.
// The bool is false when the deadline won; fn's late result is dropped.
func within[T any](ctx context.Context, fn func(context.Context) T) (T, bool) {
	done := make(chan T, 1)
	go func() { done <- fn(ctx) }()

	select {
	case v := <-done:
		return v, true
	case <-ctx.Done():
		select {
		case v := <-done:
			return v, true
		default:
			var zero T
			return zero, false
		}
	}
}

func (s *sessionService) load(ctx context.Context, op, sessionID string) (*models.Session, error) {
	sess, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrSessionNotFound) || errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", utils.ErrSessionNotFound)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	return sess, nil
}

func (s *sessionService) acquire(ctx context.Context, op, sessionID string) (lock.Release, error) {
	release, ok, err := s.locker.TryLock(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "session lock unavailable", err)
	}
	if !ok {
		return nil, utils.E(utils.CodeConflict, op, "another request is in progress for this session", utils.ErrSessionBusy)
	}
	return release, nil
}

func notActive(op string, state models.SessionState) error {
	return utils.E(utils.CodeFailedPrecondition, op, fmt.Sprintf("session is %s", state), utils.ErrSessionNotActive)
}

func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.E(utils.CodeTimeout, op, "request timed out", err)
	}
	return utils.E(utils.CodeCanceled, op, "request canceled", err)
}

func endResult(sess *models.Session) *models.EndResult {
	return &models.EndResult{
		Status:          models.StatusEnded,
		SessionID:       sess.SessionID,
		CoachingSummary: sess.CoachingSummary,
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid interview configuration"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return "invalid interview configuration: " + strings.Join(parts, ", ")
}
