package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/repositories"
	"github.com/yoockh/yoointerview/internal/storage"
	"github.com/yoockh/yoointerview/internal/utils"
)

type ReportService interface {
	// Archive copies an ended session into the report archive. Redelivery is safe.
	Archive(ctx context.Context, sessionID string) (*models.CoachingReport, error)
	ListMine(ctx context.Context, userID string, limit, offset int) ([]models.CoachingReport, error)
	GetMine(ctx context.Context, userID, sessionID string) (*models.CoachingReport, error)
}

type reportService struct {
	sessions repositories.SessionRepository
	reports  repositories.ReportRepository
	uploader storage.Uploader // optional
	logger   *logrus.Logger
}

func NewReportService(sessions repositories.SessionRepository, reports repositories.ReportRepository, uploader storage.Uploader, l *logrus.Logger) ReportService {
	if l == nil {
		l = logger.Discard()
	}
	return &reportService{sessions: sessions, reports: reports, uploader: uploader, logger: l}
}

type transcript struct {
	SessionID       string                       `json:"session_id"`
	Config          models.InterviewConfig       `json:"config"`
	Messages        []models.Message             `json:"messages"`
	CoachingSummary *models.FinalCoachingSummary `json:"coaching_summary"`
}

func (s *reportService) Archive(ctx context.Context, sessionID string) (*models.CoachingReport, error) {
	const op = "ReportService.Archive"

	sess, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrSessionNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if sess.State != models.StateEnded || sess.CoachingSummary == nil {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session has no final summary yet", utils.ErrSessionNotActive)
	}

	sum := sess.CoachingSummary
	resources, err := json.Marshal(sum.RecommendedResources)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode resources", err)
	}

	rep := &models.CoachingReport{
		SessionID:        sess.SessionID,
		UserID:           sess.Config.UserID,
		JobRole:          sess.Config.JobRole,
		Patterns:         sum.Patterns,
		Strengths:        sum.Strengths,
		Weaknesses:       sum.Weaknesses,
		ImprovementAreas: sum.ImprovementAreas,
		Topics:           sum.ResourceSearchTopics,
		Resources:        datatypes.JSON(resources),
		SummaryError:     sum.Error,
		QuestionCount:    models.QuestionsAsked(sess.Messages),
		StartedAt:        sess.StartedAt,
	}
	if sess.EndedAt != nil {
		rep.EndedAt = *sess.EndedAt
	}

	if s.uploader != nil {
		url, err := s.uploadTranscript(ctx, sess)
		if err != nil {
			// the report row is still worth keeping without a transcript link
			s.logger.WithError(err).WithField("session_id", sessionID).Warn("transcript upload failed")
		}
		rep.TranscriptURL = url
	}

	if err := s.reports.Upsert(ctx, rep); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store report", err)
	}
	return rep, nil
}

func (s *reportService) uploadTranscript(ctx context.Context, sess *models.Session) (string, error) {
	b, err := json.MarshalIndent(transcript{
		SessionID:       sess.SessionID,
		Config:          sess.Config,
		Messages:        sess.Messages,
		CoachingSummary: sess.CoachingSummary,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("transcripts/%s/%s.json", sess.StartedAt.Format("2006/01/02"), sess.SessionID)
	return s.uploader.Upload(ctx, name, "application/json", bytes.NewReader(b))
}

func (s *reportService) ListMine(ctx context.Context, userID string, limit, offset int) ([]models.CoachingReport, error) {
	const op = "ReportService.ListMine"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.reports.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list reports", err)
	}
	return out, nil
}

func (s *reportService) GetMine(ctx context.Context, userID, sessionID string) (*models.CoachingReport, error) {
	const op = "ReportService.GetMine"

	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	rep, err := s.reports.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "report not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get report", err)
	}
	if rep.UserID != userID {
		// same answer as missing so ids cannot be enumerated
		return nil, utils.E(utils.CodeNotFound, op, "report not found", utils.ErrNotFound)
	}
	return rep, nil
}
