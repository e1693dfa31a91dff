package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/repositories"
	"github.com/yoockh/yoointerview/internal/utils"
)

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) repositories.ReportRepository {
	return &reportRepo{db: db}
}

// Upsert is keyed on session_id so a redelivered stream entry overwrites
// rather than duplicates.
func (r *reportRepo) Upsert(ctx context.Context, rep *models.CoachingReport) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"patterns", "strengths", "weaknesses", "improvement_areas",
				"topics", "resources", "summary_error", "question_count",
				"transcript_url", "ended_at",
			}),
		}).
		Create(rep).Error
}

func (r *reportRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.CoachingReport, error) {
	var rep models.CoachingReport
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.CoachingReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var out []models.CoachingReport
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ended_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}
