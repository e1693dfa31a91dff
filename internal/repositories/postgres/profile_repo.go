package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/repositories"
	"github.com/yoockh/yoointerview/internal/utils"
)

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo is read-only: profiles are written by the account service.
func NewProfileRepo(db *gorm.DB) repositories.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).
		Select("user_id", "full_name", "cv_text", "skills", "updated_at").
		Where("user_id = ?", userID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
