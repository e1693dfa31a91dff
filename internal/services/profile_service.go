package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/repositories"
	"github.com/yoockh/yoointerview/internal/utils"
)

// ProfileService exposes the candidate profile read side. It doubles as the
// ResumeSource for SessionService.
type ProfileService interface {
	GetMe(ctx context.Context, userID string) (*models.Profile, error)
	ResumeFor(ctx context.Context, userID string) (string, error)
}

type profileService struct {
	profiles repositories.ProfileRepository
}

func NewProfileService(profiles repositories.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) GetMe(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.GetMe"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}
	return p, nil
}

// ResumeFor returns the stored CV text, or utils.ErrNotFound when the user has
// no profile or an empty CV.
func (s *profileService) ResumeFor(ctx context.Context, userID string) (string, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	cv := strings.TrimSpace(p.CVText)
	if cv == "" {
		return "", utils.ErrNotFound
	}
	if len(p.Skills) > 0 {
		cv += "\n\nSkills: " + strings.Join(p.Skills, ", ")
	}
	return cv, nil
}
