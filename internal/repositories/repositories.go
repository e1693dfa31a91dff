// Package repositories declares the persistence contracts shared by the
// mongo, postgres and memory backends.
package repositories

import (
	"context"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
)

// SessionRepository is the session store. Implementations return
// utils.ErrSessionNotFound for unknown ids and utils.ErrStateConflict when a
// transition's expected state does not match.
type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	// AppendTurn appends msgs and moves from -> to in one atomic write. With
	// from == to it appends only while the session is still in that state.
	AppendTurn(ctx context.Context, sessionID string, at time.Time, from, to models.SessionState, msgs ...models.Message) error
	// TransitionState moves from -> to atomically. Reaching ENDED stamps ended_at.
	TransitionState(ctx context.Context, sessionID string, from, to models.SessionState, at time.Time) error
	SetCoachingSummary(ctx context.Context, sessionID string, s *models.FinalCoachingSummary) error
}

type ReportRepository interface {
	Upsert(ctx context.Context, r *models.CoachingReport) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.CoachingReport, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.CoachingReport, error)
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
}
