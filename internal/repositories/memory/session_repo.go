// Package memory holds in-process repositories for the CLI and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/repositories"
	"github.com/yoockh/yoointerview/internal/utils"
)

type sessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionRepo() repositories.SessionRepository {
	return &sessionRepo{sessions: map[string]*models.Session{}}
}

func (r *sessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.SessionID]; exists {
		return fmt.Errorf("session %s already exists", s.SessionID)
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	r.sessions[s.SessionID] = cloneSession(s)
	return nil
}

func (r *sessionRepo) GetBySessionID(_ context.Context, sessionID string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (r *sessionRepo) AppendTurn(_ context.Context, sessionID string, at time.Time, from, to models.SessionState, msgs ...models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.expect(sessionID, from)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		s.Messages = append(s.Messages, cloneMessage(m))
	}
	moveState(s, to, at)
	return nil
}

func (r *sessionRepo) TransitionState(_ context.Context, sessionID string, from, to models.SessionState, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.expect(sessionID, from)
	if err != nil {
		return err
	}
	moveState(s, to, at)
	return nil
}

// expect must be called with r.mu held.
func (r *sessionRepo) expect(sessionID string, state models.SessionState) (*models.Session, error) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	if s.State != state {
		return nil, utils.ErrStateConflict
	}
	return s, nil
}

func moveState(s *models.Session, to models.SessionState, at time.Time) {
	s.State = to
	s.LastActivityAt = at
	if to == models.StateEnded {
		t := at
		s.EndedAt = &t
	}
}

func (r *sessionRepo) SetCoachingSummary(_ context.Context, sessionID string, sum *models.FinalCoachingSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return utils.ErrSessionNotFound
	}
	s.CoachingSummary = cloneSummary(sum)
	return nil
}

func cloneSession(s *models.Session) *models.Session {
	c := *s
	c.Messages = make([]models.Message, len(s.Messages))
	for i, m := range s.Messages {
		c.Messages[i] = cloneMessage(m)
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	c.CoachingSummary = cloneSummary(s.CoachingSummary)
	return &c
}

func cloneMessage(m models.Message) models.Message {
	if m.Feedback != nil {
		fb := *m.Feedback
		m.Feedback = &fb
	}
	return m
}

func cloneSummary(s *models.FinalCoachingSummary) *models.FinalCoachingSummary {
	if s == nil {
		return nil
	}
	c := *s
	c.ResourceSearchTopics = append([]string(nil), s.ResourceSearchTopics...)
	if s.RecommendedResources != nil {
		c.RecommendedResources = append([]models.Resource{}, s.RecommendedResources...)
	}
	return &c
}
