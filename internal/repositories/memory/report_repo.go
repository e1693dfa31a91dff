package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/repositories"
	"github.com/yoockh/yoointerview/internal/utils"
)

type reportRepo struct {
	mu      sync.RWMutex
	reports map[string]models.CoachingReport
}

func NewReportRepo() repositories.ReportRepository {
	return &reportRepo{reports: map[string]models.CoachingReport{}}
}

func (r *reportRepo) Upsert(_ context.Context, rep *models.CoachingReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.reports[rep.SessionID]; ok && rep.ID == "" {
		rep.ID = old.ID
	}
	r.reports[rep.SessionID] = *rep
	return nil
}

func (r *reportRepo) GetBySessionID(_ context.Context, sessionID string) (*models.CoachingReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &rep, nil
}

func (r *reportRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.CoachingReport, error) {
	r.mu.RLock()
	var out []models.CoachingReport
	for _, rep := range r.reports {
		if rep.UserID == userID {
			out = append(out, rep)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if offset >= len(out) {
		return []models.CoachingReport{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
