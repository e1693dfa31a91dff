package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/repositories"
	"github.com/yoockh/yoointerview/internal/utils"
)

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) repositories.SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	if s.Messages == nil {
		s.Messages = []models.Message{}
	}
	_, err := r.col.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("session %s already exists: %w", s.SessionID, err)
	}
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) AppendTurn(ctx context.Context, sessionID string, at time.Time, from, to models.SessionState, msgs ...models.Message) error {
	update := bson.M{"$set": stateSet(to, at)}
	if len(msgs) > 0 {
		update["$push"] = bson.M{"messages": bson.M{"$each": msgs}}
	}
	return r.compareAndSet(ctx, sessionID, from, update)
}

func (r *sessionRepo) TransitionState(ctx context.Context, sessionID string, from, to models.SessionState, at time.Time) error {
	return r.compareAndSet(ctx, sessionID, from, bson.M{"$set": stateSet(to, at)})
}

func stateSet(to models.SessionState, at time.Time) bson.M {
	set := bson.M{"state": to, "last_activity_at": at.UTC()}
	if to == models.StateEnded {
		set["ended_at"] = at.UTC()
	}
	return set
}

// compareAndSet applies update only while the stored state equals from. A miss
// is resolved into not-found or conflict with a second read.
func (r *sessionRepo) compareAndSet(ctx context.Context, sessionID string, from models.SessionState, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"session_id": sessionID, "state": from}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrSessionNotFound
	}
	return utils.ErrStateConflict
}

func (r *sessionRepo) SetCoachingSummary(ctx context.Context, sessionID string, s *models.FinalCoachingSummary) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"coaching_summary": s}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrSessionNotFound
	}
	return nil
}
