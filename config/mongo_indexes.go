package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessions := MongoDatabase().Collection("sessions")
	_, err := sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// one record per session id; TransitionState relies on it
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "config.user_id", Value: 1}, {Key: "started_at", Value: -1}},
			Options: options.Index().SetName("by_user_started"),
		},
		// finding abandoned ACTIVE sessions
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "last_activity_at", Value: 1}},
			Options: options.Index().SetName("by_state_activity"),
		},
	})
	return err
}
