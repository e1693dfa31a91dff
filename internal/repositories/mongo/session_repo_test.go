package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

const ns = "yoointerview.sessions"

var at = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func updated(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func counted(n int32) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestSessionRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get decodes the session", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "session_id", Value: "s1"},
			{Key: "state", Value: "ACTIVE"},
			{Key: "config", Value: bson.D{{Key: "job_role", Value: "SRE"}}},
			{Key: "messages", Value: bson.A{}},
		}))

		s, err := NewSessionRepo(mt.DB).GetBySessionID(context.Background(), "s1")
		require.NoError(mt, err)
		assert.Equal(mt, models.StateActive, s.State)
		assert.Equal(mt, "SRE", s.Config.JobRole)
	})

	mt.Run("get maps no documents to not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewSessionRepo(mt.DB).GetBySessionID(context.Background(), "nope")
		assert.ErrorIs(mt, err, utils.ErrSessionNotFound)
	})

	mt.Run("append turn is one conditional update", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))

		msg := models.Message{Role: models.RoleInterviewer, Content: "Thanks.", ResponseType: models.ResponseClosingStatement}
		err := NewSessionRepo(mt.DB).AppendTurn(context.Background(), "s1", at, models.StateActive, models.StateEnding, msg)
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		assert.Equal(mt, "s1", evt.Command.Lookup("updates", "0", "q", "session_id").StringValue())
		assert.Equal(mt, "ACTIVE", evt.Command.Lookup("updates", "0", "q", "state").StringValue())
		assert.Equal(mt, "ENDING", evt.Command.Lookup("updates", "0", "u", "$set", "state").StringValue())
		_, err = evt.Command.LookupErr("updates", "0", "u", "$push", "messages", "$each")
		assert.NoError(mt, err)
		assert.Nil(mt, mt.GetStartedEvent(), "no follow-up read on a hit")
	})

	mt.Run("transition miss on existing session is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0), counted(1))

		err := NewSessionRepo(mt.DB).TransitionState(context.Background(), "s1", models.StateActive, models.StateEnded, at)
		assert.ErrorIs(mt, err, utils.ErrStateConflict)
	})

	mt.Run("append miss on unknown session is not found", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0), counted(0))

		err := NewSessionRepo(mt.DB).AppendTurn(context.Background(), "nope", at, models.StateActive, models.StateActive, models.Message{})
		assert.ErrorIs(mt, err, utils.ErrSessionNotFound)
	})

	mt.Run("ending stamps ended_at", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))

		require.NoError(mt, NewSessionRepo(mt.DB).TransitionState(context.Background(), "s1", models.StateEnding, models.StateEnded, at))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		_, err := evt.Command.LookupErr("updates", "0", "u", "$set", "ended_at")
		assert.NoError(mt, err)
		assert.Equal(mt, "ENDING", evt.Command.Lookup("updates", "0", "q", "state").StringValue())
	})
}
