package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionState string

const (
	StateCreated SessionState = "CREATED"
	StateActive  SessionState = "ACTIVE"
	StateEnding  SessionState = "ENDING"
	StateEnded   SessionState = "ENDED"
)

var stateRank = map[SessionState]int{
	StateCreated: 0,
	StateActive:  1,
	StateEnding:  2,
	StateEnded:   3,
}

// CanAdvance reports whether from -> to moves forward. Skipping a state is
// allowed (ACTIVE -> ENDED on an explicit end), going back never is.
func CanAdvance(from, to SessionState) bool {
	f, ok1 := stateRank[from]
	t, ok2 := stateRank[to]
	return ok1 && ok2 && t > f
}

type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4

	Config   InterviewConfig `bson:"config" json:"config"`
	Messages []Message       `bson:"messages" json:"messages"`
	State    SessionState    `bson:"state" json:"state"`

	StartedAt      time.Time  `bson:"started_at" json:"started_at"`
	LastActivityAt time.Time  `bson:"last_activity_at" json:"last_activity_at"`
	EndedAt        *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	CoachingSummary *FinalCoachingSummary `bson:"coaching_summary,omitempty" json:"coaching_summary,omitempty"`
}

// InterviewerHistory returns the conversation as the interviewer sees it:
// coach commentary is filtered out.
func (s *Session) InterviewerHistory() []Message {
	out := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Role == RoleCoach {
			continue
		}
		out = append(out, m)
	}
	return out
}

// QuestionsAsked counts interviewer turns that were questions.
func QuestionsAsked(history []Message) int {
	n := 0
	for _, m := range history {
		if m.Role == RoleInterviewer && m.ResponseType == ResponseQuestion {
			n++
		}
	}
	return n
}

// LastInterviewerQuestion returns the most recent interviewer question in
// history, or nil when none has been asked yet.
func LastInterviewerQuestion(history []Message) *Message {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role == RoleInterviewer && m.ResponseType == ResponseQuestion {
			return &history[i]
		}
	}
	return nil
}
