package models

import "time"

type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
	RoleCoach       Role = "coach" // internal, never shown to the interviewer
)

type Message struct {
	Role      Role      `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	// interviewer only
	ResponseType  ResponseType `bson:"response_type,omitempty" json:"response_type,omitempty"`
	QuestionIndex int          `bson:"question_index,omitempty" json:"question_index,omitempty"`

	// coach only
	Feedback *CoachAnswerFeedback `bson:"feedback,omitempty" json:"feedback,omitempty"`
}
