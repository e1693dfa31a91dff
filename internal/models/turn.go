package models

type ResponseType string

const (
	ResponseQuestion         ResponseType = "question"
	ResponseClosingStatement ResponseType = "closing_statement"
)

type InterviewerMetadata struct {
	QuestionIndex int    `json:"question_index,omitempty"`
	Rationale     string `json:"rationale,omitempty"`
	Degraded      bool   `json:"degraded,omitempty"`
	ClosingReason string `json:"closing_reason,omitempty"` // time_budget|question_cap|agent
}

type InterviewerResponse struct {
	Content      string              `json:"content"`
	ResponseType ResponseType        `json:"response_type"`
	Metadata     InterviewerMetadata `json:"metadata"`
}

func (r InterviewerResponse) IsClosing() bool {
	return r.ResponseType == ResponseClosingStatement
}

// CoachAnswerFeedback grades one answer along six fixed dimensions. When Error
// is set the dimensions are empty.
type CoachAnswerFeedback struct {
	Conciseness         string `bson:"conciseness" json:"conciseness"`
	Completeness        string `bson:"completeness" json:"completeness"`
	TechnicalDepth      string `bson:"technical_depth" json:"technical_depth"`
	ContextualAlignment string `bson:"contextual_alignment" json:"contextual_alignment"`
	Fixes               string `bson:"fixes" json:"fixes"`
	STARSupport         string `bson:"star_support" json:"star_support"`
	Error               string `bson:"error,omitempty" json:"error,omitempty"`
}

func FeedbackError(msg string) CoachAnswerFeedback {
	return CoachAnswerFeedback{Error: msg}
}

// TurnResult is the merged response of one ProcessMessage call. CoachFeedback
// is nil only when the candidate had no preceding question to answer.
type TurnResult struct {
	SessionID           string               `json:"session_id"`
	InterviewerResponse InterviewerResponse  `json:"interviewer_response"`
	CoachFeedback       *CoachAnswerFeedback `json:"coach_feedback"`
	State               SessionState         `json:"state"`
}
