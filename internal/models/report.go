package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// CoachingReport is the archived copy of an ended session's summary.
type CoachingReport struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;uniqueIndex" json:"session_id"`
	UserID    string `gorm:"column:user_id;type:text;index" json:"user_id"`
	JobRole   string `gorm:"column:job_role;type:text" json:"job_role"`

	Patterns         string         `gorm:"column:patterns;type:text" json:"patterns"`
	Strengths        string         `gorm:"column:strengths;type:text" json:"strengths"`
	Weaknesses       string         `gorm:"column:weaknesses;type:text" json:"weaknesses"`
	ImprovementAreas string         `gorm:"column:improvement_areas;type:text" json:"improvement_areas"`
	Topics           pq.StringArray `gorm:"column:topics;type:text[]" json:"topics"`
	Resources        datatypes.JSON `gorm:"column:resources;type:jsonb" json:"resources"`
	SummaryError     string         `gorm:"column:summary_error;type:text" json:"summary_error,omitempty"`

	QuestionCount int    `gorm:"column:question_count;type:integer" json:"question_count"`
	TranscriptURL string `gorm:"column:transcript_url;type:text" json:"transcript_url,omitempty"`

	StartedAt time.Time `gorm:"column:started_at;type:timestamptz" json:"started_at"`
	EndedAt   time.Time `gorm:"column:ended_at;type:timestamptz;index" json:"ended_at"`
}

func (CoachingReport) TableName() string { return "coaching_reports" }
