package models

type InterviewStyle string

const (
	StyleFormal     InterviewStyle = "FORMAL"
	StyleCasual     InterviewStyle = "CASUAL"
	StyleAggressive InterviewStyle = "AGGRESSIVE"
	StyleTechnical  InterviewStyle = "TECHNICAL"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

const (
	DefaultDurationMinutes = 30
	DefaultMaxQuestions    = 8
)

// InterviewConfig is fixed at session start and never mutated afterwards.
type InterviewConfig struct {
	JobRole        string `bson:"job_role" json:"job_role" validate:"required,max=200"`
	JobDescription string `bson:"job_description,omitempty" json:"job_description,omitempty" validate:"max=20000"`
	Resume         string `bson:"resume,omitempty" json:"resume,omitempty" validate:"max=40000"`
	Company        string `bson:"company,omitempty" json:"company,omitempty" validate:"max=200"`

	Style      InterviewStyle `bson:"interview_style" json:"interview_style" validate:"omitempty,oneof=FORMAL CASUAL AGGRESSIVE TECHNICAL"`
	Difficulty Difficulty     `bson:"difficulty" json:"difficulty" validate:"omitempty,oneof=EASY MEDIUM HARD"`

	DurationMinutes       int  `bson:"duration_minutes" json:"duration_minutes" validate:"gte=0,lte=240"`
	UseTimeBasedInterview bool `bson:"use_time_based_interview" json:"use_time_based_interview"`

	// MaxQuestions caps the interview even when time-based mode is off.
	MaxQuestions int `bson:"max_questions" json:"max_questions" validate:"gte=0,lte=50"`

	UserID string `bson:"user_id,omitempty" json:"user_id,omitempty"`
}

// WithDefaults fills zero-valued optional fields.
func (c InterviewConfig) WithDefaults() InterviewConfig {
	if c.Style == "" {
		c.Style = StyleFormal
	}
	if c.Difficulty == "" {
		c.Difficulty = DifficultyMedium
	}
	if c.DurationMinutes == 0 {
		c.DurationMinutes = DefaultDurationMinutes
	}
	if c.MaxQuestions == 0 {
		c.MaxQuestions = DefaultMaxQuestions
	}
	return c
}
