package models

import (
	"time"

	"github.com/lib/pq"
)

// Profile is the candidate profile row owned by the profile service; the
// interview backend only reads the CV text from it.
type Profile struct {
	UserID   string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FullName string `gorm:"column:full_name;type:text" json:"full_name"`
	CVText   string `gorm:"column:cv_text;type:text" json:"cv_text"`

	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
