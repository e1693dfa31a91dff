// Package timing computes how much of an interview's time budget is left.
package timing

import (
	"time"

	"github.com/yoockh/yoointerview/internal/models"
)

// Clock returns the current time. Services take one so tests can move time.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

// RemainingMinutes returns nil when the interview is not time based, otherwise
// duration minus elapsed time. The result may be zero or negative.
func RemainingMinutes(cfg models.InterviewConfig, startedAt, now time.Time) *float64 {
	if !cfg.UseTimeBasedInterview {
		return nil
	}
	elapsed := now.Sub(startedAt).Minutes()
	if elapsed < 0 {
		elapsed = 0
	}
	rem := float64(cfg.DurationMinutes) - elapsed
	return &rem
}

// Expired reports whether a time-based budget is used up.
func Expired(remaining *float64) bool {
	return remaining != nil && *remaining <= 0
}
