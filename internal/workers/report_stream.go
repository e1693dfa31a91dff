package workers

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultReportStream = "reports:stream"
	DefaultReportGroup  = "report-workers"
)

// ReportPublisher appends ended sessions to the report stream.
type ReportPublisher struct {
	Redis  redis.UniversalClient
	Stream string
	MaxLen int64
}

func (p *ReportPublisher) PublishEnded(ctx context.Context, sessionID string) error {
	stream := p.Stream
	if stream == "" {
		stream = DefaultReportStream
	}
	maxLen := p.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	return p.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxLen,
		Approx: true,
		Values: map[string]any{
			"session_id": sessionID,
			"ts_unix":    strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Err()
}
