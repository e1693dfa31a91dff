package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

// ReportWorkerPool consumes the report stream and archives each session.
type ReportWorkerPool struct {
	Redis      redis.UniversalClient
	Reports    services.ReportService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string

	// per message
	Timeout time.Duration

	// Entries pending longer than MinIdle are re-claimed every ClaimInterval.
	ClaimInterval time.Duration
	MinIdle       time.Duration
}

func (p *ReportWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Reports == nil {
		return errors.New("ReportWorkerPool missing dependency: Redis/Reports must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultReportStream
	}
	if p.Group == "" {
		p.Group = DefaultReportGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	if p.ClaimInterval <= 0 {
		p.ClaimInterval = 30 * time.Second
	}
	if p.MinIdle <= 0 {
		p.MinIdle = 2 * p.Timeout
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	go p.runReclaimer(ctx, p.ConsumerPrefix+"-reclaim")
	return nil
}

func (p *ReportWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("report stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				if p.handleMsg(ctx, msg) {
					_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
				}
			}
		}
	}
}

func (p *ReportWorkerPool) runReclaimer(ctx context.Context, consumer string) {
	t := time.NewTicker(p.ClaimInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.reclaim(ctx, consumer)
		}
	}
}

// reclaim takes over entries left pending by a failed attempt or a dead
// consumer and runs them through handleMsg again.
func (p *ReportWorkerPool) reclaim(ctx context.Context, consumer string) int {
	handled := 0
	start := "0-0"
	for ctx.Err() == nil {
		msgs, next, err := p.Redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   p.Stream,
			Group:    p.Group,
			Consumer: consumer,
			MinIdle:  p.MinIdle,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				p.Logger.WithError(err).WithField("consumer", consumer).Warn("report stream reclaim failed")
			}
			return handled
		}

		for _, msg := range msgs {
			handled++
			if p.handleMsg(ctx, msg) {
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
		if next == "" || next == "0-0" {
			return handled
		}
		start = next
	}
	return handled
}

// handleMsg reports whether msg should be acked. Transient failures stay
// pending until reclaim picks them up again; malformed or unarchivable entries are acked.
func (p *ReportWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) bool {
	sessionID, _ := msg.Values["session_id"].(string)
	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":   msg.ID,
		"session_id": sessionID,
	})
	if sessionID == "" {
		log.Warn("report entry without session_id dropped")
		return true
	}

	mctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	start := time.Now()
	rep, err := p.Reports.Archive(mctx, sessionID)
	switch {
	case err == nil:
		log.WithFields(logrus.Fields{
			"report_id":  rep.ID,
			"transcript": rep.TranscriptURL != "",
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Info("session archived")
		return true
	case utils.IsCode(err, utils.CodeNotFound), utils.IsCode(err, utils.CodeFailedPrecondition):
		log.WithError(err).Warn("session cannot be archived, dropping")
		return true
	default:
		log.WithError(err).Error("archive failed, leaving pending")
		return false
	}
}
