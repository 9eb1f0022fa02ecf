// Package events publishes ledger activity to a Redis stream for downstream
// consumers. Publishing is fire-and-forget; failures are logged, never
// surfaced to the request path.
package events

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/star-labs/star-platform/pkg/logger"
)

// MintEvent reports a completed point mint.
type MintEvent struct {
	UserID         string
	WalletAddress  string
	XLMAmount      float64
	StarPoints     float64
	ReferrerReward float64
	TxHash         string
}

// ParticipationEvent reports points spent into a project.
type ParticipationEvent struct {
	ParticipationID string
	UserID          string
	ProjectID       string
	StarPoints      float64
	Burned          float64
	ToCreator       float64
}

// Publisher receives ledger events. Implementations must tolerate being
// called from the request path and return quickly.
type Publisher interface {
	MintRecorded(ctx context.Context, ev MintEvent)
	ParticipationRecorded(ctx context.Context, ev ParticipationEvent)
}

// RedisPublisher appends events to a Redis stream.
type RedisPublisher struct {
	rdb    *redis.Client
	stream string
	log    *logger.Logger
}

var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher connects to Redis using a URL of the form
// redis://host:port/db.
func NewRedisPublisher(url, stream string, log *logger.Logger) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefault("events")
	}
	return &RedisPublisher{rdb: redis.NewClient(opt), stream: stream, log: log}, nil
}

// Close releases the underlying connection pool.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

func (p *RedisPublisher) MintRecorded(ctx context.Context, ev MintEvent) {
	p.publish(ctx, map[string]interface{}{
		"type":            "points.minted",
		"user_id":         ev.UserID,
		"wallet_address":  ev.WalletAddress,
		"xlm_amount":      ev.XLMAmount,
		"star_points":     ev.StarPoints,
		"referrer_reward": ev.ReferrerReward,
		"tx_hash":         ev.TxHash,
	})
}

func (p *RedisPublisher) ParticipationRecorded(ctx context.Context, ev ParticipationEvent) {
	p.publish(ctx, map[string]interface{}{
		"type":             "project.participated",
		"participation_id": ev.ParticipationID,
		"user_id":          ev.UserID,
		"project_id":       ev.ProjectID,
		"star_points":      ev.StarPoints,
		"burned":           ev.Burned,
		"to_creator":       ev.ToCreator,
	})
}

func (p *RedisPublisher) publish(ctx context.Context, values map[string]interface{}) {
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.rdb.XAdd(pubCtx, &redis.XAddArgs{Stream: p.stream, Values: values}).Err(); err != nil {
		p.log.WithError(err).Warn("event publish failed")
	}
}
