package profile

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/embedding"
)

// Listener consumes profile update events: it drops the cached
// profile-complete flag and re-embeds the profile so match percentages
// reflect the new content.
type Listener struct {
	rdb       *redis.Client
	service   *Service
	refresher *embedding.Refresher
	log       *zap.Logger
}

// NewListener builds a Listener. refresher may be nil when no embedding
// backend is configured; cache invalidation still runs.
func NewListener(rdb *redis.Client, service *Service, refresher *embedding.Refresher, log *zap.Logger) *Listener {
	return &Listener{rdb: rdb, service: service, refresher: refresher, log: log}
}

// Run subscribes to the profile update channel and processes messages
// until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	sub := l.rdb.Subscribe(ctx, EventChannel)
	defer sub.Close()

	l.log.Info("profile update listener started", zap.String("channel", EventChannel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			l.log.Info("profile update listener stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			l.handle(ctx, msg.Payload)
		}
	}
}

func (l *Listener) handle(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := l.service.Invalidate(ctx, userID); err != nil {
		l.log.Warn("profile complete cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
	if l.refresher == nil {
		return
	}
	if err := l.refresher.RefreshProfile(ctx, userID); err != nil {
		l.log.Warn("profile re-embed failed", zap.String("user_id", userID), zap.Error(err))
	}
}
