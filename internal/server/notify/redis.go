package notify

import (
	"context"
	"encoding/json"

	"github.com/jbarakanov/videohost/internal/logging"
	"github.com/redis/go-redis/v9"
)

// RedisDispatcher pushes messages onto a Redis list consumed by the
// notifier worker. Enqueue failures are logged and swallowed; the request
// that triggered the notification must not fail because of them.
type RedisDispatcher struct {
	client   *redis.Client
	queueKey string
	logger   logging.Logger
}

func NewRedisDispatcher(addr, queueKey string, logger logging.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		client:   redis.NewClient(&redis.Options{Addr: addr}),
		queueKey: queueKey,
		logger:   logger.With("module", "notify"),
	}
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, msg Message) {
	// Cancellation of the originating request must not cancel the enqueue.
	ctx = context.WithoutCancel(ctx)

	data, err := json.Marshal(msg)
	if err != nil {
		d.logger.Error(ctx, "marshal notification", "error", err.Error())
		return
	}

	if err := d.client.LPush(ctx, d.queueKey, data).Err(); err != nil {
		d.logger.Error(ctx, "enqueue notification", "error", err.Error(), "recipient", msg.Recipient)
	}
}

// Close releases the underlying connection.
func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}
