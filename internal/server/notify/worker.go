package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jbarakanov/videohost/internal/logging"
	"github.com/redis/go-redis/v9"
)

// Worker pops queued messages and hands them to the Sender. Send failures
// are logged and the message is dropped (fire-and-forget, no retries).
type Worker struct {
	client   *redis.Client
	queueKey string
	sender   Sender
	logger   logging.Logger
}

func NewWorker(addr, queueKey string, sender Sender, logger logging.Logger) *Worker {
	return &Worker{
		client:   redis.NewClient(&redis.Options{Addr: addr}),
		queueKey: queueKey,
		sender:   sender,
		logger:   logger.With("module", "notify_worker"),
	}
}

// Run blocks until ctx is cancelled, consuming the queue.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info(ctx, "Starting notification worker", "queue", w.queueKey)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		res, err := w.client.BRPop(ctx, 5*time.Second, w.queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error(ctx, "queue read error", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}

		// BRPop returns [key, value]
		if len(res) < 2 {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			w.logger.Error(ctx, "malformed queue message", "error", err.Error())
			continue
		}

		if err := w.sender.Send(ctx, msg); err != nil {
			w.logger.Error(ctx, "send failed", "error", err.Error(), "recipient", msg.Recipient)
			continue
		}

		w.logger.Info(ctx, "notification sent", "recipient", msg.Recipient)
	}
}
