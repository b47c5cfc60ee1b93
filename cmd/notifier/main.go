package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jbarakanov/videohost/internal/logging"
	"github.com/jbarakanov/videohost/internal/server/config"
	"github.com/jbarakanov/videohost/internal/server/notify"
)

// The notifier consumes the mail queue and delivers messages through
// SendGrid. It runs out of process so the API server never waits on mail
// delivery.
func main() {

	cfg := config.LoadConfig()
	if cfg.RedisAddr == "" {
		log.Fatal("notifier requires a redis address")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger := logging.NewJSONLogger()
	sender := notify.NewSendgridSender(cfg.SendgridAPIKey, cfg.MailFrom)
	worker := notify.NewWorker(cfg.RedisAddr, cfg.MailQueueKey, sender, logger)

	if err := worker.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
