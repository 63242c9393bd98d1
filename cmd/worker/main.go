package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/journey-engine/internal/config"
	"github.com/unclebandit/journey-engine/internal/db"
	"github.com/unclebandit/journey-engine/internal/logging"
	"github.com/unclebandit/journey-engine/internal/queue"
	"github.com/unclebandit/journey-engine/internal/repository"
	"github.com/unclebandit/journey-engine/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	conn, dialect, err := db.Open(cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn, Dialect: dialect}

	q, err := queue.DialAMQP(cfg.AMQPURL, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to queue")
	}
	defer q.Close()

	jobs := make(chan int, 64)
	if err := q.Subscribe(queue.TopicCampaignSaved, savedHandler(jobs, log)); err != nil {
		log.WithError(err).Fatal("failed to subscribe")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := service.NewDriftWorker(campaignRepo, jobs, log)
	go worker.Start(ctx)

	log.WithField("topic", queue.TopicCampaignSaved).Info("worker running, waiting for messages")
	<-ctx.Done()
	log.Info("worker stopping")
}

// savedHandler turns campaign_saved deliveries into repair jobs. Payloads
// that cannot be decoded are dropped.
func savedHandler(jobs chan<- int, log logrus.FieldLogger) func(payload any) error {
	return func(payload any) error {
		ev, err := queue.DecodeCampaignSaved(payload)
		if err != nil {
			log.WithError(err).Warn("invalid job")
			return nil
		}
		jobs <- ev.CampaignID
		return nil
	}
}
