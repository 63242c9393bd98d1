// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/unclebandit/journey-engine/internal/config"
	"github.com/unclebandit/journey-engine/internal/controller"
	"github.com/unclebandit/journey-engine/internal/db"
	"github.com/unclebandit/journey-engine/internal/handler"
	"github.com/unclebandit/journey-engine/internal/logging"
	"github.com/unclebandit/journey-engine/internal/notify"
	"github.com/unclebandit/journey-engine/internal/queue"
	"github.com/unclebandit/journey-engine/internal/repository"
	"github.com/unclebandit/journey-engine/internal/service"
	"github.com/unclebandit/journey-engine/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	sentryOn, err := notify.InitSentry(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		log.WithError(err).Warn("sentry disabled")
	}
	defer notify.Flush()
	notifier := &notify.LogNotifier{Log: log, Sentry: sentryOn}

	conn, dialect, err := db.Open(cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn, Dialect: dialect}
	contactRepo := &repository.ContactRepository{DB: conn, Dialect: dialect}

	var q queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to queue")
		}
		defer amqpQueue.Close()
		q = amqpQueue
	} else {
		mem := queue.NewInMemoryQueue(log)
		if err := queue.StartDriftAuditSubscriber(mem, campaignRepo, log); err != nil {
			log.WithError(err).Fatal("failed to start drift audit")
		}
		q = mem
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		Queue:        q,
		Notifier:     notifier,
		Log:          log,
	}
	taskService := &service.TaskService{
		CampaignRepo: campaignRepo,
		Match:        tasks.MatchMode(cfg.OwnerMatch),
	}
	contactService := &service.ContactService{
		ContactRepo:  contactRepo,
		CampaignRepo: campaignRepo,
		Notifier:     notifier,
		Log:          log,
	}

	campaignController := &controller.CampaignController{CampaignService: campaignService}
	taskController := &controller.TaskController{TaskService: taskService, CampaignService: campaignService}
	contactHandler := handler.NewContactHandler(contactService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Campaign routes
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Post("/campaigns", campaignController.SaveCampaign)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Delete("/campaigns/{id}", campaignController.DeleteCampaign)

	// Task routes
	r.Get("/tasks", taskController.ListTasks)
	r.Post("/tasks/{campaignId}/{stepId}/toggle", taskController.ToggleTask)

	// Contact routes
	r.Post("/contacts", contactHandler.CreateContactHandler)
	r.Get("/contacts/{id}", contactHandler.GetContactHandler)
	r.Put("/contacts/{id}", contactHandler.UpdateContactHandler)
	r.Get("/contacts/{id}/timeline", contactHandler.TimelineHandler)

	r.Get("/healthz", healthz(conn))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.ServerPort, "db": dialect}).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
	log.Info("server stopped")
}

func healthz(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := conn.PingContext(r.Context()); err != nil {
			controller.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		controller.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
