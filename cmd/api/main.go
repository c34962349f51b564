package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "cv-intake/docs" // Swagger docs
	"cv-intake/internal/api"
	"cv-intake/internal/config"
	"cv-intake/internal/cv"
	"cv-intake/internal/processor"
	"cv-intake/internal/scheduler"
	"cv-intake/internal/storage"
	"cv-intake/internal/webhook"
)

// @title CV Intake API
// @version 1.0
// @description Candidate CV intake backend with status lifecycle and webhook orchestration
// @BasePath /api

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatal(err)
	}

	services, err := config.LoadServices(cfg.ServicesConfigPath)
	if err != nil {
		sugar.Fatalf("services config: %v", err)
	}
	sched := config.LoadSchedule(cfg.SchedulerConfigPath, sugar.Named("config"))

	sugar.Infow("connecting to database")
	db, err := storage.NewDB(cfg.DatabaseURL, sugar.Named("storage"))
	if err != nil {
		sugar.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.EnsureSchema(ctx); err != nil {
		cancel()
		sugar.Fatalf("ensure schema: %v", err)
	}
	cancel()
	sugar.Infow("database ready")

	client := webhook.NewClient(webhook.DefaultTimeout, sugar.Named("webhook"))
	bot := processor.NewBotInterview(db, client, services, sugar)
	classifier := processor.NewClassification(db, client, services, sugar)

	sch, err := scheduler.New(sched, bot, classifier, logger)
	if err != nil {
		sugar.Fatalf("scheduler: %v", err)
	}
	sch.Start()
	defer sch.Stop()

	apiSrv := api.NewAPI(db, cv.NewParser(cfg.UploadsDir), []*processor.Stage{bot, classifier}, sugar)
	router := api.NewRouter(apiSrv)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second, // file uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	sugar.Infof("API server listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		sugar.Fatal(err)
	}

	<-idleConnsClosed
}
