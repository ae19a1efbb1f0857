package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sendgrid/sendgrid-go"

	"medsync/internal/auth"
	"medsync/internal/config"
	"medsync/internal/db"
	"medsync/internal/gemini"
	httpx "medsync/internal/http"
	"medsync/internal/jobs"
	"medsync/internal/logger"
	"medsync/internal/meds"
)

func main() {
	cfg, _ := config.Load()
	log := logger.New(0)

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connect database", "err", err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal("migrate database", "err", err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	ai := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	jobsRepo := &jobs.Repo{DB: gdb}
	snapshots := &meds.DBSnapshotStore{DB: gdb}
	sessions := meds.NewManager(snapshots, jobsRepo, log)

	r := httpx.NewRouter(cfg, gdb, jwtSvc, sessions, ai)

	// alert worker
	var sg *sendgrid.Client
	if cfg.SendgridAPIKey != "" {
		sg = sendgrid.NewSendClient(cfg.SendgridAPIKey)
	}
	worker := &jobs.Worker{
		ID:       "worker-1",
		Repo:     jobsRepo,
		DB:       gdb,
		Sendgrid: sg,
		From:     cfg.AlertFromEmail,
		Log:      log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", "err", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
