package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"shift-triage-go/internal/config"
	"shift-triage-go/internal/db"
	"shift-triage-go/internal/handlers"
	"shift-triage-go/internal/mailbox"
	"shift-triage-go/internal/metrics"
	"shift-triage-go/internal/oracle"
	"shift-triage-go/internal/pipeline"
	"shift-triage-go/internal/repository"
	"shift-triage-go/internal/scheduler"
	"shift-triage-go/internal/server"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Shift Triage Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := repository.New(dbConn)
	m := metrics.NewMetrics()
	oracleClient := oracle.NewHTTPClient(&cfg.Oracle)

	var source mailbox.MessageSource
	if cfg.Mailbox.UseIMAP {
		source, err = mailbox.NewIMAPSource(&cfg.Mailbox)
		if err != nil {
			return fmt.Errorf("failed to create IMAP source: %w", err)
		}
		logrus.Info("Using IMAP for email fetching")
	} else {
		source, err = mailbox.NewGmailSource(&cfg.Mailbox)
		if err != nil {
			return fmt.Errorf("failed to create Gmail API source: %w", err)
		}
		logrus.Info("Using Gmail API for email fetching")
	}

	sender, err := mailbox.NewGmailSender(&cfg.Mailbox)
	if err != nil {
		return fmt.Errorf("failed to create reply sender: %w", err)
	}

	p := pipeline.New(repo, oracleClient, sender, cfg.Pipeline, cfg.Mailbox.TenantID, m)
	sched := scheduler.NewScheduler(&cfg.Scheduler, &cfg.Pipeline, source, repo, p)

	h := handlers.NewHandlers(dbConn, sched)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if err := source.Close(); err != nil {
		logrus.Errorf("Failed to close message source: %v", err)
	}
	if err := sender.Close(); err != nil {
		logrus.Errorf("Failed to close reply sender: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
