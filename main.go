package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"petitshop/internal/config"
	"petitshop/internal/database"
	"petitshop/internal/logs"
	"petitshop/internal/mail"
	"petitshop/internal/notify"
	"petitshop/internal/server"
	"petitshop/internal/services"
	"petitshop/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log, err := logs.New(cfg.Log)
	if err != nil {
		slog.Error("invalid log configuration", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(log)

	db, err := database.Open(cfg.Database, log, cfg.App.IsDevelopment())
	if err != nil {
		log.Error("database unavailable", slog.Any("error", err))
		os.Exit(1)
	}

	// Event publishing is optional; without a broker orders are still processed.
	var events services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			log.Error("rabbitmq unavailable", slog.Any("error", err))
			os.Exit(1)
		}
		defer mqClient.Close()
		events = mqClient
	} else {
		log.Info("RABBITMQ_URL not set, order events disabled")
	}

	deps := server.Deps{
		Config:    cfg,
		DB:        db,
		Log:       log,
		Notifier:  notify.NewGateway(cfg.Email.ServiceURL, cfg.Email.Timeout, log),
		Mailer:    mail.New(cfg.Mail, log),
		Events:    events,
		AccessLog: true,
	}
	if _, err := server.ReportOrphans(context.Background(), deps); err != nil {
		log.Warn("orphan scan failed", slog.Any("error", err))
	}
	app := server.New(deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting server", slog.String("addr", cfg.App.Port), slog.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Port); err != nil {
			log.Error("server stopped", slog.Any("error", err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error("error during shutdown", slog.Any("error", err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server gracefully stopped")
}
