package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"careconnect/config"
	"careconnect/db"
	"careconnect/eventbus"
	"careconnect/internal/logger"
	"careconnect/mailer"
	"careconnect/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level, "notifier")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokers, err := eventbus.GetBrokers()
	if err != nil {
		logger.ErrorWithFields("notifier requires kafka", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	// 발송 상태 기록용. 없으면 메일만 보낸다.
	var store DeliveryStore
	if err := db.Init(ctx); err != nil {
		logger.WarnWithFields("mongodb unavailable, delivery status will not be recorded", logger.Fields{"error": err.Error()})
	} else {
		store = repositories.NewDemoRequestRepository(db.Database())
	}

	sender, err := mailer.NewMailgunSender(mailer.Config{
		MailgunDomain: cfg.Secrets.MailgunDomain,
		MailgunAPIKey: cfg.Secrets.MailgunAPIKey,
		FromEmail:     cfg.Secrets.EmailFromAddress,
		FromName:      cfg.Secrets.EmailFromName,
	})
	if err != nil {
		logger.ErrorWithFields("mailgun is not configured", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	if err := eventbus.EnsureTopics(ctx, brokers, eventbus.TopicSiteEvents, cfg.Kafka.Partitions); err != nil {
		logger.ErrorWithFields("failed to ensure eventbus topics", logger.Fields{"error": err.Error()})
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.ErrorWithFields("failed to create event bus", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer bus.Close()

	routes := NewNotifyService(store, sender, cfg.Demo.NotifyTo).Routes()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		err := bus.Subscribe(ctx, eventbus.GetGroupID("notifier"), eventbus.TopicSiteEvents, routes.Handle)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorWithFields("eventbus subscribe error", logger.Fields{"error": err.Error()})
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		err := bus.StartRetryReinjector(ctx, eventbus.GetGroupID("notifier-retry"), eventbus.TopicSiteEvents)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorWithFields("eventbus retry reinjector error", logger.Fields{"error": err.Error()})
		}
	}()

	logger.InfoWithFields("notifier started", logger.Fields{"topic": eventbus.TopicSiteEvents.Base()})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Log.Info("received shutdown signal, shutting down notifier...")
	case <-ctx.Done():
	}

	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = db.Disconnect(shutdownCtx)
	logger.Log.Info("notifier stopped")
}
