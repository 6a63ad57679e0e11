package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"careconnect/config"
	"careconnect/db"
	"careconnect/eventbus"
	"careconnect/internal/httpclient"
	"careconnect/internal/logger"
	"careconnect/renderer"
	"careconnect/repositories"
	"careconnect/summarizer"
	"careconnect/thumbnail"
)

const (
	runTimeout    = 10 * time.Minute
	backlogPerRun = 5
	scheduleZone  = "Asia/Seoul"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level, "watcher")

	// 첫 실행 중에 종료 신호가 와도 진행 중인 실행을 취소하고 정리 단계로 간다.
	ctx, cancel := shutdownContext()
	defer cancel()

	if err := db.Init(ctx); err != nil {
		logger.ErrorWithFields("failed to initialize MongoDB", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	feedClient := httpclient.New(httpclient.Config{Timeout: cfg.Feed.FetchTimeout, UserAgent: cfg.Feed.UserAgent})
	svc := NewWatchService(feedClient, WatchOptions{
		RSSURL:    cfg.Feed.RSSURL,
		UserAgent: cfg.Feed.UserAgent,
		Backlog:   backlogPerRun,
	}, repositories.NewFeedStateRepository(db.Database()), repositories.NewPostRepository(db.Database()))

	var pageRenderer *renderer.Renderer
	if cfg.Feed.RenderFallback {
		pageRenderer = renderer.New(cfg.Secrets.ChromePath)
		svc.WithArticles(pageRenderer)
		svc.WithThumbnails(thumbnail.NewResolver(feedClient, pageRenderer))
	} else {
		svc.WithThumbnails(thumbnail.NewResolver(feedClient, nil))
	}

	if cfg.Watcher.Summarize {
		sum, err := summarizer.New(ctx, cfg.Secrets.GeminiAPIKey, cfg.Secrets.GeminiModel, summarizer.NewQuotaLimiter(cfg.SummaryQuota))
		if err != nil {
			logger.WarnWithFields("post classification disabled", logger.Fields{"error": err.Error()})
		} else {
			svc.WithClassifier(sum, repositories.NewAILogRepository(db.Database()))
		}
	}

	if bus := newEventBus(); bus != nil {
		defer bus.Close()
		svc.WithPublisher(bus)
	}

	run := func() {
		runCtx, runCancel := context.WithTimeout(ctx, runTimeout)
		defer runCancel()
		if _, err := svc.RunOnce(runCtx); err != nil {
			logger.ErrorWithFields("watcher run failed", logger.Fields{"error": err.Error()})
		}
	}

	// 첫 실행은 즉시 1회 수행
	run()

	loc, err := time.LoadLocation(scheduleZone)
	if err != nil {
		loc = time.Local
	}
	cl := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(cfg.Watcher.Schedule, run); err != nil {
		logger.ErrorWithFields("invalid watcher schedule", logger.Fields{"schedule": cfg.Watcher.Schedule, "error": err.Error()})
		os.Exit(1)
	}
	c.Start()
	logger.InfoWithFields("watcher scheduled", logger.Fields{"schedule": cfg.Watcher.Schedule, "rss_url": cfg.Feed.RSSURL})

	<-ctx.Done()
	logger.Log.Info("received shutdown signal, shutting down watcher...")
	<-c.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = db.Disconnect(shutdownCtx)
	logger.Log.Info("watcher stopped")
}

// shutdownContext 는 SIGINT/SIGTERM 을 받으면 취소되는 context 를 반환한다.
func shutdownContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newEventBus 는 Kafka 가 없으면 nil 이다. 이 경우 새 글은 저장/분류만 하고 알리지 않는다.
func newEventBus() *eventbus.KafkaEventBus {
	brokers, err := eventbus.GetBrokers()
	if err != nil {
		if errors.Is(err, eventbus.ErrNotConfigured) {
			logger.Log.Info("kafka not configured, post.published events are disabled")
		}
		return nil
	}
	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.WarnWithFields("failed to create event bus", logger.Fields{"error": err.Error()})
		return nil
	}
	return bus
}

// cronLogger 는 cron 내부 로그를 구조화 로거로 보낸다.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.DebugWithFields("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	logger.ErrorWithFields("cron: "+msg, fields)
}

func kvFields(kv []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
