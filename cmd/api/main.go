package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"careconnect/cmd/api/auth"
	"careconnect/cmd/api/handlers"
	"careconnect/cmd/api/router"
	"careconnect/cmd/api/services"
	"careconnect/config"
	"careconnect/db"
	"careconnect/eventbus"
	"careconnect/internal/httpclient"
	"careconnect/internal/logger"
	"careconnect/mailer"
	"careconnect/renderer"
	"careconnect/repositories"
	"careconnect/thumbnail"
)

// @title           CareConnect AI Site API
// @version         1.0
// @description     Blog posts, sitemap, demo request, calculator and social sign-in for the CareConnect AI marketing site
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level, "api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB 는 선택이다. 없으면 RSS 조회/사이트맵/계산기만 동작한다.
	mongoReady := true
	if err := db.Init(ctx); err != nil {
		mongoReady = false
		logger.WarnWithFields("mongodb unavailable, running without persistence", logger.Fields{"error": err.Error()})
	}

	feedClient := httpclient.New(httpclient.Config{Timeout: cfg.Feed.FetchTimeout, UserAgent: cfg.Feed.UserAgent})

	var pageRenderer thumbnail.PageRenderer
	if cfg.Feed.RenderFallback {
		pageRenderer = renderer.New(cfg.Secrets.ChromePath)
	}
	thumbs := thumbnail.NewResolver(feedClient, pageRenderer)

	var tags services.TagSource
	if mongoReady {
		tags = repositories.NewPostRepository(db.Database())
	}
	postSvc := services.NewPostService(feedClient, services.PostServiceOptions{
		RSSURL:               cfg.Feed.RSSURL,
		UserAgent:            cfg.Feed.UserAgent,
		ThumbnailConcurrency: cfg.Feed.ThumbnailConcurrency,
		CacheTTL:             cfg.Feed.CacheTTL,
	}, thumbs, tags)

	bus := newEventBus()
	if bus != nil {
		defer bus.Close()
	}

	svc := router.Services{
		Posts:      postSvc,
		Sitemap:    services.NewSitemapService(cfg.Site.URL, postSvc, cfg.Sitemap.PageSize),
		Demo:       newDemoService(cfg, mongoReady, bus),
		Calculator: services.NewCalculatorService(),
		Auth:       newAuthService(cfg, mongoReady),
	}
	if mongoReady {
		svc.Health = handlers.PingerFunc(db.Ping)
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.New(svc, router.Options{
		AllowedOrigins:    cfg.Server.CORSAllowedOrigins,
		FormRatePerMinute: cfg.Demo.RequestsPerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoWithFields("api server listening", logger.Fields{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithFields("api server stopped unexpectedly", logger.Fields{"error": err.Error()})
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("received shutdown signal, shutting down api server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("api server shutdown failed", logger.Fields{"error": err.Error()})
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		logger.WarnWithFields("mongodb disconnect failed", logger.Fields{"error": err.Error()})
	}
	logger.Log.Info("api server stopped")
}

// newEventBus 는 Kafka 가 설정되어 있을 때만 버스를 만든다. 없으면 데모 신청 메일을 API 가 직접 보낸다.
func newEventBus() *eventbus.KafkaEventBus {
	brokers, err := eventbus.GetBrokers()
	if err != nil {
		if !errors.Is(err, eventbus.ErrNotConfigured) {
			logger.WarnWithFields("eventbus config error", logger.Fields{"error": err.Error()})
		}
		return nil
	}
	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.WarnWithFields("failed to create event bus, falling back to direct mail", logger.Fields{"error": err.Error()})
		return nil
	}
	return bus
}

func newDemoService(cfg config.AppConfig, mongoReady bool, bus *eventbus.KafkaEventBus) *services.DemoService {
	var store services.DemoStore
	if mongoReady {
		store = repositories.NewDemoRequestRepository(db.Database())
	}

	var publisher services.Publisher
	if bus != nil {
		publisher = bus
	}

	var sender mailer.Sender
	mg, err := mailer.NewMailgunSender(mailer.Config{
		MailgunDomain: cfg.Secrets.MailgunDomain,
		MailgunAPIKey: cfg.Secrets.MailgunAPIKey,
		FromEmail:     cfg.Secrets.EmailFromAddress,
		FromName:      cfg.Secrets.EmailFromName,
	})
	if err != nil {
		logger.WarnWithFields("mailgun not configured, demo requests cannot be mailed directly", logger.Fields{"error": err.Error()})
	} else {
		sender = mg
	}

	return services.NewDemoService(store, publisher, sender, cfg.Demo.NotifyTo)
}

// newAuthService 는 사용자 저장소와 AUTH_SECRET 이 모두 있을 때만 로그인 라우트를 켠다.
func newAuthService(cfg config.AppConfig, mongoReady bool) *services.AuthService {
	if !mongoReady {
		return nil
	}
	jwtManager, err := auth.NewJWTManager(cfg.Secrets.AuthSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
	if err != nil {
		logger.WarnWithFields("social sign-in disabled", logger.Fields{"error": err.Error()})
		return nil
	}
	registry := auth.NewRegistryFromConfig(cfg)
	if len(registry) == 0 {
		logger.WarnWithFields("social sign-in enabled without providers", logger.Fields{})
	}
	return services.NewAuthService(
		registry,
		repositories.NewUserRepository(db.Database()),
		jwtManager,
		cfg.Auth.SuccessRedirect,
		cfg.Auth.ErrorRedirect,
	)
}
