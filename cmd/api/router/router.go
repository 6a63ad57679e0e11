package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"careconnect/cmd/api/handlers"
	"careconnect/cmd/api/middleware"
	"careconnect/cmd/api/services"
	_ "careconnect/docs"
)

// Services 는 라우트가 사용하는 서비스 묶음이다. Auth 가 nil 이면 /api/auth 라우트를 등록하지 않는다.
type Services struct {
	Posts      *services.PostService
	Sitemap    *services.SitemapService
	Demo       *services.DemoService
	Calculator *services.CalculatorService
	Auth       *services.AuthService
	Health     handlers.Pinger
}

type Options struct {
	AllowedOrigins     []string
	FormRatePerMinute  int
	DisableRequestLogs bool
}

func New(svc Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(opts.AllowedOrigins))
	if !opts.DisableRequestLogs {
		r.Use(middleware.RequestTrace(), middleware.RequestLoggingMiddleware())
	}

	// 등록되지 않은 메서드는 404 대신 405 로 응답한다.
	r.HandleMethodNotAllowed = true
	r.NoMethod(handlers.MethodNotAllowedHandler)

	r.GET("/health", handlers.HealthHandler(svc.Health))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/posts", handlers.ListPostsHandler(svc.Posts))
		api.GET("/posts/:id", handlers.GetPostHandler(svc.Posts))
		api.GET("/posts/slug/:slug", handlers.GetPostBySlugHandler(svc.Posts))
		api.GET("/sitemap.xml", handlers.SitemapHandler(svc.Sitemap))

		forms := api.Group("", middleware.RateLimit(opts.FormRatePerMinute))
		forms.POST("/request-demo", handlers.RequestDemoHandler(svc.Demo))
		forms.POST("/calculator", handlers.CalculatorHandler(svc.Calculator))

		if svc.Auth != nil {
			authGroup := api.Group("/auth")
			authGroup.GET("/signin/:provider", handlers.SignInHandler(svc.Auth))
			authGroup.GET("/callback/:provider", handlers.CallbackHandler(svc.Auth))
			authGroup.GET("/session", handlers.SessionHandler(svc.Auth))
		}
	}

	return r
}

// corsMiddleware 는 rs/cors 핸들러를 gin 미들웨어로 감싼다. origins 가 비어 있으면 모든 origin 을 허용한다.
func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Span-Id"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           600,
	})
	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
