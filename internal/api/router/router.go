package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/social-feed/config"
	_ "github.com/d60-Lab/social-feed/docs"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/pkg/middleware"
)

func newEngine(cfg *config.Config, serviceName string) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	e := gin.New()
	e.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		e.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	e.Use(middleware.RequestLog())
	e.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Telemetry.Enabled {
		e.Use(otelgin.Middleware(serviceName))
	}
	if cfg.RateLimit.Enabled {
		e.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	e.Use(middleware.Identity(cfg.Auth))

	e.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return e
}

// NewUserRouter 档案 + 关系服务的路由
func NewUserRouter(cfg *config.Config, uh *handler.UserHandler) *gin.Engine {
	e := newEngine(cfg, "user-service")

	users := e.Group("/users")
	{
		users.POST("", uh.Create)
		users.GET("", uh.List)
		users.GET("/:id", uh.Get)
		users.PUT("/:id", uh.Update)
		users.GET("/username/:username", uh.GetByUsername)
		users.POST("/:id/avatars", uh.AddAvatar)

		users.POST("/:id/followers", uh.Follow)
		users.DELETE("/:id/followers", uh.Unfollow)
		users.GET("/:id/followers", uh.ListFollowers)
		users.GET("/:id/following", uh.ListFollowing)
	}
	return e
}

// NewPostRouter 帖子 + 信息流服务的路由
func NewPostRouter(cfg *config.Config, ph *handler.PostHandler) *gin.Engine {
	e := newEngine(cfg, "post-service")

	posts := e.Group("/posts")
	{
		posts.POST("", ph.Create)
		posts.GET("", ph.List)
		posts.GET("/feed", ph.Feed)
		posts.GET("/user/:id", ph.ListByUser)
		posts.GET("/:id", ph.Get)
		posts.PUT("/:id", ph.Update)
		posts.DELETE("/:id", ph.Delete)
		posts.POST("/:id/likes", ph.Like)
		posts.DELETE("/:id/likes", ph.Unlike)
		posts.POST("/:id/comments", ph.AddComment)
	}
	return e
}
