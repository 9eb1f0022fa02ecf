package httpapi

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/star-labs/star-platform/internal/app"
	"github.com/star-labs/star-platform/internal/app/metrics"
	"github.com/star-labs/star-platform/internal/config"
	"github.com/star-labs/star-platform/internal/middleware"
	"github.com/star-labs/star-platform/pkg/logger"
)

// NewRouter builds the REST API around the application services.
func NewRouter(application *app.Application, cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(metrics.Middleware())

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
		r.Use(limiter.Handler())
	}

	h := &handler{app: application, log: log}

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.POST("/auth/connect", h.connect)

		api.GET("/users/me", h.currentUser)
		api.GET("/users/:id/referrals", h.userReferrals)
		api.GET("/users/:id/projects", h.userProjects)
		api.GET("/users/:id/participations", h.userParticipations)

		api.POST("/points/mint", h.mintPoints)

		api.POST("/projects/create", h.createProject)
		api.GET("/projects", h.listProjects)
		api.GET("/projects/:id", h.getProject)
		api.POST("/projects/:id/participate", h.participate)
		api.GET("/projects/:id/participations", h.projectParticipations)

		api.GET("/stats/global", h.globalStats)
	}

	return r
}

func corsMiddleware(allowedOrigins string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}

	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}

	return cors.New(corsCfg)
}
