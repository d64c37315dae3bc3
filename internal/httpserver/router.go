package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"caira-engine/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

// NewRouter wires all routes. authHandler is nil when auth is not
// configured; db and rdb are nil when those backends are absent and only
// affect readiness reporting.
func NewRouter(
	processHandler *handler.ProcessHandler,
	historyHandler *handler.HistoryHandler,
	metaHandler *handler.MetaHandler,
	authHandler *handler.AuthHandler,
	jwtSecret string,
	db *pgxpool.Pool,
	rdb *redis.Client,
) *Router {
	r := gin.Default()

	r.Use(TraceMiddleware())
	r.Use(MetricsMiddleware())

	// Liveness endpoints first
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/health", metaHandler.Health)

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.JSON(500, gin.H{"status": "redis_not_ready", "error": err.Error()})
				return
			}
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/capabilities", metaHandler.Capabilities)

	// Public
	if authHandler != nil {
		r.POST("/register", authHandler.Register)
		r.POST("/login", authHandler.Login)
	}

	// Engine routes, protected when a JWT secret is configured
	engine := r.Group("/")
	if jwtSecret != "" {
		engine.Use(AuthMiddleware(jwtSecret))
	}
	{
		engine.POST("/process", processHandler.Process)
		engine.POST("/validate", processHandler.Validate)
		engine.GET("/history/:session_id", historyHandler.Get)
		engine.DELETE("/history/:session_id", historyHandler.Delete)
		engine.GET("/interactions/:session_id", historyHandler.Interactions)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
