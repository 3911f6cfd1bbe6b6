package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/server/handlers"
	"github.com/ecoloop/farmer/internal/server/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Auth           *handlers.AuthHandler
	Flocks         *handlers.FlockHandler
	Ledger         *handlers.LedgerHandler
	Community      *handlers.CommunityHandler
	Verifier       middleware.TokenVerifier
	AuthLimiter    *middleware.RateLimiter
	Metrics        *middleware.Metrics
	AllowedOrigins []string
}

// New wires the Gin engine with required routes and middlewares.
func New(deps Deps, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}))
	r.Use(middleware.RequestLogger(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Instrument())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	api := r.Group("/api")
	api.GET("/health-check", deps.Community.HealthCheck)
	api.GET("/forum/posts", deps.Community.ListPosts)

	authGroup := api.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(deps.AuthLimiter.Handler())
	}
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", deps.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(deps.Verifier, logger.Named("auth")))

	protected.GET("/users/me", deps.Auth.Me)
	protected.PUT("/users/me", deps.Auth.UpdateMe)

	protected.GET("/flocks", deps.Flocks.List)
	protected.POST("/flocks", deps.Flocks.Create)
	protected.GET("/flocks/:id", deps.Flocks.Get)
	protected.PUT("/flocks/:id/close", deps.Flocks.Close)

	protected.GET("/production/:flockId", deps.Flocks.ListProduction)
	protected.POST("/production", deps.Flocks.UpsertProduction)

	protected.GET("/health/:flockId", deps.Flocks.ListHealth)
	protected.POST("/health", deps.Flocks.RecordHealth)

	protected.GET("/finances", deps.Ledger.ListTransactions)
	protected.POST("/finances", deps.Ledger.RecordTransaction)
	protected.GET("/finances/summary", deps.Ledger.FinanceSummary)

	protected.GET("/alerts", deps.Ledger.ListAlerts)
	protected.PUT("/alerts/:id/read", deps.Ledger.MarkAlertRead)

	protected.GET("/dashboard/stats", deps.Ledger.DashboardStats)

	protected.POST("/forum/posts", deps.Community.CreatePost)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path),
		})
	})

	logger.Info("router initialized")
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
