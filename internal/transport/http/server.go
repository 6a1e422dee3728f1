package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-admin/internal/analytics"
	"github.com/vovakirdan/wirechat-admin/internal/auth"
	"github.com/vovakirdan/wirechat-admin/internal/config"
	"github.com/vovakirdan/wirechat-admin/internal/presence"
	"github.com/vovakirdan/wirechat-admin/internal/store"
)

// NewServer builds the HTTP server: the websocket push channel, the
// admin login endpoint and the bearer-protected analytics/logs API.
func NewServer(
	registry presence.Registry,
	counter *presence.Counter,
	svc *analytics.Service,
	authService *auth.Service,
	st store.Store,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(registry, logger)))

	apiHandlers := NewAPIHandlers(authService, st, logger)
	router.POST("/api/admin/login", apiHandlers.Login)

	analyticsHandlers := NewAnalyticsHandlers(svc, counter, logger)
	logHandlers := NewLogHandlers(st, logger)

	authorized := router.Group("/api", AuthMiddleware(authService, logger))
	{
		authorized.GET("/analytics/stats", analyticsHandlers.Stats)
		authorized.GET("/analytics/new-users-chart", analyticsHandlers.NewUsersChart)
		authorized.GET("/analytics/most-active-users", analyticsHandlers.MostActiveUsers)
		authorized.GET("/analytics/dashboard", analyticsHandlers.Dashboard)
		authorized.GET("/logs", logHandlers.List)
		authorized.GET("/logs/recent", logHandlers.Recent)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	_, _ = fmt.Fprint(c.Writer, "ok")
}
