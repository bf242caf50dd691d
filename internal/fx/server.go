package fx

import (
	"context"
	"errors"
	"net/http"

	"Wanderfund/config"
	"Wanderfund/internal/logger"
	"Wanderfund/internal/metrics"
	"Wanderfund/internal/middleware"
	"Wanderfund/internal/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// ServerModule provides the HTTP server.
var ServerModule = fx.Module("server",
	fx.Provide(
		newRouter,
	),
	fx.Invoke(
		setupRoutes,
	),
)

func newRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return gin.Default()
}

func setupRoutes(
	lc fx.Lifecycle,
	cfg *config.Config,
	router *gin.Engine,
	handler *routes.Handler,
	jwtSvc *middleware.JwtService,
	limiters *RateLimiters,
) {
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.Metrics())

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	webhooks := router.Group("/api/webhooks")
	webhooks.Use(middleware.RateLimit(limiters.Webhook))
	{
		webhooks.POST("/:provider", handler.HandleWebhook)
	}

	internal := router.Group("/api/internal")
	internal.Use(middleware.InternalToken(cfg.Internal.Token))
	{
		internal.POST("/scheduler/run", handler.RunScheduler)
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(jwtSvc))
	private.Use(middleware.RateLimitByUser(limiters.API))
	{
		savings := private.Group("/savings")
		{
			savings.POST("", handler.CreateSavingsGoal)
			savings.GET("", handler.ListSavingsGoals)
			savings.GET("/stats", handler.GetSavingsStats)
			savings.GET("/plan", handler.GetSavingsPlan)
			savings.GET("/:id", handler.GetSavingsGoal)
			savings.PATCH("/:id", handler.UpdateSavingsGoal)
			savings.GET("/:id/progress", handler.GetSavingsProgress)
			savings.POST("/:id/contributions", handler.AddContribution)
			savings.GET("/:id/contributions", handler.ListContributions)
		}

		payments := private.Group("/payments")
		{
			payments.POST("", handler.InitiatePayment)
			payments.GET("", handler.ListPayments)
			payments.GET("/stats", handler.GetPaymentStats)
			payments.GET("/:id", handler.GetPayment)
			payments.PUT("/:id/cancel", handler.CancelPayment)
			payments.POST("/:id/retry", handler.RetryPayment)
		}

		notifications := private.Group("/notifications")
		{
			notifications.GET("/settings", handler.GetNotificationSettings)
			notifications.PUT("/settings", handler.UpdateNotificationSettings)
		}
	}

	serverAddr := ":" + cfg.Server.Port
	server := &http.Server{Addr: serverAddr, Handler: router}
	logger.Info().
		Str("address", serverAddr).
		Str("environment", cfg.App.Environment).
		Msg("Server starting")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("Failed to start server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Server stopping...")
			return server.Shutdown(ctx)
		},
	})
}
