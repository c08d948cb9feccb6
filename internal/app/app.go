package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/database"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/handlers"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/middleware"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	svcs, err := services.New(cfg, app.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svcs

	app.handlers, err = handlers.New(app.logger, svcs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.services.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing services")
	}
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}
	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/health/ready", a.handlers.Health.Ready)

	if a.config.Monitoring.Enabled {
		router.Use(middleware.HTTPMetrics(prometheus.DefaultRegisterer))

		path := a.config.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	{
		posts := api.Group("/posts")
		{
			posts.POST("", a.handlers.Content.Ingest)
			posts.POST("/batch", a.handlers.Content.IngestBatch)
			posts.GET("/:postId", a.handlers.Content.Get)
		}

		api.GET("/categories", a.handlers.Content.Categories)

		api.POST("/interactions", a.handlers.Interaction.Track)

		recommendations := api.Group("/recommendations")
		{
			recommendations.GET("/:userId", a.handlers.Recommendation.Get)
		}

		api.GET("/search", a.handlers.Search.Search)

		users := api.Group("/users")
		{
			users.POST("", a.handlers.User.Create)
			users.GET("", a.handlers.User.List)
			users.POST("/onboard", a.handlers.User.Onboard)
			users.GET("/:userId", a.handlers.User.Get)
			users.DELETE("/:userId", a.handlers.User.Delete)
			users.GET("/:userId/interests", a.handlers.User.Interests)
			users.GET("/:userId/stats", a.handlers.User.Stats)
			users.GET("/:userId/searches", a.handlers.Search.History)
		}
	}

	a.router = router
}
