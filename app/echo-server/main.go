package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brandPulse/app/echo-server/router"
	"brandPulse/business/bandit"
	"brandPulse/business/intuition"
	"brandPulse/business/optimizer"
	"brandPulse/business/priors"
	"brandPulse/business/recommender"
	"brandPulse/internal/middleware"
	"brandPulse/internal/repository/memory"
	psqlRepo "brandPulse/internal/repository/postgres"
	redisRepo "brandPulse/internal/repository/redis"
	"brandPulse/internal/rest"
	"brandPulse/pkg/config"
	"brandPulse/pkg/database"
	redisdb "brandPulse/pkg/database/redis"
	"brandPulse/pkg/logger"
	"brandPulse/pkg/metrics"
	jsonres "brandPulse/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting BrandPulse decision engine", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Bandit states live in memory by default; Redis makes them shared
	// across replicas.
	var banditStates recommender.BanditStateRepository = memory.NewBanditStateStore()
	if cfg.Redis.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer func() {
			_ = redisdb.CloseRedisClient(redisClient)
		}()

		banditStates = redisRepo.NewBanditStateRepository(redisClient)
		logger.Info("Redis connected, bandit states are shared")
	}

	// Init repo
	eventRepo := psqlRepo.NewEventRepository(db)
	configRepo := psqlRepo.NewEngineConfigRepository(db)
	intuitionStore := memory.NewIntuitionStore()

	// Init engines
	priorStore := priors.NewStore(cfg.Engine.Weights)
	intuitionEngine := intuition.NewEngine(intuitionStore, priorStore, intuition.Config{
		WarmingThreshold: cfg.Engine.WarmingThreshold,
		LearnedThreshold: cfg.Engine.LearnedThreshold,
		MatureThreshold:  cfg.Engine.MatureThreshold,
	}, cfg.Engine.Weights)
	core := bandit.New(nil)

	// Init service
	recommenderService := recommender.NewService(
		banditStates, eventRepo, configRepo, intuitionEngine, priorStore, core, cfg.Engine,
	)
	optimizerService := optimizer.NewService(banditStates, eventRepo, core, cfg.Engine)

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(recommenderService)
	campaignHandler := rest.NewCampaignHandler(optimizerService)
	anomalyHandler := rest.NewAnomalyHandler(recommenderService)
	intuitionHandler := rest.NewIntuitionHandler(intuitionEngine)
	adminHandler := rest.NewAdminHandler(recommenderService, priorStore, eventRepo)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, jsonres.Success("healthy", map[string]string{
			"version": cfg.App.Version,
		}))
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	tenantRequired := middleware.TenantMiddleware(cfg.JWT.SecretKey)
	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recommendationHandler, tenantRequired)
	router.SetCampaignRoutes(api, campaignHandler, tenantRequired)
	router.SetAnomalyRoutes(api, anomalyHandler, tenantRequired)
	router.SetIntuitionRoutes(api, intuitionHandler, tenantRequired)
	router.SetAdminRoutes(api, adminHandler, tenantRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
