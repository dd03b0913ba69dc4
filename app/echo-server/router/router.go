package router

import (
	"brandPulse/internal/middleware"
	"brandPulse/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, tenantRequired echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", tenantRequired)

	reco.GET("", handler.TopItems)
	reco.POST("", handler.Recommend)
	reco.POST("/feedback", handler.Feedback)
	reco.GET("/stats", handler.Stats)
}

func SetCampaignRoutes(api *echo.Group, handler *rest.CampaignHandler, tenantRequired echo.MiddlewareFunc) {
	campaigns := api.Group("/campaigns", tenantRequired)

	campaigns.POST("/optimize", handler.Optimize)
	campaigns.POST("/prioritize", handler.Prioritize)
	campaigns.POST("/engagement", handler.Engagement)
	campaigns.GET("/:id/variants", handler.VariantStats)
}

func SetAnomalyRoutes(api *echo.Group, handler *rest.AnomalyHandler, tenantRequired echo.MiddlewareFunc) {
	api.POST("/metrics/anomaly", handler.CheckAnomaly, tenantRequired)
	api.POST("/experiments/lift", handler.ExperimentLift, tenantRequired)
}

func SetIntuitionRoutes(api *echo.Group, handler *rest.IntuitionHandler, tenantRequired echo.MiddlewareFunc) {
	intuition := api.Group("/intuition", tenantRequired)

	intuition.GET("", handler.Get)
	intuition.GET("/insights", handler.Insights)
}

func SetAdminRoutes(api *echo.Group, handler *rest.AdminHandler, tenantRequired echo.MiddlewareFunc) {
	admin := api.Group("/admin", tenantRequired, middleware.AdminOnly())

	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpsertConfig)
	admin.GET("/priors/patterns", handler.PriorPatterns)
	admin.GET("/priors/weights", handler.GlobalWeights)
	admin.GET("/events", handler.RecentEvents)
}
