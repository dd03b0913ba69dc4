package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"brandPulse/domain"
)

type (
	AdminHandler struct {
		validate *validator.Validate
		configs  ConfigAdminService
		priors   PriorsReader
		events   EventsReader
	}

	ConfigAdminService interface {
		GetConfig(ctx context.Context, tenantID string) (domain.EngineConfig, error)
		UpdateConfig(ctx context.Context, cfg domain.EngineConfig) (domain.EngineConfig, error)
	}

	// PriorsReader exposes the cross-tenant aggregates for inspection.
	PriorsReader interface {
		GetTopPatterns(limit int) []domain.PatternStat
		GlobalWeights() (domain.ScoringWeights, int)
	}

	// EventsReader pages through the engine event log.
	EventsReader interface {
		RecentEvents(ctx context.Context, tenantID string, limit int) ([]domain.EngineEvent, error)
	}

	ConfigRequest struct {
		Strategy string  `json:"strategy" validate:"omitempty,oneof=thompson ucb epsilon_greedy"`
		Epsilon  float64 `json:"epsilon" validate:"gte=0,lte=1"`

		LowStockThreshold  int     `json:"low_stock_threshold" validate:"gte=0"`
		HighStockThreshold int     `json:"high_stock_threshold" validate:"gte=0"`
		LowStockPenalty    float64 `json:"low_stock_penalty" validate:"gte=0,lte=1"`
		HighStockBonus     float64 `json:"high_stock_bonus" validate:"gte=0,lte=1"`
		PromotedBonus      float64 `json:"promoted_bonus" validate:"gte=0,lte=1"`
		NewUserDoseCeiling float64 `json:"new_user_dose_ceiling" validate:"gte=0"`

		AnomalyThreshold     float64 `json:"anomaly_threshold" validate:"gte=0"`
		EWMAAlpha            float64 `json:"ewma_alpha" validate:"gte=0,lte=1"`
		MinAnomalyHistory    int     `json:"min_anomaly_history" validate:"gte=0"`
		MinExperimentSamples int     `json:"min_experiment_samples" validate:"gte=0"`

		Weights *domain.ScoringWeights `json:"weights,omitempty"`
	}

	globalWeightsResponse struct {
		Weights domain.ScoringWeights `json:"weights"`
		Samples int                   `json:"samples"`
	}
)

func NewAdminHandler(configs ConfigAdminService, priors PriorsReader, events EventsReader) *AdminHandler {
	return &AdminHandler{
		validate: validator.New(),
		configs:  configs,
		priors:   priors,
		events:   events,
	}
}

// GET /api/v1/admin/config
func (h *AdminHandler) GetConfig(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	cfg, err := h.configs.GetConfig(c.Request().Context(), tenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

// PUT /api/v1/admin/config
func (h *AdminHandler) UpsertConfig(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req ConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	cfg := domain.EngineConfig{
		TenantID:             tenant,
		Strategy:             req.Strategy,
		Epsilon:              req.Epsilon,
		LowStockThreshold:    req.LowStockThreshold,
		HighStockThreshold:   req.HighStockThreshold,
		LowStockPenalty:      req.LowStockPenalty,
		HighStockBonus:       req.HighStockBonus,
		PromotedBonus:        req.PromotedBonus,
		NewUserDoseCeiling:   req.NewUserDoseCeiling,
		AnomalyThreshold:     req.AnomalyThreshold,
		EWMAAlpha:            req.EWMAAlpha,
		MinAnomalyHistory:    req.MinAnomalyHistory,
		MinExperimentSamples: req.MinExperimentSamples,
	}
	if req.Weights != nil {
		cfg.Weights = *req.Weights
	}

	updated, err := h.configs.UpdateConfig(c.Request().Context(), cfg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

// GET /api/v1/admin/priors/patterns?limit=10
func (h *AdminHandler) PriorPatterns(c echo.Context) error {
	if _, ok := tenantID(c); !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.priors.GetTopPatterns(limit)))
}

// GET /api/v1/admin/events?limit=50
func (h *AdminHandler) RecentEvents(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.events.RecentEvents(c.Request().Context(), tenant, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}

// GET /api/v1/admin/priors/weights
func (h *AdminHandler) GlobalWeights(c echo.Context) error {
	if _, ok := tenantID(c); !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	weights, samples := h.priors.GlobalWeights()
	return c.JSON(http.StatusOK, fres.Response.StatusOK(globalWeightsResponse{
		Weights: weights,
		Samples: samples,
	}))
}
