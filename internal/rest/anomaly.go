package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"brandPulse/business/anomaly"
	"brandPulse/domain"
	"brandPulse/pkg/metrics"
)

type (
	AnomalyHandler struct {
		validate *validator.Validate
		configs  ConfigProvider
	}

	// ConfigProvider resolves the tenant's effective engine config so
	// anomaly checks honor per-tenant thresholds.
	ConfigProvider interface {
		GetConfig(ctx context.Context, tenantID string) (domain.EngineConfig, error)
	}

	AnomalyRequest struct {
		Current float64   `json:"current"`
		History []float64 `json:"history" validate:"required"`

		// optional per-call overrides
		Threshold float64 `json:"threshold,omitempty"`
		Alpha     float64 `json:"alpha,omitempty"`
	}

	LiftRequest struct {
		ControlSuccesses int `json:"control_successes" validate:"gte=0"`
		ControlTotal     int `json:"control_total" validate:"gte=0"`
		VariantSuccesses int `json:"variant_successes" validate:"gte=0"`
		VariantTotal     int `json:"variant_total" validate:"gte=0"`
	}
)

func NewAnomalyHandler(configs ConfigProvider) *AnomalyHandler {
	return &AnomalyHandler{
		validate: validator.New(),
		configs:  configs,
	}
}

// POST /api/v1/metrics/anomaly
func (h *AnomalyHandler) CheckAnomaly(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req AnomalyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	cfg := h.detectionConfig(c.Request().Context(), tenant)
	if req.Threshold > 0 {
		cfg.DeviationThreshold = req.Threshold
	}
	if req.Alpha > 0 && req.Alpha <= 1 {
		cfg.Alpha = req.Alpha
	}

	result := anomaly.DetectAnomaly(req.Current, req.History, cfg)

	verdict := "normal"
	if result.IsAnomaly {
		verdict = "anomaly"
	}
	metrics.AnomalyChecks.WithLabelValues(tenant, verdict).Inc()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// POST /api/v1/experiments/lift
func (h *AnomalyHandler) ExperimentLift(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req LiftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if req.ControlSuccesses > req.ControlTotal || req.VariantSuccesses > req.VariantTotal {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "successes exceed totals"})
	}

	cfg := h.detectionConfig(c.Request().Context(), tenant)
	lift := anomaly.ComputeExperimentLift(
		req.ControlSuccesses, req.ControlTotal,
		req.VariantSuccesses, req.VariantTotal,
		cfg,
	)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(lift))
}

func (h *AnomalyHandler) detectionConfig(ctx context.Context, tenant string) anomaly.Config {
	cfg := anomaly.DefaultConfig()
	if h.configs == nil {
		return cfg
	}

	tenantCfg, err := h.configs.GetConfig(ctx, tenant)
	if err != nil {
		return cfg
	}

	if tenantCfg.AnomalyThreshold > 0 {
		cfg.DeviationThreshold = tenantCfg.AnomalyThreshold
	}
	if tenantCfg.EWMAAlpha > 0 && tenantCfg.EWMAAlpha <= 1 {
		cfg.Alpha = tenantCfg.EWMAAlpha
	}
	if tenantCfg.MinAnomalyHistory > 0 {
		cfg.MinHistory = tenantCfg.MinAnomalyHistory
	}
	if tenantCfg.MinExperimentSamples > 0 {
		cfg.MinSampleSize = tenantCfg.MinExperimentSamples
	}
	return cfg
}
