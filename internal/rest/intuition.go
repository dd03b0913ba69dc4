package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"brandPulse/domain"
)

type (
	IntuitionHandler struct {
		service IntuitionService
	}

	IntuitionService interface {
		Get(ctx context.Context, tenantID string) (domain.BrandIntuition, error)
		TopInsights(ctx context.Context, tenantID string) ([]domain.Insight, error)
		GetEffectBoosts(ctx context.Context, tenantID, intent string) (map[string]float64, error)
	}

	insightsResponse struct {
		Insights []domain.Insight   `json:"insights"`
		Boosts   map[string]float64 `json:"boosts,omitempty"`
	}
)

func NewIntuitionHandler(svc IntuitionService) *IntuitionHandler {
	return &IntuitionHandler{service: svc}
}

// GET /api/v1/intuition
func (h *IntuitionHandler) Get(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	state, err := h.service.Get(c.Request().Context(), tenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(state))
}

// GET /api/v1/intuition/insights?intent=relax
func (h *IntuitionHandler) Insights(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx := c.Request().Context()

	insights, err := h.service.TopInsights(ctx, tenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	res := insightsResponse{Insights: insights}

	if intent := c.QueryParam("intent"); intent != "" {
		boosts, err := h.service.GetEffectBoosts(ctx, tenant, intent)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
		res.Boosts = boosts
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}
