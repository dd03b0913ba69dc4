package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"brandPulse/domain"
)

type (
	CampaignHandler struct {
		validate *validator.Validate
		service  OptimizerService
	}

	OptimizerService interface {
		RankCampaigns(ctx context.Context, campaigns []domain.CampaignCandidate) ([]domain.PrioritizedCampaign, error)
		OptimizeSelection(ctx context.Context, tenantID string, campaigns []domain.CampaignCandidate, variants map[string][]string, segment string) (*domain.CampaignSelection, error)
		RecordEngagement(ctx context.Context, tenantID, campaignID, variantID, action string) error
		VariantStats(ctx context.Context, tenantID, campaignID string) (domain.BanditStats, error)
	}

	OptimizeRequest struct {
		Campaigns []domain.CampaignCandidate `json:"campaigns" validate:"required,min=1,dive"`
		Variants  map[string][]string        `json:"variants"`
		Segment   string                     `json:"segment"`
	}

	EngagementRequest struct {
		CampaignID string `json:"campaign_id" validate:"required"`
		VariantID  string `json:"variant_id" validate:"required"`
		Action     string `json:"action" validate:"required,oneof=open click convert ignore unsubscribe bounce"`
	}
)

func NewCampaignHandler(svc OptimizerService) *CampaignHandler {
	return &CampaignHandler{
		validate: validator.New(),
		service:  svc,
	}
}

// POST /api/v1/campaigns/optimize
func (h *CampaignHandler) Optimize(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req OptimizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	sel, err := h.service.OptimizeSelection(c.Request().Context(), tenant, req.Campaigns, req.Variants, req.Segment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if sel == nil {
		// nothing queued right now; an empty selection, not a failure
		return c.JSON(http.StatusOK, fres.Response.StatusOK(domain.CampaignSelection{}))
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sel))
}

// POST /api/v1/campaigns/prioritize
func (h *CampaignHandler) Prioritize(c echo.Context) error {
	if _, ok := tenantID(c); !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req OptimizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ranked, err := h.service.RankCampaigns(c.Request().Context(), req.Campaigns)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ranked))
}

// POST /api/v1/campaigns/engagement
func (h *CampaignHandler) Engagement(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req EngagementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.service.RecordEngagement(c.Request().Context(), tenant, req.CampaignID, req.VariantID, req.Action); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("engagement recorded"))
}

// GET /api/v1/campaigns/:id/variants
func (h *CampaignHandler) VariantStats(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	campaignID := c.Param("id")
	if campaignID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing campaign id"})
	}

	stats, err := h.service.VariantStats(c.Request().Context(), tenant, campaignID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
