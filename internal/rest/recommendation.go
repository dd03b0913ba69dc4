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
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommenderService
	}

	RecommenderService interface {
		GetRecommendations(ctx context.Context, tenantID string, user domain.UserContext, candidates []domain.CandidateItem, topK int) (*domain.RecommendationResult, error)
		TopItems(ctx context.Context, tenantID string, topK int) ([]domain.RankedCandidate, error)
		RecordFeedback(ctx context.Context, tenantID, userID, itemID, action, intent string) error
		BanditStats(ctx context.Context, tenantID string) (domain.BanditStats, error)
	}

	RecommendRequest struct {
		User       domain.UserContext     `json:"user"`
		Candidates []domain.CandidateItem `json:"candidates" validate:"required,min=1,dive"`
		TopK       int                    `json:"top_k"`
	}

	TopItemsQuery struct {
		TopK int `query:"top_k"`
	}

	FeedbackRequest struct {
		UserID string `json:"user_id"`
		ItemID string `json:"item_id" validate:"required"`
		Action string `json:"action" validate:"required,oneof=click add_to_cart purchase thumbs_up thumbs_down dismiss"`
		Intent string `json:"intent,omitempty"`
	}
)

func NewRecommendationHandler(svc RecommenderService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
	}
}

// POST /api/v1/recommendations
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	res, err := h.service.GetRecommendations(c.Request().Context(), tenant, req.User, req.Candidates, req.TopK)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

// GET /api/v1/recommendations?top_k=10
func (h *RecommendationHandler) TopItems(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q TopItemsQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	items, err := h.service.TopItems(c.Request().Context(), tenant, q.TopK)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

// POST /api/v1/recommendations/feedback
func (h *RecommendationHandler) Feedback(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.service.RecordFeedback(c.Request().Context(), tenant, req.UserID, req.ItemID, req.Action, req.Intent); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}

// GET /api/v1/recommendations/stats
func (h *RecommendationHandler) Stats(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	stats, err := h.service.BanditStats(c.Request().Context(), tenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
