package handler

import (
	"errors"
	"net/http"

	"github.com/edudash/edudash-backend/internal/middleware"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/edudash/edudash-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuotaHandler handles AI usage quota endpoints.
type QuotaHandler struct {
	quotaService *service.QuotaService
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(quotaService *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotaService: quotaService}
}

// ListTiers godoc
// GET /api/v1/tiers
// Public pricing page data: all tiers ordered by price.
func (h *QuotaHandler) ListTiers(c *gin.Context) {
	tiers, err := h.quotaService.ListTiers(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tiers": tiers})
}

// QuotaStatus godoc
// GET /api/v1/quota
// Returns the caller's tier limit, usage so far today and the reset time.
func (h *QuotaHandler) QuotaStatus(c *gin.Context) {
	userID, tierCode, ok := h.callerTier(c)
	if !ok {
		return
	}

	status, err := h.quotaService.Status(c.Request.Context(), userID, tierCode)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quota": status})
}

// ConsumeQuota godoc
// POST /api/v1/quota/consume
// Spends one unit of the caller's daily quota; 429 when exhausted.
func (h *QuotaHandler) ConsumeQuota(c *gin.Context) {
	userID, tierCode, ok := h.callerTier(c)
	if !ok {
		return
	}

	status, err := h.quotaService.Consume(c.Request.Context(), userID, tierCode)
	if err != nil {
		if errors.Is(err, service.ErrQuotaExceeded) {
			response.Fail(c, http.StatusTooManyRequests, response.ErrQuotaExceeded)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quota": status})
}

// UpgradeTier godoc
// POST /api/v1/quota/tier
// Moves the caller onto a different tier.
func (h *QuotaHandler) UpgradeTier(c *gin.Context) {
	userID, _, ok := h.callerTier(c)
	if !ok {
		return
	}

	var req struct {
		TierCode string `json:"tier_code" binding:"required,min=2,max=32"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	tier, err := h.quotaService.UpgradeTier(c.Request.Context(), userID, req.TierCode)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tier": tier})
}

// callerTier resolves the caller's ID and tier from the JWT and profile.
func (h *QuotaHandler) callerTier(c *gin.Context) (uuid.UUID, string, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return uuid.Nil, "", false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return uuid.Nil, "", false
	}

	tierCode, err := h.quotaService.TierCodeFor(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return uuid.Nil, "", false
	}
	return userID, tierCode, true
}
