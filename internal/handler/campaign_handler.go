package handler

import (
	"errors"
	"net/http"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/edudash/edudash-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CampaignHandler handles marketing campaign endpoints.
type CampaignHandler struct {
	campaignService *service.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(campaignService *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// ListCampaigns godoc
// GET /api/v1/staff/campaigns
// Lists all of the preschool's campaigns for the management screen.
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	preschoolID, ok := staffPreschoolID(c)
	if !ok {
		return
	}

	campaigns, err := h.campaignService.List(c.Request.Context(), preschoolID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"campaigns": campaigns})
}

// ListPublicCampaigns godoc
// GET /api/v1/preschools/:preschool_id/campaigns
// Lists the campaigns currently visible to guardians.
func (h *CampaignHandler) ListPublicCampaigns(c *gin.Context) {
	preschoolID, err := uuid.Parse(c.Param("preschool_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	campaigns, err := h.campaignService.ListPublic(c.Request.Context(), preschoolID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"campaigns": campaigns})
}

// CreateCampaign godoc
// POST /api/v1/staff/campaigns
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	preschoolID, ok := staffPreschoolID(c)
	if !ok {
		return
	}

	var req model.CreateCampaignRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	campaign, err := h.campaignService.Create(c.Request.Context(), preschoolID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"campaign": campaign})
}

// UpdateCampaign godoc
// PATCH /api/v1/staff/campaigns/:campaign_id
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("campaign_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateCampaignRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	campaign, err := h.campaignService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"campaign": campaign})
}

// DeleteCampaign godoc
// DELETE /api/v1/staff/campaigns/:campaign_id
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("campaign_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.campaignService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// RedeemCampaign godoc
// POST /api/v1/campaigns/:campaign_id/redeem
// Records one redemption against the campaign's cap.
func (h *CampaignHandler) RedeemCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("campaign_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	campaign, err := h.campaignService.Redeem(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignInactive):
			response.Fail(c, http.StatusConflict, response.ErrCampaignInactive)
		case errors.Is(err, service.ErrCampaignExhausted):
			response.Fail(c, http.StatusConflict, response.ErrCampaignExhausted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"campaign": campaign})
}
