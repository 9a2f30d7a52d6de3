package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/edudash/edudash-backend/internal/middleware"
	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/edudash/edudash-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegistrationHandler handles the enrollment review endpoints.
type RegistrationHandler struct {
	regService   *service.RegistrationService
	mediaService *service.MediaService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(regService *service.RegistrationService, mediaService *service.MediaService) *RegistrationHandler {
	return &RegistrationHandler{
		regService:   regService,
		mediaService: mediaService,
	}
}

// CreateRegistration godoc
// POST /api/v1/registrations
// Public enrollment submission; no authentication required.
func (h *RegistrationHandler) CreateRegistration(c *gin.Context) {
	var req model.CreateRegistrationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	reg, err := h.regService.Create(c.Request.Context(), &req)
	if err != nil {
		// An unknown preschool_id trips the foreign key, not validation.
		if isForeignKeyViolation(err) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"registration": reg})
}

// ListRegistrations godoc
// GET /api/v1/staff/registrations?status=pending
// Lists the preschool's registration requests with optional status filter.
func (h *RegistrationHandler) ListRegistrations(c *gin.Context) {
	preschoolID, ok := staffPreschoolID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	var status *model.RegistrationStatus
	if raw := c.Query("status"); raw != "" {
		st := model.RegistrationStatus(raw)
		switch st {
		case model.RegistrationPending, model.RegistrationApproved, model.RegistrationRejected:
			status = &st
		default:
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
	}

	regs, pagination, err := h.regService.List(c.Request.Context(), preschoolID, status, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"registrations": regs}, pagination)
}

// GetRegistration godoc
// GET /api/v1/staff/registrations/:registration_id
func (h *RegistrationHandler) GetRegistration(c *gin.Context) {
	id, err := uuid.Parse(c.Param("registration_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reg, err := h.regService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"registration": reg})
}

// ApproveRegistration godoc
// POST /api/v1/staff/registrations/:registration_id/approve
// Approves a pending registration and pushes it to the external directory.
// A sync failure does not roll back the approval; the response carries a
// warning and the row is flagged for manual reconciliation.
func (h *RegistrationHandler) ApproveRegistration(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	reviewerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	id, err := uuid.Parse(c.Param("registration_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reg, warning, err := h.regService.Approve(c.Request.Context(), id, reviewerID)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotPending) {
			response.Fail(c, http.StatusConflict, response.ErrRegistrationNotPending)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if warning != "" {
		response.SuccessWithWarning(c, http.StatusOK, gin.H{"registration": reg}, warning)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"registration": reg})
}

// RejectRegistration godoc
// POST /api/v1/staff/registrations/:registration_id/reject
func (h *RegistrationHandler) RejectRegistration(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	reviewerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	id, err := uuid.Parse(c.Param("registration_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RejectRegistrationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	reg, err := h.regService.Reject(c.Request.Context(), id, reviewerID, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotPending) {
			response.Fail(c, http.StatusConflict, response.ErrRegistrationNotPending)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"registration": reg})
}

// UploadProofOfPayment godoc
// POST /api/v1/registrations/:registration_id/pop
// Attaches a proof-of-payment document to a registration.
func (h *RegistrationHandler) UploadProofOfPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("registration_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	path, err := h.mediaService.SaveProofOfPayment(file, fileHeader)
	if err != nil {
		failUpload(c, err)
		return
	}

	if err := h.regService.AttachProofOfPayment(c.Request.Context(), id, path); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"pop_path": path})
}

// CreatePayment godoc
// POST /api/v1/registrations/:registration_id/payment
// Requests a checkout reference from the payment function.
func (h *RegistrationHandler) CreatePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("registration_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreatePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ref, err := h.regService.CreatePayment(c.Request.Context(), id, &req)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment_reference": ref})
}

// PullRegistrations godoc
// POST /api/v1/staff/registrations/pull
// Pulls registrations captured on the public site into the local queue.
func (h *RegistrationHandler) PullRegistrations(c *gin.Context) {
	preschoolID, ok := staffPreschoolID(c)
	if !ok {
		return
	}

	count, err := h.regService.PullFromEdusite(c.Request.Context(), preschoolID)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"pulled": count})
}

// ExportRegistrations godoc
// GET /api/v1/staff/registrations/export
// Streams the preschool's registrations as an xlsx workbook.
func (h *RegistrationHandler) ExportRegistrations(c *gin.Context) {
	preschoolID, ok := staffPreschoolID(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("registrations-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.regService.ExportXLSX(c.Request.Context(), preschoolID, c.Writer); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
}

// ImportRegistrations godoc
// POST /api/v1/staff/registrations/import
// Creates pending registrations from an uploaded xlsx sheet.
func (h *RegistrationHandler) ImportRegistrations(c *gin.Context) {
	preschoolID, ok := staffPreschoolID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	created, err := h.regService.ImportXLSX(c.Request.Context(), preschoolID, file)
	if err != nil {
		if errors.Is(err, service.ErrImportInvalid) {
			response.Fail(c, http.StatusBadRequest, response.ErrImportInvalid)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"created": created})
}

// staffPreschoolID extracts and parses the preschool scope from the JWT.
func staffPreschoolID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.PreschoolID)
	if err != nil {
		response.Fail(c, http.StatusForbidden, response.ErrPreschoolScoping)
		return uuid.Nil, false
	}
	return id, true
}

// failUpload maps media service errors to API error codes.
func failUpload(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
