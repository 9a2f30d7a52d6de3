package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/edudash/edudash-backend/internal/middleware"
	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/edudash/edudash-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ThreadHandler handles the messaging inbox endpoints.
type ThreadHandler struct {
	threadService *service.ThreadService
}

// NewThreadHandler creates a new ThreadHandler.
func NewThreadHandler(threadService *service.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

// ListThreads godoc
// GET /api/v1/threads
// Lists the caller's threads, most recent first, with unread counts.
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	callerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	threads, err := h.threadService.ListInbox(c.Request.Context(), callerID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"threads": threads})
}

// OpenThread godoc
// POST /api/v1/threads
// Returns the existing thread with the counterpart or creates one.
func (h *ThreadHandler) OpenThread(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	callerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	var req model.OpenThreadRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	thread, err := h.threadService.EnsureThread(c.Request.Context(), callerID, model.Role(claims.Role), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfThread), errors.Is(err, service.ErrStudentUnknown):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		// Two racing opens for the same pair can both miss FindBetween and
		// collide on the participant-pair unique index.
		case isUniqueViolation(err):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case isForeignKeyViolation(err):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"thread": thread})
}

// GetThread godoc
// GET /api/v1/threads/:thread_id
// Returns a single thread the caller participates in.
func (h *ThreadHandler) GetThread(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	callerID, threadID, ok := h.parseIDs(c, claims.UserID)
	if !ok {
		return
	}

	thread, err := h.threadService.GetThread(c.Request.Context(), threadID, callerID)
	if err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			response.Fail(c, http.StatusForbidden, response.ErrNotParticipant)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"thread": thread})
}

// ListContacts godoc
// GET /api/v1/contacts
// Returns the staff the caller can message and the caller's children.
func (h *ThreadHandler) ListContacts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	callerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	contacts, err := h.threadService.Contacts(c.Request.Context(), callerID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"contacts": contacts})
}

// ListMessages godoc
// GET /api/v1/threads/:thread_id/messages
// Returns a page of the thread's messages, newest last.
func (h *ThreadHandler) ListMessages(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	callerID, threadID, ok := h.parseIDs(c, claims.UserID)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	messages, pagination, err := h.threadService.ListMessages(c.Request.Context(), threadID, callerID, page, perPage)
	if err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			response.Fail(c, http.StatusForbidden, response.ErrNotParticipant)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"messages": messages}, pagination)
}

// SendMessage godoc
// POST /api/v1/threads/:thread_id/messages
// Posts a text or voice message to the thread.
func (h *ThreadHandler) SendMessage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	callerID, threadID, ok := h.parseIDs(c, claims.UserID)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.threadService.SendMessage(c.Request.Context(), threadID, callerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotParticipant):
			response.Fail(c, http.StatusForbidden, response.ErrNotParticipant)
		case errors.Is(err, service.ErrEmptyMessage):
			response.Fail(c, http.StatusBadRequest, response.ErrEmptyMessage)
		case errors.Is(err, service.ErrVoiceTooShort):
			response.Fail(c, http.StatusBadRequest, response.ErrVoiceTooShort)
		case errors.Is(err, service.ErrVoiceIncomplete):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

// MarkRead godoc
// POST /api/v1/threads/:thread_id/read
// Zeroes the caller's unread count on the thread.
func (h *ThreadHandler) MarkRead(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	callerID, threadID, ok := h.parseIDs(c, claims.UserID)
	if !ok {
		return
	}

	if err := h.threadService.MarkRead(c.Request.Context(), threadID, callerID); err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			response.Fail(c, http.StatusForbidden, response.ErrNotParticipant)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// UnreadCount godoc
// GET /api/v1/threads/unread-count
// Returns the caller's total unread count for the inbox badge.
func (h *ThreadHandler) UnreadCount(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	callerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	count, err := h.threadService.TotalUnread(c.Request.Context(), callerID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread_count": count})
}

func (h *ThreadHandler) parseIDs(c *gin.Context, rawUserID string) (callerID, threadID uuid.UUID, ok bool) {
	callerID, err := uuid.Parse(rawUserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return uuid.Nil, uuid.Nil, false
	}
	threadID, err = uuid.Parse(c.Param("thread_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	return callerID, threadID, true
}
