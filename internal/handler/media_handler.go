package handler

import (
	"net/http"

	"github.com/edudash/edudash-backend/internal/response"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// MediaHandler handles direct media uploads.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadVoice godoc
// POST /api/v1/media/voice
// Stores a voice recording and returns its path for SendMessage.
func (h *MediaHandler) UploadVoice(c *gin.Context) {
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

	path, err := h.mediaService.SaveVoiceMessage(file, fileHeader)
	if err != nil {
		failUpload(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"audio_path": path})
}
