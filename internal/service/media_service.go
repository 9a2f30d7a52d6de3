package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/google/uuid"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// MIME types accepted per upload kind. Images cover proof-of-payment
// documents; audio covers voice message takes.
var (
	imageMIMETypes = map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/webp":      ".webp",
		"application/pdf": ".pdf",
	}
	audioMIMETypes = map[string]string{
		"audio/mp4":  ".m4a",
		"audio/aac":  ".aac",
		"audio/mpeg": ".mp3",
		"audio/ogg":  ".ogg",
		"audio/webm": ".webm",
	}
)

// MediaService handles file upload operations.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveProofOfPayment saves an uploaded POP document (image or PDF) with a
// UUID filename and returns the relative URL path.
func (s *MediaService) SaveProofOfPayment(file multipart.File, header *multipart.FileHeader) (string, error) {
	return s.save(file, header, imageMIMETypes, "pop")
}

// SaveVoiceMessage saves an uploaded voice recording with a UUID filename
// and returns the relative URL path.
func (s *MediaService) SaveVoiceMessage(file multipart.File, header *multipart.FileHeader) (string, error) {
	return s.save(file, header, audioMIMETypes, "voice")
}

func (s *MediaService) save(file multipart.File, header *multipart.FileHeader, allowed map[string]string, subdir string) (string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowed[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(typeList(allowed), ", "))
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	dir := filepath.Join(s.cfg.UploadDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(dir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return "/uploads/" + subdir + "/" + filename, nil
}

func typeList(allowed map[string]string) []string {
	types := make([]string, 0, len(allowed))
	for t := range allowed {
		types = append(types, t)
	}
	return types
}
