package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-platform-api/internal/usecase"
)

// UploadHandler exposes the presigned upload endpoint.
type UploadHandler struct {
	uploads *usecase.UploadService
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *usecase.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// PresignRequest defines the payload for requesting an upload ticket.
type PresignRequest struct {
	ContentType string `json:"content_type"`
}

// PresignResponse hands the client a direct upload URL plus the final
// public URL of the object.
type PresignResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	FileURL   string    `json:"file_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PresignPhoto returns a one-off upload ticket for a photo.
func (h *UploadHandler) PresignPhoto(c *gin.Context) {
	var req PresignRequest
	// Body is optional; a bare POST defaults the content type.
	_ = c.ShouldBindJSON(&req)

	ticket, err := h.uploads.PresignPhoto(c.Request.Context(), req.ContentType)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "presign failed")
		return
	}

	c.JSON(http.StatusOK, PresignResponse{
		Key:       ticket.Key,
		UploadURL: ticket.UploadURL,
		FileURL:   ticket.FileURL,
		ExpiresAt: ticket.ExpiresAt,
	})
}
