package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/transport/http/middleware"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

// ApplicationHandler exposes the casting application endpoints.
type ApplicationHandler struct {
	applications *usecase.ApplicationService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications *usecase.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// ApplyRequest defines the payload for submitting an application.
type ApplyRequest struct {
	CastingID string `json:"casting_id" binding:"required"`
	Note      string `json:"note"`
}

// ReviewRequest defines the payload for moving an application between review states.
type ReviewRequest struct {
	Status string `json:"status" binding:"required"`
}

// Apply submits the caller's application for a casting.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "casting_id is required"))
		return
	}

	app, err := h.applications.Apply(c.Request.Context(), req.CastingID, identity.ID, req.Note)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "casting not found"},
			{Err: usecase.ErrCastingClosed, Status: http.StatusBadRequest, Message: "casting is not open for applications"},
		}, http.StatusInternalServerError, "apply failed")
		return
	}

	c.JSON(http.StatusCreated, NewApplicationPayload(app))
}

// List returns the caller's applications, or all of them for an admin.
func (h *ApplicationHandler) List(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var (
		apps []domain.Application
		err  error
	)
	if identity.Role == domain.RoleAdmin {
		apps, err = h.applications.ListAll(c.Request.Context(), c.Query("status"))
	} else {
		apps, err = h.applications.ListForModel(c.Request.Context(), identity.ID, c.Query("status"))
	}
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "list applications failed")
		return
	}

	c.JSON(http.StatusOK, applicationPayloads(apps))
}

// Recent returns the newest applications for the admin dashboard.
func (h *ApplicationHandler) Recent(c *gin.Context) {
	apps, err := h.applications.Recent(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "list applications failed")
		return
	}
	c.JSON(http.StatusOK, applicationPayloads(apps))
}

// Review moves an application into a review state.
func (h *ApplicationHandler) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	app, err := h.applications.Review(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "application not found"},
		}, http.StatusInternalServerError, "review failed")
		return
	}

	c.JSON(http.StatusOK, NewApplicationPayload(app))
}

func applicationPayloads(apps []domain.Application) []ApplicationPayload {
	payloads := make([]ApplicationPayload, 0, len(apps))
	for i := range apps {
		payloads = append(payloads, NewApplicationPayload(&apps[i]))
	}
	return payloads
}
