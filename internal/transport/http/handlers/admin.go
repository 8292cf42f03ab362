package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-platform-api/internal/transport/http/middleware"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

// AdminHandler exposes the admin dashboard and model management endpoints.
type AdminHandler struct {
	admin *usecase.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *usecase.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// SetModelStatusRequest enables or disables a model account.
type SetModelStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Primary returns the public contact view of the first admin.
func (h *AdminHandler) Primary(c *gin.Context) {
	admin, err := h.admin.PrimaryAdmin(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "no admin account available"},
		}, http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, NewUserPayload(admin))
}

// Me returns the authenticated admin's account.
func (h *AdminHandler) Me(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	user, err := h.admin.GetUser(c.Request.Context(), identity.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "lookup failed")
		return
	}
	c.JSON(http.StatusOK, NewUserPayload(user))
}

// Metrics returns the dashboard counters.
func (h *AdminHandler) Metrics(c *gin.Context) {
	metrics, err := h.admin.Metrics(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "metrics failed")
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// ListModels returns model accounts, optionally filtered by ?status=.
func (h *AdminHandler) ListModels(c *gin.Context) {
	models, err := h.admin.ListModels(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "list models failed")
		return
	}

	payloads := make([]UserPayload, 0, len(models))
	for i := range models {
		payloads = append(payloads, NewUserDetailPayload(&models[i]))
	}
	c.JSON(http.StatusOK, payloads)
}

// GetModel returns a single model account.
func (h *AdminHandler) GetModel(c *gin.Context) {
	user, err := h.admin.GetModel(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "model not found"},
		}, http.StatusInternalServerError, "lookup failed")
		return
	}
	c.JSON(http.StatusOK, NewUserDetailPayload(user))
}

// SetModelStatus enables or disables a model account.
func (h *AdminHandler) SetModelStatus(c *gin.Context) {
	var req SetModelStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	user, err := h.admin.SetModelStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "model not found"},
		}, http.StatusInternalServerError, "update failed")
		return
	}

	c.JSON(http.StatusOK, NewUserDetailPayload(user))
}

// DeleteModel removes a model account.
func (h *AdminHandler) DeleteModel(c *gin.Context) {
	if err := h.admin.DeleteModel(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "model not found"},
		}, http.StatusInternalServerError, "delete failed")
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}
