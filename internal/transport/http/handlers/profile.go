package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/transport/http/middleware"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

// ProfileHandler exposes the self-service profile endpoints.
type ProfileHandler struct {
	profiles *usecase.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *usecase.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// UpdateProfileRequest carries the patch for the caller's account. Absent
// fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string          `json:"name"`
	Profile  *domain.Profile  `json:"profile"`
	Progress *domain.Progress `json:"progress"`
}

// SetAvatarRequest carries the uploaded avatar's object URL.
type SetAvatarRequest struct {
	AvatarURL string `json:"avatar_url" binding:"required"`
}

// Me returns the caller's full account view.
func (h *ProfileHandler) Me(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	user, err := h.profiles.Get(c.Request.Context(), identity.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, NewUserDetailPayload(user))
}

// Update patches the caller's account.
func (h *ProfileHandler) Update(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	user, err := h.profiles.Update(c.Request.Context(), identity.ID, port.ProfilePatch{
		Name:     req.Name,
		Profile:  req.Profile,
		Progress: req.Progress,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "update failed")
		return
	}

	c.JSON(http.StatusOK, NewUserDetailPayload(user))
}

// SetAvatar stores the caller's avatar URL.
func (h *ProfileHandler) SetAvatar(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "avatar_url is required"))
		return
	}

	user, err := h.profiles.SetAvatar(c.Request.Context(), identity.ID, req.AvatarURL)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "update failed")
		return
	}

	c.JSON(http.StatusOK, NewUserDetailPayload(user))
}
