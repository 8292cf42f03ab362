package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-platform-api/internal/transport/http/middleware"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

// CastingHandler exposes the casting call endpoints.
type CastingHandler struct {
	castings *usecase.CastingService
}

// NewCastingHandler constructs CastingHandler.
func NewCastingHandler(castings *usecase.CastingService) *CastingHandler {
	return &CastingHandler{castings: castings}
}

// CreateCastingRequest defines the payload for publishing a casting.
type CreateCastingRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Pay          string     `json:"pay"`
	Requirements string     `json:"requirements"`
	ClosesAt     *time.Time `json:"closes_at"`
}

// UpdateCastingStatusRequest defines the payload for lifecycle transitions.
type UpdateCastingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List returns castings, optionally filtered by ?status=.
func (h *CastingHandler) List(c *gin.Context) {
	castings, err := h.castings.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "list castings failed")
		return
	}

	payloads := make([]CastingPayload, 0, len(castings))
	for i := range castings {
		payloads = append(payloads, NewCastingPayload(&castings[i]))
	}
	c.JSON(http.StatusOK, payloads)
}

// Get returns one casting.
func (h *CastingHandler) Get(c *gin.Context) {
	casting, err := h.castings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "casting not found"},
		}, http.StatusInternalServerError, "get casting failed")
		return
	}
	c.JSON(http.StatusOK, NewCastingPayload(casting))
}

// Create publishes a casting call.
func (h *CastingHandler) Create(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CreateCastingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "title is required"))
		return
	}

	casting, err := h.castings.Create(c.Request.Context(), identity.ID, usecase.CastingInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Pay:          req.Pay,
		Requirements: req.Requirements,
		ClosesAt:     req.ClosesAt,
	})
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "create casting failed")
		return
	}

	c.JSON(http.StatusCreated, NewCastingPayload(casting))
}

// UpdateStatus transitions a casting between open, archived and closed.
func (h *CastingHandler) UpdateStatus(c *gin.Context) {
	var req UpdateCastingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	casting, err := h.castings.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "casting not found"},
		}, http.StatusInternalServerError, "update casting failed")
		return
	}

	c.JSON(http.StatusOK, NewCastingPayload(casting))
}

// Delete removes a casting and its applications.
func (h *CastingHandler) Delete(c *gin.Context) {
	if err := h.castings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "casting not found"},
		}, http.StatusInternalServerError, "delete casting failed")
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}
