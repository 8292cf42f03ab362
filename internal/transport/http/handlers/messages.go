package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/transport/http/middleware"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

// MessageHandler exposes the direct messaging endpoints.
type MessageHandler struct {
	messages *usecase.MessageService
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(messages *usecase.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// SendMessageRequest defines the payload for sending a message.
type SendMessageRequest struct {
	To          string              `json:"to"`
	Body        string              `json:"body"`
	Attachments []domain.Attachment `json:"attachments"`
}

// UnreadCountResponse carries the caller's unread counter.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkReadResponse reports how many messages were marked read.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// Send delivers a message under the admin routing policy.
func (h *MessageHandler) Send(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid message payload"))
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), *identity, req.To, req.Body, req.Attachments)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRecipientNotAllowed, Status: http.StatusForbidden, Message: "you can only message the agency"},
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "no admin account available"},
		}, http.StatusInternalServerError, "send failed")
		return
	}

	c.JSON(http.StatusCreated, NewMessagePayload(msg))
}

// Thread returns the caller's conversation with another user.
func (h *MessageHandler) Thread(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	messages, err := h.messages.Thread(c.Request.Context(), *identity, c.Param("userID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRecipientNotAllowed, Status: http.StatusForbidden, Message: "you can only view the agency thread"},
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "no admin account available"},
		}, http.StatusInternalServerError, "load thread failed")
		return
	}

	payloads := make([]MessagePayload, 0, len(messages))
	for i := range messages {
		payloads = append(payloads, NewMessagePayload(&messages[i]))
	}
	c.JSON(http.StatusOK, payloads)
}

// UnreadCount returns the caller's unread message count.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	count, err := h.messages.UnreadCount(c.Request.Context(), identity.ID)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "count unread failed")
		return
	}

	c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkRead flags the caller's messages from another user as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	updated, err := h.messages.MarkRead(c.Request.Context(), *identity, c.Param("withUser"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRecipientNotAllowed, Status: http.StatusForbidden, Message: "you can only view the agency thread"},
			{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "no admin account available"},
		}, http.StatusInternalServerError, "mark read failed")
		return
	}

	c.JSON(http.StatusOK, MarkReadResponse{Updated: updated})
}
