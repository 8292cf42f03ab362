package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-platform-api/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// OKResponse is the payload for endpoints that only acknowledge.
type OKResponse struct {
	OK bool `json:"ok"`
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// UserPayload is the externally visible shape of an account. Credential store
// internals (password hash, login attempts, lock timestamps) never appear here.
type UserPayload struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Role      domain.Role        `json:"role"`
	Status    *domain.UserStatus `json:"status,omitempty"`
	AvatarURL *string            `json:"avatar_url,omitempty"`
	Profile   *domain.Profile    `json:"profile,omitempty"`
	Progress  *domain.Progress   `json:"progress,omitempty"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
}

// NewUserPayload builds the minimal user view used by auth responses.
func NewUserPayload(user *domain.User) UserPayload {
	return UserPayload{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// NewUserPayloadWithStatus extends the minimal view with the account status.
func NewUserPayloadWithStatus(user *domain.User) UserPayload {
	payload := NewUserPayload(user)
	status := user.Status
	payload.Status = &status
	return payload
}

// NewUserDetailPayload builds the full profile view.
func NewUserDetailPayload(user *domain.User) UserPayload {
	payload := NewUserPayloadWithStatus(user)
	payload.AvatarURL = user.AvatarURL
	profile := user.Profile
	progress := user.Progress
	createdAt := user.CreatedAt
	payload.Profile = &profile
	payload.Progress = &progress
	payload.CreatedAt = &createdAt
	return payload
}

// CastingPayload is the externally visible shape of a casting call.
type CastingPayload struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Location     string               `json:"location"`
	Pay          string               `json:"pay"`
	Requirements string               `json:"requirements"`
	ClosesAt     *time.Time           `json:"closes_at,omitempty"`
	CreatedBy    string               `json:"created_by"`
	Status       domain.CastingStatus `json:"status"`
	ArchivedAt   *time.Time           `json:"archived_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// NewCastingPayload converts a domain casting for serialization.
func NewCastingPayload(casting *domain.Casting) CastingPayload {
	return CastingPayload{
		ID:           casting.ID,
		Title:        casting.Title,
		Description:  casting.Description,
		Location:     casting.Location,
		Pay:          casting.Pay,
		Requirements: casting.Requirements,
		ClosesAt:     casting.ClosesAt,
		CreatedBy:    casting.CreatedBy,
		Status:       casting.Status,
		ArchivedAt:   casting.ArchivedAt,
		CreatedAt:    casting.CreatedAt,
	}
}

// CastingSummaryPayload is the casting projection embedded in applications.
type CastingSummaryPayload struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Location string     `json:"location"`
	ClosesAt *time.Time `json:"closes_at,omitempty"`
}

// ApplicantPayload is the user projection embedded in applications.
type ApplicantPayload struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Profile domain.Profile `json:"profile"`
}

// ApplicationPayload is the externally visible shape of an application.
type ApplicationPayload struct {
	ID        string                   `json:"id"`
	CastingID string                   `json:"casting_id"`
	ModelID   string                   `json:"model_id"`
	Note      string                   `json:"note"`
	Status    domain.ApplicationStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	Casting   *CastingSummaryPayload   `json:"casting,omitempty"`
	Model     *ApplicantPayload        `json:"model,omitempty"`
}

// NewApplicationPayload converts a domain application for serialization.
func NewApplicationPayload(app *domain.Application) ApplicationPayload {
	payload := ApplicationPayload{
		ID:        app.ID,
		CastingID: app.CastingID,
		ModelID:   app.ModelID,
		Note:      app.Note,
		Status:    app.Status,
		CreatedAt: app.CreatedAt,
	}
	if app.Casting != nil {
		payload.Casting = &CastingSummaryPayload{
			ID:       app.Casting.ID,
			Title:    app.Casting.Title,
			Location: app.Casting.Location,
			ClosesAt: app.Casting.ClosesAt,
		}
	}
	if app.Model != nil {
		payload.Model = &ApplicantPayload{
			ID:      app.Model.ID,
			Name:    app.Model.Name,
			Email:   app.Model.Email,
			Profile: app.Model.Profile,
		}
	}
	return payload
}

// MessagePayload is the externally visible shape of a message.
type MessagePayload struct {
	ID          string              `json:"id"`
	From        string              `json:"from"`
	To          string              `json:"to"`
	Body        string              `json:"body"`
	Attachments []domain.Attachment `json:"attachments"`
	Read        bool                `json:"read"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewMessagePayload converts a domain message for serialization.
func NewMessagePayload(msg *domain.Message) MessagePayload {
	attachments := msg.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return MessagePayload{
		ID:          msg.ID,
		From:        msg.FromID,
		To:          msg.ToID,
		Body:        msg.Body,
		Attachments: attachments,
		Read:        msg.Read,
		CreatedAt:   msg.CreatedAt,
	}
}
