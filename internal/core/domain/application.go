package domain

import "time"

// ApplicationStatus enumerates the review states of a casting application.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewed    ApplicationStatus = "reviewed"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusAccepted    ApplicationStatus = "accepted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// ReviewStatuses are the states an admin may move an application into.
var ReviewStatuses = []ApplicationStatus{
	ApplicationStatusReviewed,
	ApplicationStatusShortlisted,
	ApplicationStatusAccepted,
	ApplicationStatusRejected,
}

// Application links a model to a casting. One application per (casting, model).
type Application struct {
	ID        string
	CastingID string
	ModelID   string
	Note      string
	Status    ApplicationStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// Populated views for list responses; nil when not joined.
	Casting *CastingSummary
	Model   *ApplicantSummary
}

// CastingSummary is the casting projection embedded in application listings.
type CastingSummary struct {
	ID       string
	Title    string
	Location string
	ClosesAt *time.Time
}

// ApplicantSummary is the user projection embedded in application listings.
type ApplicantSummary struct {
	ID      string
	Name    string
	Email   string
	Profile Profile
}
