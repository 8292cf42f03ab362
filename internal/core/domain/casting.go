package domain

import "time"

// CastingStatus enumerates the lifecycle states of a casting call.
type CastingStatus string

const (
	CastingStatusOpen     CastingStatus = "open"
	CastingStatusArchived CastingStatus = "archived"
	CastingStatusClosed   CastingStatus = "closed"
)

// Valid reports whether the status is one of the known values.
func (s CastingStatus) Valid() bool {
	switch s {
	case CastingStatusOpen, CastingStatusArchived, CastingStatusClosed:
		return true
	}
	return false
}

// Casting is a published casting call models can apply to.
type Casting struct {
	ID           string
	Title        string
	Description  string
	Location     string
	Pay          string
	Requirements string
	ClosesAt     *time.Time
	CreatedBy    string
	Status       CastingStatus
	ArchivedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AcceptsApplications reports whether the casting is still open for new applications.
func (c Casting) AcceptsApplications() bool {
	return c.Status == CastingStatusOpen
}
