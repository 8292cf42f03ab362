package domain

import "time"

// Role enumerates the account roles known to the platform.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleModel  Role = "model"
	RoleClient Role = "client"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModel, RoleClient:
		return true
	}
	return false
}

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User mirrors the persisted representation in the users table.
//
// PasswordHash, LoginAttempts and LockUntil are credential-store internals and
// must never appear in any externally observable representation of the account.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	Status        UserStatus
	LoginAttempts int
	LockUntil     *time.Time
	// TokenVersion is reserved for bulk refresh-token invalidation. Incrementing
	// it is meant to invalidate all outstanding refresh tokens for the account;
	// no route performs that check yet.
	TokenVersion int
	AvatarURL    *string
	Profile      Profile
	Progress     Progress
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLocked reports whether a lockout window is currently in force.
func (u User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// IsDisabled reports whether the account status bars authenticated access.
func (u User) IsDisabled() bool {
	return u.Status != UserStatusActive
}

// AuthState is the minimal projection the request authenticator re-reads from
// the credential store on every protected call.
type AuthState struct {
	ID     string
	Role   Role
	Status UserStatus
}

// Measurements captures the model-card numbers shown on a profile.
type Measurements struct {
	Bust  *float64 `json:"bust,omitempty"`
	Waist *float64 `json:"waist,omitempty"`
	Hips  *float64 `json:"hips,omitempty"`
	Cup   string   `json:"cup,omitempty"`
	Shoe  *float64 `json:"shoe,omitempty"`
	Hair  string   `json:"hair,omitempty"`
	Eyes  string   `json:"eyes,omitempty"`
}

// Socials lists the public social handles attached to a profile.
type Socials struct {
	Instagram string `json:"instagram,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	Website   string `json:"website,omitempty"`
}

// Profile holds the public model-card data. Persisted as a jsonb document.
type Profile struct {
	HeightCM        *float64     `json:"height_cm,omitempty"`
	Measurements    Measurements `json:"measurements,omitempty"`
	Location        string       `json:"location,omitempty"`
	Bio             string       `json:"bio,omitempty"`
	Photos          []string     `json:"photos,omitempty"`
	Socials         Socials      `json:"socials,omitempty"`
	ExperienceYears *int         `json:"experience_years,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
}

// Progress tracks training progress counters. Persisted as a jsonb document.
type Progress struct {
	CoursesCompleted  int      `json:"courses_completed"`
	LearningTimeHours float64  `json:"learning_time_hours"`
	Certificates      int      `json:"certificates"`
	Achievements      []string `json:"achievements,omitempty"`
}
