package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arklim/casting-platform-api/internal/core/domain"
)

// ErrInvalidToken indicates a token that failed signature, structure or
// class verification. Callers must not distinguish the underlying cause.
var ErrInvalidToken = errors.New("jwt: invalid token")

// ErrExpiredToken indicates a structurally valid token past its expiry.
var ErrExpiredToken = errors.New("jwt: token expired")

// AccessClaims carries the identity embedded in short-lived access tokens.
// The legacy "_id" field is accepted on parse for tokens minted by older
// deployments; new tokens populate "id" only.
type AccessClaims struct {
	ID       string `json:"id,omitempty"`
	LegacyID string `json:"_id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID resolves the token subject, preferring "id" over "_id" over "sub".
func (c *AccessClaims) SubjectID() string {
	if c.ID != "" {
		return c.ID
	}
	if c.LegacyID != "" {
		return c.LegacyID
	}
	return c.Subject
}

// RefreshClaims carries the minimal identity held by long-lived refresh tokens.
type RefreshClaims struct {
	ID       string `json:"id,omitempty"`
	LegacyID string `json:"_id,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID resolves the token subject, preferring "id" over "_id" over "sub".
func (c *RefreshClaims) SubjectID() string {
	if c.ID != "" {
		return c.ID
	}
	if c.LegacyID != "" {
		return c.LegacyID
	}
	return c.Subject
}

// TokenIssuer signs and verifies the two token classes with distinct
// HMAC secrets. An access token never verifies against the refresh
// secret and vice versa.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenIssuer constructs a TokenIssuer. Secrets must be non-empty and distinct.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("jwt: secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("jwt: access and refresh secrets must differ")
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// WithIssuer sets the iss claim stamped on issued tokens. Empty leaves the
// claim out; verification does not depend on it.
func (t *TokenIssuer) WithIssuer(name string) *TokenIssuer {
	t.issuer = name
	return t
}

// AccessTTL reports the configured access token lifetime.
func (t *TokenIssuer) AccessTTL() time.Duration { return t.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

// IssueAccess mints a signed access token for the given user.
func (t *TokenIssuer) IssueAccess(userID string, role domain.Role) (string, error) {
	now := time.Now().UTC()
	claims := &AccessClaims{
		ID:   userID,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefresh mints a signed refresh token for the given user.
func (t *TokenIssuer) IssueRefresh(userID string) (string, error) {
	now := time.Now().UTC()
	claims := &RefreshClaims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// ParseAccess verifies a token against the access secret and returns its claims.
func (t *TokenIssuer) ParseAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(raw, claims, t.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh verifies a token against the refresh secret and returns its claims.
func (t *TokenIssuer) ParseRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.parse(raw, claims, t.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenIssuer) parse(raw string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
