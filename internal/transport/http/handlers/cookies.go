package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-platform-api/internal/infra/config"
)

// RefreshCookie writes and clears the httponly refresh-token cookie. In
// production the cookie is Secure with SameSite=Strict; development keeps
// Lax over plain HTTP so local frontends can use the flow.
type RefreshCookie struct {
	name       string
	domain     string
	path       string
	production bool
}

// NewRefreshCookie builds the cookie manager from configuration.
func NewRefreshCookie(cfg *config.AppConfig) *RefreshCookie {
	path := cfg.Cookie.Path
	if path == "" {
		path = "/"
	}
	return &RefreshCookie{
		name:       cfg.Cookie.Name,
		domain:     cfg.Cookie.Domain,
		path:       path,
		production: cfg.App.Env == "production",
	}
}

// Name returns the configured cookie name.
func (rc *RefreshCookie) Name() string {
	return rc.name
}

// Set writes the refresh token with the configured max age in seconds.
func (rc *RefreshCookie) Set(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     rc.name,
		Value:    token,
		MaxAge:   maxAge,
		Path:     rc.path,
		Domain:   rc.domain,
		HttpOnly: true,
		Secure:   rc.production,
		SameSite: rc.sameSite(),
	})
}

// Clear expires the cookie immediately.
func (rc *RefreshCookie) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     rc.name,
		Value:    "",
		MaxAge:   -1,
		Path:     rc.path,
		Domain:   rc.domain,
		HttpOnly: true,
		Secure:   rc.production,
		SameSite: rc.sameSite(),
	})
}

// Read returns the refresh token from the request, if present.
func (rc *RefreshCookie) Read(c *gin.Context) (string, bool) {
	token, err := c.Cookie(rc.name)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (rc *RefreshCookie) sameSite() http.SameSite {
	if rc.production {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}
