package auth

import (
	"net/http"
	"net/url"
	"time"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "session"

// CookieSettings contains cookie security settings derived from base URL.
type CookieSettings struct {
	// Secure indicates whether the cookie should only be sent over HTTPS.
	Secure bool
	// Domain is the cookie domain scope; empty scopes it to the host.
	Domain string
}

// DeriveCookieSettings determines cookie security settings from base URL:
//   - http://localhost:8000 → Secure: false
//   - https://sac.example.com → Secure: true
//
// The cookie is host-only unless configCookieDomain is set.
func DeriveCookieSettings(baseURL string, configCookieDomain string) CookieSettings {
	return CookieSettings{
		Secure: isHTTPS(baseURL),
		Domain: configCookieDomain,
	}
}

// isHTTPS determines if the given base URL uses HTTPS protocol.
// Returns true for HTTPS, false for HTTP, true for empty/invalid URLs (safe default).
func isHTTPS(baseURL string) bool {
	if baseURL == "" {
		return true
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return true
	}

	return parsedURL.Scheme != "http"
}

// SetSessionCookie writes the session cookie expiring at expires.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, settings CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   settings.Domain,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, settings CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   settings.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
