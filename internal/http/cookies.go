package httpx

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Domain string
	// Secure forces the Secure attribute. When false it follows the request scheme.
	Secure bool
}

// secure reports whether a cookie set in response to r should be Secure.
func (c CookieConfig) secure(r *http.Request) bool {
	return c.Secure || isSecureRequest(r)
}

// isSecureRequest reports TLS directly or via a proxy's X-Forwarded-Proto.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	// Handle comma-separated values (e.g., "https,http")
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// setSessionCookie issues the session_id cookie. Its Max-Age follows the
// server-side expiry so remember-me sessions survive a browser restart.
func setSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig, id string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session_id cookie.
func clearSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionIDFromRequest returns the session cookie value, or "".
func sessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}
