package auth

import (
	"net/http"
	"time"
)

// CookieName is the single session cookie used by the admin back-office
const CookieName = "admin_auth_token"

// CookieTransport sets, reads and clears the admin session cookie.
// It never verifies the carried token - that is the codec's job.
type CookieTransport struct {
	secure bool
	maxAge time.Duration
}

func NewCookieTransport(secure bool, maxAge time.Duration) *CookieTransport {
	return &CookieTransport{
		secure: secure,
		maxAge: maxAge,
	}
}

func (t *CookieTransport) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (t *CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read extracts the raw cookie value, empty string when absent
func (t *CookieTransport) Read(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
