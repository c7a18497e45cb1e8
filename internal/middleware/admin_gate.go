package middleware

import (
	"net/http"
	"strings"

	"github.com/sunderlandtech/backend/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	adminPathPrefix  = "/admin"
	adminLoginPath   = "/admin/login"
	adminLandingPath = "/admin/inquiries"
	adminAPIPrefix   = "/api"
)

// AdminGateHandler is the coarse, stateless filter in front of the admin
// pages. It only checks that the session cookie is PRESENT - it never
// verifies the token. A stale or tampered cookie passes here and is caught
// by the route guard (or the status probe) one request later. That is a
// deliberate latency trade-off: page loads stay cheap, the API stays strict.
type AdminGateHandler struct {
	cookieName string
}

func NewAdminGateHandler(cookieName string) *AdminGateHandler {
	return &AdminGateHandler{
		cookieName: cookieName,
	}
}

func (h *AdminGateHandler) hasSessionCookie(r *http.Request) bool {
	cookie, err := r.Cookie(h.cookieName)
	return err == nil && cookie.Value != ""
}

func (h *AdminGateHandler) Gate() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			// the gate covers admin pages only, the API has its own guard
			if !strings.HasPrefix(path, adminPathPrefix) || strings.HasPrefix(path, adminAPIPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.adminGate")
			defer span.End()

			hasCookie := h.hasSessionCookie(r)
			isLoginPage := path == adminLoginPath

			switch {
			case isLoginPage && !hasCookie:
				span.SetStatus(codes.Ok, "login-page")
				next.ServeHTTP(w, r)
			case isLoginPage && hasCookie:
				// already (apparently) logged in, skip the login page
				span.SetStatus(codes.Ok, "redirect-to-landing")
				http.Redirect(w, r, adminLandingPath, http.StatusFound)
			case hasCookie:
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
			default:
				log.Tracef("[no cookie] admin gate redirect to login => %s", path)
				span.SetStatus(codes.Ok, "redirect-to-login")
				http.Redirect(w, r, adminLoginPath, http.StatusFound)
			}
		})
	}
}
