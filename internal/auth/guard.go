package auth

import (
	"context"
	"net/http"

	"github.com/sunderlandtech/backend/pkg"

	log "github.com/sirupsen/logrus"
)

type principalContextKey struct{}

// PrincipalFromContext returns the admin resolved by the Guard for this request
func PrincipalFromContext(ctx context.Context) (*Admin, bool) {
	admin, ok := ctx.Value(principalContextKey{}).(*Admin)
	return admin, ok
}

// Guard is the precise per-route check for the admin API: it re-verifies
// the session token on every call and resolves the admin behind it. The
// coarse cookie-presence gate in the middleware package is NOT authoritative,
// this is.
type Guard struct {
	cookies *CookieTransport
	service *Service
}

func NewGuard(cookies *CookieTransport, service *Service) *Guard {
	return &Guard{
		cookies: cookies,
		service: service,
	}
}

// Protect wraps a handler so it only runs for requests carrying a valid,
// unexpired token belonging to an existing admin. The resolved principal is
// attached to the request context.
func (g *Guard) Protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := g.cookies.Read(r)
		if token == "" {
			log.Tracef("[missing cookie] unauthorized => %s", r.URL.Path)
			g.unauthorized(w)
			return
		}

		admin, err := g.service.ResolveToken(r.Context(), token)
		if err != nil {
			// expired vs malformed vs gone admin stays in the logs only
			log.Tracef("[invalid token] unauthorized => %s: %s", r.URL.Path, err)
			g.unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey{}, admin)
		next(w, r.WithContext(ctx))
	}
}

func (g *Guard) unauthorized(w http.ResponseWriter) {
	pkg.WriteJSONMessage(w, "Unauthorized. Please log in as admin.", http.StatusUnauthorized)
}
