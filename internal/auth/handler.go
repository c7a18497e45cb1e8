package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sunderlandtech/backend/internal/instrumentation"
	"github.com/sunderlandtech/backend/internal/middleware"
	"github.com/sunderlandtech/backend/internal/telemetry/tracing"
	"github.com/sunderlandtech/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type Handler struct {
	cookies *CookieTransport
	service *Service
	instr   *instrumentation.Instrumentation
}

func NewHandler(
	cookies *CookieTransport,
	service *Service,
	instr *instrumentation.Instrumentation,
) *Handler {
	return &Handler{
		cookies: cookies,
		service: service,
		instr:   instr,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginRateLimitAllowedPerMin int,
) {
	loginRouter := mainRouter.PathPrefix("/api/admin").Subrouter()
	loginRouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("admin-login")
	loginRouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("POST", "OPTIONS").Name("admin-logout")

	// rate limit the login and logout endpoints to prevent abuse
	loginRouter.Use(middleware.RateLimit(
		rateLimiter, "admin-login",
		loginRateLimitAllowedPerMin, handler.instr,
	))

	sessionRouter := mainRouter.PathPrefix("/api/admin").Subrouter()
	sessionRouter.
		HandleFunc("/me", handler.handleMe).
		Methods("GET").Name("admin-me")
	sessionRouter.
		HandleFunc("/status", handler.handleStatus).
		Methods("GET").Name("admin-status")
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			pkg.WriteJSONMessage(w, "invalid request body", http.StatusBadRequest)
			span.SetStatus(codes.Error, "invalid-body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			pkg.WriteJSONMessage(w, "parse form error", http.StatusInternalServerError)
			span.SetStatus(codes.Error, "parse-form")
			return
		}
		loginReq = loginRequest{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		pkg.WriteJSONMessage(w, "username and password are required", http.StatusBadRequest)
		span.SetStatus(codes.Error, "missing-credentials")
		return
	}

	token, admin, err := handler.service.Login(r.Context(), loginReq.Username, loginReq.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			handler.instr.CounterFailedLogins.Inc()
			pkg.WriteJSONMessage(w, "invalid credentials", http.StatusUnauthorized)
			span.SetStatus(codes.Error, "invalid-credentials")
			return
		}
		log.Errorf("login failed for user %s: %s", loginReq.Username, err)
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "login-err")
		span.RecordError(err)
		return
	}

	handler.cookies.Attach(w, token)
	handler.instr.CounterLogins.Inc()

	log.Tracef("new login success: %s", admin.Username)
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONMessage(w, "login successful", http.StatusOK)
}

// handleLogout clears the session cookie. Idempotent - a request without an
// active session still gets a 200.
func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	handler.cookies.Clear(w)
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONMessage(w, "logout successful", http.StatusOK)
}

// handleMe is the weak "am I logged in" probe the site header uses to toggle
// the logout button. Cookie presence only, no verification - must never be
// used for authorization.
func (handler *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if handler.cookies.Read(r) != "" {
		pkg.WriteJSONResponseOK(w, `{"isLoggedIn":true}`)
		return
	}
	pkg.WriteJSONResponseOK(w, `{"isLoggedIn":false}`)
}

func (handler *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.status")
	defer span.End()

	token := handler.cookies.Read(r)
	if token == "" {
		pkg.WriteResponse(
			w, pkg.ContentType.JSON,
			`{"isAuthenticated":false,"message":"not authenticated"}`,
			http.StatusUnauthorized,
		)
		span.SetStatus(codes.Error, "no-cookie")
		return
	}

	admin, err := handler.service.ResolveToken(ctx, token)
	if err != nil {
		log.Tracef("status check, token verification failed: %s", err)
		// clear the stale cookie to force a fresh login
		handler.cookies.Clear(w)
		pkg.WriteResponse(
			w, pkg.ContentType.JSON,
			`{"isAuthenticated":false,"message":"invalid token"}`,
			http.StatusUnauthorized,
		)
		span.SetStatus(codes.Error, "invalid-token")
		return
	}

	statusResp := struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		User            *Admin `json:"user"`
	}{
		IsAuthenticated: true,
		User:            admin,
	}

	respBytes, err := json.Marshal(statusResp)
	if err != nil {
		log.Errorf("marshal status response: %s", err)
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "marshal-err")
		return
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONBytesResponse(w, respBytes, http.StatusOK)
}
