package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sunderlandtech/backend/internal/auth"
	"github.com/sunderlandtech/backend/internal/config"
	"github.com/sunderlandtech/backend/internal/db"
	"github.com/sunderlandtech/backend/internal/events"
	"github.com/sunderlandtech/backend/internal/inquiries"
	"github.com/sunderlandtech/backend/internal/instrumentation"
	"github.com/sunderlandtech/backend/internal/middleware"
	"github.com/sunderlandtech/backend/internal/telemetry/tracing"
	"github.com/sunderlandtech/backend/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config  *config.Config
	dbPool  *pgxpool.Pool
	cookies *auth.CookieTransport
	guard   *auth.Guard

	redisClient *redis.Client
	authService *auth.Service
	eventsCache *events.Cache

	// telemetry
	instr        *instrumentation.Instrumentation
	promRegistry *prometheus.Registry
	otelShutdown func()
}

type NewServerParams struct {
	Config                  *config.Config
	CookieSecret            string
	RedisPassword           string
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := instrumentation.SetupPrometheus(pgxpoolCollector)
	instr := instrumentation.NewInstrumentation("backend", "main", promRegistry)
	instr.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	tokenCodec := auth.NewTokenCodec(params.CookieSecret, auth.DefaultTokenTTL)
	cookies := auth.NewCookieTransport(params.Config.SecureCookies, auth.DefaultTokenTTL)
	authService := auth.NewService(auth.NewRepo(dbPool), tokenCodec)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "site-backend")
	if err != nil {
		return nil, err
	}

	return &Server{
		versionInfo: params.VersionInfo,
		config:      params.Config,
		dbPool:      dbPool,
		cookies:     cookies,
		guard:       auth.NewGuard(cookies, authService),

		redisClient: rdb,
		authService: authService,
		eventsCache: events.NewCache(rdb),

		instr:        instr,
		promRegistry: promRegistry,
		otelShutdown: otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	authHandler := auth.NewHandler(s.cookies, s.authService, s.instr)
	authHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin)

	eventsHandler := events.NewHandler(
		events.NewRepo(s.dbPool),
		s.guard,
		s.eventsCache,
		s.instr,
	)
	eventsHandler.SetupRoutes(r)

	inquiriesHandler := inquiries.NewHandler(
		inquiries.NewRepo(s.dbPool),
		s.guard,
		s.instr,
	)
	inquiriesHandler.SetupRoutes(r)

	// back-office pages, sitting behind the admin gate; the SPA assets are
	// served by the frontend deployment, these exist so the gate redirects
	// land somewhere sensible when the backend runs standalone
	r.HandleFunc("/admin/login", s.handleAdminPage("login")).Methods("GET").Name("admin-login-page")
	r.HandleFunc("/admin/inquiries", s.handleAdminPage("inquiries")).Methods("GET").Name("admin-inquiries-page")
	r.HandleFunc("/admin/inquiries/{id}", s.handleAdminPage("inquiry")).Methods("GET").Name("admin-inquiry-page")
	r.HandleFunc("/admin/events", s.handleAdminPage("events")).Methods("GET").Name("admin-events-page")
	r.HandleFunc("/admin/events/new", s.handleAdminPage("new event")).Methods("GET").Name("admin-new-event-page")
	r.HandleFunc("/admin/events/{id}/edit", s.handleAdminPage("edit event")).Methods("GET").Name("admin-edit-event-page")

	r.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	// mux runs middlewares on matched routes only, so the whole admin prefix
	// needs a route of its own - otherwise paths like /admin/foo/bar would
	// 404 before the admin gate ever sees them
	r.PathPrefix("/admin").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Name("admin-unknown")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	adminGate := middleware.NewAdminGateHandler(auth.CookieName)

	r.Use(middleware.PanicRecovery(s.instr))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.instr))
	r.Use(middleware.Cors())
	r.Use(adminGate.Gate())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleAdminPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteResponse(
			w, pkg.ContentType.HTML,
			fmt.Sprintf("<!DOCTYPE html><html><head><title>Admin</title></head><body><h1>Admin: %s</h1></body></html>", page),
			http.StatusOK,
		)
	}
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.instr.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.instr.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.instr.GaugeRequests.Add(1)
	case http.StateClosed:
		s.instr.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
