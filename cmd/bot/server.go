package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/chainplay/arenabot/src/app/dispatch"
	"github.com/chainplay/arenabot/src/app/tournaments"
	"github.com/chainplay/arenabot/src/infra/transport"
)

type ServerConfig struct {
	Logger            *zap.Logger
	Dispatcher        *dispatch.Dispatcher
	TournamentService *tournaments.Service
	Chat              *transport.ChatGateway
	CommandPrefix     string
}

// Server wires HTTP endpoints to the dispatcher and tournament service with
// observability instrumentation.
type Server struct {
	cfg             ServerConfig
	router          *mux.Router
	httpMetrics     *prometheus.HistogramVec
	requestCounter  *prometheus.CounterVec
	dispatchCounter *prometheus.CounterVec
}

func NewServer(cfg ServerConfig) *Server {
	srv := &Server{cfg: cfg}
	srv.initMetrics()
	srv.buildRouter()
	return srv
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) initMetrics() {
	s.httpMetrics = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arena",
		Subsystem: "http",
		Name:      "request_latency_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	s.requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route",
	}, []string{"route", "method", "code"})
	s.dispatchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "dispatch",
		Name:      "outcomes_total",
		Help:      "Dispatched commands by outcome kind",
	}, []string{"outcome"})
	prometheus.MustRegister(s.httpMetrics, s.requestCounter, s.dispatchCounter)
}

func (s *Server) buildRouter() {
	r := mux.NewRouter()
	r.Use(s.correlationMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)

	apiRouter := r.PathPrefix("/v1").Subrouter()
	apiRouter.Handle("/commands", otelhttp.NewHandler(http.HandlerFunc(s.handleCommand), "Command")).Methods(http.MethodPost)
	apiRouter.Handle("/outcomes", otelhttp.NewHandler(http.HandlerFunc(s.handleOutcome), "GameOutcome")).Methods(http.MethodPost)
	apiRouter.Handle("/tournaments", otelhttp.NewHandler(http.HandlerFunc(s.handleListTournaments), "ListTournaments")).Methods(http.MethodGet)
	apiRouter.Handle("/tournaments/{id}", otelhttp.NewHandler(http.HandlerFunc(s.handleGetTournament), "GetTournament")).Methods(http.MethodGet)
	apiRouter.Handle("/tournaments/{id}/leaderboard", otelhttp.NewHandler(http.HandlerFunc(s.handleLeaderboard), "Leaderboard")).Methods(http.MethodGet)

	r.Handle("/ws", s.cfg.Chat.Handler()).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router = r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

const correlationHeader = "X-Request-Id"

type contextKey string

const correlationKey contextKey = "correlation_id"

// correlationMiddleware tags every request with an ID, minting one when the
// caller did not supply it, and echoes it back on the response.
func (s *Server) correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
		}
		w.Header().Set(correlationHeader, id)
		ctx := context.WithValue(r.Context(), correlationKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func correlationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.cfg.Logger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", correlationIDFromContext(r.Context())),
		)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		route := mux.CurrentRoute(r)
		routeName := "unknown"
		if route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				routeName = tmpl
			}
		}
		codeLabel := strconv.Itoa(rw.status)
		labels := prometheus.Labels{"route": routeName, "method": r.Method, "code": codeLabel}
		s.httpMetrics.With(labels).Observe(time.Since(start).Seconds())
		s.requestCounter.With(labels).Inc()
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}
