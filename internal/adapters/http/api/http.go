// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/concentration/internal/app"
	"github.com/okian/concentration/internal/adapters/mq/broadcast"
	"github.com/okian/concentration/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	NewGame(ctx context.Context) (types.Board, error)
	Board(ctx context.Context, id string) (types.Board, error)
	Restart(ctx context.Context, id string) (types.Board, error)
	Reveal(ctx context.Context, id string, card int, requestID string) (types.RevealAck, error)
	SetVolume(ctx context.Context, id string, v float64) error
	DeleteGame(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (*broadcast.Subscription, types.Board, error)
}

// Server wires HTTP routes for the game API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	gamesHandler   *GamesHandler
	streamHandler  *StreamHandler
	metricsHandler http.Handler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		gamesHandler:   NewGamesHandler(deps),
		streamHandler:  NewStreamHandler(deps),
		metricsHandler: newMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.metricsHandler)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /games", MetricsMiddleware(s.gamesHandler.HandleCreate, "games"))
	mux.HandleFunc("GET /games/{id}", MetricsMiddleware(s.gamesHandler.HandleGet, "game"))
	mux.HandleFunc("DELETE /games/{id}", MetricsMiddleware(s.gamesHandler.HandleDelete, "game"))
	mux.HandleFunc("POST /games/{id}/restart", MetricsMiddleware(s.gamesHandler.HandleRestart, "restart"))
	mux.HandleFunc("POST /games/{id}/reveal", MetricsMiddleware(s.gamesHandler.HandleReveal, "reveal"))
	mux.HandleFunc("PUT /games/{id}/volume", MetricsMiddleware(s.gamesHandler.HandleVolume, "volume"))
	mux.HandleFunc("GET /games/{id}/events", MetricsMiddleware(s.streamHandler.HandleEvents, "events"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service errors into HTTP responses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrCapacity):
		writeError(w, http.StatusServiceUnavailable, "capacity", WrapKind(op, ErrCapacity, err))
	case errors.Is(err, service.ErrInvalidVolume):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
