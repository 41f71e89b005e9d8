package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// GamesHandler serves game lifecycle and play requests.
type GamesHandler struct {
	deps Dependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps Dependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// revealRequest mirrors the OpenAPI schema for POST /games/{id}/reveal.
type revealRequest struct {
	Card      *int   `json:"card"`
	RequestID string `json:"request_id"`
}

func (r revealRequest) validate() error {
	switch {
	case r.Card == nil:
		return errors.New("missing card")
	case len(r.RequestID) > 128:
		return errors.New("request_id longer than 128 characters")
	}
	return nil
}

// volumeRequest mirrors the OpenAPI schema for PUT /games/{id}/volume.
type volumeRequest struct {
	Volume *float64 `json:"volume"`
}

// HandleCreate handles POST /games.
func (h *GamesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_game"
	board, err := h.deps.NewGame(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Location", "/games/"+board.GameID)
	writeJSON(w, http.StatusCreated, board)
}

// HandleGet handles GET /games/{id}.
func (h *GamesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_game"
	board, err := h.deps.Board(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleDelete handles DELETE /games/{id}.
func (h *GamesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_game"
	if err := h.deps.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRestart handles POST /games/{id}/restart.
func (h *GamesHandler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	const op = "api.restart_game"
	board, err := h.deps.Restart(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleReveal handles POST /games/{id}/reveal. Ignored reveals are
// acknowledged with accepted=false and a reason, never an error status.
func (h *GamesHandler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	const op = "api.reveal"
	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ack, err := h.deps.Reveal(r.Context(), r.PathValue("id"), *req.Card, strings.TrimSpace(req.RequestID))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// HandleVolume handles PUT /games/{id}/volume.
func (h *GamesHandler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_volume"
	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Volume == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing volume")))
		return
	}
	if err := h.deps.SetVolume(r.Context(), r.PathValue("id"), *req.Volume); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
