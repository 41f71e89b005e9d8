package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/concentration/internal/domain/model"
	"github.com/okian/concentration/internal/domain/types"
	"github.com/okian/concentration/pkg/logger"
	"github.com/okian/concentration/pkg/metrics"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	maxReadBytes = 1 << 10
)

// Frame types written on the event stream.
const (
	FrameBoard        = "board"
	FrameNotification = "notification"
)

// StreamFrame is one JSON message on the event stream. The first frame of a
// connection carries the board; every later frame carries a notification.
type StreamFrame struct {
	Type         string              `json:"type"`
	Board        *types.Board        `json:"board,omitempty"`
	Notification *model.Notification `json:"notification,omitempty"`
}

// StreamHandler pushes a game's notifications over a websocket.
type StreamHandler struct {
	deps     Dependencies
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps Dependencies) *StreamHandler {
	return &StreamHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			// The page is served from this host; other origins are allowed so
			// external tools can follow a game.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.Get().Named("stream"),
	}
}

// HandleEvents handles GET /games/{id}/events.
func (h *StreamHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.events"
	ctx := r.Context()
	id := r.PathValue("id")

	// Subscribe before upgrading so an unknown game is a plain 404.
	sub, board, err := h.deps.Subscribe(ctx, id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the client.
		metrics.RecordErrorByComponent("stream", "upgrade")
		h.logger.Warn(ctx, "websocket upgrade failed", logger.GameID(id), logger.Error(WrapKind(op, ErrStream, err)))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxReadBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The client sends nothing meaningful; reading only detects a close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeFrame(conn, StreamFrame{Type: FrameBoard, Board: &board}); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-sub.C:
			if !ok {
				reason := "game closed"
				if sub.Lagged() {
					reason = "subscriber lagging"
				}
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, reason),
					time.Now().Add(writeWait))
				return
			}
			if n.Seq <= board.Seq {
				continue
			}
			if err := writeFrame(conn, StreamFrame{Type: FrameNotification, Notification: &n}); err != nil {
				h.logger.Debug(ctx, "stream write failed", logger.GameID(id), logger.Error(WrapKind(op, ErrStream, err)))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		case <-ctx.Done():
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, f StreamFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}
