package selfplay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/concentration/internal/domain/types"
)

// ErrUnexpectedStatus reports a response status the client did not expect.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client talks to the game API.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates an API client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// NewGame deals a game.
func (c *Client) NewGame(ctx context.Context) (types.Board, error) {
	var b types.Board
	err := c.do(ctx, http.MethodPost, "/games", nil, http.StatusCreated, &b)
	return b, err
}

// Board fetches a game's board.
func (c *Client) Board(ctx context.Context, id string) (types.Board, error) {
	var b types.Board
	err := c.do(ctx, http.MethodGet, "/games/"+id, nil, http.StatusOK, &b)
	return b, err
}

// Reveal reveals one card.
func (c *Client) Reveal(ctx context.Context, id string, card int, requestID string) (types.RevealAck, error) {
	var ack types.RevealAck
	body := map[string]any{"card": card, "request_id": requestID}
	err := c.do(ctx, http.MethodPost, "/games/"+id+"/reveal", body, http.StatusOK, &ack)
	return ack, err
}

// Delete removes a game.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/games/"+id, nil, http.StatusNoContent, nil)
}
