// Package site serves the embedded browser board.
package site

import (
	"context"
	"net/http"
)

// Register attaches the board page and its assets to mux at the root.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", http.FileServer(FS()))
}
