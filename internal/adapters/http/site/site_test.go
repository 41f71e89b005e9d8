package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSiteHandler(t *testing.T) {
	Convey("Given the site registered on a mux", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		Convey("Then / serves the board page", func() {
			w := get(mux, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, `id="gameBoard"`)
			So(w.Body.String(), ShouldContainSubstring, `id="volumeSlider"`)
			So(w.Body.String(), ShouldContainSubstring, `id="toggleDarkMode"`)
		})

		Convey("Then the script talks to the game API", func() {
			w := get(mux, "/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/events")
			So(w.Body.String(), ShouldContainSubstring, "AudioContext")
		})

		Convey("Then the stylesheet carries the dark theme", func() {
			w := get(mux, "/style.css")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "dark-mode")
		})

		Convey("Then unknown assets are 404", func() {
			So(get(mux, "/missing.png").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
