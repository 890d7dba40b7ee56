// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browser

import (
	"context"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"go.chromium.org/wasmtest/internal/logging"
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// server serves the harness page and the bundle, and forwards events sent by
// the page to a channel.
type server struct {
	ctx        context.Context // for logging
	bundlePath string
	title      string
	session    string
	events     chan<- Event
	done       <-chan struct{} // closed when nobody reads events anymore
}

func (s *server) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.serveIndex)
	r.Get("/bundle.wasm", s.serveBundle)
	r.Get("/events", s.serveEvents)
	r.Post("/abort", s.serveAbort)
	return r
}

func (s *server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexTmpl.Execute(w, struct{ Title string }{s.title}); err != nil {
		logging.Info(s.ctx, "Failed to render harness page: ", err)
	}
}

func (s *server) serveBundle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/wasm")
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, s.bundlePath)
}

func (s *server) serveEvents(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("session") != s.session {
		http.Error(w, "unknown session", http.StatusForbidden)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logging.Info(s.ctx, "Failed to accept reporting connection: ", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	logging.Debug(s.ctx, "Harness page connected from ", r.RemoteAddr)

	ctx := r.Context()
	go func() {
		// Hijacked connections survive http.Server.Close.
		select {
		case <-s.done:
			conn.Close(websocket.StatusGoingAway, "run finished")
		case <-ctx.Done():
		}
	}()
	for {
		var ev Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				logging.Debug(s.ctx, "Reporting connection closed: ", err)
			}
			return
		}
		if !s.forward(ctx, ev) {
			return
		}
	}
}

// serveAbort is requested by a page that could not open the reporting
// channel. The run fails without waiting for the timeout.
func (s *server) serveAbort(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("session") != s.session {
		http.Error(w, "unknown session", http.StatusForbidden)
		return
	}
	logging.Info(s.ctx, "Harness page could not open the reporting connection")
	w.WriteHeader(http.StatusNoContent)
	ctx := r.Context()
	if s.forward(ctx, Event{Type: EventError, Text: "Harness page could not open the reporting connection"}) {
		s.forward(ctx, Event{Type: EventCompleted, ExitCode: 1})
	}
}

// forward passes ev to the runner. It returns false if nobody reads events
// anymore.
func (s *server) forward(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}
