// Package web provides the HTTP status server for the button-sensor daemon:
// an HTML page, a JSON document, a live websocket event stream and, for
// injected sources, a press/release endpoint.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	hub        *Hub
	injected   *gpio.InjectedReader
	log        *logrus.Entry
}

// Options configures the optional parts of a Server.
type Options struct {
	// Hub enables GET /events when set.
	Hub *Hub
	// Injected enables POST /inject/{level} when set.
	Injected *gpio.InjectedReader
	Logger   *logrus.Entry
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker, o Options) *Server {
	s := &Server{
		tracker:  tracker,
		hub:      o.Hub,
		injected: o.Injected,
		log:      o.Logger,
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/index.html", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/index.json", s.handleJSON).Methods(http.MethodGet)
	if s.hub != nil {
		r.Handle("/events", s.hub).Methods(http.MethodGet)
	}
	if s.injected != nil {
		r.HandleFunc("/inject/{level}", s.handleInject).Methods(http.MethodPost)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server. Websocket connections are
// hijacked and not tracked by net/http, so the hub is closed first.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap, s.hub != nil, s.injected != nil); err != nil {
		s.log.WithError(err).Error("render status page")
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

type injectResponse struct {
	Pressed bool `json:"pressed"`
}

func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	switch level := mux.Vars(r)["level"]; level {
	case "press":
		s.injected.Press()
	case "release":
		s.injected.Release()
	case "toggle":
		s.injected.Toggle()
	default:
		http.Error(w, "level must be press, release or toggle", http.StatusBadRequest)
		return
	}

	pressed, _ := s.injected.Read()
	s.log.WithFields(logrus.Fields{"remote": r.RemoteAddr, "pressed": pressed}).Debug("level injected over http")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(injectResponse{Pressed: pressed})
}
