// Package httpapi exposes a machine over HTTP for out-of-process hosts.
//
// POST /events submits one inbound event and responds with the domain
// events produced by that send plus the resulting state. GET /state
// returns the current context snapshot. Sends are serialized with a
// mutex because the core requires non-overlapping SendEvent calls.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/pergola/internal/logging"
	"github.com/aretw0/pergola/pkg/domain"
)

// Machine defines the runtime surface the server drives.
type Machine interface {
	SendEvent(ctx context.Context, ev domain.InboundEvent) error
	Subscribe(fn domain.Observer)
	Context() domain.WorkflowContext
}

// Server adapts a Machine to HTTP. Constructing it claims the machine's
// single subscriber slot; use WithSink to keep forwarding events to
// another consumer (a journal, a recorder).
type Server struct {
	machine Machine
	logger  *slog.Logger
	sink    domain.Observer

	mu      sync.Mutex
	capture []domain.Event
}

type Option func(*Server)

// WithSink forwards every domain event to fn in addition to the
// per-request capture.
func WithSink(fn domain.Observer) Option {
	return func(s *Server) {
		s.sink = fn
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP handler and installs the server as the
// machine's subscriber.
func NewHandler(m Machine, opts ...Option) http.Handler {
	s := &Server{
		machine: m,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	m.Subscribe(s.observe)

	r := chi.NewRouter()
	r.Post("/events", s.handleSend)
	r.Get("/state", s.handleState)
	return r
}

// observe runs under s.mu: events are only produced inside SendEvent,
// which handleSend calls while holding the lock.
func (s *Server) observe(ev domain.Event) {
	if s.capture != nil {
		s.capture = append(s.capture, ev)
	}
	if s.sink != nil {
		s.sink(ev)
	}
}

type sendResponse struct {
	State  string         `json:"state"`
	Events []domain.Event `json:"events"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var ev domain.InboundEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("send: invalid request body", "err", err)
		return
	}
	if ev.Type == "" {
		http.Error(w, "event type is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.capture = make([]domain.Event, 0, 4)
	err := s.machine.SendEvent(r.Context(), ev)
	events := s.capture
	s.capture = nil
	state := s.machine.Context().Current
	s.mu.Unlock()

	if err != nil {
		http.Error(w, "send failed", http.StatusInternalServerError)
		s.logger.Error("send failed", "event", ev.Type, "err", err)
		return
	}

	writeJSON(w, s.logger, sendResponse{State: state, Events: events})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.machine.Context()
	s.mu.Unlock()

	writeJSON(w, s.logger, snap)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("response encode failed", "err", err)
	}
}
