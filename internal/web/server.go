package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conorfennell/muraje/internal/domain"
	"github.com/conorfennell/muraje/internal/notify"
	"github.com/conorfennell/muraje/internal/session"
)

// Server exposes a review session over a JSON API.
type Server struct {
	mu       sync.Mutex
	ctrl     *session.Controller
	messages *notify.Recorder
	router   chi.Router
	logger   *slog.Logger
}

// sessionResponse is returned by every session endpoint.
type sessionResponse struct {
	View     session.View `json:"view"`
	Messages []string     `json:"messages"`
}

type rateRequest struct {
	Rating domain.Rating `json:"rating"`
}

type rateResponse struct {
	View       session.View `json:"view"`
	CardID     int64        `json:"cardId"`
	NextReview domain.Date  `json:"nextReview"`
	Points     int          `json:"points"`
	Badges     []string     `json:"badges"`
	Messages   []string     `json:"messages"`
}

type cardResponse struct {
	Card     domain.Card `json:"card"`
	Messages []string    `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a server around a loaded controller. messages must be the
// Recorder (or part of the notifier) the controller was built with; messages it
// collects during a request are returned in that request's response.
func NewServer(ctrl *session.Controller, messages *notify.Recorder, logger *slog.Logger) *Server {
	s := &Server{
		ctrl:     ctrl,
		messages: messages,
		router:   chi.NewRouter(),
		logger:   logger.With("component", "web"),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleGetSession())
		r.Post("/session/reveal", s.handleReveal())
		r.Post("/session/rate", s.handleRate())
		r.Post("/cards", s.handleAddCard())
		r.Get("/cards/due", s.handleDueCards())
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// handleGetSession re-renders the session, hiding any revealed answer.
func (s *Server) handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		view := s.ctrl.Render()
		writeJSON(w, http.StatusOK, sessionResponse{View: view, Messages: s.messages.Drain()})
	}
}

func (s *Server) handleReveal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.ctrl.Reveal(); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{View: s.ctrl.View(), Messages: s.messages.Drain()})
	}
}

func (s *Server) handleRate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if errors.Is(err, domain.ErrInvalidRating) {
				s.writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		out, err := s.ctrl.Rate(req.Rating)
		if err != nil && !errors.Is(err, session.ErrNotSaved) {
			s.writeError(w, r, err)
			return
		}
		if err != nil {
			s.logger.Error("failed to save after rating", "error", err, "request_id", middleware.GetReqID(r.Context()))
		}

		badges := out.Badges
		if badges == nil {
			badges = []string{}
		}
		writeJSON(w, http.StatusOK, rateResponse{
			View:       s.ctrl.View(),
			CardID:     out.Card.ID,
			NextReview: out.Card.NextReview,
			Points:     out.Points,
			Badges:     badges,
			Messages:   s.messages.Drain(),
		})
	}
}

func (s *Server) handleAddCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.NewCard
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		card, err := s.ctrl.AddCard(in)
		if err != nil && !errors.Is(err, session.ErrNotSaved) {
			s.writeError(w, r, err)
			return
		}
		if err != nil {
			s.logger.Error("failed to save new card", "error", err, "request_id", middleware.GetReqID(r.Context()))
		}
		writeJSON(w, http.StatusCreated, cardResponse{Card: card, Messages: s.messages.Drain()})
	}
}

func (s *Server) handleDueCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		due := s.ctrl.DueCards()
		if due == nil {
			due = []domain.Card{}
		}
		writeJSON(w, http.StatusOK, due)
	}
}

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRating), errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrNoCardsDue):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	s.logger.Debug("request rejected", "error", err, "status", status, "path", r.URL.Path)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
