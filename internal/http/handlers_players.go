package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rinkbook/internal/core"
)

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.svc.ListPlayers(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if players == nil {
		players = []core.Player{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"players": players,
		"count":   len(players),
	})
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var p core.Player
	if err := decodeJSON(w, r, &p); err != nil {
		respondServiceError(w, r, err)
		return
	}
	created, err := s.svc.CreatePlayer(r.Context(), p)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetPlayer(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var p core.Player
	if err := decodeJSON(w, r, &p); err != nil {
		respondServiceError(w, r, err)
		return
	}
	p.ID = chi.URLParam(r, "playerID")
	updated, err := s.svc.UpdatePlayer(r.Context(), p)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context(), chi.URLParam(r, "playerID"), seasonParam(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}
