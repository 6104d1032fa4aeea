package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rinkbook/internal/core"
)

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if _, err := s.svc.GetPlayer(r.Context(), playerID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	games, err := s.svc.ListGames(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if games == nil {
		games = []core.GameRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"games": games,
		"count": len(games),
	})
}

// handleRecordGame stores a game for the player in the path. The response
// carries the milestones the game earned and the refreshed season summary.
func (s *Server) handleRecordGame(w http.ResponseWriter, r *http.Request) {
	var g core.GameRecord
	if err := decodeJSON(w, r, &g); err != nil {
		respondServiceError(w, r, err)
		return
	}
	g.PlayerID = chi.URLParam(r, "playerID")

	res, err := s.svc.RecordGame(r.Context(), g, seasonParam(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")
	existing, err := s.svc.GetGame(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var g core.GameRecord
	if err := decodeJSON(w, r, &g); err != nil {
		respondServiceError(w, r, err)
		return
	}
	g.ID = id
	g.PlayerID = existing.PlayerID

	updated, err := s.svc.UpdateGame(r.Context(), g)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeasonSummary(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if _, err := s.svc.GetPlayer(r.Context(), playerID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	sum, err := s.svc.SeasonSummary(r.Context(), playerID, seasonParam(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

// handleMilestones lists every season's milestones unless ?season is given.
func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	ms, err := s.svc.Milestones(r.Context(), chi.URLParam(r, "playerID"), seasonParam(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"milestones": ms,
		"count":      len(ms),
	})
}
