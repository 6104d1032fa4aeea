package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rinkbook/internal/core"
	"rinkbook/internal/storage"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListExpenses(r.Context(), chi.URLParam(r, "playerID"), seasonParam(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"expenses": list,
		"count":    len(list),
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var e core.ExpenseRecord
	if err := decodeJSON(w, r, &e); err != nil {
		respondServiceError(w, r, err)
		return
	}
	e.PlayerID = chi.URLParam(r, "playerID")

	created, err := s.svc.AddExpense(r.Context(), e)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.GetExpense(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "expenseID")
	existing, err := s.svc.GetExpense(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var e core.ExpenseRecord
	if err := decodeJSON(w, r, &e); err != nil {
		respondServiceError(w, r, err)
		return
	}
	e.ID = id
	e.PlayerID = existing.PlayerID
	if e.LastOccurrence.IsZero() {
		e.LastOccurrence = existing.LastOccurrence
	}

	updated, err := s.svc.UpdateExpense(r.Context(), e)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteExpense(r.Context(), chi.URLParam(r, "expenseID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if _, err := s.svc.GetPlayer(r.Context(), playerID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	sum, err := s.svc.ExpenseSummary(r.Context(), playerID, seasonParam(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

// Tournaments

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListTournaments(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"tournaments": list,
		"count":       len(list),
	})
}

func (s *Server) handleAddTournament(w http.ResponseWriter, r *http.Request) {
	var t core.TournamentRecord
	if err := decodeJSON(w, r, &t); err != nil {
		respondServiceError(w, r, err)
		return
	}
	created, err := s.svc.AddTournament(r.Context(), t)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Snapshots

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Export(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="rinkbook-export.json"`)
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap storage.Snapshot
	if err := decodeJSON(w, r, &snap); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := s.svc.Import(r.Context(), snap); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"players":     len(snap.Players),
		"games":       len(snap.Games),
		"expenses":    len(snap.Expenses),
		"milestones":  len(snap.Milestones),
		"tournaments": len(snap.Tournaments),
	})
}
