// Package memory is an in-process storage.Store used by the memory backend
// and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rinkbook/internal/core"
	"rinkbook/internal/storage"
)

type summaryKey struct {
	player string
	season core.Season
}

type Store struct {
	mu          sync.Mutex
	players     []core.Player
	games       []core.GameRecord
	milestones  []core.Milestone
	expenses    []core.ExpenseRecord
	tournaments []core.TournamentRecord

	seasonSummaries  map[summaryKey]core.SeasonSummary
	expenseSummaries map[summaryKey]core.ExpenseSummary
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		seasonSummaries:  map[summaryKey]core.SeasonSummary{},
		expenseSummaries: map[summaryKey]core.ExpenseSummary{},
	}
}

func (s *Store) Close() error { return nil }

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
}

func duplicate(what, id string) error {
	return fmt.Errorf("%s %s already exists", what, id)
}

// Players

func (s *Store) CreatePlayer(_ context.Context, p core.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playerIndex(p.ID) >= 0 {
		return duplicate("player", p.ID)
	}
	s.players = append(s.players, p)
	return nil
}

func (s *Store) GetPlayer(_ context.Context, id string) (core.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.playerIndex(id)
	if i < 0 {
		return core.Player{}, notFound("player", id)
	}
	return s.players[i], nil
}

func (s *Store) ListPlayers(_ context.Context) ([]core.Player, error) {
	s.mu.Lock()
	out := append([]core.Player(nil), s.players...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdatePlayer(_ context.Context, p core.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.playerIndex(p.ID)
	if i < 0 {
		return notFound("player", p.ID)
	}
	p.CreatedAt = s.players[i].CreatedAt
	s.players[i] = p
	return nil
}

func (s *Store) playerIndex(id string) int {
	for i := range s.players {
		if s.players[i].ID == id {
			return i
		}
	}
	return -1
}

// Games

func (s *Store) InsertGame(_ context.Context, g core.GameRecord, milestones []core.Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameIndex(g.ID) >= 0 {
		return duplicate("game", g.ID)
	}
	s.games = append(s.games, g)
	s.milestones = append(s.milestones, milestones...)
	return nil
}

func (s *Store) GetGame(_ context.Context, id string) (core.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.gameIndex(id)
	if i < 0 {
		return core.GameRecord{}, notFound("game", id)
	}
	return s.games[i], nil
}

// ListGames returns the player's games by date; the stable sort keeps
// insertion order for same-day games.
func (s *Store) ListGames(_ context.Context, playerID string) ([]core.GameRecord, error) {
	s.mu.Lock()
	var out []core.GameRecord
	for _, g := range s.games {
		if g.PlayerID == playerID {
			out = append(out, g)
		}
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) ReplaceGame(_ context.Context, g core.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.gameIndex(g.ID)
	if i < 0 {
		return notFound("game", g.ID)
	}
	g.CreatedAt = s.games[i].CreatedAt
	s.games[i] = g
	return nil
}

func (s *Store) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.gameIndex(id)
	if i < 0 {
		return notFound("game", id)
	}
	s.games = append(s.games[:i], s.games[i+1:]...)
	return nil
}

func (s *Store) gameIndex(id string) int {
	for i := range s.games {
		if s.games[i].ID == id {
			return i
		}
	}
	return -1
}

// Milestones

func (s *Store) ListMilestones(_ context.Context, playerID string, season core.Season) ([]core.Milestone, error) {
	s.mu.Lock()
	var out []core.Milestone
	for _, m := range s.milestones {
		if m.PlayerID != playerID {
			continue
		}
		if season != "" && m.Season != season {
			continue
		}
		out = append(out, m)
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

// Expenses

func (s *Store) InsertExpense(_ context.Context, e core.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expenseIndex(e.ID) >= 0 {
		return duplicate("expense", e.ID)
	}
	s.expenses = append(s.expenses, e)
	return nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.expenseIndex(id)
	if i < 0 {
		return core.ExpenseRecord{}, notFound("expense", id)
	}
	return s.expenses[i], nil
}

func (s *Store) ListExpenses(_ context.Context, playerID string, season core.Season) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	var out []core.ExpenseRecord
	for _, e := range s.expenses {
		if e.PlayerID == playerID && e.Season == season {
			out = append(out, e)
		}
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) ListRecurringExpenses(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ExpenseRecord
	for _, e := range s.expenses {
		if e.IsRecurring {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ReplaceExpense(_ context.Context, e core.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.expenseIndex(e.ID)
	if i < 0 {
		return notFound("expense", e.ID)
	}
	e.CreatedAt = s.expenses[i].CreatedAt
	s.expenses[i] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.expenseIndex(id)
	if i < 0 {
		return notFound("expense", id)
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	return nil
}

func (s *Store) MarkOccurrence(_ context.Context, id string, d core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.expenseIndex(id)
	if i < 0 {
		return notFound("expense", id)
	}
	s.expenses[i].LastOccurrence = d
	s.expenses[i].UpdatedAt = time.Now()
	return nil
}

func (s *Store) expenseIndex(id string) int {
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			return i
		}
	}
	return -1
}

// Tournaments

func (s *Store) InsertTournament(_ context.Context, t core.TournamentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments = append(s.tournaments, t)
	return nil
}

func (s *Store) ListTournaments(_ context.Context) ([]core.TournamentRecord, error) {
	s.mu.Lock()
	out := append([]core.TournamentRecord(nil), s.tournaments...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate.Time) })
	return out, nil
}

// Summaries

func (s *Store) SaveSeasonSummary(_ context.Context, sum core.SeasonSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasonSummaries[summaryKey{sum.PlayerID, sum.Season}] = sum
	return nil
}

func (s *Store) GetSeasonSummary(_ context.Context, playerID string, season core.Season) (core.SeasonSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.seasonSummaries[summaryKey{playerID, season}]
	if !ok {
		return sum, notFound("season summary", playerID+"/"+string(season))
	}
	return sum, nil
}

func (s *Store) SaveExpenseSummary(_ context.Context, sum core.ExpenseSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenseSummaries[summaryKey{sum.PlayerID, sum.Season}] = sum
	return nil
}

func (s *Store) GetExpenseSummary(_ context.Context, playerID string, season core.Season) (core.ExpenseSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.expenseSummaries[summaryKey{playerID, season}]
	if !ok {
		return sum, notFound("expense summary", playerID+"/"+string(season))
	}
	return sum, nil
}

// Snapshots

func (s *Store) Export(_ context.Context) (storage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.Snapshot{
		Version:     storage.SnapshotVersion,
		ExportedAt:  time.Now().UTC(),
		Players:     append([]core.Player(nil), s.players...),
		Games:       append([]core.GameRecord(nil), s.games...),
		Milestones:  append([]core.Milestone(nil), s.milestones...),
		Expenses:    append([]core.ExpenseRecord(nil), s.expenses...),
		Tournaments: append([]core.TournamentRecord(nil), s.tournaments...),
	}, nil
}

func (s *Store) Import(_ context.Context, snap storage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append([]core.Player(nil), snap.Players...)
	s.games = append([]core.GameRecord(nil), snap.Games...)
	s.milestones = append([]core.Milestone(nil), snap.Milestones...)
	s.expenses = append([]core.ExpenseRecord(nil), snap.Expenses...)
	s.tournaments = append([]core.TournamentRecord(nil), snap.Tournaments...)
	s.seasonSummaries = map[summaryKey]core.SeasonSummary{}
	s.expenseSummaries = map[summaryKey]core.ExpenseSummary{}
	return nil
}
