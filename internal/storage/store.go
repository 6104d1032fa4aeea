// Package storage persists players, game and expense records, milestones,
// tournaments and the derived summaries the engine produces.
package storage

import (
	"context"
	"errors"
	"time"

	"rinkbook/internal/core"
)

// ErrNotFound is returned when a record or summary does not exist.
var ErrNotFound = errors.New("not found")

type PlayerStore interface {
	CreatePlayer(ctx context.Context, p core.Player) error
	GetPlayer(ctx context.Context, id string) (core.Player, error)
	ListPlayers(ctx context.Context) ([]core.Player, error)
	UpdatePlayer(ctx context.Context, p core.Player) error
}

// GameStore keeps game records. ListGames returns a player's games ordered by
// date, with same-day games in insertion order.
type GameStore interface {
	InsertGame(ctx context.Context, g core.GameRecord, milestones []core.Milestone) error
	GetGame(ctx context.Context, id string) (core.GameRecord, error)
	ListGames(ctx context.Context, playerID string) ([]core.GameRecord, error)
	ReplaceGame(ctx context.Context, g core.GameRecord) error
	DeleteGame(ctx context.Context, id string) error
}

// MilestoneStore lists milestones. An empty season lists every season.
type MilestoneStore interface {
	ListMilestones(ctx context.Context, playerID string, season core.Season) ([]core.Milestone, error)
}

type ExpenseStore interface {
	InsertExpense(ctx context.Context, e core.ExpenseRecord) error
	GetExpense(ctx context.Context, id string) (core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, playerID string, season core.Season) ([]core.ExpenseRecord, error)
	ListRecurringExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
	ReplaceExpense(ctx context.Context, e core.ExpenseRecord) error
	DeleteExpense(ctx context.Context, id string) error
	MarkOccurrence(ctx context.Context, id string, d core.Date) error
}

type TournamentStore interface {
	InsertTournament(ctx context.Context, t core.TournamentRecord) error
	ListTournaments(ctx context.Context) ([]core.TournamentRecord, error)
}

// SummaryStore replaces summaries wholesale per (player, season).
type SummaryStore interface {
	SaveSeasonSummary(ctx context.Context, s core.SeasonSummary) error
	GetSeasonSummary(ctx context.Context, playerID string, season core.Season) (core.SeasonSummary, error)
	SaveExpenseSummary(ctx context.Context, s core.ExpenseSummary) error
	GetExpenseSummary(ctx context.Context, playerID string, season core.Season) (core.ExpenseSummary, error)
}

// Snapshot is the full export format.
type Snapshot struct {
	Version     int                     `json:"version"`
	ExportedAt  time.Time               `json:"exported_at"`
	Players     []core.Player           `json:"players"`
	Games       []core.GameRecord       `json:"games"`
	Milestones  []core.Milestone        `json:"milestones"`
	Expenses    []core.ExpenseRecord    `json:"expenses"`
	Tournaments []core.TournamentRecord `json:"tournaments"`
}

// SnapshotVersion is the current export format version.
const SnapshotVersion = 1

// Snapshotter exports and imports every record. Import replaces all data
// and drops stored summaries.
type Snapshotter interface {
	Export(ctx context.Context) (Snapshot, error)
	Import(ctx context.Context, s Snapshot) error
}

// Store is the full record store.
type Store interface {
	PlayerStore
	GameStore
	MilestoneStore
	ExpenseStore
	TournamentStore
	SummaryStore
	Snapshotter
	Close() error
}
