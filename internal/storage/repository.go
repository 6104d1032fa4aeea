package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rinkbook/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Summary replacement and game+milestone inserts are serialized through one writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", what, id, err)
}

func affected(n int64, err error, what, id string) error {
	if err != nil {
		return fmt.Errorf("write %s %s: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

// Players

func (r *SQLiteRepository) CreatePlayer(ctx context.Context, p core.Player) error {
	if err := r.queries.CreatePlayer(ctx, p); err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	slog.InfoContext(ctx, "Player saved to SQLite", "player_id", p.ID, "name", p.Name)
	return nil
}

func (r *SQLiteRepository) GetPlayer(ctx context.Context, id string) (core.Player, error) {
	p, err := r.queries.GetPlayer(ctx, id)
	if err != nil {
		return core.Player{}, notFound(err, "player", id)
	}
	return p, nil
}

func (r *SQLiteRepository) ListPlayers(ctx context.Context) ([]core.Player, error) {
	players, err := r.queries.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (r *SQLiteRepository) UpdatePlayer(ctx context.Context, p core.Player) error {
	n, err := r.queries.UpdatePlayer(ctx, p)
	return affected(n, err, "player", p.ID)
}

// Games

// InsertGame stores the game and the milestones it earned in one transaction.
func (r *SQLiteRepository) InsertGame(ctx context.Context, g core.GameRecord, milestones []core.Milestone) error {
	err := r.withTx(ctx, func(q *Queries) error {
		if err := q.CreateGame(ctx, g); err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		for _, m := range milestones {
			if err := q.CreateMilestone(ctx, m); err != nil {
				return fmt.Errorf("create milestone %q: %w", m.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Game saved to SQLite",
		"game_id", g.ID,
		"player_id", g.PlayerID,
		"date", g.Date.String(),
		"milestones", len(milestones))
	return nil
}

func (r *SQLiteRepository) GetGame(ctx context.Context, id string) (core.GameRecord, error) {
	g, err := r.queries.GetGame(ctx, id)
	if err != nil {
		return core.GameRecord{}, notFound(err, "game", id)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGames(ctx context.Context, playerID string) ([]core.GameRecord, error) {
	games, err := r.queries.ListGamesByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list games for player %s: %w", playerID, err)
	}
	return games, nil
}

func (r *SQLiteRepository) ReplaceGame(ctx context.Context, g core.GameRecord) error {
	n, err := r.queries.UpdateGame(ctx, g)
	return affected(n, err, "game", g.ID)
}

func (r *SQLiteRepository) DeleteGame(ctx context.Context, id string) error {
	n, err := r.queries.DeleteGame(ctx, id)
	return affected(n, err, "game", id)
}

// Milestones

func (r *SQLiteRepository) ListMilestones(ctx context.Context, playerID string, season core.Season) ([]core.Milestone, error) {
	ms, err := r.queries.ListMilestones(ctx, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return ms, nil
}

// Expenses

func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.ExpenseRecord) error {
	if err := r.queries.CreateExpense(ctx, e); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"expense_id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"season", e.Season)
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.ExpenseRecord, error) {
	e, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return core.ExpenseRecord{}, notFound(err, "expense", id)
	}
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, playerID string, season core.Season) ([]core.ExpenseRecord, error) {
	items, err := r.queries.ListExpenses(ctx, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) ListRecurringExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	items, err := r.queries.ListRecurringExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) ReplaceExpense(ctx context.Context, e core.ExpenseRecord) error {
	n, err := r.queries.UpdateExpense(ctx, e)
	return affected(n, err, "expense", e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	return affected(n, err, "expense", id)
}

func (r *SQLiteRepository) MarkOccurrence(ctx context.Context, id string, d core.Date) error {
	n, err := r.queries.MarkExpenseOccurrence(ctx, id, d, time.Now())
	return affected(n, err, "expense", id)
}

// Tournaments

func (r *SQLiteRepository) InsertTournament(ctx context.Context, t core.TournamentRecord) error {
	if err := r.queries.CreateTournament(ctx, t); err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListTournaments(ctx context.Context) ([]core.TournamentRecord, error) {
	items, err := r.queries.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return items, nil
}

// Summaries

func (r *SQLiteRepository) SaveSeasonSummary(ctx context.Context, s core.SeasonSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode season summary: %w", err)
	}
	if err := r.queries.UpsertSeasonSummary(ctx, s.PlayerID, s.Season, data, time.Now()); err != nil {
		return fmt.Errorf("save season summary: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSeasonSummary(ctx context.Context, playerID string, season core.Season) (core.SeasonSummary, error) {
	var s core.SeasonSummary
	data, err := r.queries.GetSeasonSummaryData(ctx, playerID, season)
	if err != nil {
		return s, notFound(err, "season summary", playerID+"/"+string(season))
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode season summary: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SaveExpenseSummary(ctx context.Context, s core.ExpenseSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode expense summary: %w", err)
	}
	if err := r.queries.UpsertExpenseSummary(ctx, s.PlayerID, s.Season, data, time.Now()); err != nil {
		return fmt.Errorf("save expense summary: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetExpenseSummary(ctx context.Context, playerID string, season core.Season) (core.ExpenseSummary, error) {
	var s core.ExpenseSummary
	data, err := r.queries.GetExpenseSummaryData(ctx, playerID, season)
	if err != nil {
		return s, notFound(err, "expense summary", playerID+"/"+string(season))
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode expense summary: %w", err)
	}
	return s, nil
}

// Snapshots

func (r *SQLiteRepository) Export(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Version: SnapshotVersion, ExportedAt: time.Now().UTC()}
	var err error
	if snap.Players, err = r.queries.ListPlayers(ctx); err != nil {
		return snap, fmt.Errorf("export players: %w", err)
	}
	if snap.Games, err = r.queries.ListAllGames(ctx); err != nil {
		return snap, fmt.Errorf("export games: %w", err)
	}
	if snap.Milestones, err = r.queries.ListAllMilestones(ctx); err != nil {
		return snap, fmt.Errorf("export milestones: %w", err)
	}
	if snap.Expenses, err = r.queries.ListAllExpenses(ctx); err != nil {
		return snap, fmt.Errorf("export expenses: %w", err)
	}
	if snap.Tournaments, err = r.queries.ListTournaments(ctx); err != nil {
		return snap, fmt.Errorf("export tournaments: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepository) Import(ctx context.Context, s Snapshot) error {
	err := r.withTx(ctx, func(q *Queries) error {
		if err := q.ClearAll(ctx); err != nil {
			return err
		}
		for _, p := range s.Players {
			if err := q.CreatePlayer(ctx, p); err != nil {
				return fmt.Errorf("import player %s: %w", p.ID, err)
			}
		}
		for _, g := range s.Games {
			if err := q.CreateGame(ctx, g); err != nil {
				return fmt.Errorf("import game %s: %w", g.ID, err)
			}
		}
		for _, m := range s.Milestones {
			if err := q.CreateMilestone(ctx, m); err != nil {
				return fmt.Errorf("import milestone %s: %w", m.ID, err)
			}
		}
		for _, e := range s.Expenses {
			if err := q.CreateExpense(ctx, e); err != nil {
				return fmt.Errorf("import expense %s: %w", e.ID, err)
			}
		}
		for _, t := range s.Tournaments {
			if err := q.CreateTournament(ctx, t); err != nil {
				return fmt.Errorf("import tournament %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Snapshot imported",
		"players", len(s.Players),
		"games", len(s.Games),
		"milestones", len(s.Milestones),
		"expenses", len(s.Expenses),
		"tournaments", len(s.Tournaments))
	return nil
}
