package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rinkbook/internal/amqp"
	"rinkbook/internal/core"
	"rinkbook/internal/engine"
	"rinkbook/internal/sheets"
	"rinkbook/internal/storage"
)

// RecordSource is the read side of the store the worker mirrors from.
type RecordSource interface {
	ListPlayers(ctx context.Context) ([]core.Player, error)
	GetGame(ctx context.Context, id string) (core.GameRecord, error)
	ListGames(ctx context.Context, playerID string) ([]core.GameRecord, error)
	ListExpenses(ctx context.Context, playerID string, season core.Season) ([]core.ExpenseRecord, error)
}

// SyncWorker mirrors records and freshly computed summaries to Google Sheets
// as change events arrive.
type SyncWorker struct {
	source    RecordSource
	calc      *engine.Calculator
	games     sheets.GameWriter
	summaries sheets.SummaryWriter
}

func NewSyncWorker(source RecordSource, calc *engine.Calculator, games sheets.GameWriter, summaries sheets.SummaryWriter) *SyncWorker {
	if calc == nil {
		calc = engine.NewCalculator(nil)
	}
	return &SyncWorker{source: source, calc: calc, games: games, summaries: summaries}
}

// Handle processes one envelope. It satisfies amqp.Handler.
func (w *SyncWorker) Handle(ctx context.Context, env *amqp.Envelope) error {
	switch env.Type {
	case amqp.TypeGameRecorded:
		var msg amqp.GameRecordedMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return w.HandleGameRecorded(ctx, msg)
	case amqp.TypeExpenseChanged:
		var msg amqp.ExpenseChangedMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return w.HandleExpenseChanged(ctx, msg)
	default:
		return fmt.Errorf("%w: %s", amqp.ErrUnknownType, env.Type)
	}
}

// HandleGameRecorded appends the game row and rewrites the summary. A game
// deleted before the event arrived only refreshes the summary.
func (w *SyncWorker) HandleGameRecorded(ctx context.Context, msg amqp.GameRecordedMessage) error {
	slog.InfoContext(ctx, "Processing game event",
		"game_id", msg.GameID,
		"player_id", msg.PlayerID,
		"season", msg.Season)

	g, err := w.source.GetGame(ctx, msg.GameID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.WarnContext(ctx, "Game no longer exists, skipping row", "game_id", msg.GameID)
	case err != nil:
		return fmt.Errorf("get game from storage: %w", err)
	default:
		if err := w.games.AppendGame(ctx, msg.Season, g); err != nil {
			return fmt.Errorf("append game to sheets: %w", err)
		}
	}
	return w.mirrorSummary(ctx, msg.PlayerID, msg.Season)
}

func (w *SyncWorker) HandleExpenseChanged(ctx context.Context, msg amqp.ExpenseChangedMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"expense_id", msg.ExpenseID,
		"player_id", msg.PlayerID,
		"operation", msg.Operation)
	return w.mirrorSummary(ctx, msg.PlayerID, msg.Season)
}

// StartupSync rewrites every player's summary for the season. It recovers
// from events missed while the worker was down; failures are counted and
// logged rather than returned.
func (w *SyncWorker) StartupSync(ctx context.Context, season core.Season) error {
	players, err := w.source.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("list players for startup sync: %w", err)
	}

	successCount, errorCount := 0, 0
	for _, p := range players {
		if err := w.mirrorSummary(ctx, p.ID, season); err != nil {
			slog.ErrorContext(ctx, "Failed to sync summary during startup",
				"player_id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"season", season,
		"total", len(players),
		"synced", successCount,
		"errors", errorCount)
	return nil
}

func (w *SyncWorker) mirrorSummary(ctx context.Context, playerID string, season core.Season) error {
	games, err := w.source.ListGames(ctx, playerID)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}
	expenses, err := w.source.ListExpenses(ctx, playerID, season)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	ss := w.calc.SeasonSummary(playerID, season, games)
	es := w.calc.ExpenseSummary(season, expenses, games)
	es.PlayerID = playerID

	if err := w.summaries.WriteSummary(ctx, ss, es); err != nil {
		return fmt.Errorf("write summary to sheets: %w", err)
	}
	slog.InfoContext(ctx, "Successfully synced summary",
		"player_id", playerID,
		"season", season,
		"points", ss.TotalPoints,
		"total_expenses_cents", es.TotalExpenses.Cents)
	return nil
}
