package services

import (
	"context"
	"fmt"
	"log/slog"

	"rinkbook/internal/amqp"
	"rinkbook/internal/core"
)

// AddExpense stores a new expense. An empty season is taken from the
// expense date.
func (s *RecordService) AddExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	if e.Season == "" && !e.Date.IsZero() {
		e.Season = core.CurrentSeason(e.Date.Time)
	}
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, invalid(err)
	}
	if _, err := s.store.GetPlayer(ctx, e.PlayerID); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("load player: %w", err)
	}
	now := s.now().UTC()
	e.ID = s.newID()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if err := s.store.InsertExpense(ctx, e); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("store expense: %w", err)
	}
	s.invalidateExpenses(ctx, e.PlayerID, e.Season)

	slog.InfoContext(ctx, "Expense added",
		"expense_id", e.ID,
		"player_id", e.PlayerID,
		"season", e.Season,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)
	s.publishExpense(ctx, expenseMessage(e, amqp.OpCreated))
	return e, nil
}

func (s *RecordService) GetExpense(ctx context.Context, id string) (core.ExpenseRecord, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *RecordService) ListExpenses(ctx context.Context, playerID string, season core.Season) ([]core.ExpenseRecord, error) {
	season, err := s.resolveSeason(season)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListExpenses(ctx, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if list == nil {
		list = []core.ExpenseRecord{}
	}
	return list, nil
}

// UpdateExpense replaces an expense wholesale.
func (s *RecordService) UpdateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	old, err := s.store.GetExpense(ctx, e.ID)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	if e.Season == "" && !e.Date.IsZero() {
		e.Season = core.CurrentSeason(e.Date.Time)
	}
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, invalid(err)
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = s.now().UTC()
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if err := s.store.ReplaceExpense(ctx, e); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("replace expense: %w", err)
	}
	s.invalidateExpenses(ctx, old.PlayerID, old.Season)
	s.invalidateExpenses(ctx, e.PlayerID, e.Season)
	slog.InfoContext(ctx, "Expense updated", "expense_id", e.ID, "player_id", e.PlayerID)
	s.publishExpense(ctx, expenseMessage(e, amqp.OpUpdated))
	return e, nil
}

func (s *RecordService) DeleteExpense(ctx context.Context, id string) error {
	old, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.invalidateExpenses(ctx, old.PlayerID, old.Season)
	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "player_id", old.PlayerID)
	s.publishExpense(ctx, expenseMessage(old, amqp.OpDeleted))
	return nil
}

// ExpenseSummary returns the cached summary or recomputes it from the
// player's expenses and games for the season.
func (s *RecordService) ExpenseSummary(ctx context.Context, playerID string, season core.Season) (core.ExpenseSummary, error) {
	season, err := s.resolveSeason(season)
	if err != nil {
		return core.ExpenseSummary{}, err
	}
	key := expenseKey(playerID, season)
	if sum, ok := s.cacheGetExpense(ctx, key); ok {
		return sum, nil
	}
	expenses, err := s.store.ListExpenses(ctx, playerID, season)
	if err != nil {
		return core.ExpenseSummary{}, fmt.Errorf("load expenses: %w", err)
	}
	games, err := s.store.ListGames(ctx, playerID)
	if err != nil {
		return core.ExpenseSummary{}, fmt.Errorf("load games: %w", err)
	}
	sum := s.calc.ExpenseSummary(season, expenses, games)
	sum.PlayerID = playerID
	if err := s.store.SaveExpenseSummary(ctx, sum); err != nil {
		return core.ExpenseSummary{}, fmt.Errorf("save expense summary: %w", err)
	}
	s.cacheSetExpense(ctx, key, sum)
	return sum, nil
}

func expenseMessage(e core.ExpenseRecord, op string) amqp.ExpenseChangedMessage {
	return amqp.ExpenseChangedMessage{
		ExpenseID: e.ID,
		PlayerID:  e.PlayerID,
		Season:    e.Season,
		Operation: op,
	}
}
