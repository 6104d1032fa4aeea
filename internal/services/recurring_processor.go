package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rinkbook/internal/core"
	"rinkbook/internal/storage"
)

// ExpenseAdder creates expenses through the normal write path so caches and
// events follow.
type ExpenseAdder interface {
	AddExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error)
}

// RecurringProcessor materializes due occurrences of recurring expense
// templates.
type RecurringProcessor struct {
	store    storage.ExpenseStore
	expenses ExpenseAdder
}

func NewRecurringProcessor(store storage.ExpenseStore, expenses ExpenseAdder) *RecurringProcessor {
	return &RecurringProcessor{store: store, expenses: expenses}
}

// ProcessDueExpenses creates one occurrence per due template and returns how
// many were created. A template whose occurrence fails is logged and skipped.
func (p *RecurringProcessor) ProcessDueExpenses(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.expenses == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.store.ListRecurringExpenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get recurring expenses: %w", err)
	}

	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	slog.InfoContext(ctx, "Processing recurring expenses",
		"total_active", len(templates),
		"processing_date", today.String())

	processedCount := 0
	for _, tpl := range templates {
		if !p.isDue(ctx, tpl, now) {
			continue
		}

		created, err := p.expenses.AddExpense(ctx, occurrence(tpl, today))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create expense from recurring template",
				"recurrent_id", tpl.ID,
				"description", tpl.Description,
				"error", err)
			continue
		}

		if err := p.store.MarkOccurrence(ctx, tpl.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to update last occurrence",
				"recurrent_id", tpl.ID,
				"error", err)
		}

		processedCount++
		slog.InfoContext(ctx, "Created expense from recurring template",
			"recurrent_id", tpl.ID,
			"expense_id", created.ID,
			"amount_cents", tpl.Amount.Cents,
			"frequency", tpl.RecurringFrequency)
	}

	slog.InfoContext(ctx, "Recurring expense processing complete",
		"processed", processedCount,
		"total_checked", len(templates))
	return processedCount, nil
}

// isDue treats the template's own date as its first occurrence.
func (p *RecurringProcessor) isDue(ctx context.Context, tpl core.ExpenseRecord, now time.Time) bool {
	checker, err := GetDuenessChecker(tpl.RecurringFrequency)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to check if expense is due", "id", tpl.ID, "error", err)
		return false
	}
	if now.Before(tpl.Date.Time) {
		return false
	}
	last := tpl.LastOccurrence.Time
	if last.IsZero() {
		last = tpl.Date.Time
	}
	return checker.IsDue(last, now, tpl.Date)
}

// occurrence copies a template into a one-off expense dated today.
func occurrence(tpl core.ExpenseRecord, today core.Date) core.ExpenseRecord {
	e := tpl
	e.ID = ""
	e.Date = today
	e.Season = core.CurrentSeason(today.Time)
	e.IsRecurring = false
	e.RecurringFrequency = ""
	e.LastOccurrence = core.Date{}
	e.IsReimbursed = false
	e.ReimbursedAmount = core.Money{}
	e.Tags = append([]string(nil), tpl.Tags...)
	return e
}
