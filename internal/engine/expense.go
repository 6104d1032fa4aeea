package engine

import "rinkbook/internal/core"

// ComputeExpenseSummary uses the default season rule to count games.
func ComputeExpenseSummary(season core.Season, expenses []core.ExpenseRecord, games []core.GameRecord) core.ExpenseSummary {
	return defaultCalculator.ExpenseSummary(season, expenses, games)
}

// ExpenseSummary folds a season's expenses into totals and breakdowns.
// expenses must already be narrowed to one player and season; games are the
// same player's games and are filtered to season here for the per-game figure.
func (c *Calculator) ExpenseSummary(season core.Season, expenses []core.ExpenseRecord, games []core.GameRecord) core.ExpenseSummary {
	sum := core.ExpenseSummary{
		Season:              season,
		CategoryTotals:      map[core.ExpenseCategory]core.CategoryTotal{},
		MonthlyTotals:       map[string]core.Money{},
		PaymentMethodTotals: map[core.PaymentMethod]core.Money{},
	}
	if len(expenses) == 0 {
		return sum
	}
	sum.PlayerID = expenses[0].PlayerID

	var total, reimbursed, deductible int64
	months := map[string]int64{}
	methods := map[core.PaymentMethod]int64{}
	for _, e := range expenses {
		amount := e.Amount.Cents
		total += amount
		if e.IsReimbursed {
			reimbursed += e.ReimbursedAmount.Cents
		}
		if e.IsTaxDeductible {
			deductible += amount
		}

		ct := sum.CategoryTotals[e.Category]
		ct.Total.Cents += amount
		ct.Count++
		sum.CategoryTotals[e.Category] = ct

		months[e.Date.YearMonth()] += amount
		methods[e.PaymentMethod] += amount
	}

	if total > 0 {
		for cat, ct := range sum.CategoryTotals {
			ct.Percentage = float64(ct.Total.Cents) / float64(total) * 100
			sum.CategoryTotals[cat] = ct
		}
	}
	for k, v := range months {
		sum.MonthlyTotals[k] = core.Money{Cents: v}
	}
	for k, v := range methods {
		sum.PaymentMethodTotals[k] = core.Money{Cents: v}
	}

	sum.TotalExpenses = core.Money{Cents: total}
	sum.TotalReimbursed = core.Money{Cents: reimbursed}
	sum.NetExpenses = core.Money{Cents: total - reimbursed}
	sum.TotalTaxDeductible = core.Money{Cents: deductible}

	sum.ExpensesPerMonth = core.DivideMoney(sum.TotalExpenses, len(months))
	// Projected from the exact total so per-month rounding is not multiplied.
	sum.ProjectedYearTotal = core.DivideMoney(core.Money{Cents: total * 12}, len(months))

	played := 0
	for _, g := range games {
		if sum.PlayerID != "" && g.PlayerID != sum.PlayerID {
			continue
		}
		if c.rule.Contains(season, g.Date) {
			played++
		}
	}
	sum.ExpensesPerGame = core.DivideMoney(sum.TotalExpenses, played)
	return sum
}
