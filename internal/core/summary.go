package core

// SeasonSummary is the full-recompute aggregate of one player's games in one season.
type SeasonSummary struct {
	PlayerID string `json:"player_id"`
	Season   Season `json:"season"`

	GamesPlayed int `json:"games_played"`

	TotalGoals           int     `json:"total_goals"`
	TotalAssists         int     `json:"total_assists"`
	TotalPoints          int     `json:"total_points"`
	AveragePointsPerGame float64 `json:"average_points_per_game"`

	TotalPenaltyMinutes int     `json:"total_penalty_minutes"`
	TotalPlusMinus      int     `json:"total_plus_minus"`
	TotalShotsOnGoal    int     `json:"total_shots_on_goal"`
	ShootingPercentage  float64 `json:"shooting_percentage"`

	LongestGoalStreak  int `json:"longest_goal_streak"`
	LongestPointStreak int `json:"longest_point_streak"`
	MostGoalsInGame    int `json:"most_goals_in_game"`
	MostAssistsInGame  int `json:"most_assists_in_game"`
	MostPointsInGame   int `json:"most_points_in_game"`

	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
	Ties           int `json:"ties"`
	OvertimeWins   int `json:"overtime_wins"`
	OvertimeLosses int `json:"overtime_losses"`
	ShootoutWins   int `json:"shootout_wins"`
	ShootoutLosses int `json:"shootout_losses"`
}

// WinPercentage returns wins over decided-or-tied games, 0 with no games.
func (s SeasonSummary) WinPercentage() float64 {
	played := s.Wins + s.Losses + s.Ties
	if played == 0 {
		return 0
	}
	return float64(s.Wins) / float64(played) * 100
}

// CategoryTotal is one row of the per-category breakdown.
type CategoryTotal struct {
	Total      Money   `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ExpenseSummary is the full-recompute aggregate of one season's expenses.
// ProjectedYearTotal is a linear extrapolation of the monthly average, not a forecast.
type ExpenseSummary struct {
	PlayerID string `json:"player_id,omitempty"`
	Season   Season `json:"season"`

	TotalExpenses      Money `json:"total_expenses"`
	TotalReimbursed    Money `json:"total_reimbursed"`
	NetExpenses        Money `json:"net_expenses"`
	TotalTaxDeductible Money `json:"total_tax_deductible"`

	CategoryTotals      map[ExpenseCategory]CategoryTotal `json:"category_totals"`
	MonthlyTotals       map[string]Money                  `json:"monthly_totals"`
	PaymentMethodTotals map[PaymentMethod]Money           `json:"payment_method_totals"`

	ExpensesPerGame    Money `json:"expenses_per_game"`
	ExpensesPerMonth   Money `json:"expenses_per_month"`
	ProjectedYearTotal Money `json:"projected_year_total"`
}

// DefaultTaxSavingsRate is the marginal rate the expense report assumes.
const DefaultTaxSavingsRate = 0.25

// EstimatedTaxSavings applies rate to the tax-deductible total.
func (s ExpenseSummary) EstimatedTaxSavings(rate float64) Money {
	return Money{Cents: roundCents(float64(s.TotalTaxDeductible.Cents) * rate)}
}

// ProjectedRemaining is what is left to spend this year if the projection holds.
func (s ExpenseSummary) ProjectedRemaining() Money {
	rem := s.ProjectedYearTotal.Cents - s.TotalExpenses.Cents
	if rem < 0 {
		rem = 0
	}
	return Money{Cents: rem}
}

func roundCents(v float64) int64 {
	if v < 0 {
		return -int64(-v + 0.5)
	}
	return int64(v + 0.5)
}

// DivideMoney splits m into n equal parts rounded half-up to the cent.
// Returns zero when n is not positive.
func DivideMoney(m Money, n int) Money {
	if n <= 0 {
		return Money{}
	}
	return Money{Cents: roundCents(float64(m.Cents) / float64(n))}
}
