// Package engine folds raw game and expense records into season summaries,
// expense breakdowns and career milestones.
//
// Every function here is a pure fold over caller-owned slices: no I/O, no
// caching, inputs are never mutated. Callers re-run a calculator whenever the
// underlying records change and persist the result themselves.
package engine

import (
	"sort"

	"rinkbook/internal/core"
)

// Calculator binds the season-membership rule used to filter records.
type Calculator struct {
	rule core.SeasonRule
}

// NewCalculator returns a Calculator using rule, or the default year-prefix
// rule when rule is nil.
func NewCalculator(rule core.SeasonRule) *Calculator {
	if rule == nil {
		rule = core.DefaultSeasonRule
	}
	return &Calculator{rule: rule}
}

// Rule returns the membership rule in use.
func (c *Calculator) Rule() core.SeasonRule { return c.rule }

var defaultCalculator = NewCalculator(nil)

// ComputeSeasonSummary uses the default season rule.
func ComputeSeasonSummary(playerID string, season core.Season, games []core.GameRecord) core.SeasonSummary {
	return defaultCalculator.SeasonSummary(playerID, season, games)
}

// SeasonSummary folds the player's games belonging to season into a summary.
// An empty selection yields a zero summary.
func (c *Calculator) SeasonSummary(playerID string, season core.Season, games []core.GameRecord) core.SeasonSummary {
	sum := core.SeasonSummary{PlayerID: playerID, Season: season}

	selected := c.seasonGames(playerID, season, games)
	if len(selected) == 0 {
		return sum
	}

	sum.GamesPlayed = len(selected)
	for _, g := range selected {
		sum.TotalGoals += g.Goals
		sum.TotalAssists += g.Assists
		sum.TotalPoints += g.Points
		sum.TotalPenaltyMinutes += g.PenaltyMinutes
		sum.TotalPlusMinus += g.PlusMinus
		sum.TotalShotsOnGoal += g.ShotsOnGoal

		sum.MostGoalsInGame = max(sum.MostGoalsInGame, g.Goals)
		sum.MostAssistsInGame = max(sum.MostAssistsInGame, g.Assists)
		sum.MostPointsInGame = max(sum.MostPointsInGame, g.Points)

		tallyResult(&sum, g.Result)
	}

	sum.AveragePointsPerGame = float64(sum.TotalPoints) / float64(sum.GamesPlayed)
	if sum.TotalShotsOnGoal > 0 {
		sum.ShootingPercentage = float64(sum.TotalGoals) / float64(sum.TotalShotsOnGoal) * 100
	}

	sum.LongestGoalStreak, sum.LongestPointStreak = streaks(selected)
	return sum
}

// seasonGames returns a fresh slice of the player's games in season, in input order.
func (c *Calculator) seasonGames(playerID string, season core.Season, games []core.GameRecord) []core.GameRecord {
	out := make([]core.GameRecord, 0, len(games))
	for _, g := range games {
		if g.PlayerID != playerID {
			continue
		}
		if !c.rule.Contains(season, g.Date) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func tallyResult(sum *core.SeasonSummary, r core.GameResult) {
	switch {
	case r.IsWin():
		sum.Wins++
	case r.IsLoss():
		sum.Losses++
	case r == core.Tie:
		sum.Ties++
	}
	switch r {
	case core.OvertimeWin:
		sum.OvertimeWins++
	case core.OvertimeLoss:
		sum.OvertimeLosses++
	case core.ShootoutWin:
		sum.ShootoutWins++
	case core.ShootoutLoss:
		sum.ShootoutLosses++
	}
}

// streaks walks games chronologically and returns the longest runs of games
// with a goal and with a point. Same-day games keep their input order.
// games is sorted in place and must be owned by the caller.
func streaks(games []core.GameRecord) (goal, point int) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Date.Before(games[j].Date.Time)
	})

	var goalRun, pointRun int
	for _, g := range games {
		if g.Goals > 0 {
			goalRun++
		} else {
			goalRun = 0
		}
		if g.Points > 0 {
			pointRun++
		} else {
			pointRun = 0
		}
		goal = max(goal, goalRun)
		point = max(point, pointRun)
	}
	return goal, point
}
