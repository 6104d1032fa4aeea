package engine

import (
	"fmt"

	"rinkbook/internal/core"
)

var (
	// GoalThresholds are the career goal counts that earn a milestone.
	GoalThresholds = []int{10, 25, 50, 75, 100, 150, 200}
	// PointThresholds are the career point counts that earn a milestone.
	PointThresholds = []int{25, 50, 100, 150, 200, 300, 400, 500}
)

const (
	hatTrickGoals       = 3
	specialGoalCutoff   = 50
	specialPointsCutoff = 100
)

// CareerTotals are a player's cumulative goals and points.
type CareerTotals struct {
	Goals  int
	Points int
}

// CareerAfter returns the player's totals with game counted exactly once,
// whether or not history already contains it.
func CareerAfter(game core.GameRecord, history []core.GameRecord) CareerTotals {
	var t CareerTotals
	for _, g := range history {
		if g.PlayerID != game.PlayerID {
			continue
		}
		if game.ID != "" && g.ID == game.ID {
			continue
		}
		t.Goals += g.Goals
		t.Points += g.Goals + g.Assists
	}
	t.Goals += game.Goals
	t.Points += game.Goals + game.Assists
	return t
}

// DetectMilestones returns the milestones game earns given the player's
// history. Milestones carry the game's date and id and the supplied season;
// ids and timestamps are left for the caller to assign. Calling it twice for
// the same game yields the same milestones twice.
func DetectMilestones(game core.GameRecord, history []core.GameRecord, season core.Season) []core.Milestone {
	after := CareerAfter(game, history)
	points := game.Goals + game.Assists
	before := CareerTotals{
		Goals:  after.Goals - game.Goals,
		Points: after.Points - points,
	}

	var out []core.Milestone
	emit := func(typ core.MilestoneType, name, desc string, special bool) {
		out = append(out, core.Milestone{
			PlayerID:    game.PlayerID,
			Type:        typ,
			Name:        name,
			Description: desc,
			Date:        game.Date,
			GameID:      game.ID,
			Season:      season,
			IsSpecial:   special,
		})
	}

	if game.Goals >= hatTrickGoals {
		emit(core.AchievementMilestone, "Hat Trick",
			fmt.Sprintf("%d goals in one game", game.Goals), true)
	}

	// The first goal may arrive inside a multi-goal game, so the check is on
	// the pre-game total rather than career goals == 1.
	if before.Goals == 0 && game.Goals > 0 {
		emit(core.GoalMilestone, "First Goal", "First goal of hockey career", true)
	}

	for _, n := range crossed(GoalThresholds, before.Goals, after.Goals) {
		emit(core.GoalMilestone, fmt.Sprintf("%d Goals", n),
			fmt.Sprintf("Reached %d career goals", n), n >= specialGoalCutoff)
	}

	for _, n := range crossed(PointThresholds, before.Points, after.Points) {
		emit(core.PointMilestone, fmt.Sprintf("%d Points", n),
			fmt.Sprintf("Reached %d career points", n), n >= specialPointsCutoff)
	}
	return out
}

// crossed returns every threshold t with before < t <= after.
func crossed(thresholds []int, before, after int) []int {
	var out []int
	for _, t := range thresholds {
		if before < t && after >= t {
			out = append(out, t)
		}
	}
	return out
}
