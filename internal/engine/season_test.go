package engine

import (
	"reflect"
	"testing"

	"rinkbook/internal/core"
)

func game(id string, date core.Date, goals, assists, shots int, result core.GameResult) core.GameRecord {
	return core.GameRecord{
		ID:          id,
		PlayerID:    "p1",
		Date:        date,
		Opponent:    "Eagles",
		GameType:    core.RegularSeason,
		Location:    core.Home,
		Result:      result,
		Goals:       goals,
		Assists:     assists,
		Points:      goals + assists,
		ShotsOnGoal: shots,
	}
}

func TestSeasonSummaryEmpty(t *testing.T) {
	got := ComputeSeasonSummary("p1", "2024-2025", nil)
	want := core.SeasonSummary{PlayerID: "p1", Season: "2024-2025"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected zero summary, got %+v", got)
	}

	other := []core.GameRecord{game("g1", core.NewDate(2023, 11, 1), 1, 0, 2, core.Win)}
	got = ComputeSeasonSummary("p1", "2024-2025", other)
	if got.GamesPlayed != 0 || got.ShootingPercentage != 0 || got.AveragePointsPerGame != 0 {
		t.Fatalf("expected zero summary for out-of-season games, got %+v", got)
	}
}

func TestSeasonSummaryEaglesScenario(t *testing.T) {
	games := []core.GameRecord{game("g1", core.NewDate(2024, 1, 10), 3, 1, 6, core.Win)}
	s := ComputeSeasonSummary("p1", "2024-2025", games)

	if s.GamesPlayed != 1 || s.TotalGoals != 3 || s.TotalPoints != 4 || s.MostGoalsInGame != 3 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.ShootingPercentage != 50 {
		t.Fatalf("expected 50%% shooting, got %v", s.ShootingPercentage)
	}
	if s.AveragePointsPerGame != 4 {
		t.Fatalf("expected 4 ppg, got %v", s.AveragePointsPerGame)
	}
	if s.Wins != 1 || s.LongestGoalStreak != 1 || s.LongestPointStreak != 1 {
		t.Fatalf("unexpected record/streaks %+v", s)
	}
}

func TestSeasonSummaryTotals(t *testing.T) {
	games := []core.GameRecord{
		game("g1", core.NewDate(2024, 10, 1), 1, 2, 4, core.Win),
		game("g2", core.NewDate(2024, 10, 8), 0, 1, 0, core.Loss),
		game("g3", core.NewDate(2024, 10, 15), 2, 0, 5, core.OvertimeWin),
		game("g4", core.NewDate(2024, 10, 22), 0, 0, 3, core.ShootoutLoss),
		game("g5", core.NewDate(2024, 10, 29), 0, 0, 1, core.Tie),
		game("g6", core.NewDate(2024, 11, 5), 1, 1, 2, core.ShootoutWin),
		game("g7", core.NewDate(2024, 11, 12), 0, 2, 1, core.OvertimeLoss),
	}
	games[1].PenaltyMinutes = 4
	games[2].PlusMinus = 2
	games[3].PlusMinus = -3

	// Another player's game in the same season must be ignored
	stranger := game("x1", core.NewDate(2024, 10, 1), 5, 5, 10, core.Win)
	stranger.PlayerID = "p2"
	games = append(games, stranger)

	s := ComputeSeasonSummary("p1", "2024-2025", games)

	if s.GamesPlayed != 7 {
		t.Fatalf("expected 7 games, got %d", s.GamesPlayed)
	}
	if s.TotalGoals != 4 || s.TotalAssists != 6 || s.TotalPoints != 10 {
		t.Fatalf("unexpected scoring %+v", s)
	}
	if s.TotalPoints != s.TotalGoals+s.TotalAssists {
		t.Fatalf("points identity broken")
	}
	if s.TotalPenaltyMinutes != 4 || s.TotalPlusMinus != -1 || s.TotalShotsOnGoal != 16 {
		t.Fatalf("unexpected counters %+v", s)
	}
	if s.ShootingPercentage != 25 {
		t.Fatalf("expected 25%% shooting, got %v", s.ShootingPercentage)
	}
	if s.AveragePointsPerGame != float64(10)/7 {
		t.Fatalf("unexpected average %v", s.AveragePointsPerGame)
	}
	if s.MostGoalsInGame != 2 || s.MostAssistsInGame != 2 || s.MostPointsInGame != 3 {
		t.Fatalf("unexpected maxima %+v", s)
	}
	if s.Wins != 3 || s.Losses != 3 || s.Ties != 1 {
		t.Fatalf("unexpected record %d-%d-%d", s.Wins, s.Losses, s.Ties)
	}
	if s.OvertimeWins != 1 || s.OvertimeLosses != 1 || s.ShootoutWins != 1 || s.ShootoutLosses != 1 {
		t.Fatalf("unexpected OT/SO tallies %+v", s)
	}
	// goals: 1,0,2,0,0,1,0 -> 1 ; points: 3,1,2,0,0,2,2 -> 3
	if s.LongestGoalStreak != 1 || s.LongestPointStreak != 3 {
		t.Fatalf("unexpected streaks goal=%d point=%d", s.LongestGoalStreak, s.LongestPointStreak)
	}
}

func TestSeasonSummaryZeroShots(t *testing.T) {
	games := []core.GameRecord{game("g1", core.NewDate(2024, 10, 1), 0, 1, 0, core.Win)}
	s := ComputeSeasonSummary("p1", "2024-2025", games)
	if s.ShootingPercentage != 0 {
		t.Fatalf("expected 0 shooting percentage without shots, got %v", s.ShootingPercentage)
	}
}

func TestSeasonSummaryStreaks(t *testing.T) {
	oct := func(day int) core.Date { return core.NewDate(2024, 10, day) }
	a := game("a", oct(1), 1, 0, 1, core.Win)
	b := game("b", oct(1), 0, 0, 1, core.Loss)
	c := game("c", oct(2), 1, 0, 1, core.Win)

	tests := []struct {
		name      string
		games     []core.GameRecord
		wantGoal  int
		wantPoint int
	}{
		{
			name: "scrambled dates are walked chronologically",
			games: []core.GameRecord{
				game("g3", oct(15), 1, 0, 1, core.Win),
				game("g1", oct(1), 1, 0, 1, core.Win),
				game("g4", oct(22), 0, 0, 1, core.Loss),
				game("g2", oct(8), 1, 0, 1, core.Win),
			},
			wantGoal:  3,
			wantPoint: 3,
		},
		{
			name: "assist breaks goal streak only",
			games: []core.GameRecord{
				game("g1", oct(1), 1, 0, 1, core.Win),
				game("g2", oct(2), 0, 2, 1, core.Win),
				game("g3", oct(3), 1, 0, 1, core.Win),
			},
			wantGoal:  1,
			wantPoint: 3,
		},
		{
			name:      "same date keeps insertion order, scorer first",
			games:     []core.GameRecord{a, b, c},
			wantGoal:  1,
			wantPoint: 1,
		},
		{
			name:      "same date keeps insertion order, scorer second",
			games:     []core.GameRecord{b, a, c},
			wantGoal:  2,
			wantPoint: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := tt.games[0].ID
			s := ComputeSeasonSummary("p1", "2024-2025", tt.games)
			if s.LongestGoalStreak != tt.wantGoal || s.LongestPointStreak != tt.wantPoint {
				t.Errorf("streaks goal=%d point=%d, want goal=%d point=%d",
					s.LongestGoalStreak, s.LongestPointStreak, tt.wantGoal, tt.wantPoint)
			}
			if tt.games[0].ID != first {
				t.Errorf("input slice was reordered")
			}
		})
	}
}

func TestSeasonSummaryResultTallies(t *testing.T) {
	type tally struct{ w, l, t, otw, otl, sow, sol int }
	tests := []struct {
		result core.GameResult
		want   tally
	}{
		{core.Win, tally{w: 1}},
		{core.Loss, tally{l: 1}},
		{core.Tie, tally{t: 1}},
		{core.OvertimeWin, tally{w: 1, otw: 1}},
		{core.OvertimeLoss, tally{l: 1, otl: 1}},
		{core.ShootoutWin, tally{w: 1, sow: 1}},
		{core.ShootoutLoss, tally{l: 1, sol: 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.result), func(t *testing.T) {
			s := ComputeSeasonSummary("p1", "2024-2025",
				[]core.GameRecord{game("g1", core.NewDate(2024, 10, 1), 0, 0, 0, tt.result)})
			got := tally{s.Wins, s.Losses, s.Ties, s.OvertimeWins, s.OvertimeLosses, s.ShootoutWins, s.ShootoutLosses}
			if got != tt.want {
				t.Errorf("tally = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSeasonSummaryIdempotent(t *testing.T) {
	games := []core.GameRecord{
		game("g1", core.NewDate(2024, 10, 1), 1, 0, 2, core.Win),
		game("g2", core.NewDate(2024, 10, 1), 0, 0, 2, core.Loss),
		game("g3", core.NewDate(2024, 9, 20), 2, 1, 4, core.Win),
	}
	a := ComputeSeasonSummary("p1", "2024-2025", games)
	b := ComputeSeasonSummary("p1", "2024-2025", games)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("summaries differ:\n%+v\n%+v", a, b)
	}
}

func TestStreakMonotonicity(t *testing.T) {
	base := []core.GameRecord{
		game("g1", core.NewDate(2024, 10, 1), 1, 0, 2, core.Win),
		game("g2", core.NewDate(2024, 10, 8), 1, 0, 2, core.Win),
		game("g3", core.NewDate(2024, 10, 15), 0, 1, 2, core.Win),
		game("g4", core.NewDate(2024, 10, 22), 1, 0, 2, core.Win),
	}
	before := ComputeSeasonSummary("p1", "2024-2025", base).LongestGoalStreak

	blank := append(append([]core.GameRecord{}, base...), game("g5", core.NewDate(2024, 10, 29), 0, 0, 1, core.Loss))
	if got := ComputeSeasonSummary("p1", "2024-2025", blank).LongestGoalStreak; got > before {
		t.Fatalf("goalless game increased streak %d -> %d", before, got)
	}

	scoring := append(append([]core.GameRecord{}, base...), game("g5", core.NewDate(2024, 10, 29), 2, 0, 3, core.Win))
	if got := ComputeSeasonSummary("p1", "2024-2025", scoring).LongestGoalStreak; got < before {
		t.Fatalf("scoring game decreased streak %d -> %d", before, got)
	}
}

func TestCalculatorHockeyCalendarRule(t *testing.T) {
	games := []core.GameRecord{
		game("g1", core.NewDate(2024, 1, 10), 1, 0, 1, core.Win),  // previous season on the hockey calendar
		game("g2", core.NewDate(2024, 10, 10), 1, 0, 1, core.Win), // both rules
		game("g3", core.NewDate(2025, 2, 10), 1, 0, 1, core.Win),  // hockey calendar only
	}
	prefix := NewCalculator(nil).SeasonSummary("p1", "2024-2025", games)
	if prefix.GamesPlayed != 2 {
		t.Fatalf("year-prefix expected 2 games, got %d", prefix.GamesPlayed)
	}
	cal := NewCalculator(core.HockeyCalendarRule{}).SeasonSummary("p1", "2024-2025", games)
	if cal.GamesPlayed != 2 || cal.LongestGoalStreak != 2 {
		t.Fatalf("hockey-calendar expected 2 games streak 2, got %+v", cal)
	}
}
