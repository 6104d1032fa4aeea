package engine

import (
	"fmt"
	"testing"

	"rinkbook/internal/core"
)

func names(ms []core.Milestone) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// history builds n prior games each with the given goals and assists.
func history(n, goals, assists int) []core.GameRecord {
	out := make([]core.GameRecord, n)
	for i := range out {
		out[i] = game(fmt.Sprintf("h%d", i), core.NewDate(2024, 10, 1+i), goals, assists, 1, core.Win)
	}
	return out
}

func TestDetectEaglesScenario(t *testing.T) {
	g := game("g1", core.NewDate(2024, 1, 10), 3, 1, 6, core.Win)
	ms := DetectMilestones(g, nil, "2024-2025")

	if len(ms) != 2 || ms[0].Name != "Hat Trick" || ms[1].Name != "First Goal" {
		t.Fatalf("expected Hat Trick and First Goal, got %v", names(ms))
	}
	for _, m := range ms {
		if m.GameID != "g1" || m.Date != g.Date || m.Season != "2024-2025" || m.PlayerID != "p1" {
			t.Fatalf("milestone not tied to game: %+v", m)
		}
	}
	hat := ms[0]
	if hat.Type != core.AchievementMilestone || !hat.IsSpecial || hat.Description != "3 goals in one game" {
		t.Fatalf("unexpected hat trick %+v", hat)
	}
}

func TestDetectFirstGoal(t *testing.T) {
	debut := core.NewDate(2024, 10, 20)
	tests := []struct {
		name  string
		prior []core.GameRecord
		game  core.GameRecord
		want  []string
	}{
		{
			name: "one goal debut",
			game: game("g1", debut, 1, 0, 2, core.Win),
			want: []string{"First Goal"},
		},
		{
			name: "two goal debut",
			game: game("g1", debut, 2, 0, 3, core.Win),
			want: []string{"First Goal"},
		},
		{
			name: "hat trick debut",
			game: game("g1", debut, 3, 0, 4, core.Win),
			want: []string{"Hat Trick", "First Goal"},
		},
		{
			name: "assist only debut",
			game: game("g1", debut, 0, 1, 0, core.Win),
		},
		{
			name:  "goal after prior assists",
			prior: history(2, 0, 1),
			game:  game("g3", debut, 1, 0, 2, core.Win),
			want:  []string{"First Goal"},
		},
		{
			name:  "player already scored",
			prior: history(1, 1, 0),
			game:  game("g2", debut, 1, 0, 2, core.Win),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := DetectMilestones(tt.game, tt.prior, "2024-2025")
			if got := names(ms); !equalNames(got, tt.want) {
				t.Fatalf("DetectMilestones() = %v, want %v", got, tt.want)
			}
			for _, m := range ms {
				if m.Name == "First Goal" && (!m.IsSpecial || m.Type != core.GoalMilestone) {
					t.Errorf("unexpected First Goal %+v", m)
				}
			}
		})
	}
}

func TestDetectThresholds(t *testing.T) {
	date := core.NewDate(2025, 2, 1)
	type want struct {
		name    string
		special bool
	}
	tests := []struct {
		name  string
		prior []core.GameRecord
		game  core.GameRecord
		want  []want
	}{
		{
			name:  "9 to 11 goals crosses 10",
			prior: history(9, 1, 0),
			game:  game("g", date, 2, 0, 3, core.Win),
			want:  []want{{"10 Goals", false}},
		},
		{
			name:  "48 to 52 crosses 50 goals and 50 points",
			prior: history(24, 2, 0),
			game:  game("g", date, 4, 0, 6, core.Win),
			want:  []want{{"Hat Trick", true}, {"50 Goals", true}, {"50 Points", false}},
		},
		{
			name:  "8 to 28 goals crosses two goal thresholds",
			prior: history(8, 1, 0),
			game:  game("g", date, 20, 0, 20, core.Win),
			want:  []want{{"Hat Trick", true}, {"10 Goals", false}, {"25 Goals", false}, {"25 Points", false}},
		},
		{
			name:  "99 to 101 points crosses 100",
			prior: history(33, 1, 2),
			game:  game("g", date, 0, 2, 0, core.Win),
			want:  []want{{"100 Points", true}},
		},
		{
			name:  "already on a threshold",
			prior: history(10, 1, 0),
			game:  game("g", date, 1, 0, 1, core.Win),
		},
		{
			name:  "pointless game",
			prior: history(24, 1, 0),
			game:  game("g", date, 0, 0, 1, core.Loss),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := DetectMilestones(tt.game, tt.prior, "2024-2025")
			if len(ms) != len(tt.want) {
				t.Fatalf("DetectMilestones() = %v, want %v", names(ms), tt.want)
			}
			for i, w := range tt.want {
				if ms[i].Name != w.name || ms[i].IsSpecial != w.special {
					t.Errorf("milestone %d = %s special=%v, want %s special=%v",
						i, ms[i].Name, ms[i].IsSpecial, w.name, w.special)
				}
			}
		})
	}
}

func TestDetectThresholdDescriptions(t *testing.T) {
	ms := DetectMilestones(game("g", core.NewDate(2025, 2, 1), 0, 2, 0, core.Win), history(33, 1, 2), "2024-2025")
	if len(ms) != 1 || ms[0].Type != core.PointMilestone || ms[0].Description != "Reached 100 career points" {
		t.Fatalf("unexpected milestones %+v", ms)
	}
	ms = DetectMilestones(game("g", core.NewDate(2025, 2, 1), 1, 0, 1, core.Win), history(9, 1, 0), "2024-2025")
	if len(ms) != 1 || ms[0].Type != core.GoalMilestone || ms[0].Description != "Reached 10 career goals" {
		t.Fatalf("unexpected milestones %+v", ms)
	}
}

func TestDetectCountsNewGameOnce(t *testing.T) {
	prior := history(9, 1, 0)
	g := game("g10", core.NewDate(2024, 12, 1), 1, 0, 1, core.Win)

	without := DetectMilestones(g, prior, "2024-2025")
	with := DetectMilestones(g, append(append([]core.GameRecord{}, prior...), g), "2024-2025")
	if len(without) != 1 || len(with) != 1 || without[0].Name != "10 Goals" || with[0].Name != "10 Goals" {
		t.Fatalf("history with and without the game disagree: %v vs %v", names(without), names(with))
	}
}

func TestDetectIgnoresOtherPlayers(t *testing.T) {
	prior := history(9, 1, 0)
	for i := range prior {
		prior[i].PlayerID = "p2"
	}
	g := game("g", core.NewDate(2024, 12, 1), 1, 0, 1, core.Win)
	ms := DetectMilestones(g, prior, "2024-2025")
	if len(ms) != 1 || ms[0].Name != "First Goal" {
		t.Fatalf("expected First Goal only, got %v", names(ms))
	}
}

func TestDetectNoDeduplication(t *testing.T) {
	g := game("g1", core.NewDate(2024, 10, 1), 3, 0, 3, core.Win)
	a := DetectMilestones(g, nil, "2024-2025")
	b := DetectMilestones(g, nil, "2024-2025")
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("expected the same two milestones per call, got %v and %v", names(a), names(b))
	}
}
