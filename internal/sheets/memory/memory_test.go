package memory

import (
	"context"
	"testing"

	"rinkbook/internal/core"
)

func TestMirrorAppendGame(t *testing.T) {
	m := New()
	ctx := context.Background()
	_ = m.AppendGame(ctx, "2024-2025", core.GameRecord{ID: "g1"})
	_ = m.AppendGame(ctx, "2024-2025", core.GameRecord{ID: "g2"})
	_ = m.AppendGame(ctx, "2023-2024", core.GameRecord{ID: "g0"})

	got := m.Games("2024-2025")
	if len(got) != 2 || got[0].ID != "g1" || got[1].ID != "g2" {
		t.Fatalf("unexpected games %+v", got)
	}
	if len(m.Games("2022-2023")) != 0 {
		t.Fatal("expected no games for an unknown season")
	}
}

func TestMirrorWriteSummaryOverwrites(t *testing.T) {
	m := New()
	ctx := context.Background()
	_ = m.WriteSummary(ctx, core.SeasonSummary{PlayerID: "p1", Season: "2024-2025", TotalGoals: 1}, core.ExpenseSummary{})
	_ = m.WriteSummary(ctx, core.SeasonSummary{PlayerID: "p1", Season: "2024-2025", TotalGoals: 4}, core.ExpenseSummary{})

	row, ok := m.Summary("p1", "2024-2025")
	if !ok || row.Season.TotalGoals != 4 {
		t.Fatalf("expected latest summary, got %+v ok=%v", row, ok)
	}
	if m.SummaryWrites() != 2 {
		t.Fatalf("writes = %d", m.SummaryWrites())
	}
	if _, ok := m.Summary("p2", "2024-2025"); ok {
		t.Fatal("unexpected summary for p2")
	}
}
