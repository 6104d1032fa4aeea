package google

import (
	"context"
	"strings"
	"testing"

	"rinkbook/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:      "sheet",
		ServiceAccountFile: t.TempDir() + "/missing.json",
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestClient_UninitializedService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if err := c.AppendGame(context.Background(), "2024-2025", core.GameRecord{}); err == nil {
		t.Error("AppendGame should fail without a service")
	}
	if err := c.WriteSummary(context.Background(), core.SeasonSummary{}, core.ExpenseSummary{}); err == nil {
		t.Error("WriteSummary should fail without a service")
	}
}

func TestSheetNames(t *testing.T) {
	tests := []struct {
		season core.Season
		suffix string
		want   string
		quoted string
	}{
		{"2024-2025", gamesSuffix, "2024-2025 Games", "'2024-2025 Games'"},
		{"2023-2024", summarySuffix, "2023-2024 Summary", "'2023-2024 Summary'"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := sheetName(tt.season, tt.suffix)
			if got != tt.want {
				t.Errorf("sheetName = %q, want %q", got, tt.want)
			}
			if q := quoteSheet(got); q != tt.quoted {
				t.Errorf("quoteSheet = %q, want %q", q, tt.quoted)
			}
		})
	}
	if q := quoteSheet("Sam's"); q != "'Sam''s'" {
		t.Errorf("quote escaping = %q", q)
	}
}

func TestGameRow(t *testing.T) {
	g := core.GameRecord{
		ID: "g1", Date: core.NewDate(2024, 10, 15), Opponent: "Eagles",
		GameType: core.RegularSeason, Location: core.Home,
		TeamScore: 5, OpponentScore: 2, Result: core.Win,
		Goals: 3, Assists: 1, Points: 4, PenaltyMinutes: 2, PlusMinus: 2, ShotsOnGoal: 7,
	}
	row := gameRow(g)
	if len(row) != len(gamesHeader) {
		t.Fatalf("row has %d columns, header has %d", len(row), len(gamesHeader))
	}
	if row[0] != "2024-10-15" || row[4] != "5-2" || row[5] != "Win" || row[8] != 4 || row[13] != "g1" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestSummaryRows(t *testing.T) {
	ss := core.SeasonSummary{PlayerID: "p1", Season: "2024-2025", GamesPlayed: 1, TotalGoals: 3, Wins: 1}
	es := core.ExpenseSummary{
		TotalExpenses: core.Money{Cents: 80000},
		CategoryTotals: map[core.ExpenseCategory]core.CategoryTotal{
			core.Travel:    {Total: core.Money{Cents: 30000}, Count: 1, Percentage: 37.5},
			core.Equipment: {Total: core.Money{Cents: 50000}, Count: 1, Percentage: 62.5},
		},
	}
	rows := summaryRows(ss, es)

	find := func(label string) any {
		for _, r := range rows {
			if r[0] == label {
				return r[1]
			}
		}
		return nil
	}
	if find("Record (W-L-T)") != "1-0-0" {
		t.Errorf("record = %v", find("Record (W-L-T)"))
	}
	if find("Total Expenses") != "800.00" {
		t.Errorf("total = %v", find("Total Expenses"))
	}
	if find("Equipment") != "500.00 (62.5%)" {
		t.Errorf("equipment = %v", find("Equipment"))
	}

	// Categories follow display order, Equipment before Travel.
	var eq, tr int
	for i, r := range rows {
		switch r[0] {
		case "Equipment":
			eq = i
		case "Travel":
			tr = i
		}
	}
	if eq == 0 || tr == 0 || eq > tr {
		t.Errorf("category rows out of order: equipment=%d travel=%d", eq, tr)
	}
}
