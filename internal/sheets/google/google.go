package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"rinkbook/internal/core"
	ports "rinkbook/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	gamesSuffix   = "Games"
	summarySuffix = "Summary"
)

var gamesHeader = []any{
	"Date", "Opponent", "Type", "Location", "Score", "Result",
	"G", "A", "P", "PIM", "+/-", "SOG", "Notes", "Game ID",
}

// Options selects the spreadsheet and the service account used to reach it.
// ServiceAccountJSON wins over ServiceAccountFile when both are set.
type Options struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu    sync.Mutex
	known map[string]bool
}

// Ensure interface conformance
var _ ports.Mirror = (*Client)(nil)

func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, known: map[string]bool{}}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when no option is set.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(opts.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(opts.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendGame adds one row to "<season> Games", creating the sheet with a
// header row the first time it is needed.
func (c *Client) AppendGame(ctx context.Context, season core.Season, g core.GameRecord) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheet := sheetName(season, gamesSuffix)
	created, err := c.ensureSheet(ctx, sheet)
	if err != nil {
		return err
	}
	rows := [][]any{gameRow(g)}
	if created {
		rows = append([][]any{gamesHeader}, rows...)
	}
	rng := fmt.Sprintf("%s!A:N", quoteSheet(sheet))
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append game to %s: %w", sheet, err)
	}
	slog.DebugContext(ctx, "Game mirrored", "sheet", sheet, "game_id", g.ID)
	return nil
}

// WriteSummary overwrites "<season> Summary" with the label/value rows of
// both summaries.
func (c *Client) WriteSummary(ctx context.Context, ss core.SeasonSummary, es core.ExpenseSummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheet := sheetName(ss.Season, summarySuffix)
	if _, err := c.ensureSheet(ctx, sheet); err != nil {
		return err
	}
	rows := summaryRows(ss, es)
	clearRng := fmt.Sprintf("%s!A:B", quoteSheet(sheet))
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	rng := fmt.Sprintf("%s!A1:B%d", quoteSheet(sheet), len(rows))
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write summary to %s: %w", sheet, err)
	}
	slog.DebugContext(ctx, "Summary mirrored", "sheet", sheet, "player_id", ss.PlayerID)
	return nil
}

// ensureSheet creates the tab if it is missing. It reports whether the tab
// was created by this call. Known tabs are remembered per client.
func (c *Client) ensureSheet(ctx context.Context, title string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.known[title] {
		return false, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.known[s.Properties.Title] = true
		}
	}
	if c.known[title] {
		return false, nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("add sheet %s: %w", title, err)
	}
	slog.InfoContext(ctx, "Created sheet", "sheet", title)
	c.known[title] = true
	return true, nil
}

// sheetName returns "<season> <suffix>", e.g. "2024-2025 Games".
func sheetName(season core.Season, suffix string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", season, suffix))
}

// quoteSheet wraps a tab title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func gameRow(g core.GameRecord) []any {
	return []any{
		g.Date.String(),
		g.Opponent,
		string(g.GameType),
		string(g.Location),
		fmt.Sprintf("%d-%d", g.TeamScore, g.OpponentScore),
		string(g.Result),
		g.Goals,
		g.Assists,
		g.Points,
		g.PenaltyMinutes,
		g.PlusMinus,
		g.ShotsOnGoal,
		g.Notes,
		g.ID,
	}
}

func summaryRows(ss core.SeasonSummary, es core.ExpenseSummary) [][]any {
	rows := [][]any{
		{"Player", ss.PlayerID},
		{"Season", string(ss.Season)},
		{"Games Played", ss.GamesPlayed},
		{"Goals", ss.TotalGoals},
		{"Assists", ss.TotalAssists},
		{"Points", ss.TotalPoints},
		{"Points/Game", fmt.Sprintf("%.2f", ss.AveragePointsPerGame)},
		{"PIM", ss.TotalPenaltyMinutes},
		{"+/-", ss.TotalPlusMinus},
		{"Shots", ss.TotalShotsOnGoal},
		{"Shooting %", fmt.Sprintf("%.1f", ss.ShootingPercentage)},
		{"Longest Goal Streak", ss.LongestGoalStreak},
		{"Longest Point Streak", ss.LongestPointStreak},
		{"Record (W-L-T)", fmt.Sprintf("%d-%d-%d", ss.Wins, ss.Losses, ss.Ties)},
		{"", ""},
		{"Total Expenses", es.TotalExpenses.String()},
		{"Reimbursed", es.TotalReimbursed.String()},
		{"Net Expenses", es.NetExpenses.String()},
		{"Tax Deductible", es.TotalTaxDeductible.String()},
		{"Per Game", es.ExpensesPerGame.String()},
		{"Per Month", es.ExpensesPerMonth.String()},
		{"Projected Year", es.ProjectedYearTotal.String()},
	}
	for _, cat := range core.ExpenseCategories {
		ct, ok := es.CategoryTotals[cat]
		if !ok {
			continue
		}
		rows = append(rows, []any{string(cat), fmt.Sprintf("%s (%.1f%%)", ct.Total, ct.Percentage)})
	}
	return rows
}
