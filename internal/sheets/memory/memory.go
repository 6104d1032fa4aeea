// Package memory is an in-process sheets mirror used when Google Sheets is
// disabled and in tests.
package memory

import (
	"context"
	"sync"

	"rinkbook/internal/core"
	ports "rinkbook/internal/sheets"
)

type summaryKey struct {
	player string
	season core.Season
}

type SummaryRow struct {
	Season   core.SeasonSummary
	Expenses core.ExpenseSummary
}

type Mirror struct {
	mu        sync.Mutex
	games     map[core.Season][]core.GameRecord
	summaries map[summaryKey]SummaryRow
	writes    int
}

var _ ports.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{
		games:     map[core.Season][]core.GameRecord{},
		summaries: map[summaryKey]SummaryRow{},
	}
}

func (m *Mirror) AppendGame(_ context.Context, season core.Season, g core.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[season] = append(m.games[season], g)
	return nil
}

// WriteSummary replaces the stored row for the player and season.
func (m *Mirror) WriteSummary(_ context.Context, ss core.SeasonSummary, es core.ExpenseSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[summaryKey{ss.PlayerID, ss.Season}] = SummaryRow{Season: ss, Expenses: es}
	m.writes++
	return nil
}

func (m *Mirror) Games(season core.Season) []core.GameRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.GameRecord(nil), m.games[season]...)
}

func (m *Mirror) Summary(playerID string, season core.Season) (SummaryRow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.summaries[summaryKey{playerID, season}]
	return row, ok
}

// SummaryWrites counts WriteSummary calls.
func (m *Mirror) SummaryWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
