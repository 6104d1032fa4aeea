package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"rinkbook/internal/core"
	"rinkbook/internal/storage"
)

// Dashboard bundles one player's season view.
type Dashboard struct {
	PlayerID      string              `json:"player_id"`
	Season        core.Season         `json:"season"`
	Stats         core.SeasonSummary  `json:"stats"`
	Expenses      core.ExpenseSummary `json:"expenses"`
	Milestones    []core.Milestone    `json:"milestones"`
	WinPercentage float64             `json:"win_percentage"`
	TaxSavings    core.Money          `json:"estimated_tax_savings"`
	Remaining     core.Money          `json:"projected_remaining"`
}

// Dashboard loads the summaries and milestones concurrently.
func (s *RecordService) Dashboard(ctx context.Context, playerID string, season core.Season) (Dashboard, error) {
	season, err := s.resolveSeason(season)
	if err != nil {
		return Dashboard{}, err
	}
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		return Dashboard{}, fmt.Errorf("load player: %w", err)
	}

	d := Dashboard{PlayerID: playerID, Season: season}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.SeasonSummary(gctx, playerID, season)
		d.Stats = sum
		return err
	})
	g.Go(func() error {
		sum, err := s.ExpenseSummary(gctx, playerID, season)
		d.Expenses = sum
		return err
	})
	g.Go(func() error {
		ms, err := s.Milestones(gctx, playerID, season)
		d.Milestones = ms
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	d.WinPercentage = d.Stats.WinPercentage()
	d.TaxSavings = d.Expenses.EstimatedTaxSavings(core.DefaultTaxSavingsRate)
	d.Remaining = d.Expenses.ProjectedRemaining()
	return d, nil
}

// Tournaments

func (s *RecordService) AddTournament(ctx context.Context, t core.TournamentRecord) (core.TournamentRecord, error) {
	if err := t.Validate(); err != nil {
		return core.TournamentRecord{}, invalid(err)
	}
	t.ComputeTotal()
	t.ID = s.newID()
	if err := s.store.InsertTournament(ctx, t); err != nil {
		return core.TournamentRecord{}, fmt.Errorf("store tournament: %w", err)
	}
	slog.InfoContext(ctx, "Tournament added", "tournament_id", t.ID, "total_cents", t.TotalCost.Cents)
	return t, nil
}

func (s *RecordService) ListTournaments(ctx context.Context) ([]core.TournamentRecord, error) {
	list, err := s.store.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	if list == nil {
		list = []core.TournamentRecord{}
	}
	return list, nil
}

// Snapshots

func (s *RecordService) Export(ctx context.Context) (storage.Snapshot, error) {
	snap, err := s.store.Export(ctx)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("export: %w", err)
	}
	slog.InfoContext(ctx, "Exported snapshot",
		"players", len(snap.Players),
		"games", len(snap.Games),
		"expenses", len(snap.Expenses))
	return snap, nil
}

// Import replaces every record with the snapshot. Milestones come from the
// snapshot as-is; detection does not run on imported games.
func (s *RecordService) Import(ctx context.Context, snap storage.Snapshot) error {
	if snap.Version != storage.SnapshotVersion {
		return invalid(fmt.Errorf("unsupported snapshot version %d", snap.Version))
	}
	for _, g := range snap.Games {
		if err := g.Validate(); err != nil {
			return invalid(fmt.Errorf("game %s: %w", g.ID, err))
		}
	}
	for _, e := range snap.Expenses {
		if err := e.Validate(); err != nil {
			return invalid(fmt.Errorf("expense %s: %w", e.ID, err))
		}
	}

	// Drop cached summaries for the players in both the old and new data.
	before, err := s.store.Export(ctx)
	if err != nil {
		return fmt.Errorf("read current data: %w", err)
	}
	if err := s.store.Import(ctx, snap); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	for _, set := range []storage.Snapshot{before, snap} {
		for _, g := range set.Games {
			s.invalidateGame(ctx, g)
		}
		for _, e := range set.Expenses {
			s.invalidateExpenses(ctx, e.PlayerID, e.Season)
		}
	}
	slog.InfoContext(ctx, "Imported snapshot",
		"players", len(snap.Players),
		"games", len(snap.Games),
		"expenses", len(snap.Expenses))
	return nil
}
