package sheets

import (
	"context"

	"rinkbook/internal/core"
)

// Ports for outbound adapters.
type (
	// GameWriter appends a game row to the season's games sheet.
	GameWriter interface {
		AppendGame(ctx context.Context, season core.Season, g core.GameRecord) error
	}

	// SummaryWriter overwrites the season's summary sheet for one player.
	SummaryWriter interface {
		WriteSummary(ctx context.Context, season core.SeasonSummary, expenses core.ExpenseSummary) error
	}

	Mirror interface {
		GameWriter
		SummaryWriter
	}
)
