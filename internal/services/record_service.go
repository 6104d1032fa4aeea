package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rinkbook/internal/amqp"
	"rinkbook/internal/cache"
	"rinkbook/internal/core"
	"rinkbook/internal/engine"
	"rinkbook/internal/storage"
)

// ErrValidation marks input rejected before it reaches the store.
var ErrValidation = errors.New("validation failed")

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 5 * time.Minute
)

// EventPublisher announces record changes. Publishing is best-effort: the
// service logs a failure and keeps the write.
type EventPublisher interface {
	PublishGameRecorded(ctx context.Context, msg amqp.GameRecordedMessage) error
	PublishExpenseChanged(ctx context.Context, msg amqp.ExpenseChangedMessage) error
}

// RecordService orchestrates records, derived summaries and events.
type RecordService struct {
	store        storage.Store
	calc         *engine.Calculator
	seasonCache  cache.Cache[core.SeasonSummary]
	expenseCache cache.Cache[core.ExpenseSummary]
	publisher    EventPublisher
	now          func() time.Time
	newID        func() string
}

type Option func(*RecordService)

func WithCalculator(c *engine.Calculator) Option {
	return func(s *RecordService) { s.calc = c }
}

func WithSeasonCache(c cache.Cache[core.SeasonSummary]) Option {
	return func(s *RecordService) { s.seasonCache = c }
}

func WithExpenseCache(c cache.Cache[core.ExpenseSummary]) Option {
	return func(s *RecordService) { s.expenseCache = c }
}

// WithPublisher enables change events. A nil publisher disables them.
func WithPublisher(p EventPublisher) Option {
	return func(s *RecordService) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *RecordService) { s.now = now }
}

func NewRecordService(store storage.Store, opts ...Option) *RecordService {
	s := &RecordService{
		store:        store,
		calc:         engine.NewCalculator(nil),
		seasonCache:  cache.NewLRUCache[core.SeasonSummary](defaultCacheSize, defaultCacheTTL),
		expenseCache: cache.NewLRUCache[core.ExpenseSummary](defaultCacheSize, defaultCacheTTL),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Players

func (s *RecordService) CreatePlayer(ctx context.Context, p core.Player) (core.Player, error) {
	if err := p.Validate(); err != nil {
		return core.Player{}, invalid(err)
	}
	p.ID = s.newID()
	p.CreatedAt = s.now().UTC()
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return core.Player{}, fmt.Errorf("create player: %w", err)
	}
	slog.InfoContext(ctx, "Player created", "player_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *RecordService) GetPlayer(ctx context.Context, id string) (core.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

func (s *RecordService) ListPlayers(ctx context.Context) ([]core.Player, error) {
	return s.store.ListPlayers(ctx)
}

func (s *RecordService) UpdatePlayer(ctx context.Context, p core.Player) (core.Player, error) {
	if err := p.Validate(); err != nil {
		return core.Player{}, invalid(err)
	}
	if err := s.store.UpdatePlayer(ctx, p); err != nil {
		return core.Player{}, fmt.Errorf("update player: %w", err)
	}
	return s.store.GetPlayer(ctx, p.ID)
}

// Games

// RecordedGame is the outcome of recording one game.
type RecordedGame struct {
	Game       core.GameRecord    `json:"game"`
	Milestones []core.Milestone   `json:"milestones"`
	Summary    core.SeasonSummary `json:"season_summary"`
}

// RecordGame stores a new game with the milestones it earns and returns the
// refreshed season summary. An empty season means the current one.
func (s *RecordService) RecordGame(ctx context.Context, g core.GameRecord, season core.Season) (RecordedGame, error) {
	season, err := s.resolveSeason(season)
	if err != nil {
		return RecordedGame{}, err
	}
	g.Result = deriveUnlessExplicit(g)
	g.Normalize()
	if err := g.Validate(); err != nil {
		return RecordedGame{}, invalid(err)
	}
	if _, err := s.store.GetPlayer(ctx, g.PlayerID); err != nil {
		return RecordedGame{}, fmt.Errorf("load player: %w", err)
	}

	now := s.now().UTC()
	g.ID = s.newID()
	g.CreatedAt, g.UpdatedAt = now, now

	history, err := s.store.ListGames(ctx, g.PlayerID)
	if err != nil {
		return RecordedGame{}, fmt.Errorf("load history: %w", err)
	}
	milestones := engine.DetectMilestones(g, history, season)
	for i := range milestones {
		milestones[i].ID = s.newID()
		milestones[i].CreatedAt = now
	}
	if err := s.store.InsertGame(ctx, g, milestones); err != nil {
		return RecordedGame{}, fmt.Errorf("store game: %w", err)
	}

	summary := s.calc.SeasonSummary(g.PlayerID, season, append(history, g))
	if err := s.store.SaveSeasonSummary(ctx, summary); err != nil {
		return RecordedGame{}, fmt.Errorf("save season summary: %w", err)
	}
	// The game's date may place it in a season other than the one asked for.
	s.invalidateGame(ctx, g)
	s.cacheSet(ctx, seasonKey(g.PlayerID, season), summary)

	slog.InfoContext(ctx, "Game recorded",
		"game_id", g.ID,
		"player_id", g.PlayerID,
		"season", season,
		"points", g.Points,
		"milestones", len(milestones))

	s.publishGame(ctx, amqp.GameRecordedMessage{
		GameID:         g.ID,
		PlayerID:       g.PlayerID,
		Season:         season,
		MilestoneCount: len(milestones),
	})

	if milestones == nil {
		milestones = []core.Milestone{}
	}
	return RecordedGame{Game: g, Milestones: milestones, Summary: summary}, nil
}

func (s *RecordService) GetGame(ctx context.Context, id string) (core.GameRecord, error) {
	return s.store.GetGame(ctx, id)
}

func (s *RecordService) ListGames(ctx context.Context, playerID string) ([]core.GameRecord, error) {
	return s.store.ListGames(ctx, playerID)
}

// UpdateGame replaces a game wholesale. Milestones already awarded stay.
func (s *RecordService) UpdateGame(ctx context.Context, g core.GameRecord) (core.GameRecord, error) {
	old, err := s.store.GetGame(ctx, g.ID)
	if err != nil {
		return core.GameRecord{}, err
	}
	g.Result = deriveUnlessExplicit(g)
	g.Normalize()
	if err := g.Validate(); err != nil {
		return core.GameRecord{}, invalid(err)
	}
	g.CreatedAt = old.CreatedAt
	g.UpdatedAt = s.now().UTC()
	if err := s.store.ReplaceGame(ctx, g); err != nil {
		return core.GameRecord{}, fmt.Errorf("replace game: %w", err)
	}
	s.invalidateGame(ctx, old)
	s.invalidateGame(ctx, g)
	slog.InfoContext(ctx, "Game updated", "game_id", g.ID, "player_id", g.PlayerID)
	return g, nil
}

func (s *RecordService) DeleteGame(ctx context.Context, id string) error {
	old, err := s.store.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteGame(ctx, id); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	s.invalidateGame(ctx, old)
	slog.InfoContext(ctx, "Game deleted", "game_id", id, "player_id", old.PlayerID)
	return nil
}

// deriveUnlessExplicit keeps a supplied result that agrees with the score,
// such as an overtime win, and otherwise derives it from the score. Unknown
// result names are left for validation to reject.
func deriveUnlessExplicit(g core.GameRecord) core.GameResult {
	if g.Result == "" || (g.Result.IsValid() && !core.ResultMatchesScore(g.Result, g.TeamScore, g.OpponentScore)) {
		return core.DeriveResult(g.TeamScore, g.OpponentScore)
	}
	return g.Result
}

// SeasonSummary returns the cached summary or recomputes it from every game
// the player has.
func (s *RecordService) SeasonSummary(ctx context.Context, playerID string, season core.Season) (core.SeasonSummary, error) {
	season, err := s.resolveSeason(season)
	if err != nil {
		return core.SeasonSummary{}, err
	}
	key := seasonKey(playerID, season)
	if sum, ok := s.cacheGetSeason(ctx, key); ok {
		return sum, nil
	}
	games, err := s.store.ListGames(ctx, playerID)
	if err != nil {
		return core.SeasonSummary{}, fmt.Errorf("load games: %w", err)
	}
	sum := s.calc.SeasonSummary(playerID, season, games)
	if err := s.store.SaveSeasonSummary(ctx, sum); err != nil {
		return core.SeasonSummary{}, fmt.Errorf("save season summary: %w", err)
	}
	s.cacheSet(ctx, key, sum)
	return sum, nil
}

func (s *RecordService) Milestones(ctx context.Context, playerID string, season core.Season) ([]core.Milestone, error) {
	if season != "" {
		if _, err := core.ParseSeason(string(season)); err != nil {
			return nil, invalid(err)
		}
	}
	ms, err := s.store.ListMilestones(ctx, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	if ms == nil {
		ms = []core.Milestone{}
	}
	return ms, nil
}

func (s *RecordService) resolveSeason(season core.Season) (core.Season, error) {
	if season == "" {
		return core.CurrentSeason(s.now()), nil
	}
	parsed, err := core.ParseSeason(string(season))
	if err != nil {
		return "", invalid(err)
	}
	return parsed, nil
}

// Cache plumbing. Cache failures are logged and never fail a request.

func seasonKey(playerID string, season core.Season) string {
	return cache.Key("season", playerID, string(season))
}

func expenseKey(playerID string, season core.Season) string {
	return cache.Key("expenses", playerID, string(season))
}

// candidateSeasons lists every season whose summary may include d under
// either season rule.
func candidateSeasons(d core.Date) []core.Season {
	y := d.Year()
	return []core.Season{
		core.Season(fmt.Sprintf("%d-%d", y-1, y)),
		core.Season(fmt.Sprintf("%d-%d", y, y+1)),
	}
}

func (s *RecordService) cacheGetSeason(ctx context.Context, key string) (core.SeasonSummary, bool) {
	sum, ok, err := s.seasonCache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
		return core.SeasonSummary{}, false
	}
	return sum, ok
}

func (s *RecordService) cacheGetExpense(ctx context.Context, key string) (core.ExpenseSummary, bool) {
	sum, ok, err := s.expenseCache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
		return core.ExpenseSummary{}, false
	}
	return sum, ok
}

func (s *RecordService) cacheSet(ctx context.Context, key string, sum core.SeasonSummary) {
	if err := s.seasonCache.Set(ctx, key, sum); err != nil {
		slog.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
}

func (s *RecordService) cacheSetExpense(ctx context.Context, key string, sum core.ExpenseSummary) {
	if err := s.expenseCache.Set(ctx, key, sum); err != nil {
		slog.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
}

func (s *RecordService) invalidateSeasons(ctx context.Context, playerID string, seasons ...core.Season) {
	for _, season := range seasons {
		key := seasonKey(playerID, season)
		if err := s.seasonCache.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "Cache delete failed", "key", key, "error", err)
		}
	}
}

func (s *RecordService) invalidateExpenses(ctx context.Context, playerID string, seasons ...core.Season) {
	for _, season := range seasons {
		key := expenseKey(playerID, season)
		if err := s.expenseCache.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "Cache delete failed", "key", key, "error", err)
		}
	}
}

// invalidateGame drops both summaries a game can feed. Expense summaries
// depend on games through the per-game figure.
func (s *RecordService) invalidateGame(ctx context.Context, g core.GameRecord) {
	seasons := candidateSeasons(g.Date)
	s.invalidateSeasons(ctx, g.PlayerID, seasons...)
	s.invalidateExpenses(ctx, g.PlayerID, seasons...)
}

func (s *RecordService) publishGame(ctx context.Context, msg amqp.GameRecordedMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishGameRecorded(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish game event", "game_id", msg.GameID, "error", err)
	}
}

func (s *RecordService) publishExpense(ctx context.Context, msg amqp.ExpenseChangedMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"expense_id", msg.ExpenseID, "operation", msg.Operation, "error", err)
	}
}
