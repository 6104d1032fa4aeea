package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rinkbook/internal/core"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

const timeLayout = time.RFC3339Nano

func timeText(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeText(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func parseDateText(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// players

const createPlayer = `INSERT INTO players (id, name, jersey_number, position, team, league, season, birth_date, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePlayer(ctx context.Context, p core.Player) error {
	_, err := q.db.ExecContext(ctx, createPlayer,
		p.ID, p.Name, p.JerseyNumber, string(p.Position), p.Team, p.League, string(p.Season),
		p.BirthDate.String(), boolInt(p.IsActive), timeText(p.CreatedAt))
	return err
}

const updatePlayer = `UPDATE players SET name = ?, jersey_number = ?, position = ?, team = ?, league = ?,
season = ?, birth_date = ?, is_active = ? WHERE id = ?`

func (q *Queries) UpdatePlayer(ctx context.Context, p core.Player) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePlayer,
		p.Name, p.JerseyNumber, string(p.Position), p.Team, p.League, string(p.Season),
		p.BirthDate.String(), boolInt(p.IsActive), p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const playerColumns = `id, name, jersey_number, position, team, league, season, birth_date, is_active, created_at`

const getPlayer = `SELECT ` + playerColumns + ` FROM players WHERE id = ?`

func (q *Queries) GetPlayer(ctx context.Context, id string) (core.Player, error) {
	return scanPlayer(q.db.QueryRowContext(ctx, getPlayer, id))
}

const listPlayers = `SELECT ` + playerColumns + ` FROM players ORDER BY name, id`

func (q *Queries) ListPlayers(ctx context.Context) ([]core.Player, error) {
	rows, err := q.db.QueryContext(ctx, listPlayers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []core.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func scanPlayer(s scanner) (core.Player, error) {
	var (
		p                core.Player
		position, season string
		birth, created   string
		active           int64
	)
	if err := s.Scan(&p.ID, &p.Name, &p.JerseyNumber, &position, &p.Team, &p.League, &season,
		&birth, &active, &created); err != nil {
		return p, err
	}
	p.Position = core.Position(position)
	p.Season = core.Season(season)
	p.IsActive = active != 0
	var err error
	if p.BirthDate, err = parseDateText(birth); err != nil {
		return p, fmt.Errorf("player %s birth date: %w", p.ID, err)
	}
	if p.CreatedAt, err = parseTimeText(created); err != nil {
		return p, fmt.Errorf("player %s created_at: %w", p.ID, err)
	}
	return p, nil
}

// game records

const createGame = `INSERT INTO game_records (id, player_id, date, opponent, game_type, location, venue,
team_score, opponent_score, result, goals, assists, points, penalty_minutes, plus_minus, shots_on_goal,
notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateGame(ctx context.Context, g core.GameRecord) error {
	_, err := q.db.ExecContext(ctx, createGame,
		g.ID, g.PlayerID, g.Date.String(), g.Opponent, string(g.GameType), string(g.Location), g.Venue,
		g.TeamScore, g.OpponentScore, string(g.Result), g.Goals, g.Assists, g.Points,
		g.PenaltyMinutes, g.PlusMinus, g.ShotsOnGoal, g.Notes, timeText(g.CreatedAt), timeText(g.UpdatedAt))
	return err
}

const updateGame = `UPDATE game_records SET player_id = ?, date = ?, opponent = ?, game_type = ?, location = ?,
venue = ?, team_score = ?, opponent_score = ?, result = ?, goals = ?, assists = ?, points = ?,
penalty_minutes = ?, plus_minus = ?, shots_on_goal = ?, notes = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateGame(ctx context.Context, g core.GameRecord) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateGame,
		g.PlayerID, g.Date.String(), g.Opponent, string(g.GameType), string(g.Location), g.Venue,
		g.TeamScore, g.OpponentScore, string(g.Result), g.Goals, g.Assists, g.Points,
		g.PenaltyMinutes, g.PlusMinus, g.ShotsOnGoal, g.Notes, timeText(g.UpdatedAt), g.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteGame = `DELETE FROM game_records WHERE id = ?`

func (q *Queries) DeleteGame(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteGame, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const gameColumns = `id, player_id, date, opponent, game_type, location, venue, team_score, opponent_score,
result, goals, assists, points, penalty_minutes, plus_minus, shots_on_goal, notes, created_at, updated_at`

const getGame = `SELECT ` + gameColumns + ` FROM game_records WHERE id = ?`

func (q *Queries) GetGame(ctx context.Context, id string) (core.GameRecord, error) {
	return scanGame(q.db.QueryRowContext(ctx, getGame, id))
}

const listGamesByPlayer = `SELECT ` + gameColumns + ` FROM game_records WHERE player_id = ? ORDER BY date, seq`

func (q *Queries) ListGamesByPlayer(ctx context.Context, playerID string) ([]core.GameRecord, error) {
	return q.queryGames(ctx, listGamesByPlayer, playerID)
}

const listAllGames = `SELECT ` + gameColumns + ` FROM game_records ORDER BY seq`

func (q *Queries) ListAllGames(ctx context.Context) ([]core.GameRecord, error) {
	return q.queryGames(ctx, listAllGames)
}

func (q *Queries) queryGames(ctx context.Context, query string, args ...interface{}) ([]core.GameRecord, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []core.GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

func scanGame(s scanner) (core.GameRecord, error) {
	var (
		g                        core.GameRecord
		date, gameType, location string
		result                   string
		created, updated         string
	)
	if err := s.Scan(&g.ID, &g.PlayerID, &date, &g.Opponent, &gameType, &location, &g.Venue,
		&g.TeamScore, &g.OpponentScore, &result, &g.Goals, &g.Assists, &g.Points,
		&g.PenaltyMinutes, &g.PlusMinus, &g.ShotsOnGoal, &g.Notes, &created, &updated); err != nil {
		return g, err
	}
	g.GameType = core.GameType(gameType)
	g.Location = core.Location(location)
	g.Result = core.GameResult(result)
	var err error
	if g.Date, err = parseDateText(date); err != nil {
		return g, fmt.Errorf("game %s date: %w", g.ID, err)
	}
	if g.CreatedAt, err = parseTimeText(created); err != nil {
		return g, fmt.Errorf("game %s created_at: %w", g.ID, err)
	}
	if g.UpdatedAt, err = parseTimeText(updated); err != nil {
		return g, fmt.Errorf("game %s updated_at: %w", g.ID, err)
	}
	return g, nil
}

// milestones

const createMilestone = `INSERT INTO milestones (id, player_id, type, name, description, date, game_id, season, is_special, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateMilestone(ctx context.Context, m core.Milestone) error {
	_, err := q.db.ExecContext(ctx, createMilestone,
		m.ID, m.PlayerID, string(m.Type), m.Name, m.Description, m.Date.String(), m.GameID,
		string(m.Season), boolInt(m.IsSpecial), timeText(m.CreatedAt))
	return err
}

const milestoneColumns = `id, player_id, type, name, description, date, game_id, season, is_special, created_at`

const listMilestonesByPlayer = `SELECT ` + milestoneColumns + ` FROM milestones
WHERE player_id = ? AND (? = '' OR season = ?) ORDER BY date, seq`

func (q *Queries) ListMilestones(ctx context.Context, playerID string, season core.Season) ([]core.Milestone, error) {
	return q.queryMilestones(ctx, listMilestonesByPlayer, playerID, string(season), string(season))
}

const listAllMilestones = `SELECT ` + milestoneColumns + ` FROM milestones ORDER BY seq`

func (q *Queries) ListAllMilestones(ctx context.Context) ([]core.Milestone, error) {
	return q.queryMilestones(ctx, listAllMilestones)
}

func (q *Queries) queryMilestones(ctx context.Context, query string, args ...interface{}) ([]core.Milestone, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []core.Milestone
	for rows.Next() {
		var (
			m                      core.Milestone
			typ, date, season, crt string
			special                int64
		)
		if err := rows.Scan(&m.ID, &m.PlayerID, &typ, &m.Name, &m.Description, &date, &m.GameID,
			&season, &special, &crt); err != nil {
			return nil, err
		}
		m.Type = core.MilestoneType(typ)
		m.Season = core.Season(season)
		m.IsSpecial = special != 0
		if m.Date, err = parseDateText(date); err != nil {
			return nil, fmt.Errorf("milestone %s date: %w", m.ID, err)
		}
		if m.CreatedAt, err = parseTimeText(crt); err != nil {
			return nil, fmt.Errorf("milestone %s created_at: %w", m.ID, err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// expenses

const createExpense = `INSERT INTO expenses (id, player_id, category, subcategory, description, amount_cents, date,
paid_by, payment_method, vendor, is_recurring, recurring_frequency, last_occurrence, season,
is_tax_deductible, is_reimbursed, reimbursed_cents, notes, tags, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateExpense(ctx context.Context, e core.ExpenseRecord) error {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, createExpense,
		e.ID, e.PlayerID, string(e.Category), e.Subcategory, e.Description, e.Amount.Cents, e.Date.String(),
		string(e.PaidBy), string(e.PaymentMethod), e.Vendor, boolInt(e.IsRecurring), string(e.RecurringFrequency),
		e.LastOccurrence.String(), string(e.Season), boolInt(e.IsTaxDeductible), boolInt(e.IsReimbursed),
		e.ReimbursedAmount.Cents, e.Notes, tags, timeText(e.CreatedAt), timeText(e.UpdatedAt))
	return err
}

const updateExpense = `UPDATE expenses SET player_id = ?, category = ?, subcategory = ?, description = ?,
amount_cents = ?, date = ?, paid_by = ?, payment_method = ?, vendor = ?, is_recurring = ?,
recurring_frequency = ?, last_occurrence = ?, season = ?, is_tax_deductible = ?, is_reimbursed = ?,
reimbursed_cents = ?, notes = ?, tags = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, e core.ExpenseRecord) (int64, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx, updateExpense,
		e.PlayerID, string(e.Category), e.Subcategory, e.Description, e.Amount.Cents, e.Date.String(),
		string(e.PaidBy), string(e.PaymentMethod), e.Vendor, boolInt(e.IsRecurring), string(e.RecurringFrequency),
		e.LastOccurrence.String(), string(e.Season), boolInt(e.IsTaxDeductible), boolInt(e.IsReimbursed),
		e.ReimbursedAmount.Cents, e.Notes, tags, timeText(e.UpdatedAt), e.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markExpenseOccurrence = `UPDATE expenses SET last_occurrence = ?, updated_at = ? WHERE id = ?`

func (q *Queries) MarkExpenseOccurrence(ctx context.Context, id string, d core.Date, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, markExpenseOccurrence, d.String(), timeText(now), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const expenseColumns = `id, player_id, category, subcategory, description, amount_cents, date, paid_by,
payment_method, vendor, is_recurring, recurring_frequency, last_occurrence, season, is_tax_deductible,
is_reimbursed, reimbursed_cents, notes, tags, created_at, updated_at`

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id string) (core.ExpenseRecord, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

const listExpensesByPlayerSeason = `SELECT ` + expenseColumns + ` FROM expenses
WHERE player_id = ? AND season = ? ORDER BY date, seq`

func (q *Queries) ListExpenses(ctx context.Context, playerID string, season core.Season) ([]core.ExpenseRecord, error) {
	return q.queryExpenses(ctx, listExpensesByPlayerSeason, playerID, string(season))
}

const listRecurringExpenses = `SELECT ` + expenseColumns + ` FROM expenses WHERE is_recurring = 1 ORDER BY seq`

func (q *Queries) ListRecurringExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	return q.queryExpenses(ctx, listRecurringExpenses)
}

const listAllExpenses = `SELECT ` + expenseColumns + ` FROM expenses ORDER BY seq`

func (q *Queries) ListAllExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	return q.queryExpenses(ctx, listAllExpenses)
}

func (q *Queries) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]core.ExpenseRecord, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []core.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func scanExpense(s scanner) (core.ExpenseRecord, error) {
	var (
		e                                 core.ExpenseRecord
		category, paidBy, method, freq    string
		date, last, season, tags          string
		created, updated                  string
		recurring, deductible, reimbursed int64
	)
	if err := s.Scan(&e.ID, &e.PlayerID, &category, &e.Subcategory, &e.Description, &e.Amount.Cents, &date,
		&paidBy, &method, &e.Vendor, &recurring, &freq, &last, &season, &deductible, &reimbursed,
		&e.ReimbursedAmount.Cents, &e.Notes, &tags, &created, &updated); err != nil {
		return e, err
	}
	e.Category = core.ExpenseCategory(category)
	e.PaidBy = core.Payer(paidBy)
	e.PaymentMethod = core.PaymentMethod(method)
	e.RecurringFrequency = core.Frequency(freq)
	e.Season = core.Season(season)
	e.IsRecurring = recurring != 0
	e.IsTaxDeductible = deductible != 0
	e.IsReimbursed = reimbursed != 0
	var err error
	if e.Date, err = parseDateText(date); err != nil {
		return e, fmt.Errorf("expense %s date: %w", e.ID, err)
	}
	if e.LastOccurrence, err = parseDateText(last); err != nil {
		return e, fmt.Errorf("expense %s last occurrence: %w", e.ID, err)
	}
	if err = json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return e, fmt.Errorf("expense %s tags: %w", e.ID, err)
	}
	if e.CreatedAt, err = parseTimeText(created); err != nil {
		return e, fmt.Errorf("expense %s created_at: %w", e.ID, err)
	}
	if e.UpdatedAt, err = parseTimeText(updated); err != nil {
		return e, fmt.Errorf("expense %s updated_at: %w", e.ID, err)
	}
	return e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// tournaments

const createTournament = `INSERT INTO tournaments (id, name, location, start_date, end_date, registration_fee_cents,
travel_cents, lodging_cents, food_cents, other_cents, total_cents, placement, total_teams, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTournament(ctx context.Context, t core.TournamentRecord) error {
	_, err := q.db.ExecContext(ctx, createTournament,
		t.ID, t.Name, t.Location, t.StartDate.String(), t.EndDate.String(), t.RegistrationFee.Cents,
		t.TravelCost.Cents, t.LodgingCost.Cents, t.FoodCost.Cents, t.OtherCost.Cents, t.TotalCost.Cents,
		t.Placement, t.TotalTeams, t.Notes)
	return err
}

const listTournaments = `SELECT id, name, location, start_date, end_date, registration_fee_cents, travel_cents,
lodging_cents, food_cents, other_cents, total_cents, placement, total_teams, notes
FROM tournaments ORDER BY start_date, seq`

func (q *Queries) ListTournaments(ctx context.Context) ([]core.TournamentRecord, error) {
	rows, err := q.db.QueryContext(ctx, listTournaments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []core.TournamentRecord
	for rows.Next() {
		var (
			t          core.TournamentRecord
			start, end string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Location, &start, &end, &t.RegistrationFee.Cents,
			&t.TravelCost.Cents, &t.LodgingCost.Cents, &t.FoodCost.Cents, &t.OtherCost.Cents,
			&t.TotalCost.Cents, &t.Placement, &t.TotalTeams, &t.Notes); err != nil {
			return nil, err
		}
		if t.StartDate, err = parseDateText(start); err != nil {
			return nil, fmt.Errorf("tournament %s start date: %w", t.ID, err)
		}
		if t.EndDate, err = parseDateText(end); err != nil {
			return nil, fmt.Errorf("tournament %s end date: %w", t.ID, err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// summaries

const upsertSeasonSummary = `INSERT INTO season_summaries (player_id, season, data, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (player_id, season) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

const upsertExpenseSummary = `INSERT INTO expense_summaries (player_id, season, data, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (player_id, season) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

func (q *Queries) UpsertSeasonSummary(ctx context.Context, playerID string, season core.Season, data []byte, now time.Time) error {
	_, err := q.db.ExecContext(ctx, upsertSeasonSummary, playerID, string(season), string(data), timeText(now))
	return err
}

func (q *Queries) UpsertExpenseSummary(ctx context.Context, playerID string, season core.Season, data []byte, now time.Time) error {
	_, err := q.db.ExecContext(ctx, upsertExpenseSummary, playerID, string(season), string(data), timeText(now))
	return err
}

const getSeasonSummary = `SELECT data FROM season_summaries WHERE player_id = ? AND season = ?`

const getExpenseSummary = `SELECT data FROM expense_summaries WHERE player_id = ? AND season = ?`

func (q *Queries) GetSeasonSummaryData(ctx context.Context, playerID string, season core.Season) ([]byte, error) {
	var data string
	err := q.db.QueryRowContext(ctx, getSeasonSummary, playerID, string(season)).Scan(&data)
	return []byte(data), err
}

func (q *Queries) GetExpenseSummaryData(ctx context.Context, playerID string, season core.Season) ([]byte, error) {
	var data string
	err := q.db.QueryRowContext(ctx, getExpenseSummary, playerID, string(season)).Scan(&data)
	return []byte(data), err
}

// ClearAll removes every row; used before a snapshot import.
func (q *Queries) ClearAll(ctx context.Context) error {
	for _, table := range []string{
		"season_summaries", "expense_summaries", "milestones", "game_records",
		"expenses", "tournaments", "players",
	} {
		if _, err := q.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
