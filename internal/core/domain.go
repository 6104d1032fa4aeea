package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Player struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		JerseyNumber int       `json:"jersey_number"`
		Position     Position  `json:"position"`
		Team         string    `json:"team"`
		League       string    `json:"league"`
		Season       Season    `json:"season"`
		BirthDate    Date      `json:"birth_date"`
		IsActive     bool      `json:"is_active"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// GameRecord is one game's line for one player. Points is always
	// Goals+Assists and is recomputed by Normalize before every write.
	GameRecord struct {
		ID             string     `json:"id"`
		PlayerID       string     `json:"player_id"`
		Date           Date       `json:"date"`
		Opponent       string     `json:"opponent"`
		GameType       GameType   `json:"game_type"`
		Location       Location   `json:"location"`
		Venue          string     `json:"venue,omitempty"`
		TeamScore      int        `json:"team_score"`
		OpponentScore  int        `json:"opponent_score"`
		Result         GameResult `json:"result"`
		Goals          int        `json:"goals"`
		Assists        int        `json:"assists"`
		Points         int        `json:"points"`
		PenaltyMinutes int        `json:"penalty_minutes"`
		PlusMinus      int        `json:"plus_minus"`
		ShotsOnGoal    int        `json:"shots_on_goal"`
		Notes          string     `json:"notes,omitempty"`
		CreatedAt      time.Time  `json:"created_at"`
		UpdatedAt      time.Time  `json:"updated_at"`
	}

	ExpenseRecord struct {
		ID                 string          `json:"id"`
		PlayerID           string          `json:"player_id"`
		Category           ExpenseCategory `json:"category"`
		Subcategory        string          `json:"subcategory,omitempty"`
		Description        string          `json:"description"`
		Amount             Money           `json:"amount"`
		Date               Date            `json:"date"`
		PaidBy             Payer           `json:"paid_by"`
		PaymentMethod      PaymentMethod   `json:"payment_method"`
		Vendor             string          `json:"vendor,omitempty"`
		IsRecurring        bool            `json:"is_recurring"`
		RecurringFrequency Frequency       `json:"recurring_frequency,omitempty"`
		LastOccurrence     Date            `json:"last_occurrence,omitempty"`
		Season             Season          `json:"season"`
		IsTaxDeductible    bool            `json:"is_tax_deductible"`
		IsReimbursed       bool            `json:"is_reimbursed"`
		ReimbursedAmount   Money           `json:"reimbursed_amount"`
		Notes              string          `json:"notes,omitempty"`
		Tags               []string        `json:"tags"`
		CreatedAt          time.Time       `json:"created_at"`
		UpdatedAt          time.Time       `json:"updated_at"`
	}

	Milestone struct {
		ID          string        `json:"id"`
		PlayerID    string        `json:"player_id"`
		Type        MilestoneType `json:"type"`
		Name        string        `json:"milestone"`
		Description string        `json:"description"`
		Date        Date          `json:"date"`
		GameID      string        `json:"game_id,omitempty"`
		Season      Season        `json:"season"`
		IsSpecial   bool          `json:"is_special"`
		CreatedAt   time.Time     `json:"created_at"`
	}

	TournamentRecord struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Location        string `json:"location"`
		StartDate       Date   `json:"start_date"`
		EndDate         Date   `json:"end_date"`
		RegistrationFee Money  `json:"registration_fee"`
		TravelCost      Money  `json:"travel_expenses"`
		LodgingCost     Money  `json:"lodging_expenses"`
		FoodCost        Money  `json:"food_expenses"`
		OtherCost       Money  `json:"other_expenses"`
		TotalCost       Money  `json:"total_cost"`
		Placement       int    `json:"placement,omitempty"`
		TotalTeams      int    `json:"total_teams,omitempty"`
		Notes           string `json:"notes,omitempty"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyPlayer       = errors.New("empty player id")
	ErrEmptyOpponent     = errors.New("empty opponent")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidCategory   = errors.New("invalid expense category")
	ErrInvalidPayer      = errors.New("invalid payer")
	ErrInvalidMethod     = errors.New("invalid payment method")
	ErrInvalidFrequency  = errors.New("invalid recurring frequency")
	ErrInvalidGameType   = errors.New("invalid game type")
	ErrInvalidLocation   = errors.New("invalid location")
	ErrInvalidResult     = errors.New("invalid game result")
	ErrResultMismatch    = errors.New("result does not match score")
	ErrNegativeStat      = errors.New("stat cannot be negative")
	ErrInvalidReimbursed = errors.New("reimbursed amount exceeds amount")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrInvalidJersey     = errors.New("jersey number must be between 0 and 99")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Surrounding whitespace is ignored.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// YearMonth returns the "YYYY-MM" bucket used by monthly roll-ups.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Normalize derives the fields a game record never takes from its caller:
// points always, and the result when none was given.
func (g *GameRecord) Normalize() {
	g.Points = g.Goals + g.Assists
	if g.Result == "" {
		g.Result = DeriveResult(g.TeamScore, g.OpponentScore)
	}
	g.Opponent = strings.TrimSpace(g.Opponent)
	g.Notes = strings.TrimSpace(g.Notes)
}

func (g GameRecord) Validate() error {
	if strings.TrimSpace(g.PlayerID) == "" {
		return ErrEmptyPlayer
	}
	if err := g.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(g.Opponent) == "" {
		return ErrEmptyOpponent
	}
	if !g.GameType.IsValid() {
		return ErrInvalidGameType
	}
	if !g.Location.IsValid() {
		return ErrInvalidLocation
	}
	if !g.Result.IsValid() {
		return ErrInvalidResult
	}
	// Plus/minus is the only stat allowed below zero.
	for _, v := range []int{g.TeamScore, g.OpponentScore, g.Goals, g.Assists, g.PenaltyMinutes, g.ShotsOnGoal} {
		if v < 0 {
			return ErrNegativeStat
		}
	}
	if !ResultMatchesScore(g.Result, g.TeamScore, g.OpponentScore) {
		return fmt.Errorf("%w: %s with %d-%d", ErrResultMismatch, g.Result, g.TeamScore, g.OpponentScore)
	}
	if g.Points != g.Goals+g.Assists {
		return fmt.Errorf("points %d != goals %d + assists %d", g.Points, g.Goals, g.Assists)
	}
	if len(g.Notes) > 500 {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.PlayerID) == "" {
		return ErrEmptyPlayer
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.PaidBy.IsValid() {
		return ErrInvalidPayer
	}
	if !e.PaymentMethod.IsValid() {
		return ErrInvalidMethod
	}
	if e.IsRecurring && !e.RecurringFrequency.IsValid() {
		return ErrInvalidFrequency
	}
	if _, err := ParseSeason(string(e.Season)); err != nil {
		return err
	}
	if err := e.ReimbursedAmount.Validate(); err != nil {
		return fmt.Errorf("reimbursed: %w", err)
	}
	if e.ReimbursedAmount.Cents > e.Amount.Cents {
		return ErrInvalidReimbursed
	}
	return nil
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.JerseyNumber < 0 || p.JerseyNumber > 99 {
		return ErrInvalidJersey
	}
	if !p.Position.IsValid() {
		return ErrInvalidPosition
	}
	if p.Season != "" {
		if _, err := ParseSeason(string(p.Season)); err != nil {
			return err
		}
	}
	return nil
}

// ComputeTotal sums the cost columns into TotalCost.
func (t *TournamentRecord) ComputeTotal() {
	t.TotalCost = Money{Cents: t.RegistrationFee.Cents + t.TravelCost.Cents +
		t.LodgingCost.Cents + t.FoodCost.Cents + t.OtherCost.Cents}
}

func (t TournamentRecord) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if err := t.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate.Time) {
		return errors.New("end date must not be before start date")
	}
	for _, m := range []Money{t.RegistrationFee, t.TravelCost, t.LodgingCost, t.FoodCost, t.OtherCost} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	if t.Placement < 0 || t.TotalTeams < 0 || (t.TotalTeams > 0 && t.Placement > t.TotalTeams) {
		return errors.New("invalid placement")
	}
	return nil
}
