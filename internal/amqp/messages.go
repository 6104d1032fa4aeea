package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"rinkbook/internal/core"
)

// Event types carried in Envelope.Type.
const (
	TypeGameRecorded   = "game.recorded"
	TypeExpenseChanged = "expense.changed"
)

// Expense operations carried in ExpenseChangedMessage.Operation.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// Envelope wraps every message on the queue so a single consumer can
// dispatch on Type.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// GameRecordedMessage is published after a game and its milestones are stored.
// The worker reloads the game from the store rather than trusting the payload.
type GameRecordedMessage struct {
	GameID         string      `json:"game_id"`
	PlayerID       string      `json:"player_id"`
	Season         core.Season `json:"season"`
	MilestoneCount int         `json:"milestone_count"`
}

// ExpenseChangedMessage is published after an expense is created, updated or deleted.
type ExpenseChangedMessage struct {
	ExpenseID string      `json:"expense_id"`
	PlayerID  string      `json:"player_id"`
	Season    core.Season `json:"season"`
	Operation string      `json:"operation"`
}

// NewEnvelope encodes payload under the given type.
func NewEnvelope(typ string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return &Envelope{Type: typ, Timestamp: time.Now(), Data: data}, nil
}

// ToJSON converts the envelope to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON parses an envelope and rejects one without a type.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, fmt.Errorf("envelope has no type")
	}
	return &env, nil
}

// Decode unmarshals the payload into v.
func (e *Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%w: decode %s payload: %v", ErrMalformed, e.Type, err)
	}
	return nil
}
