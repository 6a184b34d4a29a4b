package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CASE_ESCALATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete event used on every bus.
type BaseEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const TypeCaseEscalated = "CASE_ESCALATED"

// Escalation sources
const (
	SourceMessage  = "message"
	SourceAgent    = "agent"
	SourceDocument = "document"
)

// CaseEscalated is published when a conversation must be taken over by a mentor.
type CaseEscalated struct {
	SessionID   string    `json:"session_id"`
	Source      string    `json:"source"`
	Certificate string    `json:"certificate,omitempty"`
	Nickname    string    `json:"nickname,omitempty"`
	Career      string    `json:"career,omitempty"`
	Email       string    `json:"email,omitempty"`
	At          time.Time `json:"at"`
}

// Event wraps the escalation into a BaseEvent with a fresh id.
func (c CaseEscalated) Event() BaseEvent {
	data := map[string]interface{}{
		"session_id": c.SessionID,
		"source":     c.Source,
	}
	if c.Certificate != "" {
		data["certificate"] = c.Certificate
	}
	if c.Nickname != "" {
		data["nickname"] = c.Nickname
	}
	if c.Career != "" {
		data["career"] = c.Career
	}
	if c.Email != "" {
		data["email"] = c.Email
	}
	at := c.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return BaseEvent{
		ID:         uuid.NewString(),
		Type:       TypeCaseEscalated,
		Data:       data,
		OccurredAt: at,
	}
}

// Encode serialises any Event into the wire envelope shared by the buses.
func Encode(e Event) ([]byte, error) {
	env := BaseEvent{
		Type:       e.EventType(),
		Data:       e.Payload(),
		OccurredAt: e.Timestamp(),
	}
	if b, ok := e.(BaseEvent); ok {
		env.ID = b.ID
	}
	return json.Marshal(env)
}

// Decode parses an envelope produced by Encode.
func Decode(raw []byte) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("events: decode envelope: %w", err)
	}
	if e.Type == "" {
		return BaseEvent{}, fmt.Errorf("events: envelope without type")
	}
	return e, nil
}

// Field returns a payload field as a string, "" if absent.
func (e BaseEvent) Field(key string) string {
	v, _ := e.Data[key].(string)
	return v
}
