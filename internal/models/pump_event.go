package models

import "time"

// PumpEvent is a single journal entry.
type PumpEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Pump        string    `json:"pump"`        // peristaltic | vacuum
	Type        string    `json:"type"`        // START | STOP | AUTO_STOP | EMERGENCY_STOP | HALT | REJECTED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
