package schema

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEvent represents the ledger_events table - the append-only journal
// written inside the same transaction as the state change it records. The
// publisher reads committed rows, so a crash between commit and publish never
// loses an event.
type LedgerEvent struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// EventID is the ULID assigned when the event is journaled
	EventID string `gorm:"column:event_id;not null;uniqueIndex;type:text"`
	// EventType identifies the event kind, e.g. bid_created
	EventType string `gorm:"column:event_type;not null;type:text;index"`
	// Payload is the JSON-encoded event body
	Payload datatypes.JSON `gorm:"column:payload;not null"`
	// CreatedAt is the journal timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the LedgerEvent model
func (LedgerEvent) TableName() string {
	return "ledger_events"
}
