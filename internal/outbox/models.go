// Package outbox publishes domain events written in the same transaction as
// the state change they describe. Delivery is at least once; consumers
// deduplicate on the event ID.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by cheque printing.
const (
	EventChequesPrinted     = "cheques.printed"
	EventChequesReprinted   = "cheques.reprinted"
	EventCertifiedCommitted = "certified.range_committed"
	EventCertifiedServed    = "certified.batch_printed"
)

// Aggregate types.
const (
	AggregateAccount = "account"
	AggregateBranch  = "branch"
)

// Event is one outbox row.
type Event struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// NewEvent marshals payload as JSON into a fresh event.
func NewEvent(aggregateType, aggregateID, eventType string, payload any, now time.Time) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       body,
		CreatedAt:     now,
	}, nil
}
