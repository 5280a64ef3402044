package events

import (
	"errors"
	"fmt"
	"time"
)

// EventEnvelope is the common wrapper of every event this service emits.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      *int64    `json:"sequence,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

type EnvelopeMetadata struct {
	CorrelationID string
	CausationID   string
}

var errInvalidEnvelope = errors.New("invalid event envelope")

// Validate reports every header problem of e at once.
func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	var errs []error
	if e.EventName != expectedName {
		errs = append(errs, fmt.Errorf("eventName %q, want %q", e.EventName, expectedName))
	}
	if e.EventVersion != expectedVersion {
		errs = append(errs, fmt.Errorf("eventVersion %d, want %d", e.EventVersion, expectedVersion))
	}
	if e.EventID == "" {
		errs = append(errs, errors.New("missing eventId"))
	}
	if e.Producer == "" {
		errs = append(errs, errors.New("missing producer"))
	}
	if e.PartitionKey == "" {
		errs = append(errs, errors.New("missing partitionKey"))
	}
	if e.Sequence == nil || *e.Sequence < 1 {
		errs = append(errs, errors.New("missing sequence"))
	}
	if e.Schema == "" {
		errs = append(errs, errors.New("missing schema"))
	}
	if e.OccurredAt.IsZero() {
		errs = append(errs, errors.New("missing occurredAt"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", errInvalidEnvelope, errors.Join(errs...))
}
