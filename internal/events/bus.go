package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Event is a domain fact that already happened. Publishing is
// best-effort: a failed notifier never rolls back the action that
// produced the event.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Topic     string         `json:"topic"`
	Subject   string         `json:"subject"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Notifier receives published events. Implementations must be fast or
// hand off to their own goroutine.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Bus fans a published event out to every registered notifier in order.
type Bus struct {
	notifiers []Notifier
	logger    zerolog.Logger
}

func NewBus(logger zerolog.Logger, notifiers ...Notifier) *Bus {
	return &Bus{notifiers: notifiers, logger: logger}
}

// Publish stamps the event and delivers it to all notifiers.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	for _, n := range b.notifiers {
		n.Notify(ctx, e)
	}
}

// LogNotifier writes each event to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, e Event) {
	n.Logger.Info().
		Str("event_id", e.ID.String()).
		Str("topic", e.Topic).
		Str("subject", e.Subject).
		Msg("domain event")
}

// StoreNotifier appends events to the domain_events table for audit.
type StoreNotifier struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

func (n StoreNotifier) Notify(ctx context.Context, e Event) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		n.Logger.Error().Err(err).Str("topic", e.Topic).Msg("event payload not serializable")
		return
	}
	_, err = n.Pool.Exec(ctx, `
		INSERT INTO domain_events (id, topic, aggregate_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Topic, e.Subject, payload, e.CreatedAt)
	if err != nil {
		n.Logger.Error().Err(err).Str("topic", e.Topic).Msg("event store append failed")
	}
}
