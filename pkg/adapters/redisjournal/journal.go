// Package redisjournal appends domain events to a Redis stream.
//
// The runtime itself persists nothing; this is a caller-pluggable
// subscriber consuming the emitted event stream, for hosts that want a
// durable journal to replay or audit.
package redisjournal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/pergola/internal/logging"
	"github.com/aretw0/pergola/pkg/domain"
)

// Journal writes domain events to one Redis stream via XADD.
type Journal struct {
	client *backend.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

type Option func(*Journal)

// WithStream sets the stream key (default "pergola:events").
func WithStream(key string) Option {
	return func(j *Journal) {
		j.stream = key
	}
}

// WithMaxLen caps the stream length (approximate trimming). Zero means
// unbounded.
func WithMaxLen(n int64) Option {
	return func(j *Journal) {
		j.maxLen = n
	}
}

// WithLogger sets the logger used to report append failures from the
// observer path.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// New creates a journal on an existing client.
func New(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		stream: "pergola:events",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Append writes one event to the stream.
func (j *Journal) Append(ctx context.Context, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	args := &backend.XAddArgs{
		Stream: j.stream,
		Values: map[string]any{"event": data},
	}
	if j.maxLen > 0 {
		args.MaxLen = j.maxLen
		args.Approx = true
	}

	if err := j.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Observer adapts the journal into a machine subscriber. Append failures
// are logged, never surfaced: an observer must not feed errors back into
// the transition path.
func (j *Journal) Observer(ctx context.Context) domain.Observer {
	return func(ev domain.Event) {
		if err := j.Append(ctx, ev); err != nil {
			j.logger.Warn("event journal append failed", "stream", j.stream, "err", err)
		}
	}
}

// Replay reads up to count events from the beginning of the stream.
func (j *Journal) Replay(ctx context.Context, count int64) ([]domain.Event, error) {
	msgs, err := j.client.XRangeN(ctx, j.stream, "-", "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	events := make([]domain.Event, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["event"].(string)
		if !ok {
			continue
		}
		var ev domain.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", msg.ID, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
