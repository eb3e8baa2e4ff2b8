package redisjournal_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pergola/pkg/adapters/redisjournal"
	"github.com/aretw0/pergola/pkg/domain"
)

func newTestJournal(t *testing.T, opts ...redisjournal.Option) *redisjournal.Journal {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisjournal.New(client, opts...)
}

func TestJournal_AppendAndReplay(t *testing.T) {
	j := newTestJournal(t, redisjournal.WithStream("test:events"))
	ctx := context.Background()

	events := []domain.Event{
		{Type: domain.EventActionStatus, State: "initial", Payload: map[string]any{"status": "PENDING", "action": "audit"}},
		{Type: "EVENT", State: "final", Payload: map[string]any{"some": "payload"}},
		{Type: domain.EventHookError, State: "final", Error: "boom"},
	}
	for _, ev := range events {
		require.NoError(t, j.Append(ctx, ev))
	}

	got, err := j.Replay(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.EventActionStatus, got[0].Type)
	assert.Equal(t, "EVENT", got[1].Type)
	assert.Equal(t, "final", got[1].State)
	assert.Equal(t, map[string]any{"some": "payload"}, got[1].Payload)
	assert.Equal(t, "boom", got[2].Error)
}

func TestJournal_ObserverKeepsDeliveryOrder(t *testing.T) {
	j := newTestJournal(t)
	observe := j.Observer(context.Background())

	observe(domain.Event{Type: "A", State: "s1"})
	observe(domain.Event{Type: "B", State: "s2"})

	got, err := j.Replay(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Type)
	assert.Equal(t, "B", got[1].Type)
}

func TestJournal_ReplayLimitsCount(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(ctx, domain.Event{Type: "EVENT", State: "s"}))
	}

	got, err := j.Replay(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
