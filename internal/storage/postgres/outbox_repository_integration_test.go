package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashish02003/Freshify/internal/domain"
)

func TestOutboxRepositoryIntegration_EnqueueAndPull(t *testing.T) {
	store := openTestStore(t)
	repo := NewOutboxRepository(store)

	first, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "ORD-10001",
		EventType:     "order.created",
		Payload:       []byte(`{"orderId":"ORD-10001"}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "ORD-10001",
		EventType:     "order.status_changed",
		Payload:       []byte(`{"orderId":"ORD-10001","status":"shipped"}`),
	})
	require.NoError(t, err)

	pending, err := repo.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PendingCount)
	assert.False(t, stats.OldestPendingAt.IsZero())

	require.NoError(t, repo.MarkSent(first.ID))
	require.NoError(t, repo.MarkFailed(second.ID))

	pending, err = repo.PullPending(10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	stats, err = repo.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.PendingCount)
}

func TestOutboxRepositoryIntegration_MarkUnknown(t *testing.T) {
	store := openTestStore(t)
	repo := NewOutboxRepository(store)

	err := repo.MarkSent("00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, domain.ErrOutboxPublish)
}
