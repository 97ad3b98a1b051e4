package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"store-service/internal/model"
)

func TestCanTransition(t *testing.T) {
	statuses := []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
		model.OrderStatusCancelled,
		model.OrderStatusRefunded,
	}

	allowed := map[model.OrderStatus]map[model.OrderStatus]bool{
		model.OrderStatusPending: {
			model.OrderStatusProcessing: true,
			model.OrderStatusCancelled:  true,
		},
		model.OrderStatusProcessing: {
			model.OrderStatusShipped:   true,
			model.OrderStatusCancelled: true,
			model.OrderStatusRefunded:  true,
		},
		model.OrderStatusShipped: {
			model.OrderStatusDelivered: true,
			model.OrderStatusRefunded:  true,
		},
		model.OrderStatusDelivered: {
			model.OrderStatusRefunded: true,
		},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[from][to]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatusesHaveNoEdges(t *testing.T) {
	for _, from := range []model.OrderStatus{model.OrderStatusCancelled, model.OrderStatusRefunded} {
		assert.Empty(t, statusGraph[from])
	}
}

func TestReleasesInventory(t *testing.T) {
	assert.True(t, releasesInventory(model.OrderStatusCancelled))
	assert.True(t, releasesInventory(model.OrderStatusRefunded))
	assert.False(t, releasesInventory(model.OrderStatusProcessing))
	assert.False(t, releasesInventory(model.OrderStatusShipped))
	assert.False(t, releasesInventory(model.OrderStatusDelivered))
}
