package ledger

import (
	"store-service/internal/model"
)

// statusGraph holds the allowed edges of the order lifecycle:
// pending -> processing -> shipped -> delivered, forward only, plus
// cancellation from pending/processing and refund from
// processing/shipped/delivered. Cancelled and refunded are terminal.
var statusGraph = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped, model.OrderStatusCancelled, model.OrderStatusRefunded},
	model.OrderStatusShipped:    {model.OrderStatusDelivered, model.OrderStatusRefunded},
	model.OrderStatusDelivered:  {model.OrderStatusRefunded},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to model.OrderStatus) bool {
	for _, next := range statusGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// releasesInventory reports whether entering a status hands reserved
// stock back to inventory.
func releasesInventory(to model.OrderStatus) bool {
	return to == model.OrderStatusCancelled || to == model.OrderStatusRefunded
}
