package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"store-service/internal/model"
)

// moneyEpsilon absorbs float64 representation noise in monetary
// comparisons; amounts are dollars, so this is far below a cent.
const moneyEpsilon = 1e-9

// Ledger owns the lifecycle of an order header, its line items, its
// inventory effects and its payment records. Every multi-step
// operation runs in a single database transaction so partial
// application is never observable.
type Ledger struct {
	db    *gorm.DB
	guard Guard
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `json:"discount"`
}

// CreateOrderInput carries everything needed to open an order.
// Shipping and tax are caller-supplied; the ledger derives the rest.
type CreateOrderInput struct {
	CustomerID        uint
	BillingAddressID  *uint
	ShippingAddressID *uint
	ShippingCost      float64
	TaxAmount         float64
	Lines             []OrderLine
}

// CreateOrder validates the requested lines, reserves stock for every
// product, computes line totals and the order total, and persists the
// order in status pending / unpaid. Reservation and order creation
// commit or roll back together.
func (l *Ledger) CreateOrder(ctx context.Context, input CreateOrderInput) (*model.Order, error) {
	if len(input.Lines) == 0 {
		return nil, &ValidationError{Field: "lines", Reason: "order must contain at least one line"}
	}
	if input.ShippingCost < 0 {
		return nil, &ValidationError{Field: "shipping_cost", Reason: "must not be negative"}
	}
	if input.TaxAmount < 0 {
		return nil, &ValidationError{Field: "tax_amount", Reason: "must not be negative"}
	}

	seen := make(map[uint]bool, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
		}
		if line.UnitPrice < 0 {
			return nil, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
		}
		if line.Discount < 0 {
			return nil, &ValidationError{Field: "discount", Reason: "must not be negative"}
		}
		if line.Discount > line.UnitPrice*float64(line.Quantity) {
			return nil, &ValidationError{Field: "discount", Reason: "must not exceed the undiscounted line amount"}
		}
		if seen[line.ProductID] {
			return nil, &ValidationError{Field: "product_id", Reason: "at most one line per product per order"}
		}
		seen[line.ProductID] = true
	}

	var order model.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := make([]model.OrderItem, 0, len(input.Lines))
		var subtotal float64

		for _, line := range input.Lines {
			var product model.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ValidationError{Field: "product_id", Reason: fmt.Sprintf("unknown product %d", line.ProductID)}
				}
				return err
			}
			if !product.IsActive {
				return &ValidationError{Field: "product_id", Reason: fmt.Sprintf("product %d is not active", line.ProductID)}
			}

			ok, err := l.guard.Reserve(tx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("product %d: %w", line.ProductID, ErrInsufficientStock)
			}

			lineTotal := line.UnitPrice*float64(line.Quantity) - line.Discount
			subtotal += lineTotal
			items = append(items, model.OrderItem{
				ProductID: line.ProductID,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Discount:  line.Discount,
				LineTotal: lineTotal,
			})
		}

		order = model.Order{
			CustomerID:        input.CustomerID,
			BillingAddressID:  input.BillingAddressID,
			ShippingAddressID: input.ShippingAddressID,
			Status:            model.OrderStatusPending,
			PaymentStatus:     model.PaymentStatusUnpaid,
			Subtotal:          subtotal,
			ShippingCost:      input.ShippingCost,
			TaxAmount:         input.TaxAmount,
			TotalAmount:       subtotal + input.ShippingCost + input.TaxAmount,
			Items:             items,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionStatus moves an order along the lifecycle graph. Entering
// cancelled or refunded releases the reserved quantities of every
// line exactly once; a second reversal attempt on the same order is
// rejected. The status write is a compare-and-set on the previous
// status, so concurrent transitions on one order serialize: the loser
// observes a stale status and fails.
func (l *Ledger) TransitionStatus(ctx context.Context, orderID uint, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", next)}
	}

	var order model.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !CanTransition(order.Status, next) {
			return fmt.Errorf("%s -> %s: %w", order.Status, next, ErrInvalidTransition)
		}

		release := releasesInventory(next)
		if release && order.InventoryReversed {
			return ErrAlreadyReversed
		}

		result := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{
				"status":             next,
				"inventory_reversed": order.InventoryReversed || release,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race against a concurrent transition.
			return fmt.Errorf("%s -> %s: %w", order.Status, next, ErrInvalidTransition)
		}

		if release {
			var items []model.OrderItem
			if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
				return err
			}
			for _, item := range items {
				if err := l.guard.Release(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		order.Status = next
		order.InventoryReversed = order.InventoryReversed || release
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PaymentInput describes a payment to record against an order. Status
// defaults to completed and TransactionRef to a generated reference.
type PaymentInput struct {
	Amount         float64
	Method         string
	Status         model.PaymentState
	TransactionRef string
}

// RecordPayment appends a payment record to an order. A completed
// payment that would push cumulative completed payments past the
// order total is rejected. When completed payments reach the total,
// the order's payment status flips to paid. Concurrent recording
// against one order serializes on the order row.
func (l *Ledger) RecordPayment(ctx context.Context, orderID uint, input PaymentInput) (*model.Payment, error) {
	if input.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if input.Status == "" {
		input.Status = model.PaymentCompleted
	}
	if !input.Status.Valid() || input.Status == model.PaymentRefunded {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown payment status %q", input.Status)}
	}
	if input.TransactionRef == "" {
		input.TransactionRef = uuid.New().String()
	}

	var payment model.Payment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Writing the order row first takes its row lock, so
		// concurrent payment recording on one order serializes and
		// the cumulative sums below stay stable for the rest of the
		// transaction.
		locked := tx.Model(&model.Order{}).
			Where("id = ?", orderID).
			UpdateColumn("updated_at", time.Now())
		if locked.Error != nil {
			return locked.Error
		}
		if locked.RowsAffected == 0 {
			return ErrNotFound
		}

		var order model.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return err
		}

		if input.Status == model.PaymentCompleted {
			paid, err := completedTotal(tx, order.ID)
			if err != nil {
				return err
			}
			if paid+input.Amount > order.TotalAmount+moneyEpsilon {
				return fmt.Errorf("order %d: %w", order.ID, ErrOverpayment)
			}
			if paid+input.Amount >= order.TotalAmount-moneyEpsilon && order.PaymentStatus != model.PaymentStatusPaid {
				if err := tx.Model(&order).Update("payment_status", model.PaymentStatusPaid).Error; err != nil {
					return err
				}
			}
		} else if input.Status == model.PaymentFailed && order.PaymentStatus == model.PaymentStatusUnpaid {
			if err := tx.Model(&order).Update("payment_status", model.PaymentStatusFailed).Error; err != nil {
				return err
			}
		}

		payment = model.Payment{
			OrderID:        order.ID,
			Amount:         input.Amount,
			Method:         input.Method,
			Status:         input.Status,
			TransactionRef: input.TransactionRef,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// RefundPayment records a refund against a completed payment. The
// cumulative refunded amount may never exceed the original payment; a
// fully refunded payment flips to status refunded, and once every
// completed payment of the order is fully refunded the order's
// payment status becomes refunded as well.
func (l *Ledger) RefundPayment(ctx context.Context, paymentID uint, amount float64) (*model.Payment, error) {
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	var refund model.Payment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Writing the original payment row first takes its row lock,
		// so concurrent refunds of one payment serialize and the
		// refunded sum below stays stable.
		locked := tx.Model(&model.Payment{}).
			Where("id = ?", paymentID).
			UpdateColumn("updated_at", time.Now())
		if locked.Error != nil {
			return locked.Error
		}
		if locked.RowsAffected == 0 {
			return ErrNotFound
		}

		var payment model.Payment
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return err
		}
		if payment.Status != model.PaymentCompleted && payment.Status != model.PaymentRefunded {
			return &ValidationError{Field: "payment_id", Reason: "only completed payments can be refunded"}
		}

		var refunded float64
		if err := tx.Model(&model.Payment{}).
			Where("parent_payment_id = ?", payment.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&refunded).Error; err != nil {
			return err
		}
		if refunded+amount > payment.Amount+moneyEpsilon {
			return &ValidationError{Field: "amount", Reason: "refund exceeds the payment's completed amount"}
		}

		refund = model.Payment{
			OrderID:         payment.OrderID,
			ParentPaymentID: &payment.ID,
			Amount:          amount,
			Method:          payment.Method,
			Status:          model.PaymentRefunded,
			TransactionRef:  uuid.New().String(),
		}
		if err := tx.Create(&refund).Error; err != nil {
			return err
		}

		if refunded+amount >= payment.Amount-moneyEpsilon {
			if err := tx.Model(&payment).Update("status", model.PaymentRefunded).Error; err != nil {
				return err
			}
		}

		completed, err := completedTotal(tx, payment.OrderID)
		if err != nil {
			return err
		}
		var allRefunds float64
		if err := tx.Model(&model.Payment{}).
			Where("order_id = ? AND parent_payment_id IS NOT NULL", payment.OrderID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&allRefunds).Error; err != nil {
			return err
		}
		if completed == 0 && allRefunds > 0 {
			return tx.Model(&model.Order{}).
				Where("id = ?", payment.OrderID).
				Update("payment_status", model.PaymentStatusRefunded).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// GetOrder loads an order with its items and payments.
func (l *Ledger) GetOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := l.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders returns a customer's orders with items, newest first.
func (l *Ledger) ListOrders(ctx context.Context, customerID uint) ([]model.Order, error) {
	var orders []model.Order
	err := l.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// completedTotal sums the completed, never-reversed payments of an
// order. Original payments flipped to refunded no longer count as
// coverage.
func completedTotal(tx *gorm.DB, orderID uint) (float64, error) {
	var total float64
	err := tx.Model(&model.Payment{}).
		Where("order_id = ? AND status = ? AND parent_payment_id IS NULL", orderID, model.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
