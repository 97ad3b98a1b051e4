package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"store-service/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and
	// serializes concurrent transactions the way Postgres row locks
	// would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Customer{},
		&model.Address{},
		&model.Product{},
		&model.Inventory{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, price float64, stock int) model.Product {
	t.Helper()

	product := model.Product{Name: "product " + sku, SKU: sku, Price: price, IsActive: true}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&model.Inventory{
		ProductID:      product.ID,
		QuantityOnHand: stock,
		ReorderLevel:   1,
	}).Error)
	return product
}

func quantityOnHand(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()

	var inv model.Inventory
	require.NoError(t, db.Where("product_id = ?", productID).First(&inv).Error)
	return inv.QuantityOnHand
}

func TestCreateOrderComputesTotals(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	widget := seedProduct(t, db, "SKU-1", 25.00, 10)
	gadget := seedProduct(t, db, "SKU-2", 99.90, 4)

	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID:   1,
		ShippingCost: 12.50,
		TaxAmount:    9.10,
		Lines: []OrderLine{
			{ProductID: widget.ID, Quantity: 3, UnitPrice: 25.00, Discount: 5.00},
			{ProductID: gadget.ID, Quantity: 1, UnitPrice: 99.90},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)

	require.Len(t, order.Items, 2)
	assert.InDelta(t, 70.00, order.Items[0].LineTotal, 1e-9) // 25*3 - 5
	assert.InDelta(t, 99.90, order.Items[1].LineTotal, 1e-9)
	assert.InDelta(t, 169.90, order.Subtotal, 1e-9)
	assert.InDelta(t, order.Subtotal+order.ShippingCost+order.TaxAmount, order.TotalAmount, 1e-9)

	// Inventory was reserved at creation time
	assert.Equal(t, 7, quantityOnHand(t, db, widget.ID))
	assert.Equal(t, 3, quantityOnHand(t, db, gadget.ID))
}

func TestOrderSchemaSetsAddressRefsNullOnDelete(t *testing.T) {
	db := newTestDB(t)

	var ddl string
	require.NoError(t, db.Raw(
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'orders'").
		Scan(&ddl).Error)
	assert.Contains(t, ddl, `REFERENCES "addresses"`)
	assert.Contains(t, ddl, "ON DELETE SET NULL")
}

func TestCreateOrderSnapshotsUnitPrice(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 10.00, 5)

	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 10.00}},
	})
	require.NoError(t, err)

	// A later catalog price change must not touch the recorded line
	require.NoError(t, db.Model(&product).Update("price", 50.00).Error)

	reloaded, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.00, reloaded.Items[0].UnitPrice, 1e-9)
	assert.InDelta(t, 10.00, reloaded.TotalAmount, 1e-9)
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 10.00, 5)

	tests := []struct {
		name  string
		input CreateOrderInput
	}{
		{
			name:  "no lines",
			input: CreateOrderInput{CustomerID: 1},
		},
		{
			name: "zero quantity",
			input: CreateOrderInput{CustomerID: 1, Lines: []OrderLine{
				{ProductID: product.ID, Quantity: 0, UnitPrice: 10},
			}},
		},
		{
			name: "negative unit price",
			input: CreateOrderInput{CustomerID: 1, Lines: []OrderLine{
				{ProductID: product.ID, Quantity: 1, UnitPrice: -1},
			}},
		},
		{
			name: "negative discount",
			input: CreateOrderInput{CustomerID: 1, Lines: []OrderLine{
				{ProductID: product.ID, Quantity: 1, UnitPrice: 10, Discount: -2},
			}},
		},
		{
			name: "discount above line amount",
			input: CreateOrderInput{CustomerID: 1, Lines: []OrderLine{
				{ProductID: product.ID, Quantity: 1, UnitPrice: 10, Discount: 11},
			}},
		},
		{
			name: "duplicate product line",
			input: CreateOrderInput{CustomerID: 1, Lines: []OrderLine{
				{ProductID: product.ID, Quantity: 1, UnitPrice: 10},
				{ProductID: product.ID, Quantity: 2, UnitPrice: 10},
			}},
		},
		{
			name: "unknown product",
			input: CreateOrderInput{CustomerID: 1, Lines: []OrderLine{
				{ProductID: 9999, Quantity: 1, UnitPrice: 10},
			}},
		},
		{
			name: "negative shipping cost",
			input: CreateOrderInput{CustomerID: 1, ShippingCost: -1, Lines: []OrderLine{
				{ProductID: product.ID, Quantity: 1, UnitPrice: 10},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.CreateOrder(ctx, tt.input)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}

	// Nothing was reserved by any rejected order
	assert.Equal(t, 5, quantityOnHand(t, db, product.ID))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 10.00, 2)

	// Ordering exactly the remaining stock succeeds
	_, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 2, UnitPrice: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, quantityOnHand(t, db, product.ID))

	// The next order finds nothing left
	_, err = l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 2,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 10}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 0, quantityOnHand(t, db, product.ID))
}

func TestCreateOrderRollsBackOnPartialFailure(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	plenty := seedProduct(t, db, "SKU-1", 10.00, 10)
	scarce := seedProduct(t, db, "SKU-2", 20.00, 1)

	_, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines: []OrderLine{
			{ProductID: plenty.ID, Quantity: 5, UnitPrice: 10},
			{ProductID: scarce.ID, Quantity: 2, UnitPrice: 20},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The first line's reservation rolled back with the transaction
	assert.Equal(t, 10, quantityOnHand(t, db, plenty.ID))
	assert.Equal(t, 1, quantityOnHand(t, db, scarce.ID))

	var orders int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestConcurrentReservationNeverOversells(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 10.00, 5)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(customer uint) {
			defer wg.Done()
			_, err := l.CreateOrder(ctx, CreateOrderInput{
				CustomerID: customer,
				Lines:      []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 10}},
			})
			results <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, ErrInsufficientStock)
			rejected++
		}
	}

	assert.Equal(t, 5, ok)
	assert.Equal(t, 3, rejected)
	assert.Equal(t, 0, quantityOnHand(t, db, product.ID))
}

func createOrderInStatus(t *testing.T, l *Ledger, db *gorm.DB, productID uint, status model.OrderStatus) *model.Order {
	t.Helper()
	ctx := context.Background()

	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: productID, Quantity: 2, UnitPrice: 10}},
	})
	require.NoError(t, err)

	path := map[model.OrderStatus][]model.OrderStatus{
		model.OrderStatusPending:    {},
		model.OrderStatusProcessing: {model.OrderStatusProcessing},
		model.OrderStatusShipped:    {model.OrderStatusProcessing, model.OrderStatusShipped},
		model.OrderStatusDelivered:  {model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusDelivered},
	}
	for _, step := range path[status] {
		order, err = l.TransitionStatus(ctx, order.ID, step)
		require.NoError(t, err)
	}
	return order
}

func TestTransitionGraph(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		from    model.OrderStatus
		to      model.OrderStatus
		allowed bool
	}{
		{model.OrderStatusPending, model.OrderStatusProcessing, true},
		{model.OrderStatusPending, model.OrderStatusCancelled, true},
		{model.OrderStatusPending, model.OrderStatusShipped, false},
		{model.OrderStatusPending, model.OrderStatusRefunded, false},
		{model.OrderStatusProcessing, model.OrderStatusShipped, true},
		{model.OrderStatusProcessing, model.OrderStatusCancelled, true},
		{model.OrderStatusProcessing, model.OrderStatusRefunded, true},
		{model.OrderStatusShipped, model.OrderStatusDelivered, true},
		{model.OrderStatusShipped, model.OrderStatusCancelled, false},
		{model.OrderStatusShipped, model.OrderStatusRefunded, true},
		{model.OrderStatusDelivered, model.OrderStatusRefunded, true},
		{model.OrderStatusDelivered, model.OrderStatusPending, false},
		{model.OrderStatusDelivered, model.OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_to_%s", tt.from, tt.to), func(t *testing.T) {
			db := newTestDB(t)
			l := New(db)
			product := seedProduct(t, db, "SKU-1", 10.00, 20)

			order := createOrderInStatus(t, l, db, product.ID, tt.from)
			updated, err := l.TransitionStatus(ctx, order.ID, tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, updated.Status)
			} else {
				require.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestCancelRestoresInventoryExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 10.00, 5)

	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 3, UnitPrice: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, quantityOnHand(t, db, product.ID))

	cancelled, err := l.TransitionStatus(ctx, order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.True(t, cancelled.InventoryReversed)
	assert.Equal(t, 5, quantityOnHand(t, db, product.ID))

	// Cancelled is terminal; a second cancel is not even a valid edge
	_, err = l.TransitionStatus(ctx, order.ID, model.OrderStatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 5, quantityOnHand(t, db, product.ID))
}

func TestReversalRejectedWhenAlreadyReversed(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 10.00, 5)
	order := createOrderInStatus(t, l, db, product.ID, model.OrderStatusProcessing)

	// Simulate a reversal that already ran for this order
	require.NoError(t, db.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Update("inventory_reversed", true).Error)

	_, err := l.TransitionStatus(ctx, order.ID, model.OrderStatusCancelled)
	require.ErrorIs(t, err, ErrAlreadyReversed)
	assert.Equal(t, 3, quantityOnHand(t, db, product.ID))
}

func TestRefundAfterDeliveryRestoresInventory(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 10.00, 5)
	order := createOrderInStatus(t, l, db, product.ID, model.OrderStatusDelivered)
	assert.Equal(t, 3, quantityOnHand(t, db, product.ID))

	refunded, err := l.TransitionStatus(ctx, order.ID, model.OrderStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRefunded, refunded.Status)
	assert.Equal(t, 5, quantityOnHand(t, db, product.ID))
}

func TestRecordPaymentFlipsStatusExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 1200.00, 5)

	// total_amount = 1200 + 100 + 58.50 = 1358.50
	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID:   1,
		ShippingCost: 100.00,
		TaxAmount:    58.50,
		Lines:        []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 1200.00}},
	})
	require.NoError(t, err)
	require.InDelta(t, 1358.50, order.TotalAmount, 1e-9)

	payment, err := l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 1358.50, Method: "card"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, payment.Status)
	assert.NotEmpty(t, payment.TransactionRef)

	paid, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, paid.PaymentStatus)

	// Any further completed payment is an overpayment
	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 0.01, Method: "card"})
	require.ErrorIs(t, err, ErrOverpayment)
}

func TestPartialPaymentsAccumulate(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 100.00, 5)
	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 2, UnitPrice: 100.00}},
	})
	require.NoError(t, err)

	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 120.00, Method: "card"})
	require.NoError(t, err)

	between, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusUnpaid, between.PaymentStatus)

	// A payment pushing the cumulative total past the order is rejected
	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 100.00, Method: "card"})
	require.ErrorIs(t, err, ErrOverpayment)

	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 80.00, Method: "card"})
	require.NoError(t, err)

	covered, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, covered.PaymentStatus)
}

func TestPendingPaymentDoesNotCountAsCoverage(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 50.00, 5)
	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 50.00}},
	})
	require.NoError(t, err)

	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{
		Amount: 50.00, Method: "card", Status: model.PaymentPending,
	})
	require.NoError(t, err)

	reloaded, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusUnpaid, reloaded.PaymentStatus)

	// The completed payment still fits: pending ones reserve nothing
	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 50.00, Method: "card"})
	require.NoError(t, err)
}

func TestRecordPaymentValidation(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 50.00, 5)
	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 50.00}},
	})
	require.NoError(t, err)

	var ve *ValidationError

	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 0, Method: "card"})
	require.ErrorAs(t, err, &ve)

	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{Amount: -5, Method: "card"})
	require.ErrorAs(t, err, &ve)

	_, err = l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 5, Method: "card", Status: "bogus"})
	require.ErrorAs(t, err, &ve)

	_, err = l.RecordPayment(ctx, 9999, PaymentInput{Amount: 5, Method: "card"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRefundPayment(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 100.00, 5)
	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 2, UnitPrice: 100.00}},
	})
	require.NoError(t, err)

	payment, err := l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 200.00, Method: "card"})
	require.NoError(t, err)

	// Refunding more than the payment is rejected
	var ve *ValidationError
	_, err = l.RefundPayment(ctx, payment.ID, 250.00)
	require.ErrorAs(t, err, &ve)

	// Partial refund keeps the original payment completed
	refund, err := l.RefundPayment(ctx, payment.ID, 50.00)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, refund.Status)
	require.NotNil(t, refund.ParentPaymentID)
	assert.Equal(t, payment.ID, *refund.ParentPaymentID)

	var original model.Payment
	require.NoError(t, db.First(&original, payment.ID).Error)
	assert.Equal(t, model.PaymentCompleted, original.Status)

	// Cumulative refunds above the original amount are rejected
	_, err = l.RefundPayment(ctx, payment.ID, 151.00)
	require.ErrorAs(t, err, &ve)

	// Refunding the rest flips the payment and the order
	_, err = l.RefundPayment(ctx, payment.ID, 150.00)
	require.NoError(t, err)

	require.NoError(t, db.First(&original, payment.ID).Error)
	assert.Equal(t, model.PaymentRefunded, original.Status)

	reloaded, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, reloaded.PaymentStatus)
}

func TestConcurrentPaymentsNeverExceedTotal(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 100.00, 5)
	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 100.00}},
	})
	require.NoError(t, err)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 25.00, Method: "card"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, ErrOverpayment)
			rejected++
		}
	}

	assert.Equal(t, 4, ok)
	assert.Equal(t, 4, rejected)

	var completed float64
	require.NoError(t, db.Model(&model.Payment{}).
		Where("order_id = ? AND status = ? AND parent_payment_id IS NULL", order.ID, model.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&completed).Error)
	assert.InDelta(t, 100.00, completed, 1e-9)

	reloaded, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, reloaded.PaymentStatus)
}

func TestConcurrentRefundsNeverExceedPayment(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 100.00, 5)
	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 100.00}},
	})
	require.NoError(t, err)

	payment, err := l.RecordPayment(ctx, order.ID, PaymentInput{Amount: 100.00, Method: "card"})
	require.NoError(t, err)

	const attempts = 6
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.RefundPayment(ctx, payment.ID, 25.00)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	}
	assert.Equal(t, 4, ok)

	var refunded float64
	require.NoError(t, db.Model(&model.Payment{}).
		Where("parent_payment_id = ?", payment.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&refunded).Error)
	assert.InDelta(t, 100.00, refunded, 1e-9)

	var original model.Payment
	require.NoError(t, db.First(&original, payment.ID).Error)
	assert.Equal(t, model.PaymentRefunded, original.Status)

	reloaded, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, reloaded.PaymentStatus)
}

func TestRefundRejectsNonCompletedPayment(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "SKU-1", 50.00, 5)
	order, err := l.CreateOrder(ctx, CreateOrderInput{
		CustomerID: 1,
		Lines:      []OrderLine{{ProductID: product.ID, Quantity: 1, UnitPrice: 50.00}},
	})
	require.NoError(t, err)

	pending, err := l.RecordPayment(ctx, order.ID, PaymentInput{
		Amount: 50.00, Method: "card", Status: model.PaymentPending,
	})
	require.NoError(t, err)

	var ve *ValidationError
	_, err = l.RefundPayment(ctx, pending.ID, 50.00)
	require.ErrorAs(t, err, &ve)
}
