package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// Valid reports whether s is one of the closed set of order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

type OrderPaymentStatus string

const (
	PaymentStatusUnpaid   OrderPaymentStatus = "unpaid"
	PaymentStatusPaid     OrderPaymentStatus = "paid"
	PaymentStatusRefunded OrderPaymentStatus = "refunded"
	PaymentStatusFailed   OrderPaymentStatus = "failed"
)

// Order is the order header. Monetary invariant, enforced by the
// ledger on every write: TotalAmount == Subtotal + ShippingCost + TaxAmount.
type Order struct {
	ID                uint               `json:"id" gorm:"primarykey"`
	CustomerID        uint               `json:"customer_id" gorm:"index;not null"`
	BillingAddressID  *uint              `json:"billing_address_id,omitempty"`
	ShippingAddressID *uint              `json:"shipping_address_id,omitempty"`
	Status            OrderStatus        `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus     OrderPaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null;default:'unpaid'"`
	Subtotal          float64            `json:"subtotal" gorm:"not null"`
	ShippingCost      float64            `json:"shipping_cost" gorm:"not null;default:0"`
	TaxAmount         float64            `json:"tax_amount" gorm:"not null;default:0"`
	TotalAmount       float64            `json:"total_amount" gorm:"not null"`
	InventoryReversed bool               `json:"inventory_reversed" gorm:"not null;default:false"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`

	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments []Payment   `json:"payments,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	// Address references carry ON DELETE SET NULL into the schema;
	// the address handler also nulls them so the rule holds without
	// native FK behavior.
	BillingAddress  *Address `json:"-" gorm:"foreignKey:BillingAddressID;constraint:OnDelete:SET NULL"`
	ShippingAddress *Address `json:"-" gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:SET NULL"`
}

// OrderItem is one product line within an order. UnitPrice is
// snapshotted at order time and never re-reads the product. Invariant:
// LineTotal == UnitPrice*Quantity - Discount.
type OrderItem struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	OrderID   uint      `json:"order_id" gorm:"not null;uniqueIndex:ux_order_items_order_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:ux_order_items_order_product"`
	UnitPrice float64   `json:"unit_price" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Discount  float64   `json:"discount" gorm:"not null;default:0"`
	LineTotal float64   `json:"line_total" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
