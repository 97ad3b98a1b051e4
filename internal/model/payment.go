package model

import (
	"time"
)

type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentCompleted PaymentState = "completed"
	PaymentFailed    PaymentState = "failed"
	PaymentRefunded  PaymentState = "refunded"
)

// Valid reports whether s is one of the closed set of payment states.
func (s PaymentState) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment records one payment or refund attempt against an order. An
// order may carry any number of payments (partial payments, retries
// after failure, refunds). Refund records point at the payment they
// reverse via ParentPaymentID.
type Payment struct {
	ID              uint         `json:"id" gorm:"primarykey"`
	OrderID         uint         `json:"order_id" gorm:"index;not null"`
	ParentPaymentID *uint        `json:"parent_payment_id,omitempty" gorm:"index"`
	Amount          float64      `json:"amount" gorm:"not null"`
	Method          string       `json:"method" gorm:"type:varchar(50);not null"`
	Status          PaymentState `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	TransactionRef  string       `json:"transaction_ref" gorm:"type:varchar(100);unique;not null"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
