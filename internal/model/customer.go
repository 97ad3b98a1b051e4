package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a registered store customer
type Customer struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Email     string         `json:"email" gorm:"type:varchar(255);unique;not null"`
	FirstName string         `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName  string         `json:"last_name" gorm:"type:varchar(100);not null"`
	Phone     string         `json:"phone" gorm:"type:varchar(30)"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Addresses []Address `json:"addresses,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// Address is a shipping or billing address owned by a customer.
// Orders reference addresses without owning them: deleting an address
// nulls out the order references instead of failing.
type Address struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	CustomerID uint      `json:"customer_id" gorm:"index;not null"`
	Label      string    `json:"label" gorm:"type:varchar(50)"`
	Line1      string    `json:"line1" gorm:"type:varchar(255);not null"`
	Line2      string    `json:"line2" gorm:"type:varchar(255)"`
	City       string    `json:"city" gorm:"type:varchar(100);not null"`
	Region     string    `json:"region" gorm:"type:varchar(100)"`
	PostalCode string    `json:"postal_code" gorm:"type:varchar(20)"`
	Country    string    `json:"country" gorm:"type:varchar(100);not null"`
	IsDefault  bool      `json:"is_default" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
