package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product master data
type Product struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	SKU         string         `json:"sku" gorm:"type:varchar(100);unique;not null"`
	Price       float64        `json:"price" gorm:"not null"`
	CostPrice   *float64       `json:"cost_price,omitempty"`
	CategoryID  *uint          `json:"category_id,omitempty" gorm:"index"`
	SupplierID  *uint          `json:"supplier_id,omitempty" gorm:"index"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// ProductCategory represents product categories. Categories form a
// tree via ParentID; the catalog package validates acyclicity before
// any parent change is persisted.
type ProductCategory struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug        string         `json:"slug" gorm:"type:varchar(100);unique;not null"`
	Description string         `json:"description" gorm:"type:text"`
	ParentID    *uint          `json:"parent_id,omitempty" gorm:"index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Supplier represents a product supplier
type Supplier struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Name         string    `json:"name" gorm:"type:varchar(255);unique;not null"`
	ContactEmail string    `json:"contact_email" gorm:"type:varchar(255)"`
	Phone        string    `json:"phone" gorm:"type:varchar(30)"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Inventory holds the stock level for a product. Exactly one row
// exists per product; quantity_on_hand never goes negative because
// every adjustment runs through the ledger's inventory guard.
type Inventory struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	ProductID      uint      `json:"product_id" gorm:"uniqueIndex;not null"`
	QuantityOnHand int       `json:"quantity_on_hand" gorm:"not null;default:0"`
	ReorderLevel   int       `json:"reorder_level" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
