package model

import (
	"time"
)

// Review is a customer review of a product, one per (product, customer).
type Review struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	ProductID  uint      `json:"product_id" gorm:"not null;uniqueIndex:ux_reviews_product_customer"`
	CustomerID uint      `json:"customer_id" gorm:"not null;uniqueIndex:ux_reviews_product_customer"`
	Rating     int       `json:"rating" gorm:"not null"`
	Title      string    `json:"title" gorm:"type:varchar(255)"`
	Body       string    `json:"body" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Wishlist is a named collection of products saved by a customer.
type Wishlist struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	CustomerID uint      `json:"customer_id" gorm:"index;not null"`
	Name       string    `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Items []WishlistItem `json:"items,omitempty" gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
}

// WishlistItem links a product into a wishlist, at most once.
type WishlistItem struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	WishlistID uint      `json:"wishlist_id" gorm:"not null;uniqueIndex:ux_wishlist_items_list_product"`
	ProductID  uint      `json:"product_id" gorm:"not null;uniqueIndex:ux_wishlist_items_list_product"`
	CreatedAt  time.Time `json:"created_at"`
}
