package ledger

import (
	"context"

	"gorm.io/gorm"

	"store-service/internal/model"
)

// Guard is the single source of truth for quantity_on_hand
// adjustments. Reserve and Release take the transaction handle of the
// enclosing ledger operation so the adjustment commits or rolls back
// with the rest of the order mutation.
type Guard struct{}

// Reserve atomically checks and decrements stock for a product. The
// check rides in the WHERE clause of a single UPDATE, so two
// concurrent orders can never both take the last unit. Returns false
// without decrementing when quantity_on_hand is insufficient.
func (Guard) Reserve(tx *gorm.DB, productID uint, quantity int) (bool, error) {
	result := tx.Model(&model.Inventory{}).
		Where("product_id = ? AND quantity_on_hand >= ?", productID, quantity).
		UpdateColumn("quantity_on_hand", gorm.Expr("quantity_on_hand - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Release atomically hands reserved stock back, used when an order is
// cancelled or refunded.
func (Guard) Release(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&model.Inventory{}).
		Where("product_id = ?", productID).
		UpdateColumn("quantity_on_hand", gorm.Expr("quantity_on_hand + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Replenish adds received stock for a product outside any order and
// returns the updated inventory record.
func (l *Ledger) Replenish(ctx context.Context, productID uint, quantity int) (*model.Inventory, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	var inv model.Inventory
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.guard.Release(tx, productID, quantity); err != nil {
			return err
		}
		return tx.Where("product_id = ?", productID).First(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// LowStock lists inventory records at or below their reorder level.
func (l *Ledger) LowStock(ctx context.Context) ([]model.Inventory, error) {
	var records []model.Inventory
	err := l.db.WithContext(ctx).
		Where("quantity_on_hand <= reorder_level").
		Order("product_id").
		Find(&records).Error
	return records, err
}
