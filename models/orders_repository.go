package models

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{db: db}
}

// Create persists the order and its line items atomically. The caller
// initiates the external payment first; this only runs once a checkout
// reference exists.
func (r *OrdersRepository) Create(ctx context.Context, order *Order, items []OrderItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mapWriteError("create order", err)
	}
	return nil
}

func (r *OrdersRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Translations").
		Preload("User")
}

func (r *OrdersRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	if err := r.preloaded(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "order", ID: id.String()}
		}
		return nil, &QueryError{Op: "get order", Err: err}
	}
	return &order, nil
}

// GetByPaymentID resolves the order owning an external payment reference.
func (r *OrdersRepository) GetByPaymentID(ctx context.Context, paymentID string) (*Order, error) {
	var order Order
	err := r.preloaded(ctx).First(&order, "mollie_payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "order", ID: paymentID}
		}
		return nil, &QueryError{Op: "get order by payment id", Err: err}
	}
	return &order, nil
}

// UpdateStatus overwrites the order status. Provider callbacks are the only
// writer, so re-applying the current status is a harmless no-op.
func (r *OrdersRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return &QueryError{Op: "update order status", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "order", ID: id.String()}
	}
	return nil
}
