package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus mirrors the payment provider's payment lifecycle. An order is
// created OPEN and only moves through provider callbacks; PAID, CANCELED,
// EXPIRED and FAILED are terminal.
type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "OPEN"
	OrderStatusCanceled   OrderStatus = "CANCELED"
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusAuthorized OrderStatus = "AUTHORIZED"
	OrderStatusExpired    OrderStatus = "EXPIRED"
	OrderStatusFailed     OrderStatus = "FAILED"
	OrderStatusPaid       OrderStatus = "PAID"
)

// Terminal reports whether no further provider callback can change the status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusCanceled, OrderStatusExpired, OrderStatusFailed:
		return true
	}
	return false
}

// ParseOrderStatus normalizes a provider-reported status string to the
// internal enum. Mollie spells "canceled" but other integrations report
// "cancelled"; both map to CANCELED.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	normalized := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if normalized == "CANCELLED" {
		normalized = OrderStatusCanceled
	}
	switch normalized {
	case OrderStatusOpen, OrderStatusCanceled, OrderStatusPending,
		OrderStatusAuthorized, OrderStatusExpired, OrderStatusFailed, OrderStatusPaid:
		return normalized, nil
	}
	return "", &ValidationError{Msg: "unknown payment status: " + raw}
}

// PaymentMode records how the order is settled.
type PaymentMode string

const PaymentModeOnline PaymentMode = "ONLINE"

// Order is created at checkout initiation together with its line items.
// The Mollie columns are nullable so further provider integrations can add
// their own reference pair.
type Order struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Status      OrderStatus `gorm:"size:16;not null;default:OPEN"`
	PaymentMode PaymentMode `gorm:"size:16;not null"`

	MolliePaymentID  *string `gorm:"uniqueIndex"`
	MolliePaymentURL *string

	UserID *uuid.UUID `gorm:"type:uuid;index"`
	User   *User      `gorm:"foreignKey:UserID"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderItem is the order/product pivot carrying the ordered quantity.
type OrderItem struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int       `gorm:"not null"`

	Product Product `gorm:"foreignKey:ProductID"`
}

func (i *OrderItem) TableName() string {
	return "order_product"
}
