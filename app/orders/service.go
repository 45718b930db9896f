package orders

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tokyosushibar/backend/app/payments"
	"github.com/tokyosushibar/backend/models"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "orders").Logger()

// Currency is fixed: single-currency system.
const Currency = "EUR"

// guestLabel appears in payment descriptions for unauthenticated checkouts.
const guestLabel = "Invité"

// PaymentInitiationError reports that the external payment could not be
// created; the order is never persisted in that case.
type PaymentInitiationError struct {
	Err error
}

func (e *PaymentInitiationError) Error() string {
	return fmt.Sprintf("payment initiation failed: %v", e.Err)
}

func (e *PaymentInitiationError) Unwrap() error { return e.Err }

// LineItemInput is one requested order line.
type LineItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type ProductProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type UserProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
}

// FulfillmentNotifier is the hook fired once a payment lands as paid with
// no refunds and no chargebacks. Delivery duplication is possible when the
// provider re-sends a paid callback; consumers key on the order id.
type FulfillmentNotifier interface {
	OrderPaid(ctx context.Context, order *models.Order) error
}

// NopNotifier discards fulfillment triggers. Used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) OrderPaid(context.Context, *models.Order) error { return nil }

// Config carries the URLs the payment provider redirects back to.
type Config struct {
	UIBaseURL string
}

// Service owns the order lifecycle: checkout creation with payment
// initiation, and reconciliation of asynchronous provider callbacks.
type Service struct {
	orders   OrderStore
	products ProductProvider
	users    UserProvider
	payments payments.Client
	notifier FulfillmentNotifier
	cfg      Config
}

func NewService(
	orders OrderStore,
	products ProductProvider,
	users UserProvider,
	paymentClient payments.Client,
	notifier FulfillmentNotifier,
	cfg Config,
) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		orders:   orders,
		products: products,
		users:    users,
		payments: paymentClient,
		notifier: notifier,
		cfg:      cfg,
	}
}

// CreateOrder computes the total from current catalog prices, initiates the
// external payment, and only then persists the order with its line items.
// Payment initiation is a precondition of the persistence transaction: a
// provider failure aborts with nothing written, and a persistence failure
// leaves only an unreferenced provider payment that expires on its own.
func (s *Service) CreateOrder(ctx context.Context, items []LineItemInput, userID *uuid.UUID) (*models.Order, error) {
	if len(items) == 0 {
		return nil, &models.ValidationError{Msg: "an order needs at least one line item"}
	}

	total := decimal.Zero
	rows := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, &models.ValidationError{Msg: "quantity must be at least 1"}
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Price == nil {
			return nil, &models.ValidationError{Msg: "product " + product.ID.String() + " has no price"}
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		rows = append(rows, models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
		})
	}
	total = total.Round(2)

	orderID := uuid.New()
	description := fmt.Sprintf("Client: %s | Commande n°%s", s.displayName(ctx, userID), orderID)

	payment, err := s.payments.CreatePayment(ctx, payments.CreatePaymentRequest{
		Amount:      total,
		Currency:    Currency,
		Description: description,
		RedirectURL: fmt.Sprintf("%s/order/%s/success", s.cfg.UIBaseURL, orderID),
		CancelURL:   fmt.Sprintf("%s/order/%s/cancel", s.cfg.UIBaseURL, orderID),
	})
	if err != nil {
		return nil, &PaymentInitiationError{Err: err}
	}
	if payment.CheckoutURL == "" {
		return nil, &PaymentInitiationError{Err: fmt.Errorf("provider returned no checkout URL for payment %s", payment.ID)}
	}

	order := &models.Order{
		ID:               orderID,
		Status:           models.OrderStatusOpen,
		PaymentMode:      models.PaymentModeOnline,
		MolliePaymentID:  &payment.ID,
		MolliePaymentURL: &payment.CheckoutURL,
		UserID:           userID,
	}
	if err := s.orders.Create(ctx, order, rows); err != nil {
		return nil, err
	}

	logger.Info().
		Str("order_id", orderID.String()).
		Str("payment_id", payment.ID).
		Str("total", total.StringFixed(2)).
		Msg("order created")

	return s.orders.GetByID(ctx, orderID)
}

// ReconcilePaymentStatus folds a canonical provider payment state into the
// owning order. The provider is the source of truth: the reported status
// overwrites the order status with no transition check, which also makes
// re-delivery of the same callback a no-op.
func (s *Service) ReconcilePaymentStatus(ctx context.Context, payment *payments.Payment) error {
	order, err := s.orders.GetByPaymentID(ctx, payment.ID)
	if err != nil {
		return err
	}

	status, err := models.ParseOrderStatus(payment.Status)
	if err != nil {
		return err
	}

	if order.Status != status {
		if order.Status.Terminal() {
			logger.Warn().
				Str("order_id", order.ID.String()).
				Str("from", string(order.Status)).
				Str("to", string(status)).
				Msg("provider moved an order out of a terminal status")
		}
		if err := s.orders.UpdateStatus(ctx, order.ID, status); err != nil {
			return err
		}
		order.Status = status
		logger.Info().
			Str("order_id", order.ID.String()).
			Str("status", string(status)).
			Msg("order status updated")
	}

	if payment.Paid && !payment.HasRefunds && !payment.HasChargebacks {
		if err := s.notifier.OrderPaid(ctx, order); err != nil {
			return fmt.Errorf("fulfillment trigger for order %s: %w", order.ID, err)
		}
	}
	return nil
}

// GetOrder resolves an order with its line items.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) displayName(ctx context.Context, userID *uuid.UUID) string {
	if userID == nil {
		return guestLabel
	}
	user, err := s.users.GetByID(ctx, *userID)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to resolve purchaser name")
		return guestLabel
	}
	return user.Name
}
