package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/VictorAvelar/mollie-api-go/v4/mollie"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest describes a payment to initiate with the provider.
type CreatePaymentRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	RedirectURL string
	CancelURL   string
}

// Payment is the provider-neutral view of an external payment.
type Payment struct {
	ID             string
	Status         string
	CheckoutURL    string
	Paid           bool
	HasRefunds     bool
	HasChargebacks bool
}

// Client is the payment provider contract. It is injected so tests can
// substitute a fake and so the Mollie client stays a long-lived dependency
// instead of a per-request construction.
type Client interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// MollieClient implements Client against the Mollie API. The API token is
// read from MOLLIE_API_TOKEN per the SDK convention.
type MollieClient struct {
	client  *mollie.Client
	timeout time.Duration
}

func NewMollieClient(timeout time.Duration) (*MollieClient, error) {
	config := mollie.NewConfig(true, mollie.APITokenEnv)
	client, err := mollie.NewClient(nil, config)
	if err != nil {
		return nil, fmt.Errorf("init mollie client: %w", err)
	}
	return &MollieClient{client: client, timeout: timeout}, nil
}

func (c *MollieClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, payment, err := c.client.Payments.Create(ctx, mollie.CreatePayment{
		Amount: &mollie.Amount{
			Currency: req.Currency,
			Value:    req.Amount.StringFixed(2),
		},
		Description: req.Description,
		RedirectURL: req.RedirectURL,
		CancelURL:   req.CancelURL,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create mollie payment: %w", err)
	}
	return fromMollie(payment), nil
}

func (c *MollieClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, payment, err := c.client.Payments.Get(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("get mollie payment %s: %w", id, err)
	}
	return fromMollie(payment), nil
}

func fromMollie(p *mollie.Payment) *Payment {
	out := &Payment{
		ID:             p.ID,
		Status:         string(p.Status),
		Paid:           p.PaidAt != nil,
		HasRefunds:     nonZero(p.AmountRefunded),
		HasChargebacks: nonZero(p.AmountChargedBack),
	}
	if p.Links.Checkout != nil {
		out.CheckoutURL = p.Links.Checkout.Href
	}
	return out
}

func nonZero(a *mollie.Amount) bool {
	if a == nil || a.Value == "" {
		return false
	}
	d, err := decimal.NewFromString(a.Value)
	return err == nil && !d.IsZero()
}
