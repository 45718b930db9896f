package models

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, name, email string) User {
	t.Helper()

	u := User{ID: uuid.New(), Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestOrdersCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrdersRepository(db)

	user := seedUser(t, db, "Jean", "jean@example.com")
	salmon := seedProduct(t, db, strPtr("A1"), "Saumon", "Salmon")
	tuna := seedProduct(t, db, strPtr("A2"), "Thon", "Tuna")

	paymentID := "tr_test_123"
	checkout := "https://pay.example/tr_test_123"
	order := &Order{
		ID:               uuid.New(),
		Status:           OrderStatusOpen,
		PaymentMode:      PaymentModeOnline,
		MolliePaymentID:  &paymentID,
		MolliePaymentURL: &checkout,
		UserID:           &user.ID,
	}
	items := []OrderItem{
		{ProductID: salmon.ID, Quantity: 2},
		{ProductID: tuna.ID, Quantity: 1},
	}
	require.NoError(t, repo.Create(context.Background(), order, items))

	got, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOpen, got.Status)
	require.NotNil(t, got.User)
	assert.Equal(t, "Jean", got.User.Name)
	require.Len(t, got.Items, 2)
	assert.NotEmpty(t, got.Items[0].Product.Translations)
}

func TestOrdersGetByPaymentID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrdersRepository(db)

	paymentID := "tr_lookup"
	order := &Order{
		ID:              uuid.New(),
		Status:          OrderStatusOpen,
		PaymentMode:     PaymentModeOnline,
		MolliePaymentID: &paymentID,
	}
	require.NoError(t, repo.Create(context.Background(), order, nil))

	got, err := repo.GetByPaymentID(context.Background(), "tr_lookup")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = repo.GetByPaymentID(context.Background(), "tr_unknown")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestOrdersDuplicatePaymentID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrdersRepository(db)

	paymentID := "tr_dup"
	first := &Order{ID: uuid.New(), Status: OrderStatusOpen, PaymentMode: PaymentModeOnline, MolliePaymentID: &paymentID}
	require.NoError(t, repo.Create(context.Background(), first, nil))

	second := &Order{ID: uuid.New(), Status: OrderStatusOpen, PaymentMode: PaymentModeOnline, MolliePaymentID: &paymentID}
	err := repo.Create(context.Background(), second, nil)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestOrdersUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrdersRepository(db)

	order := &Order{ID: uuid.New(), Status: OrderStatusOpen, PaymentMode: PaymentModeOnline}
	require.NoError(t, repo.Create(context.Background(), order, nil))

	require.NoError(t, repo.UpdateStatus(context.Background(), order.ID, OrderStatusPaid))

	got, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPaid, got.Status)

	err = repo.UpdateStatus(context.Background(), uuid.New(), OrderStatusPaid)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPaid, OrderStatusCanceled, OrderStatusExpired, OrderStatusFailed} {
		assert.True(t, s.Terminal(), string(s))
	}
	for _, s := range []OrderStatus{OrderStatusOpen, OrderStatusPending, OrderStatusAuthorized} {
		assert.False(t, s.Terminal(), string(s))
	}
}

func TestParseOrderStatus(t *testing.T) {
	for raw, want := range map[string]OrderStatus{
		"paid":      OrderStatusPaid,
		"OPEN":      OrderStatusOpen,
		"canceled":  OrderStatusCanceled,
		"cancelled": OrderStatusCanceled,
		"expired":   OrderStatusExpired,
	} {
		got, err := ParseOrderStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseOrderStatus("shipped")
	var vd *ValidationError
	require.ErrorAs(t, err, &vd)
}
