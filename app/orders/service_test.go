package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokyosushibar/backend/app/payments"
	"github.com/tokyosushibar/backend/models"
)

// --- Mocks ---

type MockProducts struct {
	products map[uuid.UUID]*models.Product
}

func (m *MockProducts) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, &models.NotFoundError{Entity: "product", ID: id.String()}
}

type MockUsers struct {
	users map[uuid.UUID]*models.User
}

func (m *MockUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, &models.NotFoundError{Entity: "user", ID: id.String()}
}

type MockOrderStore struct {
	created      map[uuid.UUID]*models.Order
	createdItems map[uuid.UUID][]models.OrderItem
	byPaymentID  map[string]*models.Order
	statusWrites []models.OrderStatus
	createErr    error
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		created:      make(map[uuid.UUID]*models.Order),
		createdItems: make(map[uuid.UUID][]models.OrderItem),
		byPaymentID:  make(map[string]*models.Order),
	}
}

func (m *MockOrderStore) Create(_ context.Context, order *models.Order, items []models.OrderItem) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created[order.ID] = order
	m.createdItems[order.ID] = items
	if order.MolliePaymentID != nil {
		m.byPaymentID[*order.MolliePaymentID] = order
	}
	return nil
}

func (m *MockOrderStore) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := m.created[id]; ok {
		return o, nil
	}
	return nil, &models.NotFoundError{Entity: "order", ID: id.String()}
}

func (m *MockOrderStore) GetByPaymentID(_ context.Context, paymentID string) (*models.Order, error) {
	if o, ok := m.byPaymentID[paymentID]; ok {
		return o, nil
	}
	return nil, &models.NotFoundError{Entity: "order", ID: paymentID}
}

func (m *MockOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) error {
	o, ok := m.created[id]
	if !ok {
		return &models.NotFoundError{Entity: "order", ID: id.String()}
	}
	o.Status = status
	m.statusWrites = append(m.statusWrites, status)
	return nil
}

type MockPaymentClient struct {
	lastRequest payments.CreatePaymentRequest
	createErr   error
	checkoutURL string
}

func (m *MockPaymentClient) CreatePayment(_ context.Context, req payments.CreatePaymentRequest) (*payments.Payment, error) {
	m.lastRequest = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &payments.Payment{
		ID:          "tr_mock_1",
		Status:      "open",
		CheckoutURL: m.checkoutURL,
	}, nil
}

func (m *MockPaymentClient) GetPayment(context.Context, string) (*payments.Payment, error) {
	return nil, errors.New("not used")
}

type MockNotifier struct {
	calls []uuid.UUID
	err   error
}

func (m *MockNotifier) OrderPaid(_ context.Context, order *models.Order) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, order.ID)
	return nil
}

// --- Fixtures ---

func testCatalog() (*MockProducts, uuid.UUID, uuid.UUID) {
	salmonID := uuid.New()
	tunaID := uuid.New()
	salmonPrice := decimal.NewFromFloat(5.60)
	tunaPrice := decimal.NewFromFloat(6.20)
	return &MockProducts{products: map[uuid.UUID]*models.Product{
		salmonID: {ID: salmonID, Price: &salmonPrice, IsActive: true},
		tunaID:   {ID: tunaID, Price: &tunaPrice, IsActive: true},
	}}, salmonID, tunaID
}

func newTestService(store *MockOrderStore, products *MockProducts, users *MockUsers, client *MockPaymentClient, notifier FulfillmentNotifier) *Service {
	if users == nil {
		users = &MockUsers{users: map[uuid.UUID]*models.User{}}
	}
	return NewService(store, products, users, client, notifier, Config{UIBaseURL: "https://shop.example"})
}

// --- Tests ---

func TestCreateOrderComputesTotalFromCatalogPrices(t *testing.T) {
	products, salmonID, tunaID := testCatalog()
	store := NewMockOrderStore()
	client := &MockPaymentClient{checkoutURL: "https://pay.example/tr_mock_1"}
	svc := newTestService(store, products, nil, client, nil)

	order, err := svc.CreateOrder(context.Background(), []LineItemInput{
		{ProductID: salmonID, Quantity: 2},
		{ProductID: tunaID, Quantity: 1},
	}, nil)
	require.NoError(t, err)

	// 5.60*2 + 6.20 = 17.40
	assert.Equal(t, "17.40", client.lastRequest.Amount.StringFixed(2))
	assert.Equal(t, "EUR", client.lastRequest.Currency)
	assert.Contains(t, client.lastRequest.Description, "Invité")
	assert.Equal(t, "https://shop.example/order/"+order.ID.String()+"/success", client.lastRequest.RedirectURL)
	assert.Equal(t, "https://shop.example/order/"+order.ID.String()+"/cancel", client.lastRequest.CancelURL)

	assert.Equal(t, models.OrderStatusOpen, order.Status)
	assert.Equal(t, models.PaymentModeOnline, order.PaymentMode)
	require.NotNil(t, order.MolliePaymentID)
	assert.Equal(t, "tr_mock_1", *order.MolliePaymentID)
	require.NotNil(t, order.MolliePaymentURL)
	assert.Equal(t, "https://pay.example/tr_mock_1", *order.MolliePaymentURL)
	assert.Nil(t, order.UserID)
	assert.Len(t, store.createdItems[order.ID], 2)
}

func TestCreateOrderUsesPurchaserNameInDescription(t *testing.T) {
	products, salmonID, _ := testCatalog()
	store := NewMockOrderStore()
	client := &MockPaymentClient{checkoutURL: "https://pay.example/x"}
	userID := uuid.New()
	users := &MockUsers{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Name: "Marie Dupont"},
	}}
	svc := newTestService(store, products, users, client, nil)

	order, err := svc.CreateOrder(context.Background(), []LineItemInput{
		{ProductID: salmonID, Quantity: 1},
	}, &userID)
	require.NoError(t, err)

	assert.Contains(t, client.lastRequest.Description, "Marie Dupont")
	assert.Contains(t, client.lastRequest.Description, order.ID.String())
	require.NotNil(t, order.UserID)
	assert.Equal(t, userID, *order.UserID)
}

func TestCreateOrderValidation(t *testing.T) {
	products, salmonID, _ := testCatalog()
	store := NewMockOrderStore()
	client := &MockPaymentClient{checkoutURL: "https://pay.example/x"}
	svc := newTestService(store, products, nil, client, nil)

	var vd *models.ValidationError

	_, err := svc.CreateOrder(context.Background(), nil, nil)
	require.ErrorAs(t, err, &vd)

	_, err = svc.CreateOrder(context.Background(), []LineItemInput{{ProductID: salmonID, Quantity: 0}}, nil)
	require.ErrorAs(t, err, &vd)

	var nf *models.NotFoundError
	_, err = svc.CreateOrder(context.Background(), []LineItemInput{{ProductID: uuid.New(), Quantity: 1}}, nil)
	require.ErrorAs(t, err, &nf)

	assert.Empty(t, store.created, "no order may be written for a rejected request")
}

func TestCreateOrderRejectsUnpricedProduct(t *testing.T) {
	unpricedID := uuid.New()
	products := &MockProducts{products: map[uuid.UUID]*models.Product{
		unpricedID: {ID: unpricedID, IsActive: true},
	}}
	store := NewMockOrderStore()
	svc := newTestService(store, products, nil, &MockPaymentClient{checkoutURL: "x"}, nil)

	_, err := svc.CreateOrder(context.Background(), []LineItemInput{{ProductID: unpricedID, Quantity: 1}}, nil)
	var vd *models.ValidationError
	require.ErrorAs(t, err, &vd)
}

func TestCreateOrderPaymentFailureWritesNothing(t *testing.T) {
	products, salmonID, _ := testCatalog()
	store := NewMockOrderStore()
	client := &MockPaymentClient{createErr: errors.New("provider down")}
	svc := newTestService(store, products, nil, client, nil)

	_, err := svc.CreateOrder(context.Background(), []LineItemInput{{ProductID: salmonID, Quantity: 1}}, nil)

	var initErr *PaymentInitiationError
	require.ErrorAs(t, err, &initErr)
	assert.Empty(t, store.created, "order must not be persisted when payment initiation fails")
}

func TestCreateOrderMissingCheckoutURL(t *testing.T) {
	products, salmonID, _ := testCatalog()
	store := NewMockOrderStore()
	client := &MockPaymentClient{checkoutURL: ""}
	svc := newTestService(store, products, nil, client, nil)

	_, err := svc.CreateOrder(context.Background(), []LineItemInput{{ProductID: salmonID, Quantity: 1}}, nil)

	var initErr *PaymentInitiationError
	require.ErrorAs(t, err, &initErr)
	assert.Empty(t, store.created)
}

func reconciledOrder(t *testing.T, store *MockOrderStore, paymentID string) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		Status:          models.OrderStatusOpen,
		PaymentMode:     models.PaymentModeOnline,
		MolliePaymentID: &paymentID,
	}
	require.NoError(t, store.Create(context.Background(), order, nil))
	return order
}

func TestReconcilePaymentStatus(t *testing.T) {
	products, _, _ := testCatalog()
	store := NewMockOrderStore()
	notifier := &MockNotifier{}
	svc := newTestService(store, products, nil, &MockPaymentClient{}, notifier)
	order := reconciledOrder(t, store, "tr_1")

	err := svc.ReconcilePaymentStatus(context.Background(), &payments.Payment{
		ID: "tr_1", Status: "paid", Paid: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, []uuid.UUID{order.ID}, notifier.calls)
}

func TestReconcileIdenticalStatusIsNoOp(t *testing.T) {
	products, _, _ := testCatalog()
	store := NewMockOrderStore()
	svc := newTestService(store, products, nil, &MockPaymentClient{}, nil)
	reconciledOrder(t, store, "tr_1")

	err := svc.ReconcilePaymentStatus(context.Background(), &payments.Payment{ID: "tr_1", Status: "open"})
	require.NoError(t, err)
	assert.Empty(t, store.statusWrites, "re-delivering the current status must not write")
}

func TestReconcileSuppressesNotificationOnRefunds(t *testing.T) {
	products, _, _ := testCatalog()

	for name, payment := range map[string]*payments.Payment{
		"refunded":     {ID: "tr_1", Status: "paid", Paid: true, HasRefunds: true},
		"chargeback":   {ID: "tr_1", Status: "paid", Paid: true, HasChargebacks: true},
		"not yet paid": {ID: "tr_1", Status: "pending"},
	} {
		t.Run(name, func(t *testing.T) {
			store := NewMockOrderStore()
			notifier := &MockNotifier{}
			svc := newTestService(store, products, nil, &MockPaymentClient{}, notifier)
			reconciledOrder(t, store, "tr_1")

			require.NoError(t, svc.ReconcilePaymentStatus(context.Background(), payment))
			assert.Empty(t, notifier.calls)
		})
	}
}

func TestReconcileOverwritesTerminalStatus(t *testing.T) {
	products, _, _ := testCatalog()
	store := NewMockOrderStore()
	svc := newTestService(store, products, nil, &MockPaymentClient{}, nil)
	order := reconciledOrder(t, store, "tr_1")
	order.Status = models.OrderStatusPaid

	// the provider stays the source of truth; a settled order is still
	// overwritten, the crossing is only logged
	err := svc.ReconcilePaymentStatus(context.Background(), &payments.Payment{ID: "tr_1", Status: "expired"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusExpired, order.Status)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusExpired}, store.statusWrites)
}

func TestReconcileUnknownPayment(t *testing.T) {
	products, _, _ := testCatalog()
	store := NewMockOrderStore()
	svc := newTestService(store, products, nil, &MockPaymentClient{}, nil)

	err := svc.ReconcilePaymentStatus(context.Background(), &payments.Payment{ID: "tr_missing", Status: "paid"})
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestReconcileUnknownStatus(t *testing.T) {
	products, _, _ := testCatalog()
	store := NewMockOrderStore()
	svc := newTestService(store, products, nil, &MockPaymentClient{}, nil)
	order := reconciledOrder(t, store, "tr_1")

	err := svc.ReconcilePaymentStatus(context.Background(), &payments.Payment{ID: "tr_1", Status: "shipped"})
	var vd *models.ValidationError
	require.ErrorAs(t, err, &vd)
	assert.Equal(t, models.OrderStatusOpen, order.Status, "unknown statuses must not overwrite")
}

func TestReconcileNotifierFailurePropagates(t *testing.T) {
	products, _, _ := testCatalog()
	store := NewMockOrderStore()
	notifier := &MockNotifier{err: errors.New("broker unavailable")}
	svc := newTestService(store, products, nil, &MockPaymentClient{}, notifier)
	order := reconciledOrder(t, store, "tr_1")

	err := svc.ReconcilePaymentStatus(context.Background(), &payments.Payment{ID: "tr_1", Status: "paid", Paid: true})
	require.Error(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status, "the status write sticks even when the trigger fails")
}
