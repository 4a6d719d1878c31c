package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/config"
	"github.com/papershack/storefront-orders-service/internal/errs"
	"github.com/papershack/storefront-orders-service/internal/models"
	"github.com/papershack/storefront-orders-service/internal/service"
)

type fakeCatalog struct{}

func (fakeCatalog) FindByID(ctx context.Context, id string) (*models.Product, error) {
	if id != "A" {
		return nil, nil
	}
	return &models.Product{ID: "A", Title: "Birth Chart Reading", Price: decimal.NewFromFloat(10.00)}, nil
}

type fakeGateway struct {
	record *models.AuthorizationRecord
}

func (g *fakeGateway) CreateAuthorization(ctx context.Context, amountMinorUnits int64, metadata map[string]string) (*models.AuthorizationRecord, error) {
	return &models.AuthorizationRecord{
		ID:               "auth_test",
		Status:           models.AuthorizationPending,
		AmountMinorUnits: amountMinorUnits,
		CreatedAt:        time.Now(),
	}, nil
}

func (g *fakeGateway) Retrieve(ctx context.Context, id string) (*models.AuthorizationRecord, error) {
	return g.record, nil
}

type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func (s *fakeStore) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.AuthorizationID]; ok {
		return nil, errs.ErrDuplicateAuthorization
	}
	order.ID = "ord_test"
	order.CreatedAt = time.Now()
	s.orders[order.AuthorizationID] = order
	return order, nil
}

func (s *fakeStore) FindByAuthorizationID(ctx context.Context, authorizationID string) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[authorizationID]; ok {
		return []*models.Order{order}, nil
	}
	return nil, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, errs.ErrNotFound
}

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, to, subject, body string) error { return nil }

type fixedMarketing struct{ status int }

func (m fixedMarketing) UpsertContact(ctx context.Context, email string) (int, error) {
	return m.status, nil
}

func newTestRouter(gateway *fakeGateway, marketingStatus int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	workflow := service.NewOrderWorkflow(
		service.NewCartValidator(fakeCatalog{}, zap.NewNop()),
		gateway,
		&fakeStore{orders: make(map[string]*models.Order)},
		nil,
		noopNotifier{},
		fixedMarketing{status: marketingStatus},
		nil,
		config.FeatureFlags{},
		zap.NewNop(),
	)

	h := NewHandlers(workflow, zap.NewNop())

	r := gin.New()
	r.POST("/api/v1/payments/authorize", h.CreateAuthorization)
	r.POST("/api/v1/orders/confirm", h.ConfirmOrder)
	r.GET("/api/v1/orders/:id", h.GetOrder)
	r.POST("/api/v1/contacts", h.CreateContact)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAuthorizationHandler(t *testing.T) {
	r := newTestRouter(&fakeGateway{}, http.StatusAccepted)

	w := doJSON(r, http.MethodPost, "/api/v1/payments/authorize", gin.H{
		"cart": []gin.H{{"product_id": "A", "quantity": 2}},
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var record models.AuthorizationRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, int64(2000), record.AmountMinorUnits)
}

func TestCreateAuthorizationHandler_InvalidItem(t *testing.T) {
	r := newTestRouter(&fakeGateway{}, http.StatusAccepted)

	w := doJSON(r, http.MethodPost, "/api/v1/payments/authorize", gin.H{
		"cart": []gin.H{{"product_id": "missing", "quantity": 1}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_cart_item", resp["error"])
}

func TestCreateAuthorizationHandler_MalformedBody(t *testing.T) {
	r := newTestRouter(&fakeGateway{}, http.StatusAccepted)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/authorize", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAuthorizationHandler_ZeroQuantityRejected(t *testing.T) {
	r := newTestRouter(&fakeGateway{}, http.StatusAccepted)

	w := doJSON(r, http.MethodPost, "/api/v1/payments/authorize", gin.H{
		"cart": []gin.H{{"product_id": "A", "quantity": 0}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmOrderHandler(t *testing.T) {
	gateway := &fakeGateway{record: &models.AuthorizationRecord{
		ID:               "auth_test",
		Status:           models.AuthorizationSucceeded,
		AmountMinorUnits: 2000,
	}}
	r := newTestRouter(gateway, http.StatusAccepted)

	body := gin.H{
		"authorization_id": "auth_test",
		"customer_name":    "Ada",
		"customer_email":   "ada@example.com",
		"cart":             []gin.H{{"product_id": "A", "quantity": 2}},
	}

	w := doJSON(r, http.MethodPost, "/api/v1/orders/confirm", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "auth_test", order.AuthorizationID)
	assert.Equal(t, int64(2000), order.TotalMinorUnits)

	// A straight retry of the same confirmation is a 402 duplicate.
	w = doJSON(r, http.MethodPost, "/api/v1/orders/confirm", body)
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "duplicate_authorization", resp["error"])
}

func TestConfirmOrderHandler_PaymentNotCollected(t *testing.T) {
	gateway := &fakeGateway{record: &models.AuthorizationRecord{
		ID:               "auth_test",
		Status:           models.AuthorizationPending,
		AmountMinorUnits: 2000,
	}}
	r := newTestRouter(gateway, http.StatusAccepted)

	w := doJSON(r, http.MethodPost, "/api/v1/orders/confirm", gin.H{
		"authorization_id": "auth_test",
		"customer_name":    "Ada",
		"customer_email":   "ada@example.com",
		"cart":             []gin.H{{"product_id": "A", "quantity": 2}},
	})

	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "payment_not_collected", resp["error"])
}

func TestConfirmOrderHandler_AmountMismatch(t *testing.T) {
	gateway := &fakeGateway{record: &models.AuthorizationRecord{
		ID:               "auth_test",
		Status:           models.AuthorizationSucceeded,
		AmountMinorUnits: 1500,
	}}
	r := newTestRouter(gateway, http.StatusAccepted)

	w := doJSON(r, http.MethodPost, "/api/v1/orders/confirm", gin.H{
		"authorization_id": "auth_test",
		"customer_name":    "Ada",
		"customer_email":   "ada@example.com",
		"cart":             []gin.H{{"product_id": "A", "quantity": 2}},
	})

	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "amount_mismatch", resp["error"])
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	r := newTestRouter(&fakeGateway{}, http.StatusAccepted)

	w := doJSON(r, http.MethodGet, "/api/v1/orders/ord_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateContactHandler_ForwardsProviderStatus(t *testing.T) {
	r := newTestRouter(&fakeGateway{}, http.StatusAccepted)

	w := doJSON(r, http.MethodPost, "/api/v1/contacts", gin.H{"email": "ada@example.com"})
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestCreateContactHandler_BadEmail(t *testing.T) {
	r := newTestRouter(&fakeGateway{}, http.StatusAccepted)

	w := doJSON(r, http.MethodPost, "/api/v1/contacts", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
