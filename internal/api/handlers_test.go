package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusbooks/bookstore-go-app/internal/models"
	"github.com/campusbooks/bookstore-go-app/internal/services"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/campusbooks/bookstore-go-app/pkg/config"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *mux.Router
	store  *store.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	st := store.NewMemory()
	app := NewApp(
		&config.Config{},
		nil,
		log,
		nil,
		services.NewCartService(st, log, nil),
		services.NewOrderService(st, log, nil),
		services.NewProductService(st, log, nil),
		services.NewReceiptService(st, log, nil),
	)
	router := mux.NewRouter()
	app.SetupRoutes(router)
	return &testEnv{router: router, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, userID int64, admin bool, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID > 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", userID))
	}
	if admin {
		req.Header.Set("X-User-Role", "admin")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, "GET", "/health", 0, false, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/cart", 0, false, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "POST", "/api/cart", 0, false, models.AddToCartRequest{ProductID: 1, Quantity: 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	p := env.store.AddProduct(models.Product{Name: "Calculus I", Price: 45.00, StockQuantity: 10})

	// Add to cart.
	rec := env.do(t, "POST", "/api/cart", 1, false, models.AddToCartRequest{ProductID: p.ID, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// View cart.
	rec = env.do(t, "GET", "/api/cart", 1, false, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[models.CartResponse](t, rec)
	assert.Equal(t, int64(1), cart.UserID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Checkout.
	rec = env.do(t, "POST", "/api/complete-order", 1, false, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checkout := decode[struct {
		Success bool  `json:"success"`
		OrderID int64 `json:"orderId"`
	}](t, rec)
	assert.True(t, checkout.Success)
	require.NotZero(t, checkout.OrderID)

	// Attach phone.
	rec = env.do(t, "POST", "/api/save-phone", 1, false, models.SavePhoneRequest{PhoneTail: "1234"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Detail, via both route aliases.
	for _, path := range []string{
		fmt.Sprintf("/api/order-details/%d", checkout.OrderID),
		fmt.Sprintf("/api/reservation/%d", checkout.OrderID),
	} {
		rec = env.do(t, "GET", path, 1, false, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		detail := decode[models.OrderDetail](t, rec)
		assert.Equal(t, checkout.OrderID, detail.OrderID)
		assert.Equal(t, "Calculus I", detail.RepresentativeProduct)
		assert.Equal(t, "1234", detail.Phone)
		assert.Equal(t, models.ReceiptPending, detail.ReceiptStatus)
	}

	// Staff marks pickup; no principal header.
	rec = env.do(t, "POST", "/api/receipt/complete", 0, false, models.CompleteReceiptRequest{OrderID: checkout.OrderID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Stats reflect the pickup.
	rec = env.do(t, "GET", "/api/order-stats", 1, false, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.OrderStats](t, rec)
	assert.Equal(t, 0, stats.PendingPickup)
	assert.Equal(t, 1, stats.Received)

	// Reservation listing.
	rec = env.do(t, "GET", "/api/reservation", 1, false, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]models.OrderSummary](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, models.ReceiptReceived, listed[0].ReceiptStatus)
}

func TestCompleteOrderWithoutCart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/complete-order", 1, false, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteOrderInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	p := env.store.AddProduct(models.Product{Name: "Out of Print", Price: 12.00, StockQuantity: 0})

	rec := env.do(t, "POST", "/api/cart", 1, false, models.AddToCartRequest{ProductID: p.ID, Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "POST", "/api/complete-order", 1, false, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Contains(t, body["message"], "Out of Print")
	assert.Contains(t, body["message"], "0 available")
}

func TestUpdateCartItemOwnership(t *testing.T) {
	env := newTestEnv(t)
	p := env.store.AddProduct(models.Product{Name: "Calculus I", Price: 45.00, StockQuantity: 10})

	rec := env.do(t, "POST", "/api/cart", 1, false, models.AddToCartRequest{ProductID: p.ID, Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "GET", "/api/cart", 1, false, nil)
	cart := decode[models.CartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	itemID := cart.Items[0].OrderItemID

	// Another user cannot touch the line.
	rec = env.do(t, "PUT", fmt.Sprintf("/api/cart/item/%d", itemID), 2, false, models.UpdateQuantityRequest{Quantity: 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, "DELETE", fmt.Sprintf("/api/cart/item/%d", itemID), 2, false, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner can.
	rec = env.do(t, "PUT", fmt.Sprintf("/api/cart/item/%d", itemID), 1, false, models.UpdateQuantityRequest{Quantity: 5})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, "DELETE", fmt.Sprintf("/api/cart/item/%d", itemID), 1, false, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSavePhoneWithoutCompletedOrder(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/save-phone", 1, false, models.SavePhoneRequest{PhoneTail: "1234"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderDetailNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/order-details/42", 1, false, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReceiptCompleteValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/receipt/complete", 0, false, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	p := env.store.AddProduct(models.Product{Name: "Calculus I", Price: 45.00, StockQuantity: 10})

	stock, price := 20, 50.00
	body := models.UpdateProductRequest{StockQuantity: &stock, Price: &price}

	rec := env.do(t, "PUT", fmt.Sprintf("/api/products/%d", p.ID), 1, false, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, "PUT", fmt.Sprintf("/api/products/%d", p.ID), 1, true, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := env.store.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.StockQuantity)
	assert.Equal(t, 50.00, got.Price)
}

func TestUpdateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	p := env.store.AddProduct(models.Product{Name: "Calculus I", Price: 45.00, StockQuantity: 10})

	// Missing fields.
	rec := env.do(t, "PUT", fmt.Sprintf("/api/products/%d", p.ID), 1, true, map[string]any{"price": 50.00})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Negative values.
	stock, price := -1, 50.00
	rec = env.do(t, "PUT", fmt.Sprintf("/api/products/%d", p.ID), 1, true, models.UpdateProductRequest{StockQuantity: &stock, Price: &price})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown product.
	stock = 5
	rec = env.do(t, "PUT", "/api/products/999", 1, true, models.UpdateProductRequest{StockQuantity: &stock, Price: &price})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
