package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/campusbooks/bookstore-go-app/internal/db"
	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/campusbooks/bookstore-go-app/internal/middleware"
	"github.com/campusbooks/bookstore-go-app/internal/models"
	"github.com/campusbooks/bookstore-go-app/internal/services"
	"github.com/campusbooks/bookstore-go-app/pkg/config"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// App holds application dependencies
type App struct {
	config         *config.Config
	db             *db.DB
	log            *logrus.Logger
	metrics        *metrics.AppMetrics
	cartService    *services.CartService
	orderService   *services.OrderService
	productService *services.ProductService
	receiptService *services.ReceiptService
}

// NewApp creates a new application instance
func NewApp(
	cfg *config.Config,
	database *db.DB,
	log *logrus.Logger,
	m *metrics.AppMetrics,
	cs *services.CartService,
	os *services.OrderService,
	ps *services.ProductService,
	rs *services.ReceiptService,
) *App {
	return &App{
		config:         cfg,
		db:             database,
		log:            log,
		metrics:        m,
		cartService:    cs,
		orderService:   os,
		productService: ps,
		receiptService: rs,
	}
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.RecoveryMiddleware(a.log))
	r.Use(middleware.MetricsMiddleware(a.metrics, a.log))

	// Health
	r.HandleFunc("/health", a.HealthHandler).Methods("GET")

	// Mark-received is staff-facing and carries no user principal.
	r.HandleFunc("/api/receipt/complete", a.CompleteReceiptHandler).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(a.log))

	// Cart
	api.HandleFunc("/cart", a.AddToCartHandler).Methods("POST")
	api.HandleFunc("/cart", a.ViewCartHandler).Methods("GET")
	api.HandleFunc("/cart/item/{id}", a.UpdateQuantityHandler).Methods("PUT")
	api.HandleFunc("/cart/item/{id}", a.RemoveItemHandler).Methods("DELETE")

	// Orders
	api.HandleFunc("/complete-order", a.CompleteOrderHandler).Methods("POST")
	api.HandleFunc("/save-phone", a.SavePhoneHandler).Methods("POST")
	api.HandleFunc("/order-details/{id}", a.OrderDetailHandler).Methods("GET")
	api.HandleFunc("/reservation/{id:[0-9]+}", a.OrderDetailHandler).Methods("GET")
	api.HandleFunc("/reservation", a.ListReservationsHandler).Methods("GET")
	api.HandleFunc("/order-stats", a.OrderStatsHandler).Methods("GET")

	// Admin
	api.HandleFunc("/products/{id}", a.UpdateProductHandler).Methods("PUT")
}

// HealthHandler handles health check requests
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// AddToCartHandler handles POST /api/cart
func (a *App) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == 0 {
		writeMessage(w, http.StatusBadRequest, "product_id is required")
		return
	}

	if _, err := a.cartService.AddToCart(r.Context(), p.UserID, req.ProductID, req.Quantity); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "added to cart")
}

// ViewCartHandler handles GET /api/cart
func (a *App) ViewCartHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := a.cartService.ViewCart(r.Context(), p.UserID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CartResponse{Items: items, UserID: p.UserID})
}

// UpdateQuantityHandler handles PUT /api/cart/item/{id}
func (a *App) UpdateQuantityHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	itemID, err := parsePathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var req models.UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.cartService.UpdateQuantity(r.Context(), p.UserID, itemID, req.Quantity); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "quantity updated")
}

// RemoveItemHandler handles DELETE /api/cart/item/{id}
func (a *App) RemoveItemHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	itemID, err := parsePathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	if err := a.cartService.RemoveItem(r.Context(), p.UserID, itemID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "item removed")
}

// CompleteOrderHandler handles POST /api/complete-order
func (a *App) CompleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := a.orderService.Finalize(r.Context(), p.UserID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orderId": orderID})
}

// SavePhoneHandler handles POST /api/save-phone
func (a *App) SavePhoneHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.SavePhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	orderID, err := a.orderService.AttachPickupContact(r.Context(), p.UserID, req.PhoneTail)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orderId": orderID})
}

// CompleteReceiptHandler handles POST /api/receipt/complete
func (a *App) CompleteReceiptHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.receiptService.MarkReceived(r.Context(), req.OrderID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "receipt completed"})
}

// OrderDetailHandler handles GET /api/order-details/{id} and GET /api/reservation/{id}
func (a *App) OrderDetailHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := parsePathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	detail, err := a.orderService.GetOrderDetail(r.Context(), orderID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListReservationsHandler handles GET /api/reservation
func (a *App) ListReservationsHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := a.orderService.ListUserOrders(r.Context(), p.UserID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// OrderStatsHandler handles GET /api/order-stats
func (a *App) OrderStatsHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := a.orderService.OrderStats(r.Context(), p.UserID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UpdateProductHandler handles PUT /api/products/{id} (admin only)
func (a *App) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.FromContext(r.Context())
	if !ok || !p.Admin {
		writeMessage(w, http.StatusForbidden, "admin access required")
		return
	}

	productID, err := parsePathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req models.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StockQuantity == nil || req.Price == nil {
		writeMessage(w, http.StatusBadRequest, "stock_quantity and price must be numbers")
		return
	}

	if err := a.productService.SetStockAndPrice(r.Context(), productID, *req.StockQuantity, *req.Price); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// writeError maps service errors onto status codes and a JSON body.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *services.ValidationError
		se *services.InsufficientStockError
	)
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &se):
		writeMessage(w, http.StatusBadRequest, se.Error())
	case errors.Is(err, services.ErrNoActiveOrder):
		writeMessage(w, http.StatusBadRequest, "no active order")
	case errors.Is(err, services.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrNoCompletedOrder):
		writeMessage(w, http.StatusNotFound, "no completed order")
	default:
		a.log.Errorf("Request %s %s failed: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func parsePathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
