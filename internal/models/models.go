package models

import "time"

// OrderStatus is the lifecycle state of an order. A staging order is the
// user's cart; finalize flips it to finalized exactly once.
type OrderStatus string

const (
	OrderStaging   OrderStatus = "staging"
	OrderFinalized OrderStatus = "finalized"
	OrderCancelled OrderStatus = "cancelled"
)

// ReceiptStatus tracks pickup of a finalized order.
type ReceiptStatus string

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptReceived  ReceiptStatus = "received"
	ReceiptCancelled ReceiptStatus = "cancelled"
)

// User represents a store account. Role is resolved at the boundary into the
// request principal; the core only needs the admin flag.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"` // admin or customer
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Product represents a catalog entry. IsActive is derived: true iff
// StockQuantity > 0, recomputed on every stock mutation.
type Product struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Price         float64   `json:"price" db:"price"`
	StockQuantity int       `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	ProductType   string    `json:"product_type" db:"product_type"` // book, ebook, other
	ImageURL      string    `json:"image_url" db:"image_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Order belongs to one user. TotalAmount stays zero until finalize computes
// it; Phone is set after finalization through the pickup-contact flow.
type Order struct {
	ID          int64       `json:"id" db:"id"`
	UserID      int64       `json:"user_id" db:"user_id"`
	Status      OrderStatus `json:"status" db:"status"`
	OrderDate   time.Time   `json:"order_date" db:"order_date"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Phone       string      `json:"phone,omitempty" db:"phone"`
}

// OrderItem is a line of an order. PricePerItem is a snapshot of the product
// price at the time the line was first added and is never re-read.
type OrderItem struct {
	ID           int64   `json:"id" db:"id"`
	OrderID      int64   `json:"order_id" db:"order_id"`
	ProductID    int64   `json:"product_id" db:"product_id"`
	Quantity     int     `json:"quantity" db:"quantity"`
	PricePerItem float64 `json:"price_per_item" db:"price_per_item"`
}

// Receipt is the 1:1 pickup-tracking companion of a finalized order.
type Receipt struct {
	OrderID     int64         `json:"order_id" db:"order_id"`
	Status      ReceiptStatus `json:"receipt_status" db:"receipt_status"`
	PaymentDate time.Time     `json:"payment_date" db:"payment_date"`
	ReceiptDate *time.Time    `json:"receipt_date,omitempty" db:"receipt_date"`
}

// CartLine is an order item joined with product display data for the cart view.
type CartLine struct {
	OrderItemID  int64   `json:"order_item_id"`
	ProductID    int64   `json:"product_id"`
	Quantity     int     `json:"quantity"`
	PricePerItem float64 `json:"price_per_item"`
	ProductName  string  `json:"product_name"`
	ProductType  string  `json:"product_type"`
	ImageURL     string  `json:"image_url"`
}

// OrderLine is an order item joined with the product's current name and stock.
// Finalize uses StockQuantity for its pre-check; detail views use the rest.
type OrderLine struct {
	OrderItemID   int64   `json:"order_item_id"`
	ProductID     int64   `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	PricePerItem  float64 `json:"price_per_item"`
	StockQuantity int     `json:"-"`
}

// OrderDetail is the aggregate returned by the order-detail and reservation
// endpoints: order metadata plus lines plus receipt state.
type OrderDetail struct {
	OrderID               int64         `json:"order_id"`
	OrderDate             time.Time     `json:"order_date"`
	TotalAmount           float64       `json:"total_amount"`
	Phone                 string        `json:"phone,omitempty"`
	ReceiptStatus         ReceiptStatus `json:"receipt_status,omitempty"`
	ReceiptDate           *time.Time    `json:"receipt_date,omitempty"`
	RepresentativeProduct string        `json:"representative_product"`
	TotalQuantity         int           `json:"total_quantity"`
	Items                 []OrderLine   `json:"items"`
}

// OrderSummary is one row of a user's finalized-order listing.
type OrderSummary struct {
	OrderID       int64         `json:"order_id"`
	OrderDate     time.Time     `json:"order_date"`
	TotalAmount   float64       `json:"total_amount"`
	Phone         string        `json:"phone,omitempty"`
	ReceiptStatus ReceiptStatus `json:"receipt_status,omitempty"`
}

// OrderStats backs the my-page widget: counts of finalized orders by pickup state.
type OrderStats struct {
	PendingPickup int `json:"pending_pickup"`
	Received      int `json:"received"`
}

// AddToCartRequest is the body of POST /api/cart.
type AddToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// UpdateQuantityRequest is the body of PUT /api/cart/item/{id}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SavePhoneRequest is the body of POST /api/save-phone.
type SavePhoneRequest struct {
	PhoneTail string `json:"phone_tail"`
}

// CompleteReceiptRequest is the body of POST /api/receipt/complete.
type CompleteReceiptRequest struct {
	OrderID int64 `json:"orderId"`
}

// UpdateProductRequest is the body of the admin PUT /api/products/{id}.
// Pointers distinguish missing fields from explicit zeros.
type UpdateProductRequest struct {
	StockQuantity *int     `json:"stock_quantity"`
	Price         *float64 `json:"price"`
}

// CartResponse is the payload of GET /api/cart.
type CartResponse struct {
	Items  []CartLine `json:"items"`
	UserID int64      `json:"user_id"`
}
