package model

import "time"

// Order status values as stored in orders.status.
const (
	OrderPendingPayment = "PendingPayment"
	OrderPaid           = "Paid"
	OrderFailed         = "Failed"
)

type Order struct {
	OrderID     int64       `json:"id"`
	UserID      string      `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	PaymentRef  *string     `json:"payment_ref,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	OrderItemID int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"` // unit price at order time
}
