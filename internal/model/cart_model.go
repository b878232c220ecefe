package model

// CartItem is what the API exposes (joined with products)
type CartItem struct {
	CartItemID int64   `json:"id"`
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	ImageURL   *string `json:"image_url,omitempty"`
	Quantity   int     `json:"quantity"`
	Subtotal   float64 `json:"subtotal"`
}

// CartResponse is returned when calling GET /api/cart
type CartResponse struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}
