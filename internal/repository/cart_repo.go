package repository

import (
	"context"

	"TechMartAPI/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepository struct {
	DB *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{DB: db}
}

// GetCartID returns the cart id for a user. pgx.ErrNoRows when the user
// has never carted anything.
func (r *CartRepository) GetCartID(ctx context.Context, userID string) (int64, error) {
	var id int64
	query := `SELECT id FROM cart WHERE user_id=$1`
	if err := r.DB.QueryRow(ctx, query, userID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateCart creates the user's cart row and returns its id
func (r *CartRepository) CreateCart(ctx context.Context, userID string) (int64, error) {
	var id int64
	query := `INSERT INTO cart (user_id) VALUES ($1) RETURNING id`
	if err := r.DB.QueryRow(ctx, query, userID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// AddOrIncrementItem inserts or increments an item quantity for a cart
func (r *CartRepository) AddOrIncrementItem(ctx context.Context, cartID, productID int64, qty int) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`
	_, err := r.DB.Exec(ctx, query, cartID, productID, qty)
	return err
}

func (r *CartRepository) ItemExists(ctx context.Context, cartID, productID int64) (bool, error) {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM cart_items WHERE cart_id=$1 AND product_id=$2)`
	if err := r.DB.QueryRow(ctx, query, cartID, productID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// SetItemQuantity sets the exact quantity for a cart item
func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID int64, qty int) error {
	query := `UPDATE cart_items SET quantity=$1 WHERE cart_id=$2 AND product_id=$3`
	tag, err := r.DB.Exec(ctx, query, qty, cartID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, productID int64) error {
	query := `DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2`
	tag, err := r.DB.Exec(ctx, query, cartID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID)
	return err
}

// ClearTx clears the cart inside the order-placement transaction.
func (r *CartRepository) ClearTx(ctx context.Context, tx pgx.Tx, cartID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID)
	return err
}

// GetItems returns cart items joined with products, plus the running total
func (r *CartRepository) GetItems(ctx context.Context, cartID int64) ([]model.CartItem, float64, error) {
	query := `
		SELECT ci.id, ci.product_id, p.name, p.price, p.image_url, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id=$1
		ORDER BY ci.id
	`
	rows, err := r.DB.Query(ctx, query, cartID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []model.CartItem
	var total float64
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.CartItemID, &it.ProductID, &it.Name, &it.Price, &it.ImageURL, &it.Quantity); err != nil {
			return nil, 0, err
		}
		it.Subtotal = it.Price * float64(it.Quantity)
		items = append(items, it)
		total += it.Subtotal
	}
	return items, total, nil
}
