package repository

import (
	"context"
	"time"

	"TechMartAPI/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

// CreateOrderTx inserts the order row inside the placement transaction.
func (r *OrderRepository) CreateOrderTx(ctx context.Context, tx pgx.Tx, userID string, total float64) (int64, error) {
	var id int64
	query := `INSERT INTO orders (user_id, total_amount, status, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`
	if err := tx.QueryRow(ctx, query, userID, total, model.OrderPendingPayment, time.Now()).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *OrderRepository) InsertItemTx(ctx context.Context, tx pgx.Tx, orderID, productID int64, qty int, price float64) error {
	query := `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`
	_, err := tx.Exec(ctx, query, orderID, productID, qty, price)
	return err
}

// GetOrdersByUser returns the user's orders, newest first, items included.
func (r *OrderRepository) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT id, user_id, total_amount, status, payment_ref, created_at
			FROM orders
			WHERE user_id=$1
			ORDER BY id DESC`
	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.OrderID, &o.UserID, &o.TotalAmount, &o.Status, &o.PaymentRef, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	rows.Close()

	for i := range out {
		items, err := r.GetItems(ctx, out[i].OrderID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *OrderRepository) GetItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id=$1
		ORDER BY oi.id
	`
	rows, err := r.DB.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.OrderItemID, &it.OrderID, &it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, orderID int64) (*model.Order, error) {
	var o model.Order
	query := `SELECT id, user_id, total_amount, status, payment_ref, created_at FROM orders WHERE id=$1`
	if err := r.DB.QueryRow(ctx, query, orderID).Scan(&o.OrderID, &o.UserID, &o.TotalAmount, &o.Status, &o.PaymentRef, &o.CreatedAt); err != nil {
		return nil, model.ErrOrderNotFound
	}
	return &o, nil
}

// UpdateStatus changes the status of the caller's own order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, userID, status string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2 AND user_id=$3`, status, orderID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// Delete removes the caller's order and its items.
func (r *OrderRepository) Delete(ctx context.Context, orderID int64, userID string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1 AND user_id=$2`, orderID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) MarkPaidTx(ctx context.Context, tx pgx.Tx, orderID int64) error {
	_, err := tx.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, model.OrderPaid, orderID)
	return err
}

func (r *OrderRepository) MarkFailedTx(ctx context.Context, tx pgx.Tx, orderID int64) error {
	_, err := tx.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, model.OrderFailed, orderID)
	return err
}
