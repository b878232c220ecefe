package repository

import (
	"context"

	"TechMartAPI/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SalesRepository struct {
	DB *pgxpool.Pool
}

func NewSalesRepository(db *pgxpool.Pool) *SalesRepository {
	return &SalesRepository{DB: db}
}

// GetProductSummary returns the product name and remaining stock.
func (r *SalesRepository) GetProductSummary(ctx context.Context, productID int64) (string, int, error) {
	var name string
	var stock int
	query := `SELECT name, quantity FROM products WHERE id=$1`
	if err := r.DB.QueryRow(ctx, query, productID).Scan(&name, &stock); err != nil {
		return "", 0, model.ErrProductNotFound
	}
	return name, stock, nil
}

// TotalQuantitySold sums units sold for a product across the date range
// (inclusive on both ends).
func (r *SalesRepository) TotalQuantitySold(ctx context.Context, productID int64, startDate, endDate string) (int64, error) {
	var total int64
	query := `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE oi.product_id = $1
		  AND o.created_at >= $2::date
		  AND o.created_at < $3::date + INTERVAL '1 day'
	`
	if err := r.DB.QueryRow(ctx, query, productID, startDate, endDate).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// DailySales returns per-day aggregated units sold, ordered by date.
// Days with no sales produce no row.
func (r *SalesRepository) DailySales(ctx context.Context, productID int64, startDate, endDate string) ([]model.DailySale, error) {
	query := `
		SELECT to_char(o.created_at::date, 'YYYY-MM-DD') AS sale_date,
		       COALESCE(SUM(oi.quantity), 0) AS daily_quantity_sold
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE oi.product_id = $1
		  AND o.created_at::date >= $2::date
		  AND o.created_at::date <= $3::date
		GROUP BY o.created_at::date
		ORDER BY o.created_at::date
	`
	rows, err := r.DB.Query(ctx, query, productID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []model.DailySale{}
	for rows.Next() {
		var d model.DailySale
		if err := rows.Scan(&d.SaleDate, &d.DailyQuantitySold); err != nil {
			return nil, err
		}
		sales = append(sales, d)
	}
	return sales, nil
}
