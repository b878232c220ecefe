package repository

import (
	"context"
	"errors"
	"time"

	"TechMartAPI/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

// List returns all products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	query := `SELECT id, name, description, price, quantity, image_url, created_by, created_at
			FROM products
			ORDER BY created_at DESC`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.ImageURL, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	query := `SELECT id, name, description, price, quantity, image_url, created_by, created_at
			FROM products
			WHERE id=$1`
	if err := r.DB.QueryRow(ctx, query, id).Scan(&p.ProductID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.ImageURL, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, model.ErrProductNotFound
	}
	return &p, nil
}

// Create inserts a new product and returns the created id
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (int64, error) {
	var id int64
	query := `INSERT INTO products (name, description, price, quantity, image_url, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`
	if err := r.DB.QueryRow(ctx, query, p.Name, p.Description, p.Price, p.Quantity, p.ImageURL, p.CreatedBy, time.Now()).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ProductRepository) Update(ctx context.Context, id int64, name, description string, price float64, quantity int, imageURL *string) error {
	query := `UPDATE products SET name=$1, description=$2, price=$3, quantity=$4, image_url=$5 WHERE id=$6`
	tag, err := r.DB.Exec(ctx, query, name, description, price, quantity, imageURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// HasStock reports whether the product exists with at least qty units left.
func (r *ProductRepository) HasStock(ctx context.Context, productID int64, qty int) (bool, error) {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1 AND quantity >= $2)`
	if err := r.DB.QueryRow(ctx, query, productID, qty).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// DecrementStockTx reduces stock inside the order-placement transaction.
// The quantity guard makes the decrement fail instead of going negative.
func (r *ProductRepository) DecrementStockTx(ctx context.Context, tx pgx.Tx, productID int64, qty int) error {
	tag, err := tx.Exec(ctx, `UPDATE products SET quantity = quantity - $2 WHERE id=$1 AND quantity >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("insufficient stock")
	}
	return nil
}
