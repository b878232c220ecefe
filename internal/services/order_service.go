package services

import (
	"context"
	"errors"
	"fmt"

	"TechMartAPI/internal/model"
	"TechMartAPI/internal/repository"
)

type OrderService struct {
	Repo        *repository.OrderRepository
	CartRepo    *repository.CartRepository
	ProductRepo *repository.ProductRepository
}

func NewOrderService(r *repository.OrderRepository, cr *repository.CartRepository, pr *repository.ProductRepository) *OrderService {
	return &OrderService{Repo: r, CartRepo: cr, ProductRepo: pr}
}

// Create places an order from the user's cart: order + items at current
// prices, stock decrement, cart clear, all in one transaction.
func (s *OrderService) Create(ctx context.Context, userID string) (int64, error) {
	cartID, err := s.CartRepo.GetCartID(ctx, userID)
	if err != nil {
		return 0, errors.New("cart is empty")
	}

	items, total, err := s.CartRepo.GetItems(ctx, cartID)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, errors.New("cart is empty")
	}

	tx, err := s.Repo.DB.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	orderID, err := s.Repo.CreateOrderTx(ctx, tx, userID, total)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	for _, it := range items {
		if err := s.ProductRepo.DecrementStockTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return 0, fmt.Errorf("product '%s': %w", it.Name, err)
		}
		if err := s.Repo.InsertItemTx(ctx, tx, orderID, it.ProductID, it.Quantity, it.Price); err != nil {
			return 0, fmt.Errorf("order item: %w", err)
		}
	}

	if err := s.CartRepo.ClearTx(ctx, tx, cartID); err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return orderID, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.Repo.GetOrdersByUser(ctx, userID)
}

func (s *OrderService) UpdateStatus(ctx context.Context, userID string, orderID int64, status string) error {
	if status == "" {
		return errors.New("status is required")
	}
	return s.Repo.UpdateStatus(ctx, orderID, userID, status)
}

func (s *OrderService) Delete(ctx context.Context, userID string, orderID int64) error {
	return s.Repo.Delete(ctx, orderID, userID)
}
