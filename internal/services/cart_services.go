package services

import (
	"context"
	"errors"

	"TechMartAPI/internal/model"
	"TechMartAPI/internal/repository"
)

type CartService struct {
	Repo        *repository.CartRepository
	ProductRepo *repository.ProductRepository
}

func NewCartService(r *repository.CartRepository, pr *repository.ProductRepository) *CartService {
	return &CartService{Repo: r, ProductRepo: pr}
}

// Add puts qty units of a product into the user's cart, creating the
// cart on first use and incrementing the quantity when the product is
// already in it.
func (s *CartService) Add(ctx context.Context, userID string, productID int64, qty int) error {
	if qty <= 0 {
		qty = 1
	}

	ok, err := s.ProductRepo.HasStock(ctx, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("product not available in requested quantity")
	}

	cartID, err := s.Repo.GetCartID(ctx, userID)
	if err != nil {
		cartID, err = s.Repo.CreateCart(ctx, userID)
		if err != nil {
			return err
		}
	}

	return s.Repo.AddOrIncrementItem(ctx, cartID, productID, qty)
}

// Get returns the cart (items + total). A user without a cart gets an
// empty one.
func (s *CartService) Get(ctx context.Context, userID string) (*model.CartResponse, error) {
	cartID, err := s.Repo.GetCartID(ctx, userID)
	if err != nil {
		return &model.CartResponse{Items: []model.CartItem{}, Total: 0}, nil
	}
	items, total, err := s.Repo.GetItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return &model.CartResponse{Items: items, Total: total}, nil
}

// Update sets the quantity for a product in the cart. A quantity of zero
// or less removes the item.
func (s *CartService) Update(ctx context.Context, userID string, productID int64, qty int) error {
	cartID, err := s.Repo.GetCartID(ctx, userID)
	if err != nil {
		return model.ErrCartItemNotFound
	}
	if qty <= 0 {
		return s.Repo.RemoveItem(ctx, cartID, productID)
	}
	return s.Repo.SetItemQuantity(ctx, cartID, productID, qty)
}

// Remove removes one product from the cart
func (s *CartService) Remove(ctx context.Context, userID string, productID int64) error {
	cartID, err := s.Repo.GetCartID(ctx, userID)
	if err != nil {
		return model.ErrCartNotFound
	}
	return s.Repo.RemoveItem(ctx, cartID, productID)
}

// Clear removes all items from the cart
func (s *CartService) Clear(ctx context.Context, userID string) error {
	cartID, err := s.Repo.GetCartID(ctx, userID)
	if err != nil {
		return model.ErrCartNotFound
	}
	return s.Repo.Clear(ctx, cartID)
}
