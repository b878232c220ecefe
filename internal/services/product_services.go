package services

import (
	"context"
	"errors"

	"TechMartAPI/internal/model"
	"TechMartAPI/internal/repository"
)

const maxProductPrice = 999999.99

type ProductService struct {
	Repo *repository.ProductRepository
}

func NewProductService(r *repository.ProductRepository) *ProductService {
	return &ProductService{Repo: r}
}

func (s *ProductService) validate(name string, price float64, quantity int) error {
	if name == "" {
		return errors.New("name is required")
	}
	if price <= 0 || price > maxProductPrice {
		return errors.New("invalid price: must be between 0 and 999,999.99")
	}
	if quantity < 0 {
		return errors.New("invalid quantity: must be 0 or greater")
	}
	return nil
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.Repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	return s.Repo.GetByID(ctx, id)
}

// Create adds a product; createdBy is the admin's account id.
func (s *ProductService) Create(ctx context.Context, name, description string, price float64, quantity int, imageURL *string, createdBy string) (int64, error) {
	if err := s.validate(name, price, quantity); err != nil {
		return 0, err
	}
	p := &model.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		ImageURL:    imageURL,
		CreatedBy:   createdBy,
	}
	return s.Repo.Create(ctx, p)
}

func (s *ProductService) Update(ctx context.Context, id int64, name, description string, price float64, quantity int, imageURL *string) error {
	if err := s.validate(name, price, quantity); err != nil {
		return err
	}
	return s.Repo.Update(ctx, id, name, description, price, quantity, imageURL)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}
