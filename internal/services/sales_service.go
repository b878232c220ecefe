package services

import (
	"context"
	"errors"
	"time"

	"TechMartAPI/internal/model"
	"TechMartAPI/internal/repository"
)

var (
	ErrMissingDates    = errors.New("start date and end date are required")
	ErrBadDateFormat   = errors.New("invalid date format, expected YYYY-MM-DD")
)

type SalesService struct {
	Repo *repository.SalesRepository
}

func NewSalesService(r *repository.SalesRepository) *SalesService {
	return &SalesService{Repo: r}
}

// GetSalesDetails aggregates sales for one product over a date range.
// Days with no sales simply have no row; nothing synthetic is appended.
func (s *SalesService) GetSalesDetails(ctx context.Context, productID int64, startDate, endDate string) (*model.SalesReport, error) {
	if startDate == "" || endDate == "" {
		return nil, ErrMissingDates
	}
	if _, err := time.Parse("2006-01-02", startDate); err != nil {
		return nil, ErrBadDateFormat
	}
	if _, err := time.Parse("2006-01-02", endDate); err != nil {
		return nil, ErrBadDateFormat
	}

	name, stock, err := s.Repo.GetProductSummary(ctx, productID)
	if err != nil {
		return nil, model.ErrProductNotFound
	}

	total, err := s.Repo.TotalQuantitySold(ctx, productID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily, err := s.Repo.DailySales(ctx, productID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	return &model.SalesReport{
		Name:             name,
		QuantitySold:     total,
		TotalLeftInStock: stock,
		StartDate:        startDate,
		EndDate:          endDate,
		DailySales:       daily,
	}, nil
}
