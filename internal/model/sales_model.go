package model

// DailySale is one aggregated row of the sales report.
type DailySale struct {
	SaleDate          string `json:"saleDate"` // YYYY-MM-DD
	DailyQuantitySold int64  `json:"dailyQuantitySold"`
}

// SalesReport is returned by GET /api/sales/:productId.
type SalesReport struct {
	Name             string      `json:"name"`
	QuantitySold     int64       `json:"quantitySold"`
	TotalLeftInStock int         `json:"totalLeftInStock"`
	StartDate        string      `json:"startDate"`
	EndDate          string      `json:"endDate"`
	DailySales       []DailySale `json:"dailySales"`
}
