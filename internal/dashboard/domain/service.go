// Package domain defines the dashboard read models.
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Stats is the headline view across all recorded orders.
type Stats struct {
	Revenue           decimal.Decimal `json:"revenue"`
	OrderCount        int             `json:"order_count"`
	DistinctCustomers int             `json:"distinct_customers"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// ChartPoint is one calendar day of revenue and order volume.
type ChartPoint struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

type Service interface {
	Stats(ctx context.Context) (Stats, error)
	// ChartData returns one point per day over the trailing window,
	// oldest first. days <= 0 selects the default 30-day window.
	ChartData(ctx context.Context, days int) ([]ChartPoint, error)
}
