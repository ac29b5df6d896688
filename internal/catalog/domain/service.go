package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateServiceRequest struct {
	Name  string
	Price decimal.Decimal
}

type SetCustomerPriceRequest struct {
	CustomerID string
	ServiceID  string
	Price      decimal.Decimal
}

type CatalogService interface {
	Create(ctx context.Context, req CreateServiceRequest) (Service, error)
	List(ctx context.Context) ([]Service, error)
	GetByID(ctx context.Context, id string) (Service, error)

	SetCustomerPrice(ctx context.Context, req SetCustomerPriceRequest) (CustomerServicePrice, error)
	ListCustomerPrices(ctx context.Context, customerID string) ([]CustomerServicePrice, error)
	DeleteCustomerPrice(ctx context.Context, customerID, serviceID string) error

	// EffectivePrice resolves the price charged to a customer for a
	// service: the customer's override when configured, else the base.
	EffectivePrice(ctx context.Context, customerID, serviceID snowflake.ID) (decimal.Decimal, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
