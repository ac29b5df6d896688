package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/opsdesk/pkg/db/pagination"
)

type CreateOrderRequest struct {
	CustomerID string
	PartyID    string
	ServiceID  string
	Quantity   int
	CreatedBy  snowflake.ID
}

// ListOrdersRequest filters the enriched order listing. Zero values mean
// no filtering on that field.
type ListOrdersRequest struct {
	CustomerID string
	CreatedBy  string
	From       *time.Time
	To         *time.Time
	Page       pagination.Pagination
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Row, error)
	// ListRecent returns one page of orders, newest first.
	ListRecent(ctx context.Context, req ListOrdersRequest) ([]Row, *pagination.PageInfo, error)
	GetByID(ctx context.Context, id string) (Row, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrPartyNotFound    = errors.New("party_not_found")
	ErrServiceNotFound  = errors.New("service_not_found")
	ErrNotFound         = errors.New("not_found")
)
