package domain

import (
	"context"
	"errors"
)

type CreateCustomerRequest struct {
	Name          string
	Phone         string
	Address       string
	PaymentDueDay *int
}

// UpdateCustomerRequest replaces a customer's profile wholesale: a nil
// PaymentDueDay or blank Address clears the stored value.
type UpdateCustomerRequest struct {
	Name          string
	Phone         string
	Address       string
	PaymentDueDay *int
}

type CreatePartyRequest struct {
	CustomerID string
	Name       string
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Update(ctx context.Context, id string, req UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error

	CreateParty(ctx context.Context, req CreatePartyRequest) (Party, error)
	ListParties(ctx context.Context, customerID string) ([]Party, error)
	DeleteParty(ctx context.Context, customerID, partyID string) error
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidPhone  = errors.New("invalid_phone")
	ErrInvalidDueDay = errors.New("invalid_payment_due_day")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrPartyNotFound = errors.New("party_not_found")
)
