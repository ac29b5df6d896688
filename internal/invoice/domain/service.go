// Package domain defines the printable document operations.
package domain

import (
	"context"
	"errors"
	"time"
)

// DocumentRequest filters the orders included in a printable document.
// Empty fields include everything.
type DocumentRequest struct {
	CustomerID string
	CreatedBy  string
	From       *time.Time
	To         *time.Time
}

// Service renders printable documents on demand. Nothing is persisted;
// each call re-reads live order data.
type Service interface {
	// CreatorInvoice renders one section per creator, nested by customer.
	CreatorInvoice(ctx context.Context, req DocumentRequest) (string, error)
	// CustomerInvoice renders one section per customer, nested by creator.
	CustomerInvoice(ctx context.Context, req DocumentRequest) (string, error)
	// CreatorCustomerInvoice renders one flat section per (creator, customer) pair.
	CreatorCustomerInvoice(ctx context.Context, req DocumentRequest) (string, error)
	// MonthlyReport renders a customer's trailing twelve months of orders.
	MonthlyReport(ctx context.Context, customerID string) (string, error)
	// CustomerStatementPDF renders the customer's current-month statement.
	CustomerStatementPDF(ctx context.Context, customerID string) ([]byte, error)
}

var (
	ErrNoCurrentCycle = errors.New("no_current_billing_cycle")
)
