package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RecordPaymentRequest struct {
	BillingCycleID string
	Amount         decimal.Decimal
	PaymentMethod  string
	Notes          string
	PaymentDate    time.Time
	CreatedBy      snowflake.ID
}

// GenerateResult reports one generation run.
type GenerateResult struct {
	Month          int `json:"month"`
	Year           int `json:"year"`
	CyclesUpserted int `json:"cycles_upserted"`
}

// Summary is the cross-customer receivables position.
type Summary struct {
	TotalBilled      decimal.Decimal `json:"total_billed"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OpenCycles       int             `json:"open_cycles"`
	OverdueCycles    int             `json:"overdue_cycles"`
	Aging            []AgingTotal    `json:"aging"`
}

// AgingTotal buckets outstanding balances by cycle age.
type AgingTotal struct {
	Label       string          `json:"label"`
	Cycles      int             `json:"cycles"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// CycleRow is a billing cycle joined with its customer for list views.
type CycleRow struct {
	BillingCycle
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// MonthlyOrderTotal is one (year, month) bucket of a customer's trailing
// twelve months of orders, priced with the customer's effective prices.
type MonthlyOrderTotal struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	OrderCount  int             `json:"order_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type Service interface {
	// GenerateMonthlyBills upserts one cycle per customer for the given
	// month, carrying forward each customer's previous remaining balance.
	GenerateMonthlyBills(ctx context.Context, month, year int) (GenerateResult, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (Payment, error)
	Summary(ctx context.Context) (Summary, error)
	CurrentMonthBills(ctx context.Context) ([]CycleRow, error)
	// ListCycles returns the full cycle history across all customers,
	// newest period first.
	ListCycles(ctx context.Context) ([]CycleRow, error)
	ListPayments(ctx context.Context, billingCycleID string) ([]Payment, error)
	CustomerMonthlyOrders(ctx context.Context, customerID string) ([]MonthlyOrderTotal, error)
}

var (
	ErrInvalidPeriod        = errors.New("invalid_period")
	ErrInvalidID            = errors.New("invalid_id")
	ErrCycleNotFound        = errors.New("billing_cycle_not_found")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrAmountExceedsBalance = errors.New("amount_exceeds_balance")
	ErrCycleClosed          = errors.New("billing_cycle_closed")
)
