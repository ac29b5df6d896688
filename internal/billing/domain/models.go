// Package domain holds billing cycles and the payments recorded against them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BillingCycle is one customer's bill for one calendar month. There is at
// most one row per (customer, month, year). Regeneration recomputes
// total_amount and previous_carryover from live order data but never
// resets paid_amount.
type BillingCycle struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID        snowflake.ID    `gorm:"not null;uniqueIndex:ux_billing_cycle_period,priority:1" json:"customer_id"`
	BillingMonth      int             `gorm:"not null;uniqueIndex:ux_billing_cycle_period,priority:2" json:"billing_month"`
	BillingYear       int             `gorm:"not null;uniqueIndex:ux_billing_cycle_period,priority:3" json:"billing_year"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PreviousCarryover decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"previous_carryover"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"paid_amount"`
	RemainingBalance  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"remaining_balance"`
	IsClosed          bool            `gorm:"not null;default:false" json:"is_closed"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BillingCycle) TableName() string { return "billing_cycles" }

// Payment is an append-only record of money received against a cycle.
type Payment struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	BillingCycleID snowflake.ID    `gorm:"not null;index" json:"billing_cycle_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentDate    time.Time       `gorm:"not null" json:"payment_date"`
	PaymentMethod  string          `gorm:"not null" json:"payment_method"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedBy      snowflake.ID    `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
