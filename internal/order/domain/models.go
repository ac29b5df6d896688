// Package domain holds order records and their grouped read views.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Order is a single recorded job. Orders are immutable after creation;
// corrections are made by recording a new order, never by editing.
type Order struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	PartyID    *snowflake.ID `gorm:"index" json:"party_id,omitempty"`
	ServiceID  snowflake.ID  `gorm:"not null;index" json:"service_id"`
	Quantity   int           `gorm:"not null" json:"quantity"`
	CreatedBy  snowflake.ID  `gorm:"not null;index" json:"created_by"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// Row is an order enriched with display names and the effective price,
// which is the customer's override when one exists, else the service's
// base price.
type Row struct {
	ID           snowflake.ID    `json:"id"`
	CustomerID   snowflake.ID    `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	PartyID      *snowflake.ID   `json:"party_id,omitempty"`
	PartyName    *string         `json:"party_name,omitempty"`
	ServiceID    snowflake.ID    `json:"service_id"`
	ServiceName  string          `json:"service_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	CreatedBy    snowflake.ID    `json:"created_by"`
	CreatorName  string          `json:"creator_name"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CustomerGroup aggregates one customer's orders.
type CustomerGroup struct {
	CustomerID   snowflake.ID    `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	OrderCount   int             `json:"order_count"`
	Orders       []Row           `json:"orders"`
}

// CreatorGroup aggregates one creator's orders.
type CreatorGroup struct {
	CreatorID   snowflake.ID    `json:"creator_id"`
	CreatorName string          `json:"creator_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderCount  int             `json:"order_count"`
	Orders      []Row           `json:"orders"`
}

// CreatorCustomerGroup aggregates orders for one (creator, customer) pair.
type CreatorCustomerGroup struct {
	CreatorID    snowflake.ID    `json:"creator_id"`
	CreatorName  string          `json:"creator_name"`
	CustomerID   snowflake.ID    `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	OrderCount   int             `json:"order_count"`
	Orders       []Row           `json:"orders"`
}
