// Package domain contains the service catalog and per-customer pricing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Service is a billable offering with a base price.
type Service struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Service) TableName() string { return "services" }

// CustomerServicePrice overrides a service's base price for one customer.
// At most one override exists per (customer, service) pair, and it takes
// precedence over the base price in every monetary computation.
type CustomerServicePrice struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_customer_service,priority:1" json:"customer_id"`
	ServiceID  snowflake.ID    `gorm:"not null;uniqueIndex:ux_customer_service,priority:2" json:"service_id"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CustomerServicePrice) TableName() string { return "customer_service_prices" }
