package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is a billed account. PaymentDueDay, when set, is the day of
// month the customer's bill falls due.
type Customer struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"not null" json:"name"`
	Phone         string       `gorm:"not null" json:"phone"`
	Address       *string      `gorm:"type:text" json:"address,omitempty"`
	PaymentDueDay *int         `gorm:"column:payment_due_day" json:"payment_due_day,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// Party is a sub-entity of a customer (a branch or site) that an order
// can be attributed to for finer-grained billing grouping.
type Party struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Name       string       `gorm:"not null" json:"name"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Party) TableName() string { return "parties" }
