// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role controls access to administrative actions.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a system user account (admin or worker).
type User struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Email         string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash  *string      `gorm:"type:text" json:"-"`
	Role          Role         `gorm:"type:text;not null;default:'user'" json:"role"`
	ContactNumber *string      `gorm:"type:text" json:"contact_number,omitempty"`
	Address       *string      `gorm:"type:text" json:"address,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               snowflake.ID      `gorm:"primaryKey"`
	UserID           snowflake.ID      `gorm:"column:user_id;not null;index"`
	SessionTokenHash string            `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string            `gorm:"column:user_agent;type:text"`
	IPAddress        string            `gorm:"column:ip_address;type:text"`
	Metadata         datatypes.JSONMap `gorm:"column:metadata"`
	ExpiresAt        time.Time         `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time        `gorm:"column:revoked_at"`
	CreatedAt        time.Time         `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time         `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// IsAdmin reports whether the user may perform administrative actions.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
