package option

import (
	"strconv"

	"github.com/smallbiznis/opsdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithOrder(order string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if order == "" {
			return db
		}
		return db.Order(order)
	})
}

// ApplyPagination applies cursor pagination over the given snowflake ID
// column: rows strictly older than the cursor, fetching one extra row so
// callers can detect a next page.
func ApplyPagination(column string, page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil && cursor != nil {
				if id, err := strconv.ParseInt(cursor.ID, 10, 64); err == nil {
					db = db.Where(column+" < ?", id)
				}
			}
		}
		return db.Limit(page.Limit() + 1)
	})
}
