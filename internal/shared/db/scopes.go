package db

import (
	"gorm.io/gorm"
)

// KeysetAfter pages on the primary key: rows with id greater than lastID, ascending, at most limit.
// Callers re-evaluate their predicate on every page, so rows that leave the result set between
// pages never shift the cursor.
func KeysetAfter(column string, lastID int64, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" > ?", lastID).Order(column + " ASC").Limit(limit)
	}
}

// Paginate applies classic offset paging for admin listings.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
