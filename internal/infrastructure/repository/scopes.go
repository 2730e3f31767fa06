package repository

import (
	"github.com/reancirl/coffee-erp-sub000/pkg/pagination"
	"gorm.io/gorm"
)

// Paginate applies offset and limit from validated page params
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// BusinessDateBetween limits rows to an inclusive YYYY-MM-DD range. Empty bounds are open.
func BusinessDateBetween(from, to string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != "" {
			db = db.Where("business_date >= ?", from)
		}
		if to != "" {
			db = db.Where("business_date <= ?", to)
		}
		return db
	}
}
