package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// SharedHelpers groups query helpers used by several repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// allowed sort columns per entity, everything else falls back to created_at
var sortableColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"title":        true,
	"difficulty":   true,
	"score":        true,
	"completed_at": true,
	"start_date":   true,
}

// ApplyPaginationAndSort applies validated sorting and pagination to a query.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	column := "created_at"
	if sortableColumns[sortBy] {
		column = sortBy
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
