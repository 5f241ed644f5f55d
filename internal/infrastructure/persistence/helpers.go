package persistence

import (
	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"gorm.io/gorm"
)

// paginate applies the pagination window; a zero page size means no limit
func paginate(query *gorm.DB, p shared.Pagination) *gorm.DB {
	if p.PageSize <= 0 {
		return query
	}
	return query.Offset(p.Offset()).Limit(p.PageSize)
}

// versionMiss tells a missing row apart from a stale version after a
// conditional UPDATE matched nothing.
func versionMiss(tx *gorm.DB, model any, id uuid.UUID, notFound, conflict string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.NewNotFoundError(notFound)
	}
	return shared.NewDomainError(shared.CodeConcurrencyConflict, conflict)
}
