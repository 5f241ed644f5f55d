package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// BaseModel holds the identity and audit columns every table has.
// Seq breaks ties between rows created at the same instant.
type BaseModel struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement"`
	ID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic lock column of products, orders and
// payments. Repositories update a row only while its version still matches
// the one that was loaded.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Version:    m.Version,
	}
}

// setRoot copies identity and version from a, storing timestamps in UTC.
func (m *AggregateModel) setRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt.UTC()
	m.UpdatedAt = a.UpdatedAt.UTC()
	m.Version = a.Version
}

// All returns every model for migration
func All() []any {
	return []any{
		&ProductModel{},
		&OrderModel{},
		&PaymentModel{},
		&LedgerEntryModel{},
		&NotificationModel{},
	}
}
