package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/escrow"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment domain entity.
// The partial unique index allows at most one non-refunded payment per order.
type PaymentModel struct {
	AggregateModel
	OrderID               uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_payments_active_order,where:status <> 'REFUNDED'"`
	BuyerID               uuid.UUID            `gorm:"type:uuid;not null;index"`
	SellerID              uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount                decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Method                escrow.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status                escrow.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	EscrowReleaseDeadline time.Time            `gorm:"not null"`
	SettledBy             string               `gorm:"type:varchar(50)"`
	SettledAt             *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *escrow.Payment {
	return &escrow.Payment{
		BaseAggregateRoot:     m.root(),
		OrderID:               m.OrderID,
		BuyerID:               m.BuyerID,
		SellerID:              m.SellerID,
		Amount:                m.Amount,
		Method:                m.Method,
		Status:                m.Status,
		EscrowReleaseDeadline: m.EscrowReleaseDeadline,
		SettledBy:             m.SettledBy,
		SettledAt:             m.SettledAt,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *escrow.Payment) {
	m.setRoot(p.BaseAggregateRoot)
	m.OrderID = p.OrderID
	m.BuyerID = p.BuyerID
	m.SellerID = p.SellerID
	m.Amount = p.Amount
	m.Method = p.Method
	m.Status = p.Status
	m.EscrowReleaseDeadline = p.EscrowReleaseDeadline
	m.SettledBy = p.SettledBy
	m.SettledAt = p.SettledAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *escrow.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// LedgerEntryModel is the append-only escrow audit row.
// Seq preserves write order when entries share a timestamp.
type LedgerEntryModel struct {
	Seq       uint             `gorm:"primaryKey;autoIncrement"`
	ID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	PaymentID uuid.UUID        `gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Kind      escrow.EntryKind `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Cause     string           `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "escrow_ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry.
func (m *LedgerEntryModel) ToDomain() escrow.LedgerEntry {
	return escrow.LedgerEntry{
		ID:        m.ID,
		PaymentID: m.PaymentID,
		OrderID:   m.OrderID,
		Kind:      m.Kind,
		Amount:    m.Amount,
		Cause:     m.Cause,
		CreatedAt: m.CreatedAt,
	}
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry.
func LedgerEntryModelFromDomain(e escrow.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:        e.ID,
		PaymentID: e.PaymentID,
		OrderID:   e.OrderID,
		Kind:      e.Kind,
		Amount:    e.Amount,
		Cause:     e.Cause,
		CreatedAt: e.CreatedAt.UTC(),
	}
}
