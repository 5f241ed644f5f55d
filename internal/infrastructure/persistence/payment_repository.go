package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/escrow"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements escrow.PaymentRepository using GORM.
// Every payment write and its ledger entry share one transaction.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*escrow.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Payment not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns matching payments, newest first
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter escrow.PaymentFilter) ([]escrow.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.CounterpartID != nil {
		query = query.Where("buyer_id = ? OR seller_id = ?", *filter.CounterpartID, *filter.CounterpartID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = paginate(query.Order("created_at DESC").Order("seq DESC"), filter.Pagination)

	var rows []models.PaymentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	payments := make([]escrow.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// FindActiveByOrder returns the order's non-refunded payment
func (r *GormPaymentRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*escrow.Payment, error) {
	var model models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status <> ?", orderID, escrow.PaymentStatusRefunded).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("No active payment for order")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts the payment and its HOLD entry. The partial unique index on
// order_id rejects a second active payment even under concurrent creates.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *escrow.Payment, hold escrow.LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.PaymentModelFromDomain(payment)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewInvalidTransitionError("Order already has an active payment")
			}
			return err
		}
		return tx.Create(models.LedgerEntryModelFromDomain(hold)).Error
	})
}

// SaveWithLock updates the payment with a version check and appends entry
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *escrow.Payment, entry escrow.LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.PaymentModelFromDomain(payment)
		next := payment.Version + 1

		result := tx.Model(&models.PaymentModel{}).
			Where("id = ? AND version = ?", payment.ID, payment.Version).
			Updates(map[string]any{
				"status":     m.Status,
				"settled_by": m.SettledBy,
				"settled_at": m.SettledAt,
				"updated_at": m.UpdatedAt,
				"version":    next,
			})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return shared.NewInvalidTransitionError("Order already has an active payment")
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return versionMiss(tx, &models.PaymentModel{}, payment.ID, "Payment not found",
				"The payment has been modified by another process")
		}

		if err := tx.Create(models.LedgerEntryModelFromDomain(entry)).Error; err != nil {
			return err
		}

		payment.Version = next
		return nil
	})
}

// EntriesByPayment returns the payment's ledger entries in write order
func (r *GormPaymentRepository) EntriesByPayment(ctx context.Context, paymentID uuid.UUID) ([]escrow.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]escrow.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormPaymentRepository implements escrow.PaymentRepository
var _ escrow.PaymentRepository = (*GormPaymentRepository)(nil)
