package escrow

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/escrow"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest represents a buyer paying for an order into escrow
type CreatePaymentRequest struct {
	OrderID uuid.UUID       `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Method  string          `json:"method" binding:"required,payment_method"`
}

// PaymentQuery represents the filters accepted when listing payments
type PaymentQuery struct {
	OrderID       string `form:"order_id" binding:"omitempty,uuid"`
	CounterpartID string `form:"counterpart_id" binding:"omitempty,uuid"`
	Status        string `form:"status" binding:"omitempty,oneof=PENDING HELD RELEASED REFUNDED"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToFilter converts the query into a repository filter
func (q PaymentQuery) ToFilter() escrow.PaymentFilter {
	f := escrow.PaymentFilter{
		OrderID:       optionalID(q.OrderID),
		CounterpartID: optionalID(q.CounterpartID),
		Status:        escrow.PaymentStatus(q.Status),
	}
	f.Page = q.Page
	f.PageSize = q.PageSize
	return f
}

// optionalID parses an already-validated id filter; empty means "any"
func optionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                    uuid.UUID       `json:"id"`
	OrderID               uuid.UUID       `json:"order_id"`
	BuyerID               uuid.UUID       `json:"buyer_id"`
	SellerID              uuid.UUID       `json:"seller_id"`
	Amount                decimal.Decimal `json:"amount"`
	Method                string          `json:"method"`
	Status                string          `json:"status"`
	EscrowReleaseDeadline time.Time       `json:"escrow_release_deadline"`
	SettledBy             string          `json:"settled_by,omitempty"`
	SettledAt             *time.Time      `json:"settled_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	Version               int             `json:"version"`
}

// LedgerEntryResponse represents one escrow audit record
type LedgerEntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Cause     string          `json:"cause"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *escrow.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                    p.ID,
		OrderID:               p.OrderID,
		BuyerID:               p.BuyerID,
		SellerID:              p.SellerID,
		Amount:                p.Amount,
		Method:                string(p.Method),
		Status:                string(p.Status),
		EscrowReleaseDeadline: p.EscrowReleaseDeadline,
		SettledBy:             p.SettledBy,
		SettledAt:             p.SettledAt,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
		Version:               p.Version,
	}
}

// ToPaymentResponses converts a slice of domain Payments
func ToPaymentResponses(payments []escrow.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// ToLedgerEntryResponses converts ledger entries
func ToLedgerEntryResponses(entries []escrow.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = LedgerEntryResponse{
			ID:        e.ID,
			PaymentID: e.PaymentID,
			OrderID:   e.OrderID,
			Kind:      string(e.Kind),
			Amount:    e.Amount,
			Cause:     e.Cause,
			CreatedAt: e.CreatedAt,
		}
	}
	return responses
}
