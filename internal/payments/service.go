package payments

import (
	"context"

	"github.com/karobar-pay/karobar_pay/internal/payout"
)

// Service exposes payment queries for the platform API.
type Service struct {
	repo Repository
}

// NewService constructs a payment service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of the merchant's payments.
func (s *Service) List(ctx context.Context, merchantID string, page, limit int, status payout.Status) (Page, error) {
	return s.repo.List(ctx, merchantID, page, limit, status)
}

// StatusInquiry re-checks a single transaction by reference.
// Re-issuing the same inquiry returns the same answer for an unchanged
// transaction, so polling is safe.
func (s *Service) StatusInquiry(ctx context.Context, transactionRef, provider string) (InquiryResult, error) {
	p, err := s.repo.FindByRef(ctx, transactionRef)
	if err != nil {
		return InquiryResult{}, err
	}
	if provider != "" && p.Provider != provider {
		return InquiryResult{}, ErrNotFound
	}
	return InquiryResult{
		TransactionRef: p.TransactionRef,
		Provider:       p.Provider,
		Status:         p.Status,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Fee:            p.Fee,
		FailureReason:  p.FailureReason,
	}, nil
}
