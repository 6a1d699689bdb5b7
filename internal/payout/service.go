package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/wallet"
)

const defaultCurrency = "PKR"

// Service owns the platform-side payout lifecycle: PIN verification,
// balance holds, and status transitions.
type Service struct {
	repo    Repository
	wallets wallet.Repository
	ids     *identity.Service
}

// NewService constructs a payout service.
func NewService(repo Repository, wallets wallet.Repository, ids *identity.Service) *Service {
	return &Service{repo: repo, wallets: wallets, ids: ids}
}

// CreateInput captures a merchant's payout instruction.
type CreateInput struct {
	MerchantID     string
	Amount         int64
	BankAccountID  string
	Description    string
	TransactionPIN string
}

// Create verifies the transaction PIN, holds the amount on the wallet,
// and records a PENDING payout.
func (s *Service) Create(ctx context.Context, input CreateInput) (Payout, error) {
	if input.Amount <= 0 {
		return Payout{}, fmt.Errorf("amount must be positive")
	}
	if input.BankAccountID == "" {
		return Payout{}, fmt.Errorf("bank account is required")
	}

	if err := s.ids.VerifyTransactionPIN(ctx, input.MerchantID, input.TransactionPIN); err != nil {
		return Payout{}, err
	}

	if _, err := s.wallets.Hold(ctx, input.MerchantID, input.Amount); err != nil {
		return Payout{}, err
	}

	now := time.Now().UTC()
	p := Payout{
		ID:            uuid.New().String(),
		MerchantID:    input.MerchantID,
		Amount:        input.Amount,
		Currency:      defaultCurrency,
		BankAccountID: input.BankAccountID,
		Description:   input.Description,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// The hold must not outlive a failed insert.
		_, _ = s.wallets.Release(ctx, input.MerchantID, input.Amount)
		return Payout{}, err
	}

	return p, nil
}

// Cancel transitions a merchant's own PENDING payout to CANCELLED and
// releases the held amount. The transaction PIN is re-verified; it is
// never carried over from the creation step.
func (s *Service) Cancel(ctx context.Context, merchantID, payoutID, transactionPIN string) (Payout, error) {
	if err := s.ids.VerifyTransactionPIN(ctx, merchantID, transactionPIN); err != nil {
		return Payout{}, err
	}

	existing, err := s.repo.Get(ctx, payoutID)
	if err != nil {
		return Payout{}, err
	}
	if existing.MerchantID != merchantID {
		return Payout{}, ErrNotFound
	}

	cancelled, err := s.repo.UpdateStatus(ctx, payoutID, StatusCancelled, "")
	if err != nil {
		return Payout{}, err
	}

	if _, err := s.wallets.Release(ctx, merchantID, cancelled.Amount); err != nil {
		return Payout{}, err
	}

	return cancelled, nil
}

// Advance applies a provider-driven transition. SUCCESS settles the
// held funds; FAILED releases them back to the merchant.
func (s *Service) Advance(ctx context.Context, payoutID string, to Status, failureReason string) (Payout, error) {
	updated, err := s.repo.UpdateStatus(ctx, payoutID, to, failureReason)
	if err != nil {
		return Payout{}, err
	}

	switch to {
	case StatusSuccess:
		_, err = s.wallets.Settle(ctx, updated.MerchantID, updated.Amount)
	case StatusFailed:
		_, err = s.wallets.Release(ctx, updated.MerchantID, updated.Amount)
	}
	if err != nil {
		return Payout{}, err
	}

	return updated, nil
}

// Get fetches a payout owned by the merchant.
func (s *Service) Get(ctx context.Context, merchantID, payoutID string) (Payout, error) {
	p, err := s.repo.Get(ctx, payoutID)
	if err != nil {
		return Payout{}, err
	}
	if p.MerchantID != merchantID {
		return Payout{}, ErrNotFound
	}
	return p, nil
}

// List returns one page of the merchant's payout history.
func (s *Service) List(ctx context.Context, merchantID string, page, limit int, status Status) (Page, error) {
	return s.repo.List(ctx, merchantID, page, limit, status)
}
