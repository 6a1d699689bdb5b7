package payout

import (
	"context"
	"errors"
	"testing"

	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/wallet"
)

func newServiceFixture(t *testing.T) (*Service, wallet.Repository, string) {
	t.Helper()
	ctx := context.Background()

	idRepo := identity.NewMemoryRepository()
	ids := identity.NewService(idRepo)
	rec, err := ids.RegisterMerchant(ctx, identity.RegisterMerchantInput{
		Email:          "shop@example.pk",
		Password:       "secret",
		TransactionPIN: "1234",
		BusinessName:   "Karobar Traders",
	})
	if err != nil {
		t.Fatalf("register merchant: %v", err)
	}

	wallets := wallet.NewMemoryRepository()
	if err := wallets.Ensure(ctx, rec.MerchantID, "PKR"); err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}
	if _, err := wallets.Credit(ctx, rec.MerchantID, 10_000); err != nil {
		t.Fatalf("credit wallet: %v", err)
	}

	svc := NewService(NewMemoryRepository(), wallets, ids)
	return svc, wallets, rec.MerchantID
}

func TestCreateHoldsBalance(t *testing.T) {
	svc, wallets, merchantID := newServiceFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 4_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Status != StatusPending || p.Currency != "PKR" {
		t.Fatalf("unexpected payout %+v", p)
	}

	d, err := wallets.Get(ctx, merchantID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if d.Available != 6_000 || d.Pending != 4_000 {
		t.Fatalf("expected 6000/4000 after hold, got %d/%d", d.Available, d.Pending)
	}
}

func TestCreateRejectsWrongPIN(t *testing.T) {
	svc, wallets, merchantID := newServiceFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 4_000, BankAccountID: "acct-1", TransactionPIN: "9999",
	})
	if !errors.Is(err, identity.ErrInvalidPIN) {
		t.Fatalf("expected ErrInvalidPIN, got %v", err)
	}

	d, _ := wallets.Get(ctx, merchantID)
	if d.Available != 10_000 || d.Pending != 0 {
		t.Fatal("rejected create must not move balance")
	}
}

func TestCreateRejectsOverdraft(t *testing.T) {
	svc, _, merchantID := newServiceFixture(t)

	_, err := svc.Create(context.Background(), CreateInput{
		MerchantID: merchantID, Amount: 20_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	})
	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestCancelReleasesHoldAndRequiresPIN(t *testing.T) {
	svc, wallets, merchantID := newServiceFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 4_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Cancel(ctx, merchantID, p.ID, ""); !errors.Is(err, identity.ErrInvalidPIN) {
		t.Fatalf("expected PIN re-entry to be required, got %v", err)
	}

	cancelled, err := svc.Cancel(ctx, merchantID, p.ID, "1234")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	d, _ := wallets.Get(ctx, merchantID)
	if d.Available != 10_000 || d.Pending != 0 {
		t.Fatalf("expected hold released, got %d/%d", d.Available, d.Pending)
	}
}

func TestCancelRejectsForeignPayout(t *testing.T) {
	svc, _, merchantID := newServiceFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 4_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Cancel(ctx, "someone-else", p.ID, "1234"); err == nil {
		t.Fatal("expected ownership check to fail")
	}
}

func TestAdvanceSettlesOnSuccess(t *testing.T) {
	svc, wallets, merchantID := newServiceFixture(t)
	ctx := context.Background()

	p, _ := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 4_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	})

	if _, err := svc.Advance(ctx, p.ID, StatusProcessing, ""); err != nil {
		t.Fatalf("advance to processing: %v", err)
	}
	if _, err := svc.Advance(ctx, p.ID, StatusSuccess, ""); err != nil {
		t.Fatalf("advance to success: %v", err)
	}

	d, _ := wallets.Get(ctx, merchantID)
	if d.Available != 6_000 || d.Pending != 0 {
		t.Fatalf("expected settled balance 6000/0, got %d/%d", d.Available, d.Pending)
	}
}

func TestAdvanceReleasesOnFailure(t *testing.T) {
	svc, wallets, merchantID := newServiceFixture(t)
	ctx := context.Background()

	p, _ := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 4_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	})

	if _, err := svc.Advance(ctx, p.ID, StatusProcessing, ""); err != nil {
		t.Fatalf("advance to processing: %v", err)
	}
	failed, err := svc.Advance(ctx, p.ID, StatusFailed, "bank rejected")
	if err != nil {
		t.Fatalf("advance to failed: %v", err)
	}
	if failed.FailureReason != "bank rejected" {
		t.Fatalf("expected failure reason, got %q", failed.FailureReason)
	}

	d, _ := wallets.Get(ctx, merchantID)
	if d.Available != 10_000 || d.Pending != 0 {
		t.Fatalf("expected hold released, got %d/%d", d.Available, d.Pending)
	}
}

func TestCancelAfterProcessingRejected(t *testing.T) {
	svc, _, merchantID := newServiceFixture(t)
	ctx := context.Background()

	p, _ := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 4_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	})
	if _, err := svc.Advance(ctx, p.ID, StatusProcessing, ""); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if _, err := svc.Cancel(ctx, merchantID, p.ID, "1234"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _, merchantID := newServiceFixture(t)
	ctx := context.Background()

	first, _ := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 1_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	})
	if _, err := svc.Create(ctx, CreateInput{
		MerchantID: merchantID, Amount: 2_000, BankAccountID: "acct-1", TransactionPIN: "1234",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Cancel(ctx, merchantID, first.ID, "1234"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	page, err := svc.List(ctx, merchantID, 1, 20, StatusCancelled)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != first.ID {
		t.Fatalf("unexpected filtered page %+v", page)
	}
}
