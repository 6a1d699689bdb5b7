// Package inquiry drives the transaction status re-check from the
// operator console. An inquiry asks the platform to re-confirm a single
// transaction with the payment provider and surfaces the fresh answer.
package inquiry

import (
	"context"
	"fmt"

	"github.com/karobar-pay/karobar_pay/internal/cache"
	"github.com/karobar-pay/karobar_pay/internal/notification"
	"github.com/karobar-pay/karobar_pay/internal/payments"
)

// Client is the slice of the platform API the inquiry flow consumes.
type Client interface {
	StatusInquiry(ctx context.Context, token, transactionRef, provider string) (payments.InquiryResult, error)
}

// Flow checks transaction statuses and invalidates the cached payments
// list so the surrounding screen refetches the updated row.
type Flow struct {
	client    Client
	snapshots cache.Cache
	notifier  notification.Notifier
}

// NewFlow constructs a status inquiry flow.
func NewFlow(client Client, snapshots cache.Cache, notifier notification.Notifier) *Flow {
	return &Flow{client: client, snapshots: snapshots, notifier: notifier}
}

// Check re-confirms one transaction with the provider. Re-running the
// same inquiry for an unchanged transaction yields the same answer, so
// polling from a detail screen is safe.
func (f *Flow) Check(ctx context.Context, token, transactionRef, provider string) (payments.InquiryResult, error) {
	if transactionRef == "" {
		return payments.InquiryResult{}, fmt.Errorf("transaction reference is required")
	}

	result, err := f.client.StatusInquiry(ctx, token, transactionRef, provider)
	if err != nil {
		return payments.InquiryResult{}, err
	}

	// The provider may have moved the transaction; the cached list is
	// stale until refetched.
	_ = f.snapshots.Invalidate(ctx, cache.KeyPaymentsList)

	if f.notifier != nil {
		_ = f.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindStatusInquiry,
			Destination: transactionRef,
			Body:        fmt.Sprintf("Transaction %s is %s", result.TransactionRef, result.Status),
		})
	}

	return result, nil
}
