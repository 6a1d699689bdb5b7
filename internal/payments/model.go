package payments

import (
	"time"

	"github.com/karobar-pay/karobar_pay/internal/payout"
)

// Payment is an incoming customer payment settled to a merchant
// wallet. Status values share the transaction lifecycle enum with
// payouts. Amounts are whole PKR.
type Payment struct {
	ID             string        `json:"id"`
	MerchantID     string        `json:"merchant_id"`
	TransactionRef string        `json:"transaction_ref"`
	Provider       string        `json:"provider"`
	Amount         int64         `json:"amount"`
	Fee            int64         `json:"fee"`
	Currency       string        `json:"currency"`
	Status         payout.Status `json:"status"`
	FailureReason  string        `json:"failure_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Page is one page of payment records with list metadata.
type Page struct {
	Items []Payment `json:"items"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Total int       `json:"total"`
}

// InquiryResult is the provider-confirmed state of one transaction.
type InquiryResult struct {
	TransactionRef string        `json:"transaction_ref"`
	Provider       string        `json:"provider"`
	Status         payout.Status `json:"status"`
	Amount         int64         `json:"amount"`
	Currency       string        `json:"currency"`
	Fee            int64         `json:"fee"`
	FailureReason  string        `json:"failure_reason,omitempty"`
}
