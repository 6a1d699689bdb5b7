package payout

import "time"

// Payout is the platform-side record of a merchant payout request.
// Amounts are whole PKR.
type Payout struct {
	ID            string    `json:"id"`
	MerchantID    string    `json:"merchant_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	BankAccountID string    `json:"bank_account_id"`
	Description   string    `json:"description,omitempty"`
	Status        Status    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	Fee           int64     `json:"fee"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Page is one page of payout records with list metadata.
type Page struct {
	Items []Payout `json:"items"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int      `json:"total"`
}
