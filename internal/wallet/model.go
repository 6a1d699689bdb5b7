package wallet

import "time"

// Details is the wallet snapshot for a single merchant. Amounts are
// whole PKR. Available funds can be paid out; pending funds are held
// by in-flight payout requests.
type Details struct {
	MerchantID    string    `json:"merchant_id"`
	Currency      string    `json:"currency"`
	Available     int64     `json:"available"`
	Pending       int64     `json:"pending"`
	TotalEarnings int64     `json:"total_earnings"`
	UpdatedAt     time.Time `json:"updated_at"`
}
