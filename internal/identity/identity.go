package identity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the two identity variants. It is decided once at
// parse time; callers switch on it instead of probing fields.
type Kind string

const (
	KindAdmin    Kind = "admin"
	KindMerchant Kind = "merchant"
)

// VerificationStatus is a merchant's approval state. Only verified
// merchants may reach protected merchant screens.
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationVerified  VerificationStatus = "verified"
	VerificationRejected  VerificationStatus = "rejected"
	VerificationSuspended VerificationStatus = "suspended"
)

// Valid reports whether the value is one of the recognized states.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected, VerificationSuspended:
		return true
	default:
		return false
	}
}

// WalletBalance is the merchant wallet snapshot carried on the profile.
// Amounts are whole PKR.
type WalletBalance struct {
	Available     int64     `json:"available"`
	Pending       int64     `json:"pending"`
	TotalEarnings int64     `json:"total_earnings"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BankAccount holds the merchant's settlement account details.
type BankAccount struct {
	AccountNumber string `json:"account_number"`
	AccountTitle  string `json:"account_title"`
	BankName      string `json:"bank_name"`
	BranchCode    string `json:"branch_code"`
	IBAN          string `json:"iban"`
}

// Admin is a back-office operator identity.
type Admin struct {
	ID          int64  `json:"id"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Merchant is a merchant identity including the wallet and bank details
// that only the dedicated profile endpoint returns in full.
type Merchant struct {
	MerchantID         string             `json:"merchant_id"`
	Email              string             `json:"email"`
	FirstName          string             `json:"first_name"`
	LastName           string             `json:"last_name"`
	BusinessName       string             `json:"business_name"`
	BusinessAddress    string             `json:"business_address"`
	TaxID              string             `json:"tax_id"`
	Phone              string             `json:"phone"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Active             bool               `json:"active"`
	Wallet             WalletBalance      `json:"wallet"`
	BankAccount        BankAccount        `json:"bank_account"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Identity is the tagged union of the two principal variants. Exactly
// one of Admin/Merchant is non-nil, matching Kind.
type Identity struct {
	Kind     Kind
	Admin    *Admin
	Merchant *Merchant
}

// IsMerchant reports whether the identity is a merchant.
func (id Identity) IsMerchant() bool {
	return id.Kind == KindMerchant && id.Merchant != nil
}

// IsAdmin reports whether the identity is an administrator.
func (id Identity) IsAdmin() bool {
	return id.Kind == KindAdmin && id.Admin != nil
}

// Verified reports whether the identity may access protected merchant
// areas. Admins always pass; merchants pass only when verified.
func (id Identity) Verified() bool {
	if id.IsAdmin() {
		return true
	}
	return id.IsMerchant() && id.Merchant.VerificationStatus == VerificationVerified
}

// Parse decodes an identity payload and decides the variant exactly
// once. The wire format is flat JSON; the discriminant is the presence
// of a non-empty merchant_id field.
func Parse(data []byte) (Identity, error) {
	var probe struct {
		MerchantID string           `json:"merchant_id"`
		ID         *json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Identity{}, fmt.Errorf("parse identity: %w", err)
	}

	if probe.MerchantID != "" {
		var m Merchant
		if err := json.Unmarshal(data, &m); err != nil {
			return Identity{}, fmt.Errorf("parse merchant identity: %w", err)
		}
		return Identity{Kind: KindMerchant, Merchant: &m}, nil
	}

	if probe.ID == nil {
		return Identity{}, fmt.Errorf("identity payload has neither merchant_id nor id")
	}

	var a Admin
	if err := json.Unmarshal(data, &a); err != nil {
		return Identity{}, fmt.Errorf("parse admin identity: %w", err)
	}
	return Identity{Kind: KindAdmin, Admin: &a}, nil
}

// Encode serializes the active variant to the flat wire format Parse
// accepts.
func (id Identity) Encode() ([]byte, error) {
	switch {
	case id.IsMerchant():
		return json.Marshal(id.Merchant)
	case id.IsAdmin():
		return json.Marshal(id.Admin)
	default:
		return nil, fmt.Errorf("encode identity: empty identity")
	}
}

// MergeMerchant overlays a freshly fetched profile over a stored
// snapshot. Fresh values win; fields the fetch left empty keep the
// snapshot's value, so a partial login response never erases known
// bank or contact details.
func MergeMerchant(snapshot, fresh Merchant) Merchant {
	merged := fresh
	if merged.MerchantID == "" {
		merged.MerchantID = snapshot.MerchantID
	}
	if merged.Email == "" {
		merged.Email = snapshot.Email
	}
	if merged.FirstName == "" {
		merged.FirstName = snapshot.FirstName
	}
	if merged.LastName == "" {
		merged.LastName = snapshot.LastName
	}
	if merged.BusinessName == "" {
		merged.BusinessName = snapshot.BusinessName
	}
	if merged.BusinessAddress == "" {
		merged.BusinessAddress = snapshot.BusinessAddress
	}
	if merged.TaxID == "" {
		merged.TaxID = snapshot.TaxID
	}
	if merged.Phone == "" {
		merged.Phone = snapshot.Phone
	}
	if merged.VerificationStatus == "" {
		merged.VerificationStatus = snapshot.VerificationStatus
	}
	if (merged.BankAccount == BankAccount{}) {
		merged.BankAccount = snapshot.BankAccount
	}
	if (merged.Wallet == WalletBalance{}) {
		merged.Wallet = snapshot.Wallet
	}
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = snapshot.CreatedAt
	}
	if merged.UpdatedAt.IsZero() {
		merged.UpdatedAt = snapshot.UpdatedAt
	}
	return merged
}
