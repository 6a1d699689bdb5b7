package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates an email/password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidPIN indicates a missing or mismatched transaction PIN.
	ErrInvalidPIN = errors.New("invalid transaction PIN")
)

// Credentials is an email/password pair submitted at signin.
type Credentials struct {
	Email    string
	Password string
}

// Service manages principal lifecycle and credential checks on the
// platform side.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterMerchantInput captures the data needed to enrol a merchant.
type RegisterMerchantInput struct {
	Email           string
	Password        string
	TransactionPIN  string
	FirstName       string
	LastName        string
	BusinessName    string
	BusinessAddress string
	TaxID           string
	Phone           string
	BankAccount     BankAccount
}

// RegisterMerchant enrols a merchant in pending state with hashed
// credentials.
func (s *Service) RegisterMerchant(ctx context.Context, input RegisterMerchantInput) (MerchantRecord, error) {
	if len(input.TransactionPIN) != 4 {
		return MerchantRecord{}, errors.New("transaction PIN must be exactly 4 digits")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return MerchantRecord{}, err
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(input.TransactionPIN), bcrypt.DefaultCost)
	if err != nil {
		return MerchantRecord{}, err
	}

	now := time.Now().UTC()
	rec := MerchantRecord{
		Merchant: Merchant{
			MerchantID:         uuid.New().String(),
			Email:              input.Email,
			FirstName:          input.FirstName,
			LastName:           input.LastName,
			BusinessName:       input.BusinessName,
			BusinessAddress:    input.BusinessAddress,
			TaxID:              input.TaxID,
			Phone:              input.Phone,
			VerificationStatus: VerificationPending,
			Active:             true,
			BankAccount:        input.BankAccount,
			CreatedAt:          now,
			UpdatedAt:          now,
		},
		PasswordHash: passwordHash,
		PINHash:      pinHash,
	}

	if err := s.repo.CreateMerchant(ctx, rec); err != nil {
		return MerchantRecord{}, err
	}
	return rec, nil
}

// AuthenticateMerchant verifies merchant signin credentials.
func (s *Service) AuthenticateMerchant(ctx context.Context, creds Credentials) (MerchantRecord, error) {
	rec, err := s.repo.FindMerchantByEmail(ctx, creds.Email)
	if err != nil {
		return MerchantRecord{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(creds.Password)); err != nil {
		return MerchantRecord{}, ErrInvalidCredentials
	}
	return rec, nil
}

// EnsureAdminInput captures the data needed to provision an
// administrator account.
type EnsureAdminInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

// EnsureAdmin provisions an administrator if none exists for the email
// yet, and returns the existing record otherwise. It backs the
// config-driven seed that bootstraps the back office.
func (s *Service) EnsureAdmin(ctx context.Context, input EnsureAdminInput) (AdminRecord, error) {
	if input.Email == "" || input.Password == "" {
		return AdminRecord{}, errors.New("admin email and password are required")
	}

	if rec, err := s.repo.FindAdminByEmail(ctx, input.Email); err == nil {
		return rec, nil
	} else if !errors.Is(err, ErrNotFound) {
		return AdminRecord{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return AdminRecord{}, err
	}

	role := input.Role
	if role == "" {
		role = "admin"
	}
	username := input.Email
	if at := strings.IndexByte(username, '@'); at > 0 {
		username = username[:at]
	}

	rec := AdminRecord{
		Admin: Admin{
			ID:          time.Now().UnixNano(),
			Role:        role,
			Email:       input.Email,
			DisplayName: input.DisplayName,
			Username:    username,
		},
		PasswordHash: passwordHash,
	}
	if err := s.repo.CreateAdmin(ctx, rec); err != nil {
		return AdminRecord{}, err
	}
	return rec, nil
}

// SetMerchantVerification moves a merchant to a new approval state.
// The state drives every verification gate downstream, so only the
// recognized values are accepted.
func (s *Service) SetMerchantVerification(ctx context.Context, merchantID string, status VerificationStatus) error {
	if merchantID == "" {
		return ErrNotFound
	}
	if !status.Valid() {
		return fmt.Errorf("unknown verification status %q", status)
	}
	return s.repo.UpdateVerificationStatus(ctx, merchantID, status)
}

// AuthenticateAdmin verifies administrator signin credentials.
func (s *Service) AuthenticateAdmin(ctx context.Context, creds Credentials) (AdminRecord, error) {
	rec, err := s.repo.FindAdminByEmail(ctx, creds.Email)
	if err != nil {
		return AdminRecord{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(creds.Password)); err != nil {
		return AdminRecord{}, ErrInvalidCredentials
	}
	return rec, nil
}

// VerifyTransactionPIN checks the secondary factor that authorizes
// payout creation and cancellation. The PIN is never cached; every
// money movement re-verifies it.
func (s *Service) VerifyTransactionPIN(ctx context.Context, merchantID, pin string) error {
	if pin == "" {
		return ErrInvalidPIN
	}
	rec, err := s.repo.FindMerchantByID(ctx, merchantID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(rec.PINHash, []byte(pin)); err != nil {
		return ErrInvalidPIN
	}
	return nil
}
