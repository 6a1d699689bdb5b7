package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested principal does not exist.
var ErrNotFound = errors.New("identity not found")

// MerchantRecord is the platform-side merchant row including credential
// hashes that never leave the repository layer.
type MerchantRecord struct {
	Merchant
	PasswordHash []byte
	PINHash      []byte
}

// AdminRecord is the platform-side administrator row.
type AdminRecord struct {
	Admin
	PasswordHash []byte
}

// Repository persists merchants and administrators.
type Repository interface {
	CreateMerchant(ctx context.Context, rec MerchantRecord) error
	FindMerchantByEmail(ctx context.Context, email string) (MerchantRecord, error)
	FindMerchantByID(ctx context.Context, merchantID string) (MerchantRecord, error)
	UpdateVerificationStatus(ctx context.Context, merchantID string, status VerificationStatus) error
	CreateAdmin(ctx context.Context, rec AdminRecord) error
	FindAdminByEmail(ctx context.Context, email string) (AdminRecord, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateMerchant inserts a merchant row.
func (r *PostgresRepository) CreateMerchant(ctx context.Context, rec MerchantRecord) error {
	_, err := r.db.Exec(ctx, `INSERT INTO merchants
        (id, email, first_name, last_name, business_name, business_address, tax_id, phone,
         verification_status, active, account_number, account_title, bank_name, branch_code, iban,
         password_hash, pin_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		rec.MerchantID, rec.Email, rec.FirstName, rec.LastName, rec.BusinessName, rec.BusinessAddress,
		rec.TaxID, rec.Phone, string(rec.VerificationStatus), rec.Active,
		rec.BankAccount.AccountNumber, rec.BankAccount.AccountTitle, rec.BankAccount.BankName,
		rec.BankAccount.BranchCode, rec.BankAccount.IBAN,
		rec.PasswordHash, rec.PINHash, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	return err
}

// FindMerchantByEmail fetches a merchant row by email.
func (r *PostgresRepository) FindMerchantByEmail(ctx context.Context, email string) (MerchantRecord, error) {
	row := r.db.QueryRow(ctx, merchantSelect+` WHERE email = $1`, email)
	return scanMerchant(row)
}

// FindMerchantByID fetches a merchant row by merchant identifier.
func (r *PostgresRepository) FindMerchantByID(ctx context.Context, merchantID string) (MerchantRecord, error) {
	row := r.db.QueryRow(ctx, merchantSelect+` WHERE id = $1`, merchantID)
	return scanMerchant(row)
}

// UpdateVerificationStatus stores a merchant's new approval state.
func (r *PostgresRepository) UpdateVerificationStatus(ctx context.Context, merchantID string, status VerificationStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE merchants SET verification_status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), merchantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAdmin inserts an administrator row.
func (r *PostgresRepository) CreateAdmin(ctx context.Context, rec AdminRecord) error {
	_, err := r.db.Exec(ctx, `INSERT INTO admins (id, role, email, display_name, username, avatar_url, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Role, rec.Email, rec.DisplayName, rec.Username, rec.AvatarURL, rec.PasswordHash)
	return err
}

// FindAdminByEmail fetches an administrator row by email.
func (r *PostgresRepository) FindAdminByEmail(ctx context.Context, email string) (AdminRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT id, role, email, display_name, username, avatar_url, password_hash
        FROM admins WHERE email = $1`, email)
	var rec AdminRecord
	if err := row.Scan(&rec.ID, &rec.Role, &rec.Email, &rec.DisplayName, &rec.Username, &rec.AvatarURL, &rec.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdminRecord{}, ErrNotFound
		}
		return AdminRecord{}, err
	}
	return rec, nil
}

const merchantSelect = `SELECT id, email, first_name, last_name, business_name, business_address, tax_id, phone,
    verification_status, active, account_number, account_title, bank_name, branch_code, iban,
    password_hash, pin_hash, created_at, updated_at FROM merchants`

func scanMerchant(row pgx.Row) (MerchantRecord, error) {
	var (
		rec       MerchantRecord
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&rec.MerchantID, &rec.Email, &rec.FirstName, &rec.LastName, &rec.BusinessName,
		&rec.BusinessAddress, &rec.TaxID, &rec.Phone, &status, &rec.Active,
		&rec.BankAccount.AccountNumber, &rec.BankAccount.AccountTitle, &rec.BankAccount.BankName,
		&rec.BankAccount.BranchCode, &rec.BankAccount.IBAN,
		&rec.PasswordHash, &rec.PINHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MerchantRecord{}, ErrNotFound
		}
		return MerchantRecord{}, err
	}
	rec.VerificationStatus = VerificationStatus(status)
	rec.CreatedAt = createdAt.UTC()
	rec.UpdatedAt = updatedAt.UTC()
	return rec, nil
}
