package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no wallet exists for the merchant.
	ErrNotFound = errors.New("wallet not found")

	// ErrInsufficientBalance occurs when a hold exceeds the available
	// balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// Repository persists wallet snapshots and applies balance movements.
type Repository interface {
	Ensure(ctx context.Context, merchantID, currency string) error
	Get(ctx context.Context, merchantID string) (Details, error)
	// Hold moves amount from available to pending for an in-flight
	// payout request.
	Hold(ctx context.Context, merchantID string, amount int64) (Details, error)
	// Release returns a held amount to available after a cancelled or
	// failed payout.
	Release(ctx context.Context, merchantID string, amount int64) (Details, error)
	// Settle removes a held amount once a payout succeeds.
	Settle(ctx context.Context, merchantID string, amount int64) (Details, error)
	// Credit adds incoming payment funds to available and lifetime
	// earnings.
	Credit(ctx context.Context, merchantID string, amount int64) (Details, error)
}

// PostgresRepository stores wallets in PostgreSQL. Balance movements
// are single-statement updates guarded by balance predicates.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ensure creates an empty wallet row for the merchant if none exists.
func (r *PostgresRepository) Ensure(ctx context.Context, merchantID, currency string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO wallets (merchant_id, currency, available, pending, total_earnings, updated_at)
        VALUES ($1, $2, 0, 0, 0, $3) ON CONFLICT (merchant_id) DO NOTHING`,
		merchantID, currency, time.Now().UTC())
	return err
}

// Get fetches the wallet snapshot for a merchant.
func (r *PostgresRepository) Get(ctx context.Context, merchantID string) (Details, error) {
	row := r.db.QueryRow(ctx, `SELECT merchant_id, currency, available, pending, total_earnings, updated_at
        FROM wallets WHERE merchant_id = $1`, merchantID)
	return scanDetails(row)
}

// Hold moves funds from available to pending, rejecting overdrafts.
func (r *PostgresRepository) Hold(ctx context.Context, merchantID string, amount int64) (Details, error) {
	row := r.db.QueryRow(ctx, `UPDATE wallets
        SET available = available - $2, pending = pending + $2, updated_at = $3
        WHERE merchant_id = $1 AND available >= $2
        RETURNING merchant_id, currency, available, pending, total_earnings, updated_at`,
		merchantID, amount, time.Now().UTC())
	details, err := scanDetails(row)
	if errors.Is(err, ErrNotFound) {
		// Distinguish a missing wallet from a failed balance predicate.
		if _, getErr := r.Get(ctx, merchantID); getErr == nil {
			return Details{}, ErrInsufficientBalance
		}
		return Details{}, ErrNotFound
	}
	return details, err
}

// Release moves held funds back to available.
func (r *PostgresRepository) Release(ctx context.Context, merchantID string, amount int64) (Details, error) {
	row := r.db.QueryRow(ctx, `UPDATE wallets
        SET available = available + $2, pending = pending - $2, updated_at = $3
        WHERE merchant_id = $1 AND pending >= $2
        RETURNING merchant_id, currency, available, pending, total_earnings, updated_at`,
		merchantID, amount, time.Now().UTC())
	return scanDetails(row)
}

// Settle clears held funds after a successful payout.
func (r *PostgresRepository) Settle(ctx context.Context, merchantID string, amount int64) (Details, error) {
	row := r.db.QueryRow(ctx, `UPDATE wallets
        SET pending = pending - $2, updated_at = $3
        WHERE merchant_id = $1 AND pending >= $2
        RETURNING merchant_id, currency, available, pending, total_earnings, updated_at`,
		merchantID, amount, time.Now().UTC())
	return scanDetails(row)
}

// Credit adds incoming funds to available balance and lifetime earnings.
func (r *PostgresRepository) Credit(ctx context.Context, merchantID string, amount int64) (Details, error) {
	row := r.db.QueryRow(ctx, `UPDATE wallets
        SET available = available + $2, total_earnings = total_earnings + $2, updated_at = $3
        WHERE merchant_id = $1
        RETURNING merchant_id, currency, available, pending, total_earnings, updated_at`,
		merchantID, amount, time.Now().UTC())
	return scanDetails(row)
}

func scanDetails(row pgx.Row) (Details, error) {
	var (
		d         Details
		updatedAt time.Time
	)
	if err := row.Scan(&d.MerchantID, &d.Currency, &d.Available, &d.Pending, &d.TotalEarnings, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Details{}, ErrNotFound
		}
		return Details{}, err
	}
	d.UpdatedAt = updatedAt.UTC()
	return d, nil
}
