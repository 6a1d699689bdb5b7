package payments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karobar-pay/karobar_pay/internal/payout"
)

// ErrNotFound indicates no payment exists with the given reference.
var ErrNotFound = errors.New("payment not found")

// Repository persists payment records.
type Repository interface {
	Create(ctx context.Context, p Payment) error
	FindByRef(ctx context.Context, transactionRef string) (Payment, error)
	List(ctx context.Context, merchantID string, page, limit int, status payout.Status) (Page, error)
}

// PostgresRepository stores payments in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a payment record.
func (r *PostgresRepository) Create(ctx context.Context, p Payment) error {
	_, err := r.db.Exec(ctx, `INSERT INTO payments
        (id, merchant_id, transaction_ref, provider, amount, fee, currency, status, failure_reason, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.MerchantID, p.TransactionRef, p.Provider, p.Amount, p.Fee, p.Currency,
		string(p.Status), p.FailureReason, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

// FindByRef fetches a payment by its provider transaction reference.
func (r *PostgresRepository) FindByRef(ctx context.Context, transactionRef string) (Payment, error) {
	row := r.db.QueryRow(ctx, paymentSelect+` WHERE transaction_ref = $1`, transactionRef)
	return scanPayment(row)
}

// List returns one page of a merchant's payments, newest first.
func (r *PostgresRepository) List(ctx context.Context, merchantID string, page, limit int, status payout.Status) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var (
		rows  pgx.Rows
		total int
		err   error
	)
	if status != "" {
		if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE merchant_id = $1 AND status = $2`,
			merchantID, string(status)).Scan(&total); err != nil {
			return Page{}, err
		}
		rows, err = r.db.Query(ctx, paymentSelect+` WHERE merchant_id = $1 AND status = $2
            ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
			merchantID, string(status), limit, (page-1)*limit)
	} else {
		if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE merchant_id = $1`,
			merchantID).Scan(&total); err != nil {
			return Page{}, err
		}
		rows, err = r.db.Query(ctx, paymentSelect+` WHERE merchant_id = $1
            ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			merchantID, limit, (page-1)*limit)
	}
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	result := Page{Page: page, Limit: limit, Total: total, Items: []Payment{}}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return Page{}, err
		}
		result.Items = append(result.Items, p)
	}
	return result, rows.Err()
}

const paymentSelect = `SELECT id, merchant_id, transaction_ref, provider, amount, fee, currency, status, failure_reason, created_at, updated_at FROM payments`

func scanPayment(row pgx.Row) (Payment, error) {
	var (
		p         Payment
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&p.ID, &p.MerchantID, &p.TransactionRef, &p.Provider, &p.Amount, &p.Fee,
		&p.Currency, &status, &p.FailureReason, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	p.Status = payout.Status(status)
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}
