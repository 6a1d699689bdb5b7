package payout

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no payout exists with the given id.
	ErrNotFound = errors.New("payout not found")

	// ErrInvalidTransition indicates a status change outside the
	// lifecycle state machine.
	ErrInvalidTransition = errors.New("invalid payout status transition")
)

// Repository persists payout requests.
type Repository interface {
	Create(ctx context.Context, p Payout) error
	Get(ctx context.Context, id string) (Payout, error)
	List(ctx context.Context, merchantID string, page, limit int, status Status) (Page, error)
	// UpdateStatus applies a lifecycle transition; implementations
	// enforce ValidTransition against the stored status.
	UpdateStatus(ctx context.Context, id string, to Status, failureReason string) (Payout, error)
}

// PostgresRepository stores payouts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a payout record.
func (r *PostgresRepository) Create(ctx context.Context, p Payout) error {
	_, err := r.db.Exec(ctx, `INSERT INTO payout_requests
        (id, merchant_id, amount, currency, bank_account_id, description, status, failure_reason, fee, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.MerchantID, p.Amount, p.Currency, p.BankAccountID, p.Description,
		string(p.Status), p.FailureReason, p.Fee, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

// Get fetches a payout by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Payout, error) {
	row := r.db.QueryRow(ctx, payoutSelect+` WHERE id = $1`, id)
	return scanPayout(row)
}

// List returns one page of a merchant's payouts, newest first,
// optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, merchantID string, page, limit int, status Status) (Page, error) {
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
		if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payout_requests WHERE merchant_id = $1 AND status = $2`,
			merchantID, string(status)).Scan(&total); err != nil {
			return Page{}, err
		}
		rows, err = r.db.Query(ctx, payoutSelect+` WHERE merchant_id = $1 AND status = $2
            ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
			merchantID, string(status), limit, (page-1)*limit)
	} else {
		if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payout_requests WHERE merchant_id = $1`,
			merchantID).Scan(&total); err != nil {
			return Page{}, err
		}
		rows, err = r.db.Query(ctx, payoutSelect+` WHERE merchant_id = $1
            ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			merchantID, limit, (page-1)*limit)
	}
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	result := Page{Page: page, Limit: limit, Total: total, Items: []Payout{}}
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return Page{}, err
		}
		result.Items = append(result.Items, p)
	}
	return result, rows.Err()
}

// UpdateStatus applies a transition, enforcing the lifecycle in SQL by
// matching only rows whose current status permits the move.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, to Status, failureReason string) (Payout, error) {
	row := r.db.QueryRow(ctx, `UPDATE payout_requests
        SET status = $2, failure_reason = $3, updated_at = $4
        WHERE id = $1 AND (
            (status = 'PENDING' AND $2 IN ('PROCESSING', 'CANCELLED')) OR
            (status = 'PROCESSING' AND $2 IN ('SUCCESS', 'FAILED'))
        )
        RETURNING id, merchant_id, amount, currency, bank_account_id, description, status, failure_reason, fee, created_at, updated_at`,
		id, string(to), failureReason, time.Now().UTC())
	p, err := scanPayout(row)
	if errors.Is(err, ErrNotFound) {
		if _, getErr := r.Get(ctx, id); getErr == nil {
			return Payout{}, ErrInvalidTransition
		}
		return Payout{}, ErrNotFound
	}
	return p, err
}

const payoutSelect = `SELECT id, merchant_id, amount, currency, bank_account_id, description, status, failure_reason, fee, created_at, updated_at FROM payout_requests`

func scanPayout(row pgx.Row) (Payout, error) {
	var (
		p         Payout
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&p.ID, &p.MerchantID, &p.Amount, &p.Currency, &p.BankAccountID, &p.Description,
		&status, &p.FailureReason, &p.Fee, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payout{}, ErrNotFound
		}
		return Payout{}, err
	}
	p.Status = Status(status)
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}
