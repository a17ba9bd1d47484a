// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
//
// Receipt data and participant summaries are stored as JSONB so a bill row
// round-trips exactly what the client finalized.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buriane/taghiane/internal/models"
	"github.com/buriane/taghiane/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Config configures the connection pool.
type Config struct {
	DatabaseURL     string
	ApplicationName string
	// Tracer, when set, is attached to every pooled connection.
	Tracer pgx.QueryTracer
}

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects, pings and migrates the database.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.Tracer != nil {
		poolConfig.ConnConfig.Tracer = cfg.Tracer
	}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	if cfg.ApplicationName != "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateBill persists a new bill.
func (s *Store) CreateBill(ctx context.Context, bill *models.SplitBill) error {
	storage.PrepareNew(bill, uuid.NewString, time.Now().UTC().Truncate(time.Microsecond))

	_, err := s.pool.Exec(ctx,
		`INSERT INTO split_bills (id, user_id, title, payer_id, receipt_data, participant_summaries, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bill.ID, bill.UserID, bill.Title, nullString(bill.PayerID), bill.ReceiptData, bill.ParticipantSummaries, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

const selectBill = `SELECT id, user_id, title, payer_id, receipt_data, participant_summaries, created_at, updated_at
	FROM split_bills`

// GetBill retrieves a bill by ID.
func (s *Store) GetBill(ctx context.Context, billID string) (*models.SplitBill, error) {
	bill, err := scanBill(s.pool.QueryRow(ctx, selectBill+" WHERE id = $1", billID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return bill, nil
}

// ListBillsByUser returns the user's bills, newest first.
func (s *Store) ListBillsByUser(ctx context.Context, userID string) ([]*models.SplitBill, error) {
	rows, err := s.pool.Query(ctx, selectBill+" WHERE user_id = $1 ORDER BY created_at DESC, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	bills := []*models.SplitBill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

// UpdateBill rewrites a bill's editable fields.
func (s *Store) UpdateBill(ctx context.Context, bill *models.SplitBill) error {
	now := time.Now().UTC()
	if bill.Title == "" {
		bill.Title = storage.GenerateTitle(bill.ReceiptData.Participants, now)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE split_bills
		 SET title = $1, payer_id = $2, receipt_data = $3, participant_summaries = $4, updated_at = $5
		 WHERE id = $6`,
		bill.Title, nullString(bill.PayerID), bill.ReceiptData, bill.ParticipantSummaries, now, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, bill.ID)
	}
	bill.UpdatedAt = &now
	return nil
}

// DeleteBill removes a bill by ID.
func (s *Store) DeleteBill(ctx context.Context, billID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM split_bills WHERE id = $1", billID)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	return nil
}

func scanBill(row pgx.Row) (*models.SplitBill, error) {
	var (
		bill    models.SplitBill
		payerID *string
	)
	err := row.Scan(
		&bill.ID, &bill.UserID, &bill.Title, &payerID,
		&bill.ReceiptData, &bill.ParticipantSummaries,
		&bill.CreatedAt, &bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if payerID != nil {
		bill.PayerID = *payerID
	}
	return &bill, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
