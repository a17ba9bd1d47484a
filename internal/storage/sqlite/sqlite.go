// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/buriane/taghiane/internal/models"
	"github.com/buriane/taghiane/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.SplitBill) error {
	storage.PrepareNew(bill, uuid.NewString, time.Now().Truncate(time.Millisecond))

	receiptJSON, summariesJSON, err := encode(bill)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO split_bills (id, user_id, title, payer_id, receipt_data, participant_summaries, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.UserID, bill.Title, nullString(bill.PayerID), receiptJSON, summariesJSON, bill.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

const selectBill = `SELECT id, user_id, title, payer_id, receipt_data, participant_summaries, created_at, updated_at
	FROM split_bills`

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.SplitBill, error) {
	bill, err := scanBill(s.db.QueryRowContext(ctx, selectBill+" WHERE id = ?", billID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListBillsByUser returns the user's bills, newest first.
func (s *SQLiteStore) ListBillsByUser(ctx context.Context, userID string) ([]*models.SplitBill, error) {
	rows, err := s.db.QueryContext(ctx,
		selectBill+" WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []*models.SplitBill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// UpdateBill rewrites a bill's editable fields.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.SplitBill) error {
	now := time.Now()
	if bill.Title == "" {
		bill.Title = storage.GenerateTitle(bill.ReceiptData.Participants, now)
	}

	receiptJSON, summariesJSON, err := encode(bill)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE split_bills
		 SET title = ?, payer_id = ?, receipt_data = ?, participant_summaries = ?, updated_at = ?
		 WHERE id = ?`,
		bill.Title, nullString(bill.PayerID), receiptJSON, summariesJSON, now.UnixMilli(), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if err := requireRow(result, bill.ID); err != nil {
		return err
	}

	bill.UpdatedAt = &now
	return nil
}

// DeleteBill removes a bill by ID.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM split_bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return requireRow(result, billID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*models.SplitBill, error) {
	var (
		bill          models.SplitBill
		payerID       sql.NullString
		receiptJSON   string
		summariesJSON string
		createdAt     int64
		updatedAt     sql.NullInt64
	)
	if err := row.Scan(&bill.ID, &bill.UserID, &bill.Title, &payerID, &receiptJSON, &summariesJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(receiptJSON), &bill.ReceiptData); err != nil {
		return nil, fmt.Errorf("failed to decode receipt data: %w", err)
	}
	if err := json.Unmarshal([]byte(summariesJSON), &bill.ParticipantSummaries); err != nil {
		return nil, fmt.Errorf("failed to decode participant summaries: %w", err)
	}

	bill.PayerID = payerID.String
	bill.CreatedAt = time.UnixMilli(createdAt)
	if updatedAt.Valid {
		t := time.UnixMilli(updatedAt.Int64)
		bill.UpdatedAt = &t
	}
	return &bill, nil
}

func encode(bill *models.SplitBill) (string, string, error) {
	receiptJSON, err := json.Marshal(bill.ReceiptData)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode receipt data: %w", err)
	}
	summariesJSON, err := json.Marshal(bill.ParticipantSummaries)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode participant summaries: %w", err)
	}
	return string(receiptJSON), string(summariesJSON), nil
}

func requireRow(result sql.Result, billID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
