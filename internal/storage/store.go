// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/buriane/taghiane/internal/models"
)

// ErrNotFound is returned (wrapped) when a bill does not exist.
var ErrNotFound = errors.New("bill not found")

// Store defines the interface for split bill storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateBill persists a new bill.
	// ID, Title and CreatedAt are populated by the store when empty.
	CreateBill(ctx context.Context, bill *models.SplitBill) error

	// GetBill retrieves a bill by its ID.
	// Returns an error wrapping ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.SplitBill, error)

	// ListBillsByUser returns a user's bills, newest first.
	ListBillsByUser(ctx context.Context, userID string) ([]*models.SplitBill, error)

	// UpdateBill replaces the title, payer, receipt and summaries of an
	// existing bill and sets UpdatedAt. Owner and creation time never change.
	UpdateBill(ctx context.Context, bill *models.SplitBill) error

	// DeleteBill removes a bill. Returns an error wrapping ErrNotFound if absent.
	DeleteBill(ctx context.Context, billID string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
