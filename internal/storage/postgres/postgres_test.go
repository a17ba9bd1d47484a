package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buriane/taghiane/internal/models"
	"github.com/buriane/taghiane/internal/storage"
)

// newTestStore connects to TEST_DATABASE_URL; the tests are skipped without it.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := New(context.Background(), Config{DatabaseURL: url, ApplicationName: "taghiane-test"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	bill := &models.SplitBill{
		UserID: userID,
		ReceiptData: models.Receipt{
			Items: []models.ReceiptItem{
				{ID: "i1", Name: "Sate Ayam", Price: 30000, AssignedTo: []string{"p1"}},
			},
			Subtotal:     30000,
			Total:        30000,
			Participants: []models.Participant{{ID: "p1", Name: "Alice"}},
		},
		ParticipantSummaries: []models.ParticipantSummary{
			{ID: "p1", Name: "Alice", Total: 30000, Items: []models.PortionItem{
				{ID: "i1", Name: "Sate Ayam", Price: 30000, Portion: 30000},
			}},
		},
	}
	require.NoError(t, store.CreateBill(ctx, bill))
	t.Cleanup(func() { _ = store.DeleteBill(context.Background(), bill.ID) })

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Split with Alice", got.Title)
	assert.Equal(t, bill.ReceiptData.Items, got.ReceiptData.Items)
	assert.Equal(t, bill.ParticipantSummaries, got.ParticipantSummaries)
	assert.Empty(t, got.PayerID)
	assert.Nil(t, got.UpdatedAt)

	got.PayerID = "p1"
	got.Title = "Renamed"
	require.NoError(t, store.UpdateBill(ctx, got))

	listed, err := store.ListBillsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Renamed", listed[0].Title)
	assert.Equal(t, "p1", listed[0].PayerID)
	assert.NotNil(t, listed[0].UpdatedAt)

	require.NoError(t, store.DeleteBill(ctx, bill.ID))
	_, err = store.GetBill(ctx, bill.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.ErrorIs(t, store.DeleteBill(ctx, bill.ID), storage.ErrNotFound)
}
