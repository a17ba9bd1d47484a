package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/buriane/taghiane/internal/models"
)

// GenerateTitle creates a title from the participant names on a receipt.
func GenerateTitle(participants []models.Participant, now time.Time) string {
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}

	if len(names) == 0 {
		return fmt.Sprintf("Bill - %s", now.Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}

// PrepareNew fills the fields a store assigns on create.
func PrepareNew(bill *models.SplitBill, newID func() string, now time.Time) {
	if bill.ID == "" {
		bill.ID = newID()
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	if bill.Title == "" {
		bill.Title = GenerateTitle(bill.ReceiptData.Participants, bill.CreatedAt)
	}
	if bill.ParticipantSummaries == nil {
		bill.ParticipantSummaries = []models.ParticipantSummary{}
	}
}
