package models

import "time"

// SplitBill is a saved, shareable bill.
type SplitBill struct {
	// ID is the unique identifier for the bill (UUID format). It doubles as the share key.
	ID string `json:"id"`

	// UserID is the owner: the subject of the token that saved the bill.
	UserID string `json:"user_id"`

	// Title is user-provided or generated from the participant names.
	Title string `json:"title"`

	ReceiptData          Receipt              `json:"receipt_data"`
	ParticipantSummaries []ParticipantSummary `json:"participant_summaries"`

	// PayerID is the participant who paid the bill, if known. Optional.
	PayerID string `json:"payer_id,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
