package api

import "time"

type Item struct {
	ID          string   `json:"id" validate:"max=64"`
	Name        string   `json:"name" validate:"max=255"`
	Price       float64  `json:"price"`
	AssignedTo  []string `json:"assignedTo,omitempty" validate:"max=100"`
	SplitEvenly bool     `json:"splitEvenly,omitempty"`
}

type Participant struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"max=100"`
}

type Receipt struct {
	Items         []Item        `json:"items" validate:"max=500,dive"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax" validate:"gte=0"`
	Discount      float64       `json:"discount" validate:"gte=0"`
	Total         float64       `json:"total"`
	RawText       string        `json:"rawText,omitempty"`
	ImageURL      string        `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Participants  []Participant `json:"participants,omitempty" validate:"max=100,dive"`
	CurrentUserID string        `json:"currentUserId,omitempty"`
	SharedLink    string        `json:"sharedLink,omitempty"`
}

type PortionItem struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Portion float64 `json:"portion"`
}

type ParticipantSummary struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Total float64       `json:"total"`
	Items []PortionItem `json:"items"`
}

// Allocation is the result of splitting a receipt.
type Allocation struct {
	Summaries          []ParticipantSummary `json:"summaries"`
	AssignedSubtotal   float64              `json:"assignedSubtotal"`
	UnassignedSubtotal float64              `json:"unassignedSubtotal"`
	TaxAmount          float64              `json:"taxAmount"`
	DiscountAmount     float64              `json:"discountAmount"`
}

// Bill is a saved split bill.
type Bill struct {
	ID                   string               `json:"id"`
	UserID               string               `json:"user_id"`
	Title                string               `json:"title"`
	ReceiptData          Receipt              `json:"receipt_data"`
	ParticipantSummaries []ParticipantSummary `json:"participant_summaries"`
	PayerID              string               `json:"payer_id,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            *time.Time           `json:"updated_at,omitempty"`
}

// BillSummary is a bill as shown in a history list.
type BillSummary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Total            float64   `json:"total"`
	ParticipantCount int       `json:"participant_count"`
	PayerID          string    `json:"payer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// DebtEdge names participants by ID; the names are for display.
type DebtEdge struct {
	From     string  `json:"from"`
	FromName string  `json:"from_name,omitempty"`
	To       string  `json:"to"`
	ToName   string  `json:"to_name,omitempty"`
	Amount   float64 `json:"amount"`
}

type MemberBalance struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	NetBalance float64 `json:"net_balance"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
}
