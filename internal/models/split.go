package models

// ReceiptItem is a single line on a receipt.
type ReceiptItem struct {
	// ID is unique within the receipt (UUID format for generated items).
	ID string `json:"id"`

	// Name is the item description as scanned or edited (e.g., "Nasi Goreng").
	Name string `json:"name"`

	// Price is the item's pre-tax price.
	Price float64 `json:"price"`

	// AssignedTo lists the participant IDs sharing this item.
	// The item is divided equally among them.
	AssignedTo []string `json:"assignedTo,omitempty"`

	// SplitEvenly marks the item as shared by the whole roster.
	// When set it wins over AssignedTo, which may be stale.
	SplitEvenly bool `json:"splitEvenly,omitempty"`
}

// Participant is one person splitting the bill.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Receipt is the finalized (or in-progress) receipt handed to the allocation engine.
type Receipt struct {
	Items []ReceiptItem `json:"items"`

	// Subtotal is the sum of item prices. Tax and discount pools are computed from it.
	Subtotal float64 `json:"subtotal"`

	// Tax and Discount are percentages (10 means 10%).
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`

	// Total is Subtotal plus tax minus discount.
	Total float64 `json:"total"`

	// RawText is the text recognized by the OCR step.
	RawText string `json:"rawText,omitempty"`

	// ImageURL points at the scanned image, when the client uploaded one.
	ImageURL string `json:"imageUrl,omitempty"`

	Participants  []Participant `json:"participants,omitempty"`
	CurrentUserID string        `json:"currentUserId,omitempty"`
	SharedLink    string        `json:"sharedLink,omitempty"`
}

// PortionItem is one participant's share of one item.
type PortionItem struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Portion float64 `json:"portion"`
}

// Shared reports whether the item was divided among several people.
func (p PortionItem) Shared() bool {
	return p.Price != p.Portion
}

// ParticipantSummary is the allocation result for one participant.
type ParticipantSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Total float64 `json:"total"`

	// Items are the participant's portions, in receipt order.
	Items []PortionItem `json:"items"`
}
