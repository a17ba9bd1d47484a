package api

// ScanRequest uploads a receipt photo (PNG or JPEG) to start a new draft.
type ScanRequest struct {
	Image    []byte `json:"image" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

type GetDraftRequest struct{}

type DiscardDraftRequest struct{}

// DraftResponse carries the draft after an edit.
type DraftResponse struct {
	Draft Receipt `json:"draft"`
	// UnassignedItemIDs lists items nobody pays for yet.
	UnassignedItemIDs []string `json:"unassignedItemIds"`
}

// ItemInput is one row of the item editor. Price is the raw text typed by
// the user; both "12.5" and "12,5" are accepted.
type ItemInput struct {
	ID    string `json:"id,omitempty" validate:"max=64"`
	Name  string `json:"name" validate:"max=255"`
	Price string `json:"price" validate:"max=32"`
}

// PutItemsRequest replaces the draft's items. Rows with a known ID keep their
// assignment; rows without an ID are added; missing rows are deleted.
type PutItemsRequest struct {
	Items    []ItemInput `json:"items" validate:"max=500,dive"`
	Tax      string      `json:"tax" validate:"max=32"`
	Discount string      `json:"discount" validate:"max=32"`
}

type ParticipantInput struct {
	ID   string `json:"id,omitempty" validate:"max=64"`
	Name string `json:"name" validate:"required,max=100"`
}

// PutParticipantsRequest replaces the roster. The caller is always kept on it.
type PutParticipantsRequest struct {
	Participants []ParticipantInput `json:"participants" validate:"max=100,dive"`
}

// AssignRequest toggles one participant on an item, or toggles the item's
// split-evenly flag when SplitEvenly is set.
type AssignRequest struct {
	ItemID        string `json:"itemId" validate:"required,max=64"`
	ParticipantID string `json:"participantId,omitempty" validate:"required_without=SplitEvenly,max=64"`
	SplitEvenly   bool   `json:"splitEvenly,omitempty"`
}

type SummarizeRequest struct{}

type SummarizeResponse struct {
	Draft      Receipt    `json:"draft"`
	Allocation Allocation `json:"allocation"`
}

// FinalizeRequest saves the draft as a bill and clears it.
type FinalizeRequest struct {
	Title   string `json:"title,omitempty" validate:"max=200"`
	PayerID string `json:"payer_id,omitempty" validate:"max=64"`
}
