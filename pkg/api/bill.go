package api

// AllocateRequest splits a receipt without saving it. When Participants is
// empty the receipt's own participants are used.
type AllocateRequest struct {
	Receipt      Receipt       `json:"receipt"`
	Participants []Participant `json:"participants,omitempty" validate:"max=100,dive"`
}

// SaveBillRequest stores a finalized receipt. The roster is the receipt's
// participants; PayerID, when set, must be one of them.
type SaveBillRequest struct {
	Title   string  `json:"title,omitempty" validate:"max=200"`
	Receipt Receipt `json:"receipt"`
	PayerID string  `json:"payer_id,omitempty" validate:"max=64"`
}

type SaveBillResponse struct {
	Bill       Bill       `json:"bill"`
	Allocation Allocation `json:"allocation"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id" validate:"required,max=64"`
}

type GetBillResponse struct {
	Bill Bill `json:"bill"`
}

type ListBillsRequest struct{}

type ListBillsResponse struct {
	Bills []BillSummary `json:"bills"`
}

type UpdateBillRequest struct {
	BillID  string  `json:"bill_id" validate:"required,max=64"`
	Title   string  `json:"title,omitempty" validate:"max=200"`
	Receipt Receipt `json:"receipt"`
	PayerID string  `json:"payer_id,omitempty" validate:"max=64"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id" validate:"required,max=64"`
}

// SettleBillRequest asks who owes whom for one bill. PayerID overrides the
// bill's stored payer.
type SettleBillRequest struct {
	BillID  string `json:"bill_id" validate:"required,max=64"`
	PayerID string `json:"payer_id,omitempty" validate:"max=64"`
}

type SettleBillResponse struct {
	PayerID string     `json:"payer_id"`
	Debts   []DebtEdge `json:"debts"`
}

type GetBalancesRequest struct{}

type GetBalancesResponse struct {
	Balances []MemberBalance `json:"balances"`
	Debts    []DebtEdge      `json:"debts"`
}
