package calculator

import (
	"sort"

	"github.com/buriane/taghiane/internal/models"
)

// settleThreshold ignores floating point noise below one cent.
const settleThreshold = 0.01

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// SettleBill lists what each participant owes the payer of a single bill.
// Edges follow the order of summaries; the payer and zero shares are skipped.
func SettleBill(summaries []models.ParticipantSummary, payerID string) []DebtEdge {
	if payerID == "" {
		return nil
	}
	edges := []DebtEdge{}
	for _, s := range summaries {
		if s.ID == payerID || s.Total < settleThreshold {
			continue
		}
		edges = append(edges, DebtEdge{From: s.ID, To: payerID, Amount: s.Total})
	}
	return edges
}

// BillForBalance represents a saved bill with the minimal information needed for balance calculations.
type BillForBalance struct {
	PayerID   string
	Summaries []models.ParticipantSummary
}

// MemberBalance represents the balance information for one person across bills.
type MemberBalance struct {
	MemberID   string
	MemberName string  // Last display name seen for MemberID
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Total amount paid on behalf of others and self
	TotalOwed  float64 // Total of this person's own shares
}

// CalculateBalances computes balances across multiple saved bills.
//
// People are matched across bills by participant ID; two participants who
// share a display name stay separate. For each bill the payer is credited
// with every share and each participant is debited their own share:
//
//	net_balance = total_paid - total_owed
//
// Debts are then simplified by greedily matching the largest debtor with the
// largest creditor. Balances are ordered by member ID and edges name members
// by ID.
func CalculateBalances(bills []BillForBalance) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	member := func(id string) *MemberBalance {
		if _, exists := balances[id]; !exists {
			balances[id] = &MemberBalance{MemberID: id, MemberName: id}
		}
		return balances[id]
	}

	for _, bill := range bills {
		// Bills without a payer can't move money.
		if bill.PayerID == "" {
			continue
		}

		payer := member(bill.PayerID)
		for _, s := range bill.Summaries {
			m := member(s.ID)
			if s.Name != "" {
				m.MemberName = s.Name
			}
			payer.TotalPaid += s.Total
			m.TotalOwed += s.Total
		}
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.NetBalance = bal.TotalPaid - bal.TotalOwed
		memberBalances = append(memberBalances, *bal)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].MemberID < memberBalances[j].MemberID
	})

	var creditors, debtors []MemberBalance
	for _, bal := range memberBalances {
		if bal.NetBalance >= settleThreshold {
			creditors = append(creditors, bal)
		} else if bal.NetBalance <= -settleThreshold {
			debtors = append(debtors, bal)
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].NetBalance > creditors[j].NetBalance })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].NetBalance < debtors[j].NetBalance })

	debtorBalance := make(map[string]float64, len(debtors))
	creditorBalance := make(map[string]float64, len(creditors))
	for _, d := range debtors {
		debtorBalance[d.MemberID] = -d.NetBalance
	}
	for _, c := range creditors {
		creditorBalance[c.MemberID] = c.NetBalance
	}

	debtEdges := []DebtEdge{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].MemberID
		creditor := creditors[j].MemberID

		amount := debtorBalance[debtor]
		if creditorBalance[creditor] < amount {
			amount = creditorBalance[creditor]
		}

		if amount >= settleThreshold {
			debtEdges = append(debtEdges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}

		debtorBalance[debtor] -= amount
		creditorBalance[creditor] -= amount

		if debtorBalance[debtor] < settleThreshold {
			i++
		}
		if creditorBalance[creditor] < settleThreshold {
			j++
		}
	}

	return memberBalances, debtEdges
}
