package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/buriane/taghiane/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Allocation is the full result of splitting a receipt.
type Allocation struct {
	// Summaries are sorted by Total, descending. Ties keep roster order.
	Summaries []models.ParticipantSummary

	// AssignedSubtotal is the sum of prices of items with at least one assignee.
	// It is the base of every participant's tax and discount proportion.
	AssignedSubtotal float64

	// UnassignedSubtotal is the sum of prices of items nobody was assigned to.
	UnassignedSubtotal float64

	// TaxAmount and DiscountAmount are the pools, computed from the declared
	// receipt subtotal rather than AssignedSubtotal.
	TaxAmount      float64
	DiscountAmount float64
}

// Allocate computes how much each participant owes for a receipt.
//
// Every item is divided equally among its effective assignees. Portions for IDs
// that are not on the roster are dropped. The tax and discount pools are then
// spread over participants with a positive total, proportionally to their share
// of the assigned subtotal:
//
//	total = base + taxPool*(base/assigned) - discountPool*(base/assigned)
//
// Allocate never fails; inconsistent input passes through. Use Validate to
// reject it before persisting.
func Allocate(receipt models.Receipt, participants []models.Participant) []models.ParticipantSummary {
	return Breakdown(receipt, participants).Summaries
}

type running struct {
	summary models.ParticipantSummary
	total   decimal.Decimal
}

// Breakdown is Allocate plus the intermediate subtotals and pools.
func Breakdown(receipt models.Receipt, participants []models.Participant) Allocation {
	index := make(map[string]int, len(participants))
	acc := make([]running, len(participants))
	for i, p := range participants {
		acc[i] = running{summary: models.ParticipantSummary{
			ID:    p.ID,
			Name:  p.Name,
			Items: []models.PortionItem{},
		}}
		if _, dup := index[p.ID]; !dup {
			index[p.ID] = i
		}
	}

	assigned, unassigned := decimal.Zero, decimal.Zero
	for _, item := range receipt.Items {
		price := decimal.NewFromFloat(item.Price)
		ids := AssignmentOf(item).Assignees(participants)
		if len(ids) == 0 {
			unassigned = unassigned.Add(price)
			continue
		}
		assigned = assigned.Add(price)

		portion := price.Div(decimal.NewFromInt(int64(len(ids))))
		for _, id := range ids {
			i, ok := index[id]
			if !ok {
				continue
			}
			acc[i].total = acc[i].total.Add(portion)
			acc[i].summary.Items = append(acc[i].summary.Items, models.PortionItem{
				ID:      item.ID,
				Name:    item.Name,
				Price:   item.Price,
				Portion: portion.InexactFloat64(),
			})
		}
	}

	var taxPool, discountPool decimal.Decimal
	tax := decimal.NewFromFloat(receipt.Tax)
	discount := decimal.NewFromFloat(receipt.Discount)
	if !tax.IsZero() || !discount.IsZero() {
		subtotal := decimal.NewFromFloat(receipt.Subtotal)
		taxPool = subtotal.Mul(tax).Div(hundred)
		discountPool = subtotal.Mul(discount).Div(hundred)

		if !assigned.IsZero() {
			for i := range acc {
				if !acc[i].total.IsPositive() {
					continue
				}
				proportion := acc[i].total.Div(assigned)
				acc[i].total = acc[i].total.
					Add(taxPool.Mul(proportion)).
					Sub(discountPool.Mul(proportion))
			}
		}
	}

	sort.SliceStable(acc, func(i, j int) bool {
		return acc[i].total.GreaterThan(acc[j].total)
	})

	summaries := make([]models.ParticipantSummary, len(acc))
	for i, r := range acc {
		r.summary.Total = r.total.InexactFloat64()
		summaries[i] = r.summary
	}

	return Allocation{
		Summaries:          summaries,
		AssignedSubtotal:   assigned.InexactFloat64(),
		UnassignedSubtotal: unassigned.InexactFloat64(),
		TaxAmount:          taxPool.InexactFloat64(),
		DiscountAmount:     discountPool.InexactFloat64(),
	}
}
