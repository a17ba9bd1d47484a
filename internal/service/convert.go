package service

import (
	"github.com/buriane/taghiane/internal/calculator"
	"github.com/buriane/taghiane/internal/models"
	"github.com/buriane/taghiane/pkg/api"
)

func toModelReceipt(r api.Receipt) models.Receipt {
	out := models.Receipt{
		Items:         make([]models.ReceiptItem, len(r.Items)),
		Subtotal:      r.Subtotal,
		Tax:           r.Tax,
		Discount:      r.Discount,
		Total:         r.Total,
		RawText:       r.RawText,
		ImageURL:      r.ImageURL,
		Participants:  toModelParticipants(r.Participants),
		CurrentUserID: r.CurrentUserID,
		SharedLink:    r.SharedLink,
	}
	for i, item := range r.Items {
		out.Items[i] = models.ReceiptItem{
			ID:          item.ID,
			Name:        item.Name,
			Price:       item.Price,
			AssignedTo:  item.AssignedTo,
			SplitEvenly: item.SplitEvenly,
		}
	}
	return out
}

func toModelParticipants(ps []api.Participant) []models.Participant {
	out := make([]models.Participant, len(ps))
	for i, p := range ps {
		out[i] = models.Participant{ID: p.ID, Name: p.Name}
	}
	return out
}

func toAPIReceipt(r models.Receipt) api.Receipt {
	out := api.Receipt{
		Items:         make([]api.Item, len(r.Items)),
		Subtotal:      r.Subtotal,
		Tax:           r.Tax,
		Discount:      r.Discount,
		Total:         r.Total,
		RawText:       r.RawText,
		ImageURL:      r.ImageURL,
		Participants:  make([]api.Participant, len(r.Participants)),
		CurrentUserID: r.CurrentUserID,
		SharedLink:    r.SharedLink,
	}
	for i, item := range r.Items {
		out.Items[i] = api.Item{
			ID:          item.ID,
			Name:        item.Name,
			Price:       item.Price,
			AssignedTo:  item.AssignedTo,
			SplitEvenly: item.SplitEvenly,
		}
	}
	for i, p := range r.Participants {
		out.Participants[i] = api.Participant{ID: p.ID, Name: p.Name}
	}
	return out
}

func toAPISummaries(summaries []models.ParticipantSummary) []api.ParticipantSummary {
	out := make([]api.ParticipantSummary, len(summaries))
	for i, s := range summaries {
		items := make([]api.PortionItem, len(s.Items))
		for j, it := range s.Items {
			items[j] = api.PortionItem{ID: it.ID, Name: it.Name, Price: it.Price, Portion: it.Portion}
		}
		out[i] = api.ParticipantSummary{ID: s.ID, Name: s.Name, Total: s.Total, Items: items}
	}
	return out
}

func toAPIAllocation(a calculator.Allocation) api.Allocation {
	return api.Allocation{
		Summaries:          toAPISummaries(a.Summaries),
		AssignedSubtotal:   a.AssignedSubtotal,
		UnassignedSubtotal: a.UnassignedSubtotal,
		TaxAmount:          a.TaxAmount,
		DiscountAmount:     a.DiscountAmount,
	}
}

func toAPIBill(b *models.SplitBill) api.Bill {
	return api.Bill{
		ID:                   b.ID,
		UserID:               b.UserID,
		Title:                b.Title,
		ReceiptData:          toAPIReceipt(b.ReceiptData),
		ParticipantSummaries: toAPISummaries(b.ParticipantSummaries),
		PayerID:              b.PayerID,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

func toAPIBillSummary(b *models.SplitBill) api.BillSummary {
	return api.BillSummary{
		ID:               b.ID,
		Title:            b.Title,
		Total:            b.ReceiptData.Total,
		ParticipantCount: len(b.ReceiptData.Participants),
		PayerID:          b.PayerID,
		CreatedAt:        b.CreatedAt,
	}
}

// toAPIDebts converts edges, looking up display names by participant ID.
func toAPIDebts(edges []calculator.DebtEdge, names map[string]string) []api.DebtEdge {
	out := make([]api.DebtEdge, len(edges))
	for i, e := range edges {
		out[i] = api.DebtEdge{
			From:     e.From,
			FromName: names[e.From],
			To:       e.To,
			ToName:   names[e.To],
			Amount:   e.Amount,
		}
	}
	return out
}

func participantNames(participants []models.Participant) map[string]string {
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	return names
}

func toAPIBalances(balances []calculator.MemberBalance) []api.MemberBalance {
	out := make([]api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = api.MemberBalance{
			ID:         b.MemberID,
			Name:       b.MemberName,
			NetBalance: b.NetBalance,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
		}
	}
	return out
}

// unassignedIDs lists the IDs of items nobody pays for.
func unassignedIDs(items []models.ReceiptItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
