package service

import (
	"context"
	"math"
	"testing"

	"connectrpc.com/connect"

	"github.com/buriane/taghiane/pkg/api"
)

func dinnerReceipt() api.Receipt {
	return api.Receipt{
		Items: []api.Item{
			{ID: "i1", Name: "Nasi Goreng", Price: 50000, AssignedTo: []string{"alice"}},
			{ID: "i2", Name: "Es Teh", Price: 30000, SplitEvenly: true},
		},
		Subtotal: 80000,
		Tax:      10,
		Total:    88000,
		Participants: []api.Participant{
			{ID: "alice", Name: "Alice"},
			{ID: "budi", Name: "Budi"},
		},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 0.001 }

func TestAllocate(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := ts.bills.Allocate(context.Background(), connect.NewRequest(&api.AllocateRequest{
		Receipt: dinnerReceipt(),
	}))
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	// Alice: 50000 + 15000, plus 65/80 of the 8000 tax pool.
	// Budi: 15000, plus 15/80 of the pool.
	got := resp.Msg.Summaries
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].ID != "alice" || !approx(got[0].Total, 71500) {
		t.Errorf("first summary: expected alice 71500, got %s %f", got[0].ID, got[0].Total)
	}
	if got[1].ID != "budi" || !approx(got[1].Total, 16500) {
		t.Errorf("second summary: expected budi 16500, got %s %f", got[1].ID, got[1].Total)
	}
	if !approx(resp.Msg.TaxAmount, 8000) {
		t.Errorf("TaxAmount: expected 8000, got %f", resp.Msg.TaxAmount)
	}
	if len(got[1].Items) != 1 || got[1].Items[0].Portion != 15000 {
		t.Errorf("Budi items: expected one 15000 portion, got %+v", got[1].Items)
	}
}

func TestAllocate_ExplicitRosterOverridesReceipt(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := ts.bills.Allocate(context.Background(), connect.NewRequest(&api.AllocateRequest{
		Receipt:      dinnerReceipt(),
		Participants: []api.Participant{{ID: "alice", Name: "Alice"}},
	}))
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if len(resp.Msg.Summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(resp.Msg.Summaries))
	}
	// The even split now has a single assignee.
	if !approx(resp.Msg.Summaries[0].Total, 88000) {
		t.Errorf("expected 88000, got %f", resp.Msg.Summaries[0].Total)
	}
}

func TestAllocate_RejectsMalformedRequest(t *testing.T) {
	ts := setupTestServer(t)

	r := dinnerReceipt()
	r.Participants[0].ID = ""
	_, err := ts.bills.Allocate(context.Background(), connect.NewRequest(&api.AllocateRequest{Receipt: r}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestSaveBill_And_GetBill(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	saved, err := ts.bills.SaveBill(ctx, as("user-1", &api.SaveBillRequest{
		Receipt: dinnerReceipt(),
		PayerID: "alice",
	}))
	if err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	bill := saved.Msg.Bill
	if bill.ID == "" {
		t.Fatal("expected non-empty bill ID")
	}
	if bill.Title != "Split with Alice, Budi" {
		t.Errorf("title: expected generated title, got %q", bill.Title)
	}
	if bill.ReceiptData.SharedLink != "/bills/"+bill.ID+"/export.html" {
		t.Errorf("shared link: got %q", bill.ReceiptData.SharedLink)
	}
	if len(saved.Msg.Allocation.Summaries) != 2 {
		t.Errorf("expected 2 summaries, got %d", len(saved.Msg.Allocation.Summaries))
	}

	// Shared links work without signing in.
	got, err := ts.bills.GetBill(ctx, connect.NewRequest(&api.GetBillRequest{BillID: bill.ID}))
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Msg.Bill.UserID != "user-1" {
		t.Errorf("owner: expected user-1, got %q", got.Msg.Bill.UserID)
	}
	if got.Msg.Bill.PayerID != "alice" {
		t.Errorf("payer: expected alice, got %q", got.Msg.Bill.PayerID)
	}
	if !approx(got.Msg.Bill.ReceiptData.Total, 88000) {
		t.Errorf("total: expected 88000, got %f", got.Msg.Bill.ReceiptData.Total)
	}
	if len(got.Msg.Bill.ParticipantSummaries) != 2 {
		t.Errorf("summaries: expected 2, got %d", len(got.Msg.Bill.ParticipantSummaries))
	}
}

func TestSaveBill_RecalculatesAndSanitizes(t *testing.T) {
	ts := setupTestServer(t)

	r := dinnerReceipt()
	r.Subtotal, r.Total = 1, 1
	r.Items[0].Name = "<script>alert(1)</script>Nasi"
	saved, err := ts.bills.SaveBill(context.Background(), as("user-1", &api.SaveBillRequest{Receipt: r}))
	if err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	data := saved.Msg.Bill.ReceiptData
	if !approx(data.Subtotal, 80000) || !approx(data.Total, 88000) {
		t.Errorf("expected recalculated 80000/88000, got %f/%f", data.Subtotal, data.Total)
	}
	if data.Items[0].Name != "Nasi" {
		t.Errorf("expected sanitized name, got %q", data.Items[0].Name)
	}
}

func TestSaveBill_Errors(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    *connect.Request[api.SaveBillRequest]
		code   connect.Code
	}{
		{
			name: "unauthenticated",
			req:  connect.NewRequest(&api.SaveBillRequest{Receipt: dinnerReceipt()}),
			code: connect.CodeUnauthenticated,
		},
		{
			name: "payer not on roster",
			req:  as("user-1", &api.SaveBillRequest{Receipt: dinnerReceipt(), PayerID: "carol"}),
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unassigned item",
			req: as("user-1", &api.SaveBillRequest{Receipt: func() api.Receipt {
				r := dinnerReceipt()
				r.Items[0].AssignedTo = nil
				return r
			}()}),
			code: connect.CodeInvalidArgument,
		},
		{
			name: "no participants",
			req: as("user-1", &api.SaveBillRequest{Receipt: api.Receipt{
				Items: []api.Item{{ID: "i1", Name: "Kopi", Price: 20000}},
			}}),
			code: connect.CodeInvalidArgument,
		},
		{
			name: "negative tax",
			req: as("user-1", &api.SaveBillRequest{Receipt: func() api.Receipt {
				r := dinnerReceipt()
				r.Tax = -5
				return r
			}()}),
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.bills.SaveBill(ctx, tt.req)
			assertCode(t, err, tt.code)
		})
	}
}

func TestGetBill_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	_, err := ts.bills.GetBill(context.Background(), connect.NewRequest(&api.GetBillRequest{BillID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListBills(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second"} {
		if _, err := ts.bills.SaveBill(ctx, as("user-1", &api.SaveBillRequest{Title: title, Receipt: dinnerReceipt()})); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}
	}
	if _, err := ts.bills.SaveBill(ctx, as("user-2", &api.SaveBillRequest{Title: "Other", Receipt: dinnerReceipt()})); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}

	resp, err := ts.bills.ListBills(ctx, as("user-1", &api.ListBillsRequest{}))
	if err != nil {
		t.Fatalf("ListBills failed: %v", err)
	}
	bills := resp.Msg.Bills
	if len(bills) != 2 {
		t.Fatalf("expected 2 bills, got %d", len(bills))
	}
	if bills[0].Title != "Second" || bills[1].Title != "First" {
		t.Errorf("expected newest first, got %q then %q", bills[0].Title, bills[1].Title)
	}
	if bills[0].ParticipantCount != 2 || !approx(bills[0].Total, 88000) {
		t.Errorf("unexpected summary: %+v", bills[0])
	}

	_, err = ts.bills.ListBills(ctx, connect.NewRequest(&api.ListBillsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestUpdateBill(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	saved, err := ts.bills.SaveBill(ctx, as("user-1", &api.SaveBillRequest{Title: "Dinner", Receipt: dinnerReceipt()}))
	if err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	billID := saved.Msg.Bill.ID

	r := dinnerReceipt()
	r.Tax = 0
	r.Items[1].SplitEvenly = false
	r.Items[1].AssignedTo = []string{"budi"}

	_, err = ts.bills.UpdateBill(ctx, as("user-2", &api.UpdateBillRequest{BillID: billID, Receipt: r}))
	assertCode(t, err, connect.CodePermissionDenied)

	updated, err := ts.bills.UpdateBill(ctx, as("user-1", &api.UpdateBillRequest{
		BillID:  billID,
		Title:   "Dinner (fixed)",
		Receipt: r,
		PayerID: "budi",
	}))
	if err != nil {
		t.Fatalf("UpdateBill failed: %v", err)
	}
	if updated.Msg.Bill.UpdatedAt == nil {
		t.Error("expected UpdatedAt to be set")
	}

	got, err := ts.bills.GetBill(ctx, connect.NewRequest(&api.GetBillRequest{BillID: billID}))
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	b := got.Msg.Bill
	if b.Title != "Dinner (fixed)" || b.PayerID != "budi" {
		t.Errorf("unexpected bill after update: title=%q payer=%q", b.Title, b.PayerID)
	}
	if !b.CreatedAt.Equal(saved.Msg.Bill.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", saved.Msg.Bill.CreatedAt, b.CreatedAt)
	}
	for _, s := range b.ParticipantSummaries {
		want := map[string]float64{"alice": 50000, "budi": 30000}[s.ID]
		if !approx(s.Total, want) {
			t.Errorf("%s total: expected %f, got %f", s.ID, want, s.Total)
		}
	}

	_, err = ts.bills.UpdateBill(ctx, as("user-1", &api.UpdateBillRequest{BillID: "missing", Receipt: r}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestDeleteBill(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	saved, err := ts.bills.SaveBill(ctx, as("user-1", &api.SaveBillRequest{Receipt: dinnerReceipt()}))
	if err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	billID := saved.Msg.Bill.ID

	_, err = ts.bills.DeleteBill(ctx, as("user-2", &api.DeleteBillRequest{BillID: billID}))
	assertCode(t, err, connect.CodePermissionDenied)

	if _, err := ts.bills.DeleteBill(ctx, as("user-1", &api.DeleteBillRequest{BillID: billID})); err != nil {
		t.Fatalf("DeleteBill failed: %v", err)
	}
	_, err = ts.bills.GetBill(ctx, connect.NewRequest(&api.GetBillRequest{BillID: billID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestSettleBill(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	saved, err := ts.bills.SaveBill(ctx, as("user-1", &api.SaveBillRequest{Receipt: dinnerReceipt()}))
	if err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	billID := saved.Msg.Bill.ID

	_, err = ts.bills.SettleBill(ctx, as("user-1", &api.SettleBillRequest{BillID: billID}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	resp, err := ts.bills.SettleBill(ctx, as("user-1", &api.SettleBillRequest{BillID: billID, PayerID: "alice"}))
	if err != nil {
		t.Fatalf("SettleBill failed: %v", err)
	}
	debts := resp.Msg.Debts
	if len(debts) != 1 {
		t.Fatalf("expected 1 debt, got %d", len(debts))
	}
	if debts[0].From != "budi" || debts[0].To != "alice" || !approx(debts[0].Amount, 16500) {
		t.Errorf("unexpected debt: %+v", debts[0])
	}
	if debts[0].FromName != "Budi" || debts[0].ToName != "Alice" {
		t.Errorf("unexpected debt: %+v", debts[0])
	}

	_, err = ts.bills.SettleBill(ctx, as("user-1", &api.SettleBillRequest{BillID: billID, PayerID: "carol"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGetBalances(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	// Alice pays dinner (Budi owes 16500); Budi pays coffee split evenly (Alice owes 10000).
	// Both bills use the same participant IDs, so the members line up.
	if _, err := ts.bills.SaveBill(ctx, as("user-1", &api.SaveBillRequest{Receipt: dinnerReceipt(), PayerID: "alice"})); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	coffee := api.Receipt{
		Items: []api.Item{{ID: "c1", Name: "Kopi", Price: 20000, SplitEvenly: true}},
		Participants: []api.Participant{
			{ID: "alice", Name: "Alice"},
			{ID: "budi", Name: "Budi"},
		},
	}
	if _, err := ts.bills.SaveBill(ctx, as("user-1", &api.SaveBillRequest{Receipt: coffee, PayerID: "budi"})); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	// Bills without a payer are ignored.
	if _, err := ts.bills.SaveBill(ctx, as("user-1", &api.SaveBillRequest{Receipt: coffee})); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}

	resp, err := ts.bills.GetBalances(ctx, as("user-1", &api.GetBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if len(resp.Msg.Balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(resp.Msg.Balances))
	}
	alice := resp.Msg.Balances[0]
	if alice.ID != "alice" || alice.Name != "Alice" || !approx(alice.NetBalance, 6500) {
		t.Errorf("Alice: expected net 6500, got %+v", alice)
	}
	if len(resp.Msg.Debts) != 1 {
		t.Fatalf("expected 1 debt, got %d", len(resp.Msg.Debts))
	}
	d := resp.Msg.Debts[0]
	if d.From != "budi" || d.FromName != "Budi" || d.To != "alice" || d.ToName != "Alice" || !approx(d.Amount, 6500) {
		t.Errorf("unexpected debt: %+v", d)
	}
}
