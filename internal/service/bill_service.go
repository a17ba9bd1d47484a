package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/buriane/taghiane/internal/calculator"
	"github.com/buriane/taghiane/internal/models"
	"github.com/buriane/taghiane/internal/obs"
	"github.com/buriane/taghiane/internal/receipt"
	"github.com/buriane/taghiane/internal/storage"
	"github.com/buriane/taghiane/pkg/api"
	"github.com/buriane/taghiane/pkg/api/apiconnect"
)

// BillService implements the Connect BillService.
type BillService struct {
	store   storage.Store
	metrics *obs.DomainMetrics
}

var _ apiconnect.BillServiceHandler = (*BillService)(nil)

// NewBillService creates a new BillService with the given storage backend.
// metrics may be nil.
func NewBillService(store storage.Store, metrics *obs.DomainMetrics) *BillService {
	return &BillService{store: store, metrics: metrics}
}

// SharedLinkPath is the read-only page for a saved bill.
func SharedLinkPath(billID string) string {
	return "/bills/" + billID + "/export.html"
}

// validatePayerID checks that the payer, when given, is on the roster.
func validatePayerID(payerID string, participants []models.Participant) error {
	if payerID == "" {
		return nil
	}
	if slices.ContainsFunc(participants, func(p models.Participant) bool { return p.ID == payerID }) {
		return nil
	}
	return fmt.Errorf("payer_id %q must be one of the participants", payerID)
}

// prepareReceipt normalizes a client receipt for storage and checks that it
// can be split.
func prepareReceipt(r models.Receipt, payerID string) (models.Receipt, error) {
	r = receipt.Recalculate(receipt.Sanitize(r))
	if len(r.Participants) == 0 {
		return r, connect.NewError(connect.CodeInvalidArgument, errors.New("at least one participant is required"))
	}
	if err := calculator.Validate(r, r.Participants); err != nil {
		return r, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := validatePayerID(payerID, r.Participants); err != nil {
		return r, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return r, nil
}

// createBill splits and stores a receipt owned by userID.
func (s *BillService) createBill(ctx context.Context, userID, title string, r models.Receipt, payerID string) (*models.SplitBill, calculator.Allocation, error) {
	r, err := prepareReceipt(r, payerID)
	if err != nil {
		return nil, calculator.Allocation{}, err
	}

	alloc := calculator.Breakdown(r, r.Participants)
	s.metrics.ObserveAllocation()

	id := uuid.NewString()
	r.SharedLink = SharedLinkPath(id)
	bill := &models.SplitBill{
		ID:                   id,
		UserID:               userID,
		Title:                title,
		ReceiptData:          r,
		ParticipantSummaries: alloc.Summaries,
		PayerID:              payerID,
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, calculator.Allocation{}, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.ObserveBillSaved("create")

	slog.Info("Bill saved",
		"bill_id", bill.ID,
		"user_id", userID,
		"items", len(r.Items),
		"participants", len(r.Participants),
	)
	return bill, alloc, nil
}

// ownedBill loads a bill and checks that userID owns it.
func (s *BillService) ownedBill(ctx context.Context, billID, userID string) (*models.SplitBill, error) {
	bill, err := s.loadBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.UserID != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("you do not own this bill"))
	}
	return bill, nil
}

func (s *BillService) loadBill(ctx context.Context, billID string) (*models.SplitBill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		slog.Error("GetBill failed", "bill_id", billID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return bill, nil
}

// Allocate splits a receipt without saving it.
func (s *BillService) Allocate(ctx context.Context, req *connect.Request[api.AllocateRequest]) (*connect.Response[api.Allocation], error) {
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	r := toModelReceipt(req.Msg.Receipt)
	participants := r.Participants
	if len(req.Msg.Participants) > 0 {
		participants = toModelParticipants(req.Msg.Participants)
	}

	alloc := calculator.Breakdown(r, participants)
	s.metrics.ObserveAllocation()

	slog.Debug("Allocate",
		"items", len(r.Items),
		"participants", len(participants),
		"unassigned_subtotal", alloc.UnassignedSubtotal,
	)
	out := toAPIAllocation(alloc)
	return connect.NewResponse(&out), nil
}

// SaveBill stores a finalized receipt for the caller.
func (s *BillService) SaveBill(ctx context.Context, req *connect.Request[api.SaveBillRequest]) (*connect.Response[api.SaveBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}

	bill, alloc, err := s.createBill(ctx, userID, req.Msg.Title, toModelReceipt(req.Msg.Receipt), req.Msg.PayerID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SaveBillResponse{
		Bill:       toAPIBill(bill),
		Allocation: toAPIAllocation(alloc),
	}), nil
}

// GetBill returns a bill by ID. Anyone holding the ID may read it.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	bill, err := s.loadBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetBillResponse{Bill: toAPIBill(bill)}), nil
}

// ListBills returns the caller's bills, newest first.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBillsByUser(ctx, userID)
	if err != nil {
		slog.Error("ListBills failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]api.BillSummary, len(bills))
	for i, b := range bills {
		out[i] = toAPIBillSummary(b)
	}
	return connect.NewResponse(&api.ListBillsResponse{Bills: out}), nil
}

// UpdateBill replaces a bill's receipt, roster and payer and re-splits it.
func (s *BillService) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.SaveBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	bill, err := s.ownedBill(ctx, req.Msg.BillID, userID)
	if err != nil {
		return nil, err
	}

	r, err := prepareReceipt(toModelReceipt(req.Msg.Receipt), req.Msg.PayerID)
	if err != nil {
		return nil, err
	}
	r.SharedLink = SharedLinkPath(bill.ID)
	alloc := calculator.Breakdown(r, r.Participants)
	s.metrics.ObserveAllocation()

	bill.Title = req.Msg.Title
	bill.ReceiptData = r
	bill.ParticipantSummaries = alloc.Summaries
	bill.PayerID = req.Msg.PayerID
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		slog.Error("UpdateBill failed", "bill_id", bill.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.ObserveBillSaved("update")

	slog.Info("Bill updated", "bill_id", bill.ID, "user_id", userID)
	return connect.NewResponse(&api.SaveBillResponse{
		Bill:       toAPIBill(bill),
		Allocation: toAPIAllocation(alloc),
	}), nil
}

// DeleteBill removes one of the caller's bills.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[emptypb.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	if _, err := s.ownedBill(ctx, req.Msg.BillID, userID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteBill(ctx, req.Msg.BillID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		slog.Error("DeleteBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.ObserveBillSaved("delete")

	slog.Info("Bill deleted", "bill_id", req.Msg.BillID, "user_id", userID)
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// SettleBill lists what each participant owes the payer of one bill.
func (s *BillService) SettleBill(ctx context.Context, req *connect.Request[api.SettleBillRequest]) (*connect.Response[api.SettleBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	bill, err := s.ownedBill(ctx, req.Msg.BillID, userID)
	if err != nil {
		return nil, err
	}

	payerID := req.Msg.PayerID
	if payerID == "" {
		payerID = bill.PayerID
	}
	if payerID == "" {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("bill has no payer"))
	}
	if err := validatePayerID(payerID, bill.ReceiptData.Participants); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	debts := calculator.SettleBill(bill.ParticipantSummaries, payerID)
	return connect.NewResponse(&api.SettleBillResponse{
		PayerID: payerID,
		Debts:   toAPIDebts(debts, participantNames(bill.ReceiptData.Participants)),
	}), nil
}

// GetBalances nets out the caller's bills that have a payer.
func (s *BillService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBillsByUser(ctx, userID)
	if err != nil {
		slog.Error("GetBalances: failed to list bills", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	var forBalance []calculator.BillForBalance
	for _, b := range bills {
		if b.PayerID == "" {
			continue
		}
		forBalance = append(forBalance, calculator.BillForBalance{
			PayerID:   b.PayerID,
			Summaries: b.ParticipantSummaries,
		})
	}

	balances, debts := calculator.CalculateBalances(forBalance)
	names := make(map[string]string, len(balances))
	for _, b := range balances {
		names[b.MemberID] = b.MemberName
	}
	slog.Debug("GetBalances",
		"user_id", userID,
		"bills", len(bills),
		"with_payer", len(forBalance),
	)
	return connect.NewResponse(&api.GetBalancesResponse{
		Balances: toAPIBalances(balances),
		Debts:    toAPIDebts(debts, names),
	}), nil
}
