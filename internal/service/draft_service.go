package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/buriane/taghiane/internal/calculator"
	"github.com/buriane/taghiane/internal/models"
	"github.com/buriane/taghiane/internal/obs"
	"github.com/buriane/taghiane/internal/ocr"
	"github.com/buriane/taghiane/internal/receipt"
	"github.com/buriane/taghiane/internal/session"
	"github.com/buriane/taghiane/pkg/api"
	"github.com/buriane/taghiane/pkg/api/apiconnect"
)

// DraftService implements the Connect DraftService: the scan, edit,
// participant and assignment steps that precede a saved bill. Each user has
// at most one draft.
type DraftService struct {
	drafts  session.Store
	scanner ocr.Extractor
	bills   *BillService
	metrics *obs.DomainMetrics
}

var _ apiconnect.DraftServiceHandler = (*DraftService)(nil)

// NewDraftService wires the draft workflow. scanner may be nil, in which case
// Scan reports Unavailable.
func NewDraftService(drafts session.Store, scanner ocr.Extractor, bills *BillService, metrics *obs.DomainMetrics) *DraftService {
	return &DraftService{drafts: drafts, scanner: scanner, bills: bills, metrics: metrics}
}

// load returns the caller's draft. A missing draft is a failed precondition
// for every step but GetDraft.
func (s *DraftService) load(ctx context.Context, userID string, missing connect.Code) (models.Receipt, error) {
	d, err := s.drafts.Get(ctx, userID)
	if errors.Is(err, session.ErrNoDraft) {
		return d, connect.NewError(missing, err)
	}
	if err != nil {
		slog.Error("Failed to load draft", "user_id", userID, "error", err)
		return d, connect.NewError(connect.CodeInternal, err)
	}
	return d, nil
}

func (s *DraftService) save(ctx context.Context, userID string, d models.Receipt) (*connect.Response[api.DraftResponse], error) {
	if err := s.drafts.Put(ctx, userID, d); err != nil {
		slog.Error("Failed to save draft", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(draftResponse(d)), nil
}

func draftResponse(d models.Receipt) *api.DraftResponse {
	return &api.DraftResponse{
		Draft:             toAPIReceipt(d),
		UnassignedItemIDs: unassignedIDs(receipt.UnassignedItems(d)),
	}
}

func scanErrorCode(ctx context.Context, err error) connect.Code {
	switch {
	case errors.Is(err, ocr.ErrEmptyImage),
		errors.Is(err, ocr.ErrImageTooLarge),
		errors.Is(err, ocr.ErrUnsupportedImage):
		return connect.CodeInvalidArgument
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return connect.CodeCanceled
	default:
		return connect.CodeUnavailable
	}
}

// Scan recognizes a receipt photo and starts a new draft, replacing any
// draft in progress.
func (s *DraftService) Scan(ctx context.Context, req *connect.Request[api.ScanRequest]) (*connect.Response[api.DraftResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	if s.scanner == nil {
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("receipt scanning is not configured"))
	}

	result, err := s.scanner.Extract(ctx, req.Msg.Image)
	if err != nil {
		s.metrics.ObserveScan("error")
		slog.Warn("Scan failed", "user_id", userID, "bytes", len(req.Msg.Image), "error", err)
		return nil, connect.NewError(scanErrorCode(ctx, err), err)
	}
	s.metrics.ObserveScan("ok")

	lines := make([]models.ReceiptItem, len(result.Items))
	for i, l := range result.Items {
		lines[i] = models.ReceiptItem{Name: l.Name, Price: l.Price}
	}
	d := receipt.NewDraft(result.Text, req.Msg.ImageURL, lines, result.Total)
	d = receipt.EnsureCurrentUser(d, userID)

	slog.Info("Receipt scanned", "user_id", userID, "items", len(d.Items), "total", d.Total)
	return s.save(ctx, userID, d)
}

// GetDraft returns the caller's draft.
func (s *DraftService) GetDraft(ctx context.Context, req *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.load(ctx, userID, connect.CodeNotFound)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(draftResponse(d)), nil
}

// DiscardDraft drops the caller's draft. Discarding nothing is not an error.
func (s *DraftService) DiscardDraft(ctx context.Context, req *connect.Request[api.DiscardDraftRequest]) (*connect.Response[emptypb.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Delete(ctx, userID); err != nil {
		slog.Error("Failed to discard draft", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// PutItems replaces the draft's items and its tax and discount.
func (s *DraftService) PutItems(ctx context.Context, req *connect.Request[api.PutItemsRequest]) (*connect.Response[api.DraftResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, userID, connect.CodeFailedPrecondition)
	if err != nil {
		return nil, err
	}

	edits := make([]models.ReceiptItem, len(req.Msg.Items))
	for i, in := range req.Msg.Items {
		edits[i] = models.ReceiptItem{ID: in.ID, Name: in.Name, Price: receipt.ParseAmount(in.Price)}
		if edits[i].Price < 0 {
			return nil, connect.NewError(connect.CodeInvalidArgument, calculator.ErrNegativePrice)
		}
	}
	tax, discount := receipt.ParseAmount(req.Msg.Tax), receipt.ParseAmount(req.Msg.Discount)
	if tax < 0 || discount < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, calculator.ErrNegativeAdjustment)
	}

	d = receipt.ReplaceItems(d, edits)
	d = receipt.SetAdjustments(d, tax, discount)
	return s.save(ctx, userID, d)
}

// PutParticipants replaces the roster. The caller always stays on it.
func (s *DraftService) PutParticipants(ctx context.Context, req *connect.Request[api.PutParticipantsRequest]) (*connect.Response[api.DraftResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, userID, connect.CodeFailedPrecondition)
	if err != nil {
		return nil, err
	}

	roster := make([]models.Participant, 0, len(req.Msg.Participants)+1)
	if !slices.ContainsFunc(req.Msg.Participants, func(p api.ParticipantInput) bool { return p.ID == userID }) {
		roster = append(roster, models.Participant{ID: userID, Name: receipt.CurrentUserName})
	}
	for _, p := range req.Msg.Participants {
		name := p.Name
		if p.ID == userID && strings.TrimSpace(name) == "" {
			name = receipt.CurrentUserName
		}
		roster = append(roster, models.Participant{ID: p.ID, Name: name})
	}

	d = receipt.SetParticipants(d, roster)
	d = receipt.EnsureCurrentUser(d, userID)
	return s.save(ctx, userID, d)
}

// Assign toggles one participant on an item, or the item's split-evenly flag.
func (s *DraftService) Assign(ctx context.Context, req *connect.Request[api.AssignRequest]) (*connect.Response[api.DraftResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, userID, connect.CodeFailedPrecondition)
	if err != nil {
		return nil, err
	}

	if req.Msg.SplitEvenly {
		d, err = receipt.ToggleSplitEvenly(d, req.Msg.ItemID)
	} else {
		d, err = receipt.ToggleAssignment(d, req.Msg.ItemID, req.Msg.ParticipantID)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	return s.save(ctx, userID, d)
}

// ready checks that the draft can be split: someone on the roster and every
// item assigned.
func ready(d models.Receipt) error {
	if len(d.Participants) == 0 {
		return connect.NewError(connect.CodeFailedPrecondition, errors.New("add at least one participant"))
	}
	if unassigned := receipt.UnassignedItems(d); len(unassigned) > 0 {
		err := connect.NewError(connect.CodeFailedPrecondition, calculator.ErrUnassignedItem)
		err.Meta().Set("Unassigned-Items", strconv.Itoa(len(unassigned)))
		return err
	}
	return nil
}

// Summarize splits the draft without saving it.
func (s *DraftService) Summarize(ctx context.Context, req *connect.Request[api.SummarizeRequest]) (*connect.Response[api.SummarizeResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.load(ctx, userID, connect.CodeFailedPrecondition)
	if err != nil {
		return nil, err
	}
	if err := ready(d); err != nil {
		return nil, err
	}

	alloc := calculator.Breakdown(d, d.Participants)
	s.metrics.ObserveAllocation()
	return connect.NewResponse(&api.SummarizeResponse{
		Draft:      toAPIReceipt(d),
		Allocation: toAPIAllocation(alloc),
	}), nil
}

// Finalize saves the draft as a bill and discards it.
func (s *DraftService) Finalize(ctx context.Context, req *connect.Request[api.FinalizeRequest]) (*connect.Response[api.SaveBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, userID, connect.CodeFailedPrecondition)
	if err != nil {
		return nil, err
	}
	if err := ready(d); err != nil {
		return nil, err
	}

	bill, alloc, err := s.bills.createBill(ctx, userID, req.Msg.Title, d, req.Msg.PayerID)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Delete(ctx, userID); err != nil {
		// The bill is saved; a stale draft only expires later.
		slog.Warn("Failed to discard finalized draft", "user_id", userID, "error", err)
	}

	return connect.NewResponse(&api.SaveBillResponse{
		Bill:       toAPIBill(bill),
		Allocation: toAPIAllocation(alloc),
	}), nil
}
