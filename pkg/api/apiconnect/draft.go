package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/buriane/taghiane/pkg/api"
)

// DraftServiceName is the fully-qualified name of the DraftService service.
const DraftServiceName = "taghiane.v1.DraftService"

// Procedure paths of DraftService.
const (
	DraftServiceScanProcedure            = "/taghiane.v1.DraftService/Scan"
	DraftServiceGetDraftProcedure        = "/taghiane.v1.DraftService/GetDraft"
	DraftServiceDiscardDraftProcedure    = "/taghiane.v1.DraftService/DiscardDraft"
	DraftServicePutItemsProcedure        = "/taghiane.v1.DraftService/PutItems"
	DraftServicePutParticipantsProcedure = "/taghiane.v1.DraftService/PutParticipants"
	DraftServiceAssignProcedure          = "/taghiane.v1.DraftService/Assign"
	DraftServiceSummarizeProcedure       = "/taghiane.v1.DraftService/Summarize"
	DraftServiceFinalizeProcedure        = "/taghiane.v1.DraftService/Finalize"
)

// DraftServiceHandler is implemented by the server.
type DraftServiceHandler interface {
	Scan(context.Context, *connect.Request[api.ScanRequest]) (*connect.Response[api.DraftResponse], error)
	GetDraft(context.Context, *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error)
	DiscardDraft(context.Context, *connect.Request[api.DiscardDraftRequest]) (*connect.Response[emptypb.Empty], error)
	PutItems(context.Context, *connect.Request[api.PutItemsRequest]) (*connect.Response[api.DraftResponse], error)
	PutParticipants(context.Context, *connect.Request[api.PutParticipantsRequest]) (*connect.Response[api.DraftResponse], error)
	Assign(context.Context, *connect.Request[api.AssignRequest]) (*connect.Response[api.DraftResponse], error)
	Summarize(context.Context, *connect.Request[api.SummarizeRequest]) (*connect.Response[api.SummarizeResponse], error)
	Finalize(context.Context, *connect.Request[api.FinalizeRequest]) (*connect.Response[api.SaveBillResponse], error)
}

// NewDraftServiceHandler builds an HTTP handler from the service implementation.
func NewDraftServiceHandler(svc DraftServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{withJSON()}, opts...)
	routes := map[string]http.Handler{
		DraftServiceScanProcedure:            connect.NewUnaryHandler(DraftServiceScanProcedure, svc.Scan, opts...),
		DraftServiceGetDraftProcedure:        connect.NewUnaryHandler(DraftServiceGetDraftProcedure, svc.GetDraft, opts...),
		DraftServiceDiscardDraftProcedure:    connect.NewUnaryHandler(DraftServiceDiscardDraftProcedure, svc.DiscardDraft, opts...),
		DraftServicePutItemsProcedure:        connect.NewUnaryHandler(DraftServicePutItemsProcedure, svc.PutItems, opts...),
		DraftServicePutParticipantsProcedure: connect.NewUnaryHandler(DraftServicePutParticipantsProcedure, svc.PutParticipants, opts...),
		DraftServiceAssignProcedure:          connect.NewUnaryHandler(DraftServiceAssignProcedure, svc.Assign, opts...),
		DraftServiceSummarizeProcedure:       connect.NewUnaryHandler(DraftServiceSummarizeProcedure, svc.Summarize, opts...),
		DraftServiceFinalizeProcedure:        connect.NewUnaryHandler(DraftServiceFinalizeProcedure, svc.Finalize, opts...),
	}
	return "/" + DraftServiceName + "/", route(routes)
}

// DraftServiceClient is a client for the taghiane.v1.DraftService service.
type DraftServiceClient interface {
	Scan(context.Context, *connect.Request[api.ScanRequest]) (*connect.Response[api.DraftResponse], error)
	GetDraft(context.Context, *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error)
	DiscardDraft(context.Context, *connect.Request[api.DiscardDraftRequest]) (*connect.Response[emptypb.Empty], error)
	PutItems(context.Context, *connect.Request[api.PutItemsRequest]) (*connect.Response[api.DraftResponse], error)
	PutParticipants(context.Context, *connect.Request[api.PutParticipantsRequest]) (*connect.Response[api.DraftResponse], error)
	Assign(context.Context, *connect.Request[api.AssignRequest]) (*connect.Response[api.DraftResponse], error)
	Summarize(context.Context, *connect.Request[api.SummarizeRequest]) (*connect.Response[api.SummarizeResponse], error)
	Finalize(context.Context, *connect.Request[api.FinalizeRequest]) (*connect.Response[api.SaveBillResponse], error)
}

type draftServiceClient struct {
	scan            *connect.Client[api.ScanRequest, api.DraftResponse]
	getDraft        *connect.Client[api.GetDraftRequest, api.DraftResponse]
	discardDraft    *connect.Client[api.DiscardDraftRequest, emptypb.Empty]
	putItems        *connect.Client[api.PutItemsRequest, api.DraftResponse]
	putParticipants *connect.Client[api.PutParticipantsRequest, api.DraftResponse]
	assign          *connect.Client[api.AssignRequest, api.DraftResponse]
	summarize       *connect.Client[api.SummarizeRequest, api.SummarizeResponse]
	finalize        *connect.Client[api.FinalizeRequest, api.SaveBillResponse]
}

// NewDraftServiceClient constructs a client for the DraftService service.
func NewDraftServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DraftServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{name: codecJSON})}, opts...)
	return &draftServiceClient{
		scan:            connect.NewClient[api.ScanRequest, api.DraftResponse](httpClient, baseURL+DraftServiceScanProcedure, opts...),
		getDraft:        connect.NewClient[api.GetDraftRequest, api.DraftResponse](httpClient, baseURL+DraftServiceGetDraftProcedure, opts...),
		discardDraft:    connect.NewClient[api.DiscardDraftRequest, emptypb.Empty](httpClient, baseURL+DraftServiceDiscardDraftProcedure, opts...),
		putItems:        connect.NewClient[api.PutItemsRequest, api.DraftResponse](httpClient, baseURL+DraftServicePutItemsProcedure, opts...),
		putParticipants: connect.NewClient[api.PutParticipantsRequest, api.DraftResponse](httpClient, baseURL+DraftServicePutParticipantsProcedure, opts...),
		assign:          connect.NewClient[api.AssignRequest, api.DraftResponse](httpClient, baseURL+DraftServiceAssignProcedure, opts...),
		summarize:       connect.NewClient[api.SummarizeRequest, api.SummarizeResponse](httpClient, baseURL+DraftServiceSummarizeProcedure, opts...),
		finalize:        connect.NewClient[api.FinalizeRequest, api.SaveBillResponse](httpClient, baseURL+DraftServiceFinalizeProcedure, opts...),
	}
}

func (c *draftServiceClient) Scan(ctx context.Context, req *connect.Request[api.ScanRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.scan.CallUnary(ctx, req)
}

func (c *draftServiceClient) GetDraft(ctx context.Context, req *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.getDraft.CallUnary(ctx, req)
}

func (c *draftServiceClient) DiscardDraft(ctx context.Context, req *connect.Request[api.DiscardDraftRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.discardDraft.CallUnary(ctx, req)
}

func (c *draftServiceClient) PutItems(ctx context.Context, req *connect.Request[api.PutItemsRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.putItems.CallUnary(ctx, req)
}

func (c *draftServiceClient) PutParticipants(ctx context.Context, req *connect.Request[api.PutParticipantsRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.putParticipants.CallUnary(ctx, req)
}

func (c *draftServiceClient) Assign(ctx context.Context, req *connect.Request[api.AssignRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.assign.CallUnary(ctx, req)
}

func (c *draftServiceClient) Summarize(ctx context.Context, req *connect.Request[api.SummarizeRequest]) (*connect.Response[api.SummarizeResponse], error) {
	return c.summarize.CallUnary(ctx, req)
}

func (c *draftServiceClient) Finalize(ctx context.Context, req *connect.Request[api.FinalizeRequest]) (*connect.Response[api.SaveBillResponse], error) {
	return c.finalize.CallUnary(ctx, req)
}
