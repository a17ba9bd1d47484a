package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/buriane/taghiane/pkg/api"
)

// BillServiceName is the fully-qualified name of the BillService service.
const BillServiceName = "taghiane.v1.BillService"

// Procedure paths of BillService.
const (
	BillServiceAllocateProcedure    = "/taghiane.v1.BillService/Allocate"
	BillServiceSaveBillProcedure    = "/taghiane.v1.BillService/SaveBill"
	BillServiceGetBillProcedure     = "/taghiane.v1.BillService/GetBill"
	BillServiceListBillsProcedure   = "/taghiane.v1.BillService/ListBills"
	BillServiceUpdateBillProcedure  = "/taghiane.v1.BillService/UpdateBill"
	BillServiceDeleteBillProcedure  = "/taghiane.v1.BillService/DeleteBill"
	BillServiceSettleBillProcedure  = "/taghiane.v1.BillService/SettleBill"
	BillServiceGetBalancesProcedure = "/taghiane.v1.BillService/GetBalances"
)

// BillServiceHandler is implemented by the server.
type BillServiceHandler interface {
	Allocate(context.Context, *connect.Request[api.AllocateRequest]) (*connect.Response[api.Allocation], error)
	SaveBill(context.Context, *connect.Request[api.SaveBillRequest]) (*connect.Response[api.SaveBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.SaveBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[emptypb.Empty], error)
	SettleBill(context.Context, *connect.Request[api.SettleBillRequest]) (*connect.Response[api.SettleBillResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{withJSON()}, opts...)
	routes := map[string]http.Handler{
		BillServiceAllocateProcedure:    connect.NewUnaryHandler(BillServiceAllocateProcedure, svc.Allocate, opts...),
		BillServiceSaveBillProcedure:    connect.NewUnaryHandler(BillServiceSaveBillProcedure, svc.SaveBill, opts...),
		BillServiceGetBillProcedure:     connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...),
		BillServiceListBillsProcedure:   connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...),
		BillServiceUpdateBillProcedure:  connect.NewUnaryHandler(BillServiceUpdateBillProcedure, svc.UpdateBill, opts...),
		BillServiceDeleteBillProcedure:  connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...),
		BillServiceSettleBillProcedure:  connect.NewUnaryHandler(BillServiceSettleBillProcedure, svc.SettleBill, opts...),
		BillServiceGetBalancesProcedure: connect.NewUnaryHandler(BillServiceGetBalancesProcedure, svc.GetBalances, opts...),
	}
	return "/" + BillServiceName + "/", route(routes)
}

// BillServiceClient is a client for the taghiane.v1.BillService service.
type BillServiceClient interface {
	Allocate(context.Context, *connect.Request[api.AllocateRequest]) (*connect.Response[api.Allocation], error)
	SaveBill(context.Context, *connect.Request[api.SaveBillRequest]) (*connect.Response[api.SaveBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.SaveBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[emptypb.Empty], error)
	SettleBill(context.Context, *connect.Request[api.SettleBillRequest]) (*connect.Response[api.SettleBillResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
}

type billServiceClient struct {
	allocate    *connect.Client[api.AllocateRequest, api.Allocation]
	saveBill    *connect.Client[api.SaveBillRequest, api.SaveBillResponse]
	getBill     *connect.Client[api.GetBillRequest, api.GetBillResponse]
	listBills   *connect.Client[api.ListBillsRequest, api.ListBillsResponse]
	updateBill  *connect.Client[api.UpdateBillRequest, api.SaveBillResponse]
	deleteBill  *connect.Client[api.DeleteBillRequest, emptypb.Empty]
	settleBill  *connect.Client[api.SettleBillRequest, api.SettleBillResponse]
	getBalances *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
}

// NewBillServiceClient constructs a client for the BillService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{name: codecJSON})}, opts...)
	return &billServiceClient{
		allocate:    connect.NewClient[api.AllocateRequest, api.Allocation](httpClient, baseURL+BillServiceAllocateProcedure, opts...),
		saveBill:    connect.NewClient[api.SaveBillRequest, api.SaveBillResponse](httpClient, baseURL+BillServiceSaveBillProcedure, opts...),
		getBill:     connect.NewClient[api.GetBillRequest, api.GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		listBills:   connect.NewClient[api.ListBillsRequest, api.ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		updateBill:  connect.NewClient[api.UpdateBillRequest, api.SaveBillResponse](httpClient, baseURL+BillServiceUpdateBillProcedure, opts...),
		deleteBill:  connect.NewClient[api.DeleteBillRequest, emptypb.Empty](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
		settleBill:  connect.NewClient[api.SettleBillRequest, api.SettleBillResponse](httpClient, baseURL+BillServiceSettleBillProcedure, opts...),
		getBalances: connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+BillServiceGetBalancesProcedure, opts...),
	}
}

func (c *billServiceClient) Allocate(ctx context.Context, req *connect.Request[api.AllocateRequest]) (*connect.Response[api.Allocation], error) {
	return c.allocate.CallUnary(ctx, req)
}

func (c *billServiceClient) SaveBill(ctx context.Context, req *connect.Request[api.SaveBillRequest]) (*connect.Response[api.SaveBillResponse], error) {
	return c.saveBill.CallUnary(ctx, req)
}

func (c *billServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *billServiceClient) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *billServiceClient) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.SaveBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *billServiceClient) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *billServiceClient) SettleBill(ctx context.Context, req *connect.Request[api.SettleBillRequest]) (*connect.Response[api.SettleBillResponse], error) {
	return c.settleBill.CallUnary(ctx, req)
}

func (c *billServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

// route dispatches on the exact procedure path.
func route(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
