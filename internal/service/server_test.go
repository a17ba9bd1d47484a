package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/buriane/taghiane/internal/auth"
	"github.com/buriane/taghiane/internal/middleware"
	"github.com/buriane/taghiane/internal/ocr"
	"github.com/buriane/taghiane/internal/session"
	"github.com/buriane/taghiane/internal/storage/sqlite"
	"github.com/buriane/taghiane/pkg/api/apiconnect"
)

const testUserHeader = "X-Test-User"

// testAuthInterceptor trusts the user named in the X-Test-User header.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if user := req.Header().Get(testUserHeader); user != "" {
				ctx = middleware.WithIdentity(ctx, auth.Identity{UserID: user, Email: user + "@example.com"})
			}
			return next(ctx, req)
		}
	}
}

// as builds a request sent on behalf of user.
func as[T any](user string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, user)
	return req
}

type fakeScanner struct {
	result *ocr.Result
	err    error
	calls  int
}

func (f *fakeScanner) Extract(_ context.Context, image []byte) (*ocr.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testServer struct {
	bills   apiconnect.BillServiceClient
	drafts  apiconnect.DraftServiceClient
	scanner *fakeScanner
}

// setupTestServer serves both services over a temp SQLite database and an
// in-memory Redis.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	scanner := &fakeScanner{result: &ocr.Result{}}
	billSvc := NewBillService(store, nil)
	draftSvc := NewDraftService(session.NewRedisStore(rdb, 0), scanner, billSvc, nil)

	interceptors := connect.WithInterceptors(testAuthInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewBillServiceHandler(billSvc, interceptors))
	mux.Handle(apiconnect.NewDraftServiceHandler(draftSvc, interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{
		bills:   apiconnect.NewBillServiceClient(http.DefaultClient, server.URL),
		drafts:  apiconnect.NewDraftServiceClient(http.DefaultClient, server.URL),
		scanner: scanner,
	}
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}
