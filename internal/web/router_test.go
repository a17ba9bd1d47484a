package web_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/buriane/taghiane/internal/models"
	"github.com/buriane/taghiane/internal/obs"
	"github.com/buriane/taghiane/internal/service"
	"github.com/buriane/taghiane/internal/storage/sqlite"
	"github.com/buriane/taghiane/internal/web"
	"github.com/buriane/taghiane/pkg/api/apiconnect"
)

type fakePrinter struct {
	html string
	err  error
}

func (p *fakePrinter) Print(_ context.Context, html string) ([]byte, error) {
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func newStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func saveBill(t *testing.T, store *sqlite.SQLiteStore) string {
	t.Helper()
	bill := &models.SplitBill{
		UserID: "user-1",
		Title:  "Makan Siang",
		ReceiptData: models.Receipt{
			Items:        []models.ReceiptItem{{ID: "i1", Name: "Bakso", Price: 20000, AssignedTo: []string{"a"}}},
			Subtotal:     20000,
			Total:        20000,
			Participants: []models.Participant{{ID: "a", Name: "Ani"}},
		},
		ParticipantSummaries: []models.ParticipantSummary{{
			ID: "a", Name: "Ani", Total: 20000,
			Items: []models.PortionItem{{ID: "i1", Name: "Bakso", Price: 20000, Portion: 20000}},
		}},
	}
	require.NoError(t, store.CreateBill(context.Background(), bill))
	return bill.ID
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h := web.NewRouter(web.Options{
		Health: web.Health{Checks: []web.Check{
			{Name: "db", Ping: func(context.Context) error { return nil }},
			{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
		}},
	})

	live := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, live.Code)
	assert.Equal(t, "ok", live.Body.String())

	ready := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
	assert.JSONEq(t, `{"db":"ok","redis":"connection refused"}`, ready.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := web.NewRouter(web.Options{
		HTTPMetrics: obs.NewHTTPMetrics("taghiane", nil, reg),
		Gatherer:    reg,
	})

	get(t, h, "/healthz")
	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

func TestExport(t *testing.T) {
	store := newStore(t)
	billID := saveBill(t, store)
	printer := &fakePrinter{}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	h := web.NewRouter(web.Options{
		Export: web.BillExport{Store: store, Printer: printer, Now: func() time.Time { return now }},
	})

	html := get(t, h, "/bills/"+billID+"/export.html")
	require.Equal(t, http.StatusOK, html.Code)
	assert.Contains(t, html.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, html.Body.String(), "Ringkasan Split Bill")
	assert.Contains(t, html.Body.String(), "Rp 20.000")

	pdf := get(t, h, "/bills/"+billID+"/export.pdf")
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, "application/pdf", pdf.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tagihan-split-bill-2026-10-19.pdf"`, pdf.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(pdf.Body.String(), "%PDF"))
	assert.Contains(t, printer.html, "Bakso")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/bills/missing/export.html").Code)

	printer.err = errors.New("chrome crashed")
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/bills/"+billID+"/export.pdf").Code)
}

func TestScanRateLimit(t *testing.T) {
	rate, err := limiter.NewRateFromFormatted("2-M")
	require.NoError(t, err)

	h := web.NewRouter(web.Options{
		Drafts:      service.NewDraftService(nil, nil, nil, nil),
		ScanLimiter: limiter.New(memory.NewStore(), rate),
	})

	post := func(procedure string) int {
		req := httptest.NewRequest(http.MethodPost, procedure, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// Unauthenticated calls still spend the budget.
	assert.Equal(t, http.StatusUnauthorized, post(apiconnect.DraftServiceScanProcedure))
	assert.Equal(t, http.StatusUnauthorized, post(apiconnect.DraftServiceScanProcedure))
	assert.Equal(t, http.StatusTooManyRequests, post(apiconnect.DraftServiceScanProcedure))

	// Other procedures are not limited.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, post(apiconnect.DraftServiceGetDraftProcedure))
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>taghiane</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	h := web.NewRouter(web.Options{StaticPath: dir})

	js := get(t, h, "/app.js")
	require.Equal(t, http.StatusOK, js.Code)
	body, _ := io.ReadAll(js.Body)
	assert.Equal(t, "console.log(1)", string(body))

	spa := get(t, h, "/history")
	require.Equal(t, http.StatusOK, spa.Code)
	assert.Contains(t, spa.Body.String(), "taghiane")
}
