package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buriane/taghiane/internal/export"
	"github.com/buriane/taghiane/internal/storage"
)

// Printer turns an HTML document into a PDF.
type Printer interface {
	Print(ctx context.Context, html string) ([]byte, error)
}

// BillExport serves printable summaries of saved bills. The bill ID acts as
// the share link, so no sign-in is required.
type BillExport struct {
	Store   storage.Store
	Printer Printer
	Now     func() time.Time
}

func (e BillExport) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e BillExport) render(w http.ResponseWriter, r *http.Request) (*bytes.Buffer, bool) {
	billID := chi.URLParam(r, "billID")
	bill, err := e.Store.GetBill(r.Context(), billID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "bill not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("Export: failed to load bill", "bill_id", billID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}

	var buf bytes.Buffer
	err = export.RenderHTML(&buf, export.Document{
		Title:       bill.Title,
		Receipt:     bill.ReceiptData,
		Summaries:   bill.ParticipantSummaries,
		GeneratedAt: e.now(),
	})
	if err != nil {
		slog.Error("Export: failed to render bill", "bill_id", billID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return &buf, true
}

// HTML serves the summary page.
func (e BillExport) HTML(w http.ResponseWriter, r *http.Request) {
	buf, ok := e.render(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// PDF serves the summary as a PDF download.
func (e BillExport) PDF(w http.ResponseWriter, r *http.Request) {
	if e.Printer == nil {
		http.Error(w, "pdf export unavailable", http.StatusServiceUnavailable)
		return
	}
	buf, ok := e.render(w, r)
	if !ok {
		return
	}

	pdf, err := e.Printer.Print(r.Context(), buf.String())
	if err != nil {
		slog.Error("Export: failed to print pdf", "bill_id", chi.URLParam(r, "billID"), "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrNoChrome) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, "failed to generate pdf", status)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(e.now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	_, _ = w.Write(pdf)
}
