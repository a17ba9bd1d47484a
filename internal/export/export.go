// Package export renders a split bill as a printable summary, either as HTML
// or as a PDF printed by headless Chrome.
package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buriane/taghiane/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var summaryTmpl = template.Must(
	template.New("summary.html").
		Funcs(template.FuncMap{
			"rupiah":  FormatRupiah,
			"percent": formatPercent,
		}).
		ParseFS(templateFS, "templates/summary.html"),
)

// Document is everything printed on a bill summary.
type Document struct {
	Title       string
	Receipt     models.Receipt
	Summaries   []models.ParticipantSummary
	GeneratedAt time.Time
}

type summaryView struct {
	Title          string
	Date           string
	Total          float64
	Subtotal       float64
	Tax            float64
	TaxAmount      float64
	Discount       float64
	DiscountAmount float64
	Participants   []participantView
}

type participantView struct {
	Name  string
	Total float64
	Items []itemView
}

type itemView struct {
	Name    string
	Portion float64
}

// Filename is the download name of the PDF for a bill generated at t.
func Filename(t time.Time) string {
	return "tagihan-split-bill-" + t.Format("2006-01-02") + ".pdf"
}

// RenderHTML writes the summary page for doc.
func RenderHTML(w io.Writer, doc Document) error {
	r := doc.Receipt
	sub := decimal.NewFromFloat(r.Subtotal)
	view := summaryView{
		Title:          doc.Title,
		Date:           doc.GeneratedAt.Format("2/1/2006"),
		Total:          r.Total,
		Subtotal:       r.Subtotal,
		Tax:            r.Tax,
		TaxAmount:      sub.Mul(decimal.NewFromFloat(r.Tax)).Div(decimal.NewFromInt(100)).InexactFloat64(),
		Discount:       r.Discount,
		DiscountAmount: sub.Mul(decimal.NewFromFloat(r.Discount)).Div(decimal.NewFromInt(100)).InexactFloat64(),
	}
	for _, s := range doc.Summaries {
		pv := participantView{Name: s.Name, Total: s.Total}
		for _, it := range s.Items {
			name := it.Name
			if it.Shared() {
				name += " (dibagi)"
			}
			pv.Items = append(pv.Items, itemView{Name: name, Portion: it.Portion})
		}
		view.Participants = append(view.Participants, pv)
	}

	if err := summaryTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

// FormatRupiah formats an amount the way Indonesian receipts print it:
// "Rp 105.000", "Rp 1.234,5", "-Rp 7.500".
func FormatRupiah(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.Truncate(0)
	frac := d.Sub(whole)

	digits := whole.String()
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}

	out := sign + "Rp " + b.String()
	if !frac.IsZero() {
		// "0.5" -> ",5"
		out += "," + strings.TrimPrefix(frac.String(), "0.")
	}
	return out
}

func formatPercent(p float64) string {
	return strings.Replace(decimal.NewFromFloat(p).String(), ".", ",", 1)
}
