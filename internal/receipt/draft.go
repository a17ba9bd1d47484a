// Package receipt holds the editing operations applied to a receipt draft
// between the scan step and the saved bill.
//
// Every operation takes a draft by value and returns the updated copy; the
// input is never mutated.
package receipt

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/buriane/taghiane/internal/calculator"
	"github.com/buriane/taghiane/internal/models"
)

// CurrentUserName is the display name given to the signed-in user on the roster.
const CurrentUserName = "You"

// DefaultItemName is used for items added without a name.
const DefaultItemName = "New Item"

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrParticipantNotFound = errors.New("participant not found")
)

var hundred = decimal.NewFromInt(100)

// NewDraft builds a fresh draft from scanned lines. Line assignments are
// discarded. When the scanner found a total it is kept as-is; otherwise the
// total equals the subtotal.
func NewDraft(rawText, imageURL string, lines []models.ReceiptItem, scannedTotal float64) models.Receipt {
	d := models.Receipt{
		RawText:  rawText,
		ImageURL: imageURL,
		Items:    make([]models.ReceiptItem, 0, len(lines)),
	}
	for _, line := range lines {
		d.Items = append(d.Items, models.ReceiptItem{
			ID:    newID(),
			Name:  strings.TrimSpace(line.Name),
			Price: line.Price,
		})
	}
	d.Subtotal = subtotal(d.Items)
	d.Total = d.Subtotal
	if scannedTotal > 0 {
		d.Total = scannedTotal
	}
	return d
}

// ReplaceItems swaps the draft's item list for edits. Edits whose ID matches
// an existing item keep that item's assignment; edits without an ID become new
// items; existing items missing from edits are deleted. Totals are recalculated.
func ReplaceItems(d models.Receipt, edits []models.ReceiptItem) models.Receipt {
	d = clone(d)
	existing := make(map[string]models.ReceiptItem, len(d.Items))
	for _, item := range d.Items {
		existing[item.ID] = item
	}

	items := make([]models.ReceiptItem, 0, len(edits))
	seen := make(map[string]struct{}, len(edits))
	for _, edit := range edits {
		name := strings.TrimSpace(edit.Name)
		if name == "" {
			name = DefaultItemName
		}
		item := models.ReceiptItem{ID: edit.ID, Name: name, Price: edit.Price}
		if prev, ok := existing[edit.ID]; ok {
			item.AssignedTo = prev.AssignedTo
			item.SplitEvenly = prev.SplitEvenly
		}
		if _, dup := seen[item.ID]; item.ID == "" || dup {
			item.ID = newID()
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	d.Items = items
	return Recalculate(d)
}

// SetAdjustments sets the tax and discount percentages and recalculates totals.
func SetAdjustments(d models.Receipt, tax, discount float64) models.Receipt {
	d = clone(d)
	d.Tax = tax
	d.Discount = discount
	return Recalculate(d)
}

// Recalculate recomputes the subtotal from the items and the total from the
// subtotal, tax and discount.
func Recalculate(d models.Receipt) models.Receipt {
	sub := decimal.Zero
	for _, item := range d.Items {
		sub = sub.Add(decimal.NewFromFloat(item.Price))
	}
	tax := sub.Mul(decimal.NewFromFloat(d.Tax)).Div(hundred)
	discount := sub.Mul(decimal.NewFromFloat(d.Discount)).Div(hundred)

	d.Subtotal = sub.InexactFloat64()
	d.Total = sub.Add(tax).Sub(discount).InexactFloat64()
	return d
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

// ParseAmount reads a price or percentage typed into an editor. A comma is
// accepted as the decimal separator and trailing garbage is ignored.
// Unparseable input reads as zero.
func ParseAmount(s string) float64 {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// UnassignedItems returns the items nobody would pay for under the draft's roster.
func UnassignedItems(d models.Receipt) []models.ReceiptItem {
	var out []models.ReceiptItem
	for _, item := range d.Items {
		if len(calculator.AssignmentOf(item).Assignees(d.Participants)) == 0 {
			out = append(out, item)
		}
	}
	return out
}

func subtotal(items []models.ReceiptItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Price))
	}
	return sum.InexactFloat64()
}

func newID() string {
	return uuid.NewString()
}

func clone(d models.Receipt) models.Receipt {
	items := make([]models.ReceiptItem, len(d.Items))
	for i, item := range d.Items {
		item.AssignedTo = append([]string(nil), item.AssignedTo...)
		items[i] = item
	}
	d.Items = items
	d.Participants = append([]models.Participant(nil), d.Participants...)
	return d
}
