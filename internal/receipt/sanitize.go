package receipt

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/buriane/taghiane/internal/models"
)

var policy = bluemonday.StrictPolicy()

func sanitizeText(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

// Sanitize strips markup from every user-visible string in the draft.
func Sanitize(d models.Receipt) models.Receipt {
	d = clone(d)
	for i := range d.Items {
		d.Items[i].Name = sanitizeText(d.Items[i].Name)
	}
	for i := range d.Participants {
		d.Participants[i].Name = sanitizeText(d.Participants[i].Name)
	}
	d.RawText = sanitizeText(d.RawText)
	return d
}
