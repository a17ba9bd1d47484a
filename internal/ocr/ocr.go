// Package ocr turns a receipt photo into text and priced lines by calling an
// external OCR provider over HTTP.
package ocr

import (
	"context"
	"errors"
)

var (
	ErrEmptyImage       = errors.New("image is empty")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrUnsupportedImage = errors.New("image must be PNG or JPEG")
	ErrProvider         = errors.New("ocr provider failed")
)

// Line is one priced line recognized on the receipt.
type Line struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Result is what the provider recognized. Total is zero when no total line
// was found.
type Result struct {
	Text  string  `json:"text"`
	Items []Line  `json:"items"`
	Total float64 `json:"total"`
}

// Extractor recognizes a receipt image.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (*Result, error)
}
