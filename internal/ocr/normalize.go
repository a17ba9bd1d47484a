package ocr

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"
)

const (
	maxDimension = 2000
	jpegQuality  = 85
)

// sniff checks the image against the size cap and its magic bytes.
func sniff(image []byte, maxBytes int64) error {
	if len(image) == 0 {
		return ErrEmptyImage
	}
	if maxBytes > 0 && int64(len(image)) > maxBytes {
		return fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(image))
	}
	switch http.DetectContentType(image) {
	case "image/png", "image/jpeg":
		return nil
	default:
		return ErrUnsupportedImage
	}
}

// Normalize prepares a photo for recognition: EXIF orientation applied,
// grayscale, longest side at most 2000px, re-encoded as JPEG.
func Normalize(image []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(image), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	out := imaging.Grayscale(img)
	b := out.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		out = imaging.Fit(out, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
