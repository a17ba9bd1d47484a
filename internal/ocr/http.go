package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Config configures HTTPExtractor.
type Config struct {
	URL            string
	APIKey         string
	Timeout        time.Duration
	MaxConcurrency int
	MaxImageBytes  int64
}

// HTTPExtractor posts normalized JPEGs to a provider that answers with a
// Result encoded as JSON.
type HTTPExtractor struct {
	cfg    Config
	client *http.Client
	sem    chan struct{}
}

var _ Extractor = (*HTTPExtractor)(nil)

// NewHTTPExtractor returns an extractor. client may be nil.
func NewHTTPExtractor(cfg Config, client *http.Client) *HTTPExtractor {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 10 << 20
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPExtractor{
		cfg:    cfg,
		client: client,
		sem:    make(chan struct{}, cfg.MaxConcurrency),
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, image []byte) (*Result, error) {
	if err := sniff(image, e.cfg.MaxImageBytes); err != nil {
		return nil, err
	}
	body, err := Normalize(image)
	if err != nil {
		return nil, err
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Accept", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProvider, err)
	}

	slog.Debug("OCR completed",
		"bytes_in", len(image),
		"bytes_sent", len(body),
		"lines", len(result.Items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &result, nil
}
