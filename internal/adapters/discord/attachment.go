package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxAttachmentBytes caps the size of an uploaded CSV.
const maxAttachmentBytes = 1 << 20

// ErrAttachmentTooLarge is returned for attachments over maxAttachmentBytes.
var ErrAttachmentTooLarge = errors.New("attachment exceeds 1 MiB")

// AttachmentFetcher downloads an uploaded file.
type AttachmentFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher downloads attachments from Discord's CDN.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher. A nil client uses http.DefaultClient.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

// Fetch returns the attachment body.
// Bodies larger than maxAttachmentBytes are rejected, never truncated.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build attachment request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download attachment: status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	if len(data) > maxAttachmentBytes {
		return nil, ErrAttachmentTooLarge
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

var _ AttachmentFetcher = (*HTTPFetcher)(nil)
