package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"qr-trackr-be/internal/apperrors"
)

// Resolver resolves a content reference (a post/page id in the content
// system) to its current canonical URL.
type Resolver interface {
	ResolveContentRef(ctx context.Context, ref int64) (string, error)
}

type httpResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver creates a Resolver backed by a REST content service.
// The service is expected to answer GET {baseURL}/{ref} with a JSON body
// containing the canonical link, e.g. {"link": "https://..."}.
func NewHTTPResolver(baseURL string) Resolver {
	return &httpResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type contentResponse struct {
	Link string `json:"link"`
}

func (r *httpResolver) ResolveContentRef(ctx context.Context, ref int64) (string, error) {
	url := fmt.Sprintf("%s/%d", r.baseURL, ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build content request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("content service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", apperrors.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content service returned status %d", resp.StatusCode)
	}

	var body contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode content response: %w", err)
	}
	if body.Link == "" {
		return "", apperrors.ErrNotFound
	}

	return body.Link, nil
}
