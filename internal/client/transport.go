package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sha1n/coveralls-go/internal/domain"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 * 1024

// HTTPTransport posts jobs as a multipart form with a single json_file part.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
}

// NewHTTPTransport creates an HTTPTransport whose requests time out after timeout.
func NewHTTPTransport(timeout time.Duration, userAgent string) *HTTPTransport {
	return NewHTTPTransportWithClient(&http.Client{Timeout: timeout}, userAgent)
}

// NewHTTPTransportWithClient creates an HTTPTransport using a custom http.Client (for testing).
func NewHTTPTransportWithClient(client *http.Client, userAgent string) *HTTPTransport {
	return &HTTPTransport{client: client, userAgent: userAgent}
}

// Submit posts payload to url. Network failures and non-2xx responses are
// returned as *domain.TransportError.
func (t *HTTPTransport) Submit(ctx context.Context, url string, payload []byte) error {
	body, contentType, err := multipartBody(payload)
	if err != nil {
		return &domain.TransportError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return &domain.TransportError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return &domain.TransportError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &domain.TransportError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.TransportError{URL: url, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}
	return nil
}

func multipartBody(payload []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("json_file", "json_file")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
