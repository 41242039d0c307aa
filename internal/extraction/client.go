// Package extraction talks to the external trade document extraction service.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"shipdesk/internal/config"
	"shipdesk/internal/domain"
	"shipdesk/internal/payload"
	"shipdesk/internal/port"
)

// Client implements port.Extractor against a single HTTP endpoint.
type Client struct {
	name     string
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient creates an extraction client from an endpoint config.
func NewClient(cfg *config.EndpointConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	name := cfg.Name
	if name == "" {
		name = "extraction"
	}
	return &Client{
		name:     name,
		apiKey:   cfg.APIKey,
		endpoint: cfg.URL,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the endpoint's configured name.
func (c *Client) Name() string {
	return c.name
}

// Extract uploads files as one multipart request and returns the decoded
// payload. A well-formed response without usable data yields
// domain.ErrNoDataExtracted; every other failure is an *Error or
// *RateLimitError.
func (c *Client) Extract(ctx context.Context, files []port.UploadFile) (payload.Payload, error) {
	body, contentType, err := buildMultipart(files)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Endpoint: c.name, Err: fmt.Errorf("building multipart body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Endpoint: c.name, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Endpoint: c.name, Err: fmt.Errorf("calling extraction service: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Endpoint: c.name, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		baseErr := fmt.Errorf("extraction service error: %s", truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, NewRateLimitError(c.name, baseErr, retryAfter)
		}
		return nil, &Error{Kind: KindStatus, Endpoint: c.name, StatusCode: resp.StatusCode, Err: baseErr}
	}

	return c.parseResponse(respBody)
}

func buildMultipart(files []port.UploadFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// parseResponse decodes the body and unwraps the optional
// {"success": ..., "data": {...}} envelope.
func (c *Client) parseResponse(body []byte) (payload.Payload, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Kind: KindDecode, Endpoint: c.name, Err: fmt.Errorf("unmarshaling response: %w (raw: %s)", err, truncate(string(body), 200))}
	}
	if raw == nil {
		return nil, &Error{Kind: KindDecode, Endpoint: c.name, Err: fmt.Errorf("response is not a JSON object")}
	}

	if ok, isBool := raw["success"].(bool); isBool && !ok {
		msg := "extraction rejected the documents"
		for _, k := range []string{"error", "message"} {
			if s, ok := raw[k].(string); ok && s != "" {
				msg = s
				break
			}
		}
		return nil, &Error{Kind: KindRejected, Endpoint: c.name, Err: fmt.Errorf("%s", msg)}
	}

	data := payload.Payload(raw)
	if _, hasSuccess := raw["success"]; hasSuccess {
		if inner, ok := raw["data"].(map[string]any); ok {
			data = payload.Payload(inner)
		}
	}

	if !HasUsableData(data) {
		return nil, fmt.Errorf("%s: %w", c.name, domain.ErrNoDataExtracted)
	}
	return data, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
