package nlqctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil && payload.Error != "" {
		if payload.Details != "" {
			return fmt.Sprintf("http %d: %s: %s", e.Status, payload.Error, payload.Details)
		}
		return fmt.Sprintf("http %d: %s", e.Status, payload.Error)
	}
	return fmt.Sprintf("http %d: %s", e.Status, strings.TrimSpace(string(e.Body)))
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func (c *client) do(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var payload io.Reader
	if requestBody != nil {
		raw, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.baseURL, "/")+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key := strings.TrimSpace(c.apiKey); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return body, &APIError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeBody(w io.Writer, body []byte) {
	if pretty, ok := prettyJSON(body); ok {
		_, _ = fmt.Fprintln(w, pretty)
		return
	}
	if len(body) > 0 {
		_, _ = fmt.Fprintln(w, string(body))
	}
}
