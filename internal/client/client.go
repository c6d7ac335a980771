// Package client provides an HTTP client for the staylist REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/evcraddock/staylist/internal/listing"
)

// Client is an HTTP client for the staylist API. Its methods mirror
// listing.Repository so the CLI can drive either one.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. The token is only needed for writes.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error: %s", http.StatusText(e.Code))
}

// List returns every property in the remote catalog.
func (c *Client) List(ctx context.Context) ([]*listing.Property, error) {
	var props []*listing.Property
	if err := c.do(ctx, http.MethodGet, "/api/properties", nil, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// GetByName returns a single property. Unknown names wrap listing.ErrNotFound.
func (c *Client) GetByName(ctx context.Context, name string) (*listing.Property, error) {
	var p listing.Property
	if err := c.do(ctx, http.MethodGet, propertyPath(name), nil, &p); err != nil {
		return nil, notFound(err, name)
	}
	return &p, nil
}

// Upsert creates or replaces a property by name.
func (c *Client) Upsert(ctx context.Context, p *listing.Property) (*listing.Property, error) {
	var saved listing.Property
	if err := c.do(ctx, http.MethodPost, "/api/properties", p, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes a property. Unknown names wrap listing.ErrNotFound.
func (c *Client) Delete(ctx context.Context, name string) error {
	return notFound(c.do(ctx, http.MethodDelete, propertyPath(name), nil, nil), name)
}

func propertyPath(name string) string {
	return "/api/properties/" + url.PathEscape(name)
}

// notFound maps a 404 onto listing.ErrNotFound.
func notFound(err error, name string) error {
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("property %q: %w", name, listing.ErrNotFound)
	}
	return err
}

// do executes a request with an optional JSON body and decodes the response.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		se := &StatusError{Code: resp.StatusCode}
		if json.Unmarshal(respBody, &errResp) == nil {
			se.Message = errResp.Error
		}
		return se
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
